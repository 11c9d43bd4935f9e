// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chatter

import (
	"slices"
	"time"

	"github.com/poiesic/beanvault/core"
)

// postRollup is the stage-one result for a single social post: the maximum
// counters observed across its snapshots and the most recent observation.
type postRollup struct {
	likes       int
	comments    int
	subscribers int
	collected   time.Time
	sharedIn    string
}

// Rollup aggregates raw snapshots for one URL with the two-stage group-by:
// first per distinct post, taking the maximum likes/comments observed
// (successive snapshots are cumulative counters, never summed), then across
// posts, summing the per-post maxima. Shares is the count of distinct posts
// and SharedIn the set of distinct sources/forums.
func Rollup(url string, snapshots []*core.Chatter) *core.ChatterAggregate {
	posts := make(map[string]*postRollup)
	for _, snap := range snapshots {
		post, ok := posts[snap.ChatterURL]
		if !ok {
			post = &postRollup{}
			posts[snap.ChatterURL] = post
		}
		post.likes = max(post.likes, snap.Likes)
		post.comments = max(post.comments, snap.Comments)
		post.subscribers = max(post.subscribers, snap.Subscribers)
		if snap.Collected.After(post.collected) {
			post.collected = snap.Collected
			post.sharedIn = sharedInLabel(snap)
		}
	}

	agg := &core.ChatterAggregate{URL: url, Shares: len(posts)}
	seen := make(map[string]bool)
	for _, post := range posts {
		agg.Likes += post.likes
		agg.Comments += post.comments
		agg.Subscribers += post.subscribers
		if post.sharedIn != "" && !seen[post.sharedIn] {
			seen[post.sharedIn] = true
			agg.SharedIn = append(agg.SharedIn, post.sharedIn)
		}
	}
	slices.Sort(agg.SharedIn)
	return agg
}

// RollupWithDelta runs the rollup twice, once over all snapshots and once
// restricted to those collected before now-window, and fills the Change
// fields with the per-field differences.
func RollupWithDelta(url string, snapshots []*core.Chatter, now time.Time, window time.Duration) *core.ChatterAggregate {
	current := Rollup(url, snapshots)

	cutoff := now.Add(-window)
	var prior []*core.Chatter
	for _, snap := range snapshots {
		if snap.Collected.Before(cutoff) {
			prior = append(prior, snap)
		}
	}
	reference := Rollup(url, prior)

	current.LikesChange = current.Likes - reference.Likes
	current.CommentsChange = current.Comments - reference.Comments
	current.SharesChange = current.Shares - reference.Shares
	current.Refreshed = now
	return current
}

// TrendScore derives a single ranking signal from an aggregate's deltas.
// Shares weigh heaviest (a new post is a stronger signal than one more
// like), comments next, likes least.
func TrendScore(agg *core.ChatterAggregate) int64 {
	return int64(5*agg.SharesChange + 2*agg.CommentsChange + agg.LikesChange)
}

func sharedInLabel(snap *core.Chatter) string {
	if snap.Forum != "" {
		return snap.Forum
	}
	return snap.Source
}
