package chatter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage/badger"
)

func TestEngineRun(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	bean := &core.Bean{URL: "https://example.org/story", Kind: core.KindNews}
	_, err = repos.Beans.StoreBeans(ctx, bean)
	require.NoError(t, err)

	snapshots := []*core.Chatter{
		{URL: bean.URL, ChatterURL: "https://social.example/p/1", Likes: 10, Comments: 2},
		{URL: bean.URL, ChatterURL: "https://social.example/p/1", Likes: 15, Comments: 4},
		{URL: bean.URL, ChatterURL: "https://other.example/p/2", Likes: 5},
	}
	_, err = repos.Chatters.AddChatters(ctx, snapshots...)
	require.NoError(t, err)

	engine, err := NewEngine(repos.Chatters, repos.Beans)
	require.NoError(t, err)

	refreshed, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	agg, err := repos.Chatters.GetAggregate(ctx, bean.URL)
	require.NoError(t, err)
	assert.Equal(t, 20, agg.Likes)
	assert.Equal(t, 4, agg.Comments)
	assert.Equal(t, 2, agg.Shares)

	// All snapshots are fresh, so the deltas equal the totals and the trend
	// score lands on the bean.
	stored, err := repos.Beans.GetBean(ctx, bean.URL)
	require.NoError(t, err)
	assert.Equal(t, TrendScore(agg), stored.TrendScore)
	assert.Positive(t, stored.TrendScore)
}

func TestEngineRunBeanlessURL(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	// Engagement observed for a URL the warehouse never ingested: the
	// aggregate still materializes, only the trend writeback is skipped.
	snapshot := &core.Chatter{URL: "https://example.org/unknown",
		ChatterURL: "https://social.example/p/1", Likes: 3}
	_, err = repos.Chatters.AddChatters(ctx, snapshot)
	require.NoError(t, err)

	engine, err := NewEngine(repos.Chatters, repos.Beans)
	require.NoError(t, err)

	refreshed, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	agg, err := repos.Chatters.GetAggregate(ctx, "https://example.org/unknown")
	require.NoError(t, err)
	assert.Equal(t, 3, agg.Likes)
}

func TestEngineAggregateRecomputesExpired(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	snapshot := &core.Chatter{URL: "https://example.org/story",
		ChatterURL: "https://social.example/p/1", Likes: 9}
	_, err = repos.Chatters.AddChatters(ctx, snapshot)
	require.NoError(t, err)

	engine, err := NewEngine(repos.Chatters, repos.Beans, WithTTL(time.Second))
	require.NoError(t, err)

	// Nothing materialized yet: the read path computes on demand
	agg, err := engine.Aggregate(ctx, "https://example.org/story")
	require.NoError(t, err)
	assert.Equal(t, 9, agg.Likes)

	// After expiry the same call recomputes from raw history
	time.Sleep(1100 * time.Millisecond)
	agg, err = engine.Aggregate(ctx, "https://example.org/story")
	require.NoError(t, err)
	assert.Equal(t, 9, agg.Likes)
}

func TestNewEngineValidation(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = NewEngine(nil, repos.Beans)
	assert.ErrorIs(t, err, ErrChatterRepositoryRequired)

	_, err = NewEngine(repos.Chatters, nil)
	assert.ErrorIs(t, err, ErrBeanRepositoryRequired)
}
