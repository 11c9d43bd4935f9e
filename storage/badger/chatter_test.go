package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage"
)

func TestAddChattersAppendOnly(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	// The same post observed twice is two rows, never a merge
	snapshots := []*core.Chatter{
		{URL: "https://example.org/a", ChatterURL: "https://social.example/p/1", Likes: 10},
		{URL: "https://example.org/a", ChatterURL: "https://social.example/p/1", Likes: 15},
	}
	appended, err := repos.Chatters.AddChatters(ctx, snapshots...)
	if err != nil {
		t.Fatalf("Failed to add chatters: %v", err)
	}
	if appended != 2 {
		t.Fatalf("Expected 2 appended, got %d", appended)
	}

	stored, err := repos.Chatters.ChattersByURL(ctx, "https://example.org/a")
	if err != nil {
		t.Fatalf("Failed to get chatters: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(stored))
	}
	if stored[0].Likes != 10 || stored[1].Likes != 15 {
		t.Fatalf("Expected append order preserved, got %d then %d", stored[0].Likes, stored[1].Likes)
	}
}

func TestAddChattersDropsInvalid(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	snapshots := []*core.Chatter{
		{URL: "https://example.org/a", ChatterURL: "https://social.example/p/1"},
		{URL: "", ChatterURL: "https://social.example/p/2"},
		{URL: "https://example.org/a", ChatterURL: ""},
	}
	appended, err := repos.Chatters.AddChatters(ctx, snapshots...)
	if err != nil {
		t.Fatalf("Failed to add chatters: %v", err)
	}
	if appended != 1 {
		t.Fatalf("Expected invalid rows dropped, got %d appended", appended)
	}
}

func TestChatterURLs(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	snapshots := []*core.Chatter{
		{URL: "https://example.org/b", ChatterURL: "https://social.example/p/1"},
		{URL: "https://example.org/a", ChatterURL: "https://social.example/p/2"},
		{URL: "https://example.org/a", ChatterURL: "https://social.example/p/3"},
	}
	if _, err := repos.Chatters.AddChatters(ctx, snapshots...); err != nil {
		t.Fatalf("Failed to add chatters: %v", err)
	}

	urls, err := repos.Chatters.ChatterURLs(ctx)
	if err != nil {
		t.Fatalf("Failed to get chatter URLs: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("Expected 2 distinct URLs, got %d", len(urls))
	}
	if urls[0] != "https://example.org/a" || urls[1] != "https://example.org/b" {
		t.Fatalf("Expected sorted distinct URLs, got %v", urls)
	}
}

func TestAggregateTTL(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	agg := &core.ChatterAggregate{
		URL:       "https://example.org/a",
		Likes:     15,
		Shares:    2,
		Refreshed: time.Now().UTC(),
	}
	if err := repos.Chatters.PutAggregate(ctx, agg, time.Second); err != nil {
		t.Fatalf("Failed to put aggregate: %v", err)
	}

	got, err := repos.Chatters.GetAggregate(ctx, agg.URL)
	if err != nil {
		t.Fatalf("Failed to get aggregate: %v", err)
	}
	if got.Likes != 15 || got.Shares != 2 {
		t.Fatalf("Expected stored aggregate back, got likes=%d shares=%d", got.Likes, got.Shares)
	}

	// After the TTL the row is gone and must be recomputed
	time.Sleep(1100 * time.Millisecond)
	if _, err := repos.Chatters.GetAggregate(ctx, agg.URL); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after expiry, got %v", err)
	}
}

func TestGetAggregateNotFound(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	_, err = repos.Chatters.GetAggregate(context.Background(), "https://example.org/missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteStaleChatters(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	snapshots := []*core.Chatter{
		{URL: "https://example.org/a", ChatterURL: "https://social.example/p/1", Collected: now.Add(-48 * time.Hour)},
		{URL: "https://example.org/a", ChatterURL: "https://social.example/p/2", Collected: now.Add(-time.Hour)},
	}
	if _, err := repos.Chatters.AddChatters(ctx, snapshots...); err != nil {
		t.Fatalf("Failed to add chatters: %v", err)
	}

	deleted, err := repos.Chatters.DeleteStaleChatters(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Failed to delete stale chatters: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("Expected 1 deleted, got %d", deleted)
	}

	remaining, err := repos.Chatters.ChattersByURL(ctx, "https://example.org/a")
	if err != nil {
		t.Fatalf("Failed to get chatters: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ChatterURL != "https://social.example/p/2" {
		t.Fatalf("Expected only the fresh snapshot, got %d rows", len(remaining))
	}
}

func TestDeleteStaleChattersPrunesURLMarkers(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	// Every one of /gone's snapshots is stale; /kept has a fresh one too
	snapshots := []*core.Chatter{
		{URL: "https://example.org/gone", ChatterURL: "https://social.example/p/1", Collected: now.Add(-48 * time.Hour)},
		{URL: "https://example.org/gone", ChatterURL: "https://social.example/p/2", Collected: now.Add(-30 * time.Hour)},
		{URL: "https://example.org/kept", ChatterURL: "https://social.example/p/3", Collected: now.Add(-48 * time.Hour)},
		{URL: "https://example.org/kept", ChatterURL: "https://social.example/p/4", Collected: now.Add(-time.Hour)},
	}
	if _, err := repos.Chatters.AddChatters(ctx, snapshots...); err != nil {
		t.Fatalf("Failed to add chatters: %v", err)
	}

	deleted, err := repos.Chatters.DeleteStaleChatters(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Failed to delete stale chatters: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("Expected 3 deleted, got %d", deleted)
	}

	urls, err := repos.Chatters.ChatterURLs(ctx)
	if err != nil {
		t.Fatalf("Failed to list chatter URLs: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.org/kept" {
		t.Fatalf("Expected only the kept URL, got %v", urls)
	}
}
