package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage"
)

func storeFixtureBeans(t *testing.T, repos *TestRepositories, beans ...*core.Bean) {
	t.Helper()
	inserted, err := repos.Beans.StoreBeans(context.Background(), beans...)
	if err != nil {
		t.Fatalf("Failed to store beans: %v", err)
	}
	if inserted != len(beans) {
		t.Fatalf("Expected %d inserted, got %d", len(beans), inserted)
	}
}

func TestQueryLatestWindow(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	storeFixtureBeans(t, repos,
		&core.Bean{URL: "https://example.org/old", Kind: core.KindNews, Created: now.Add(-48 * time.Hour)},
		&core.Bean{URL: "https://example.org/mid", Kind: core.KindNews, Created: now.Add(-12 * time.Hour)},
		&core.Bean{URL: "https://example.org/new", Kind: core.KindNews, Created: now.Add(-time.Hour)},
		&core.Bean{URL: "https://social.example/p/1", Kind: core.KindPost, Created: now.Add(-time.Hour)},
	)

	results, err := repos.Beans.QueryBeans(ctx, storage.Filter{
		Kind:         core.KindNews,
		CreatedSince: now.Add(-24 * time.Hour),
		Ordering:     storage.OrderLatest,
	})
	if err != nil {
		t.Fatalf("Failed to query beans: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 beans inside the window, got %d", len(results))
	}
	if results[0].URL != "https://example.org/new" || results[1].URL != "https://example.org/mid" {
		t.Fatalf("Expected created-descending order, got %q then %q", results[0].URL, results[1].URL)
	}
}

func TestQueryTrendingTieBreak(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	// Stored in one batch so all three share the same Updated timestamp;
	// the trend score decides the order.
	storeFixtureBeans(t, repos,
		&core.Bean{URL: "https://example.org/quiet", Kind: core.KindNews, TrendScore: 1},
		&core.Bean{URL: "https://example.org/loud", Kind: core.KindNews, TrendScore: 50},
		&core.Bean{URL: "https://example.org/mid", Kind: core.KindNews, TrendScore: 10},
	)

	results, err := repos.Beans.QueryBeans(ctx, storage.Filter{Ordering: storage.OrderTrending})
	if err != nil {
		t.Fatalf("Failed to query beans: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 beans, got %d", len(results))
	}
	if results[0].URL != "https://example.org/loud" || results[2].URL != "https://example.org/quiet" {
		t.Fatalf("Expected trend-score tie break, got %q first and %q last", results[0].URL, results[2].URL)
	}
}

func TestQueryTrendingFollowsUpdated(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	storeFixtureBeans(t, repos,
		&core.Bean{URL: "https://example.org/a", Kind: core.KindNews},
		&core.Bean{URL: "https://example.org/b", Kind: core.KindNews},
	)

	time.Sleep(2 * time.Millisecond)

	// Patching bumps Updated and moves the bean up the trending order
	if _, err := repos.Beans.PatchBeans(ctx, storage.TrendPatch{TrendScore: 5}, "https://example.org/a"); err != nil {
		t.Fatalf("Failed to patch bean: %v", err)
	}

	results, err := repos.Beans.QueryBeans(ctx, storage.Filter{Ordering: storage.OrderTrending})
	if err != nil {
		t.Fatalf("Failed to query beans: %v", err)
	}
	if results[0].URL != "https://example.org/a" {
		t.Fatalf("Expected patched bean first, got %q", results[0].URL)
	}
}

func TestQuerySimilarityThreshold(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	storeFixtureBeans(t, repos,
		&core.Bean{URL: "https://example.org/close", Kind: core.KindNews,
			Embedding: core.NormalizeVector([]float32{1, 0.1, 0})},
		&core.Bean{URL: "https://example.org/far", Kind: core.KindNews,
			Embedding: core.NormalizeVector([]float32{0, 1, 0})},
		&core.Bean{URL: "https://example.org/unembedded", Kind: core.KindNews},
	)

	query := core.NormalizeVector([]float32{1, 0, 0})
	results, err := repos.Beans.QueryBeans(ctx, storage.Filter{
		Similarity: &storage.Similarity{Vector: query, MinScore: 0.8},
	})
	if err != nil {
		t.Fatalf("Failed to query beans: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 bean over the similarity floor, got %d", len(results))
	}
	if results[0].URL != "https://example.org/close" {
		t.Fatalf("Expected the close bean, got %q", results[0].URL)
	}
	if results[0].SearchScore < 0.8 {
		t.Fatalf("Expected SearchScore >= 0.8, got %f", results[0].SearchScore)
	}
}

func TestQuerySimilarityRequiresVector(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	_, err = repos.Beans.QueryBeans(context.Background(), storage.Filter{
		Similarity: &storage.Similarity{},
	})
	if err != storage.ErrInvalidQuery {
		t.Fatalf("Expected ErrInvalidQuery, got %v", err)
	}
}

func TestQueryGroupByCluster(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	rep := core.IDFromContent("https://example.org/a")

	storeFixtureBeans(t, repos,
		&core.Bean{URL: "https://example.org/a", Kind: core.KindNews, Created: now.Add(-time.Hour), ClusterID: rep},
		&core.Bean{URL: "https://example.org/b", Kind: core.KindNews, Created: now.Add(-2 * time.Hour), ClusterID: rep},
		&core.Bean{URL: "https://example.org/solo", Kind: core.KindNews, Created: now.Add(-3 * time.Hour)},
	)

	results, err := repos.Beans.QueryBeans(ctx, storage.Filter{
		Ordering:       storage.OrderLatest,
		GroupByCluster: true,
	})
	if err != nil {
		t.Fatalf("Failed to query beans: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected one representative per cluster, got %d rows", len(results))
	}
	if results[0].URL != "https://example.org/a" {
		t.Fatalf("Expected newest member to represent the cluster, got %q", results[0].URL)
	}
}

func TestQueryPagination(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	storeFixtureBeans(t, repos,
		&core.Bean{URL: "https://example.org/1", Kind: core.KindNews, Created: now.Add(-1 * time.Hour)},
		&core.Bean{URL: "https://example.org/2", Kind: core.KindNews, Created: now.Add(-2 * time.Hour)},
		&core.Bean{URL: "https://example.org/3", Kind: core.KindNews, Created: now.Add(-3 * time.Hour)},
		&core.Bean{URL: "https://example.org/4", Kind: core.KindNews, Created: now.Add(-4 * time.Hour)},
	)

	page, err := repos.Beans.QueryBeans(ctx, storage.Filter{Ordering: storage.OrderLatest, Offset: 1, Limit: 2})
	if err != nil {
		t.Fatalf("Failed to query beans: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("Expected page of 2, got %d", len(page))
	}
	if page[0].URL != "https://example.org/2" || page[1].URL != "https://example.org/3" {
		t.Fatalf("Expected page [2 3], got [%q %q]", page[0].URL, page[1].URL)
	}

	// Offset past the end is an empty page, not an error
	empty, err := repos.Beans.QueryBeans(ctx, storage.Filter{Ordering: storage.OrderTrending, Offset: 100})
	if err != nil {
		t.Fatalf("Failed to query beans: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected empty page, got %d rows", len(empty))
	}
}

func TestQueryProjection(t *testing.T) {
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer repos.Close()

	ctx := context.Background()

	storeFixtureBeans(t, repos, &core.Bean{
		URL:       "https://example.org/a",
		Kind:      core.KindNews,
		Title:     "Story",
		Content:   "Full body text",
		Embedding: []float32{0.1, 0.2},
	})

	results, err := repos.Beans.QueryBeans(ctx, storage.Filter{
		Ordering: storage.OrderLatest,
		Omit:     storage.OmitContent | storage.OmitEmbedding,
	})
	if err != nil {
		t.Fatalf("Failed to query beans: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 bean, got %d", len(results))
	}
	if results[0].Content != "" || results[0].Embedding != nil {
		t.Fatal("Expected omitted fields dropped from the projection")
	}
	if results[0].Title != "Story" {
		t.Fatalf("Expected kept fields intact, got title %q", results[0].Title)
	}

	// Projection never mutates the stored row
	stored, err := repos.Beans.GetBean(ctx, "https://example.org/a")
	if err != nil {
		t.Fatalf("Failed to get bean: %v", err)
	}
	if stored.Content == "" || len(stored.Embedding) == 0 {
		t.Fatal("Expected stored row to keep its heavy fields")
	}
}
