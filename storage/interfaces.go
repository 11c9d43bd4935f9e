package storage

import (
	"context"
	"time"

	"github.com/poiesic/beanvault/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close closes the repository and releases resources.
	Close() error
}

// BeanRepository provides operations for managing Beans.
type BeanRepository interface {
	Repository

	// StoreBeans persists a batch of beans. Beans whose URL already exists
	// are silently skipped (dedup-before-insert, never an error). Derived
	// word counts are computed at store time. Returns the count actually
	// inserted, which may be less than the input size.
	StoreBeans(ctx context.Context, beans ...*core.Bean) (int, error)

	// PatchBeans applies a partial merge to the beans identified by the
	// given URLs. Only the fields the patch carries are touched; all other
	// columns stay as stored. URLs without a stored bean are skipped.
	// Updated is bumped on every patched bean. Returns the count patched.
	PatchBeans(ctx context.Context, patch BeanPatch, urls ...string) (int, error)

	// GetBean retrieves a single bean by URL.
	// Returns ErrNotFound if no bean with that URL exists.
	GetBean(ctx context.Context, url string) (*core.Bean, error)

	// QueryBeans evaluates a Filter and returns the matching beans,
	// grouped, ordered, paginated and projected per the filter. An empty
	// result is not an error.
	QueryBeans(ctx context.Context, filter Filter) ([]*core.Bean, error)

	// BeansMissingEmbedding returns up to limit beans that have no
	// embedding yet, oldest first.
	BeansMissingEmbedding(ctx context.Context, limit int) ([]*core.Bean, error)

	// BeansMissingClassification returns up to limit beans that carry an
	// embedding but no category labels yet.
	BeansMissingClassification(ctx context.Context, limit int) ([]*core.Bean, error)

	// DistinctCategories returns the set of category labels assigned to
	// any stored bean.
	DistinctCategories(ctx context.Context) ([]string, error)

	// DistinctSources returns the set of sources across stored beans.
	DistinctSources(ctx context.Context) ([]string, error)

	// DeleteStale removes beans not updated since the cutoff, together
	// with their indexes, cluster edges and aggregates. Returns the count
	// deleted.
	DeleteStale(ctx context.Context, cutoff time.Time) (int, error)
}

// ChatterRepository provides operations for raw engagement snapshots and
// their materialized aggregates.
type ChatterRepository interface {
	Repository

	// AddChatters appends engagement snapshots. Snapshots are never
	// deduplicated: successive observations of the same post are expected.
	// Rows failing validation are dropped; the rest are stored. Returns
	// the count appended.
	AddChatters(ctx context.Context, chatters ...*core.Chatter) (int, error)

	// ChattersByURL returns every stored snapshot for a bean URL, in
	// append order.
	ChattersByURL(ctx context.Context, url string) ([]*core.Chatter, error)

	// ChatterURLs returns the distinct bean URLs that have at least one
	// snapshot.
	ChatterURLs(ctx context.Context) ([]string, error)

	// PutAggregate stores a materialized aggregate with an expiry. After
	// the TTL the row is gone and must be recomputed from raw history.
	PutAggregate(ctx context.Context, agg *core.ChatterAggregate, ttl time.Duration) error

	// GetAggregate retrieves the materialized aggregate for a URL.
	// Returns ErrNotFound when absent or expired.
	GetAggregate(ctx context.Context, url string) (*core.ChatterAggregate, error)

	// DeleteStaleChatters removes snapshots collected before the cutoff.
	// Returns the count deleted.
	DeleteStaleChatters(ctx context.Context, cutoff time.Time) (int, error)
}

// PublisherRepository provides operations for content sources.
type PublisherRepository interface {
	Repository

	// StorePublishers inserts publishers whose source is not yet known.
	// Existing sources are silently skipped. Returns the count inserted.
	StorePublishers(ctx context.Context, publishers ...*core.Publisher) (int, error)

	// MergePublisher merges the non-empty fields of the given record into
	// the stored row for the same source.
	// Returns ErrNotFound if the source is unknown.
	MergePublisher(ctx context.Context, publisher *core.Publisher) error

	// GetPublisher retrieves a publisher by source domain.
	// Returns ErrNotFound if the source is unknown.
	GetPublisher(ctx context.Context, source string) (*core.Publisher, error)
}

// ClusterRepository provides operations for cluster edges and the
// selection of beans still awaiting an edge computation.
type ClusterRepository interface {
	Repository

	// AddEdges records distance edges. Recording the same pair again
	// overwrites the stored distance.
	AddEdges(ctx context.Context, edges ...core.ClusterEdge) error

	// EdgesFrom returns every recorded edge originating at the given bean,
	// including its self-edge.
	EdgesFrom(ctx context.Context, id core.ID) ([]core.ClusterEdge, error)

	// NeighborCounts returns, for each given bean, the number of recorded
	// neighbors (out-degree, self included).
	NeighborCounts(ctx context.Context, ids ...core.ID) (map[core.ID]int, error)

	// BeansByID resolves bean IDs to their stored records. Unknown IDs are
	// absent from the result map, not an error.
	BeansByID(ctx context.Context, ids ...core.ID) (map[core.ID]*core.Bean, error)

	// UnprocessedBeans returns up to limit beans created since the given
	// time that carry an embedding but no self-edge yet, i.e. beans whose
	// pairwise comparison has not run.
	UnprocessedBeans(ctx context.Context, since time.Time, limit int) ([]*core.Bean, error)

	// ComparisonPool returns the recency-scoped pool of embedded beans the
	// batch is compared against.
	ComparisonPool(ctx context.Context, since time.Time) ([]*core.Bean, error)

	// UnassignedBeans returns beans that have a self-edge but no cluster
	// representative yet.
	UnassignedBeans(ctx context.Context, limit int) ([]*core.Bean, error)
}

// RefVectorRepository stores the two fixed reference-vector catalogs used
// as classification anchors.
type RefVectorRepository interface {
	Repository

	// SeedRefVectors inserts catalog anchors that are not yet present.
	// Existing labels are left untouched, so seeding is idempotent.
	// Returns the count inserted.
	SeedRefVectors(ctx context.Context, set core.RefSet, vectors []core.RefVector) (int, error)

	// GetRefVectors returns a catalog in seed order.
	GetRefVectors(ctx context.Context, set core.RefSet) ([]core.RefVector, error)
}
