package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage"
)

// ClusterRepository implements storage.ClusterRepository for BadgerDB.
//
// Edges are keyed (from, to); a bean's self-edge doubles as the marker that
// its pairwise comparison has run, which is the predicate the clustering
// loop converges on.
type ClusterRepository struct {
	backend  *Backend
	beanRepo *BeanRepository
}

var _ storage.ClusterRepository = (*ClusterRepository)(nil)

// NewClusterRepository creates a new ClusterRepository.
func NewClusterRepository(backend *Backend, beanRepo *BeanRepository) (*ClusterRepository, error) {
	return &ClusterRepository{
		backend:  backend,
		beanRepo: beanRepo,
	}, nil
}

// Close releases resources. ClusterRepository has no resources to release.
func (r *ClusterRepository) Close() error {
	return nil
}

// AddEdges records distance edges, overwriting existing pairs.
func (r *ClusterRepository) AddEdges(ctx context.Context, edges ...core.ClusterEdge) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, edge := range edges {
			key := makeEdgeKey(edge.BeanID, edge.NeighborID)
			if err := tx.Set(key, storage.MarshalDistance(edge.Distance)); err != nil {
				return err
			}
		}
		return commitTx(tx)
	}, true)
}

// EdgesFrom returns every recorded edge originating at the given bean.
func (r *ClusterRepository) EdgesFrom(ctx context.Context, id core.ID) ([]core.ClusterEdge, error) {
	var results []core.ClusterEdge
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialEdgeKey(id)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			from, to := edgeKeyIDs(iter.Item().Key())
			var distance float64
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				distance, err = storage.UnmarshalDistance(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, core.ClusterEdge{BeanID: from, NeighborID: to, Distance: distance})
		}
		return nil
	}, false)

	return results, err
}

// NeighborCounts returns the out-degree per given bean, self included.
func (r *ClusterRepository) NeighborCounts(ctx context.Context, ids ...core.ID) (map[core.ID]int, error) {
	counts := make(map[core.ID]int, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = makePartialEdgeKey(id)
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)

			count := 0
			for iter.Rewind(); iter.Valid(); iter.Next() {
				count++
			}
			iter.Close()
			counts[id] = count
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// UnprocessedBeans returns beans in the recency scope that carry an
// embedding but no self-edge.
func (r *ClusterRepository) UnprocessedBeans(ctx context.Context, since time.Time, limit int) ([]*core.Bean, error) {
	var results []*core.Bean
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scanScope(tx, since, func(bean *core.Bean) bool {
			selfKey := makeEdgeKey(bean.ID(), bean.ID())
			if _, err := tx.Get(selfKey); err == badger.ErrKeyNotFound {
				results = append(results, bean)
			}
			return limit <= 0 || len(results) < limit
		})
	}, false)
	return results, err
}

// ComparisonPool returns every embedded bean in the recency scope.
func (r *ClusterRepository) ComparisonPool(ctx context.Context, since time.Time) ([]*core.Bean, error) {
	var results []*core.Bean
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scanScope(tx, since, func(bean *core.Bean) bool {
			results = append(results, bean)
			return true
		})
	}, false)
	return results, err
}

// BeansByID resolves bean IDs to their stored records. Unknown IDs are
// simply absent from the result map.
func (r *ClusterRepository) BeansByID(ctx context.Context, ids ...core.ID) (map[core.ID]*core.Bean, error) {
	results := make(map[core.ID]*core.Bean, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			bean, err := r.beanRepo.readBean(tx, makeBeanKey(id))
			if err != nil {
				r.backend.logger.Warn("skipping malformed bean row", "id", id, "err", err)
				continue
			}
			if bean != nil {
				results[id] = bean
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// UnassignedBeans returns beans with a self-edge but no representative yet.
func (r *ClusterRepository) UnassignedBeans(ctx context.Context, limit int) ([]*core.Bean, error) {
	var results []*core.Bean
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.scanScope(tx, time.Time{}, func(bean *core.Bean) bool {
			if bean.ClusterID == 0 {
				selfKey := makeEdgeKey(bean.ID(), bean.ID())
				if _, err := tx.Get(selfKey); err == nil {
					results = append(results, bean)
				}
			}
			return limit <= 0 || len(results) < limit
		})
	}, false)
	return results, err
}

// scanScope iterates embedded beans created at or after since, in created
// order, calling fn until it returns false.
func (r *ClusterRepository) scanScope(tx *badger.Txn, since time.Time, fn func(*core.Bean) bool) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(beanCreatedPrefix + ":")
	iter := tx.NewIterator(opts)
	defer iter.Close()

	startKey := opts.Prefix
	if !since.IsZero() {
		startKey = makePartialTimeIndexKey(beanCreatedPrefix, since)
	}

	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			r.backend.logger.Warn("skipping malformed index row", "err", err)
			continue
		}

		bean, err := r.beanRepo.readBean(tx, makeBeanKey(id))
		if err != nil {
			r.backend.logger.Warn("skipping malformed bean row", "id", id, "err", err)
			continue
		}
		if bean == nil || len(bean.Embedding) == 0 {
			// A bean that never acquired an embedding stays out of the
			// comparison pool; that is not an error.
			continue
		}
		if !fn(bean) {
			break
		}
	}
	return nil
}
