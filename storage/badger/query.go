package badger

import (
	"context"
	"encoding/binary"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage"
)

// QueryBeans evaluates a Filter against the stored beans.
//
// The latest view streams the created index in reverse and stops early once
// the page is full. Trending and aggregated views need a secondary ranking
// key, so they collect the bounded candidate set and sort in memory.
// Similarity queries scan embedded beans and score them against the query
// vector.
func (r *BeanRepository) QueryBeans(ctx context.Context, filter storage.Filter) ([]*core.Bean, error) {
	switch filter.EffectiveOrdering() {
	case storage.OrderSimilarity:
		return r.queryBySimilarity(ctx, filter)
	case storage.OrderLatest:
		return r.queryLatest(ctx, filter)
	default:
		return r.queryRanked(ctx, filter)
	}
}

// queryLatest walks the created index newest-first. Because the index order
// is already the result order, grouping and pagination run while streaming
// and the scan stops as soon as the page is full.
func (r *BeanRepository) queryLatest(ctx context.Context, filter storage.Filter) ([]*core.Bean, error) {
	var results []*core.Bean

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(beanCreatedPrefix + ":")
		startKey := makePartialTimeIndexKey(beanCreatedPrefix,
			time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))

		seen := make(map[core.ID]bool)
		skipped := 0
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix)+16 || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			// The index key carries the created timestamp, so a time
			// threshold ends the scan instead of filtering row by row.
			created := time.UnixMicro(int64(binary.BigEndian.Uint64(key[len(prefix):])))
			if !filter.CreatedSince.IsZero() && created.Before(filter.CreatedSince) {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				r.backend.logger.Warn("skipping malformed index row", "err", err)
				continue
			}

			bean, err := r.readBean(tx, makeBeanKey(id))
			if err != nil {
				r.backend.logger.Warn("skipping malformed bean row", "id", id, "err", err)
				continue
			}
			if bean == nil || !filter.Matches(bean) {
				continue
			}

			if filter.GroupByCluster {
				rep := clusterKey(bean)
				if seen[rep] {
					continue
				}
				seen[rep] = true
			}

			if skipped < filter.Offset {
				skipped++
				continue
			}

			results = append(results, bean)
			if filter.Limit > 0 && len(results) >= filter.Limit {
				break
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return projectBeans(results, filter.Omit), nil
}

// queryRanked collects the candidate set and sorts by the trending or
// aggregated ranking key.
func (r *BeanRepository) queryRanked(ctx context.Context, filter storage.Filter) ([]*core.Bean, error) {
	var candidates []*core.Bean
	err := r.scanBeans(func(bean *core.Bean) bool {
		if filter.Matches(bean) {
			candidates = append(candidates, bean)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	aggregated := filter.EffectiveOrdering() == storage.OrderAggregated
	slices.SortStableFunc(candidates, func(a, b *core.Bean) int {
		ka, kb := a.Updated, b.Updated
		if aggregated {
			ka = laterOf(a.Created, a.Updated)
			kb = laterOf(b.Created, b.Updated)
		}
		if !ka.Equal(kb) {
			if ka.After(kb) {
				return -1
			}
			return 1
		}
		// Equal rank timestamps: higher trend score first.
		if a.TrendScore != b.TrendScore {
			if a.TrendScore > b.TrendScore {
				return -1
			}
			return 1
		}
		return 0
	})

	results := paginate(groupFirst(candidates, filter.GroupByCluster), filter.Offset, filter.Limit)
	return projectBeans(results, filter.Omit), nil
}

// queryBySimilarity scans embedded beans, scores them against the query
// vector and orders by distance ascending.
func (r *BeanRepository) queryBySimilarity(ctx context.Context, filter storage.Filter) ([]*core.Bean, error) {
	sim := filter.Similarity
	if sim == nil || len(sim.Vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}

	var candidates []*core.Bean
	err := r.scanBeans(func(bean *core.Bean) bool {
		if len(bean.Embedding) == 0 {
			return true
		}

		score := core.DotProduct(sim.Vector, bean.Embedding)
		distance := 1 - float64(score)
		if sim.MinScore > 0 && score < sim.MinScore {
			return true
		}
		if sim.MaxDistance > 0 && distance > sim.MaxDistance {
			return true
		}
		if !filter.Matches(bean) {
			return true
		}

		bean.SearchScore = score
		candidates = append(candidates, bean)
		return true
	})
	if err != nil {
		return nil, err
	}

	// Distance ascending == similarity descending.
	slices.SortStableFunc(candidates, func(a, b *core.Bean) int {
		if a.SearchScore > b.SearchScore {
			return -1
		}
		if a.SearchScore < b.SearchScore {
			return 1
		}
		return 0
	})

	results := paginate(groupFirst(candidates, filter.GroupByCluster), filter.Offset, filter.Limit)
	return projectBeans(results, filter.Omit), nil
}

// clusterKey returns the grouping key for a bean: its representative, or its
// own identity while unassigned.
func clusterKey(bean *core.Bean) core.ID {
	if bean.ClusterID != 0 {
		return bean.ClusterID
	}
	return bean.ID()
}

// groupFirst keeps the first bean per cluster representative in sort order.
func groupFirst(beans []*core.Bean, enabled bool) []*core.Bean {
	if !enabled {
		return beans
	}
	seen := make(map[core.ID]bool, len(beans))
	kept := beans[:0]
	for _, bean := range beans {
		rep := clusterKey(bean)
		if seen[rep] {
			continue
		}
		seen[rep] = true
		kept = append(kept, bean)
	}
	return kept
}

func paginate(beans []*core.Bean, offset, limit int) []*core.Bean {
	if offset >= len(beans) {
		return nil
	}
	beans = beans[offset:]
	if limit > 0 && len(beans) > limit {
		beans = beans[:limit]
	}
	return beans
}

// projectBeans drops omitted heavy fields. The beans are fresh copies from
// deserialization, so in-place mutation is safe.
func projectBeans(beans []*core.Bean, omit storage.FieldMask) []*core.Bean {
	if omit == 0 {
		return beans
	}
	for _, bean := range beans {
		if omit&storage.OmitContent != 0 {
			bean.Content = ""
		}
		if omit&storage.OmitEmbedding != 0 {
			bean.Embedding = nil
		}
	}
	return beans
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
