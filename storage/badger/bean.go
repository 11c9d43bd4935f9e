package badger

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage"
)

// BeanRepository implements storage.BeanRepository for BadgerDB.
type BeanRepository struct {
	backend *Backend
}

var _ storage.BeanRepository = (*BeanRepository)(nil)

// NewBeanRepository creates a new BeanRepository.
func NewBeanRepository(backend *Backend) (*BeanRepository, error) {
	return &BeanRepository{
		backend: backend,
	}, nil
}

// Close releases resources. BeanRepository has no resources to release.
func (r *BeanRepository) Close() error {
	return nil
}

// StoreBeans persists a batch of beans, skipping URLs that already exist.
func (r *BeanRepository) StoreBeans(ctx context.Context, beans ...*core.Bean) (int, error) {
	inserted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, bean := range beans {
			key := makeBeanKey(bean.ID())

			// Dedup before insert: an already-present URL is a no-op,
			// core fields are never overwritten by re-ingestion.
			_, err := tx.Get(key)
			if err == nil {
				continue
			}
			if err != badger.ErrKeyNotFound {
				return err
			}

			if bean.Collected.IsZero() {
				bean.Collected = now
			}
			if bean.Created.IsZero() {
				bean.Created = bean.Collected
			}
			bean.Updated = now
			bean.DeriveCounts()

			if err := tx.Set(key, storage.MarshalBean(bean)); err != nil {
				return err
			}
			if err := tx.Set(makeBeanCreatedKey(bean.Created, bean.ID()), storage.MarshalID(bean.ID())); err != nil {
				return err
			}
			if err := tx.Set(makeBeanUpdatedKey(bean.Updated, bean.ID()), storage.MarshalID(bean.ID())); err != nil {
				return err
			}
			inserted++
		}
		return commitTx(tx)
	}, true)

	return inserted, err
}

// PatchBeans applies a partial merge to the beans identified by the URLs.
func (r *BeanRepository) PatchBeans(ctx context.Context, patch storage.BeanPatch, urls ...string) (int, error) {
	patched := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, url := range urls {
			id := core.IDFromContent(url)
			bean, err := r.readBean(tx, makeBeanKey(id))
			if err != nil {
				return err
			}
			if bean == nil {
				continue
			}

			// The updated index follows the bean through patches.
			oldUpdatedKey := makeBeanUpdatedKey(bean.Updated, id)
			if err := tx.Delete(oldUpdatedKey); err != nil {
				return err
			}

			patch.Apply(bean)
			bean.Updated = now

			if err := tx.Set(makeBeanKey(id), storage.MarshalBean(bean)); err != nil {
				return err
			}
			if err := tx.Set(makeBeanUpdatedKey(bean.Updated, id), storage.MarshalID(id)); err != nil {
				return err
			}
			patched++
		}
		return commitTx(tx)
	}, true)

	return patched, err
}

// GetBean retrieves a single bean by URL.
func (r *BeanRepository) GetBean(ctx context.Context, url string) (*core.Bean, error) {
	var result *core.Bean
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeBeanKey(core.IDFromContent(url)))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalBean(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// BeansMissingEmbedding returns up to limit beans without an embedding,
// oldest first.
func (r *BeanRepository) BeansMissingEmbedding(ctx context.Context, limit int) ([]*core.Bean, error) {
	var results []*core.Bean
	err := r.scanBeans(func(bean *core.Bean) bool {
		if len(bean.Embedding) == 0 {
			results = append(results, bean)
		}
		return limit <= 0 || len(results) < limit
	})
	return results, err
}

// BeansMissingClassification returns up to limit embedded beans without
// category labels.
func (r *BeanRepository) BeansMissingClassification(ctx context.Context, limit int) ([]*core.Bean, error) {
	var results []*core.Bean
	err := r.scanBeans(func(bean *core.Bean) bool {
		if len(bean.Embedding) > 0 && len(bean.Categories) == 0 {
			results = append(results, bean)
		}
		return limit <= 0 || len(results) < limit
	})
	return results, err
}

// DistinctCategories returns the sorted set of assigned category labels.
func (r *BeanRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	set := make(map[string]bool)
	err := r.scanBeans(func(bean *core.Bean) bool {
		for _, c := range bean.Categories {
			set[c] = true
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return sortedKeys(set), nil
}

// DistinctSources returns the sorted set of sources across stored beans.
func (r *BeanRepository) DistinctSources(ctx context.Context) ([]string, error) {
	set := make(map[string]bool)
	err := r.scanBeans(func(bean *core.Bean) bool {
		if bean.Source != "" {
			set[bean.Source] = true
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return sortedKeys(set), nil
}

// DeleteStale removes beans not updated since the cutoff, together with
// their indexes, cluster edges and materialized aggregates.
func (r *BeanRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int, error) {
	// Collect victims under a read transaction first; the deletes then run
	// in their own write transaction.
	var victims []*core.Bean
	if err := r.scanBeans(func(bean *core.Bean) bool {
		if bean.Updated.Before(cutoff) {
			victims = append(victims, bean)
		}
		return true
	}); err != nil {
		return 0, err
	}
	if len(victims) == 0 {
		return 0, nil
	}

	victimIDs := make(map[core.ID]bool, len(victims))
	for _, bean := range victims {
		victimIDs[bean.ID()] = true
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, bean := range victims {
			id := bean.ID()
			if err := tx.Delete(makeBeanKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeBeanCreatedKey(bean.Created, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeBeanUpdatedKey(bean.Updated, id)); err != nil {
				return err
			}
			if err := tx.Delete(makeAggregateKey(id)); err != nil {
				return err
			}
		}

		// Sweep edges touching any victim, in either direction.
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(edgePrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var edgeKeys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().KeyCopy(nil)
			from, to := edgeKeyIDs(key)
			if victimIDs[from] || victimIDs[to] {
				edgeKeys = append(edgeKeys, key)
			}
		}
		iter.Close()
		for _, key := range edgeKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return commitTx(tx)
	}, true)

	if err != nil {
		return 0, err
	}
	return len(victims), nil
}

// Helper methods

// readBean reads a bean from the transaction.
// Returns nil, nil when the key is absent.
func (r *BeanRepository) readBean(tx *badger.Txn, key []byte) (*core.Bean, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var bean *core.Bean
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		bean, unmarshalErr = storage.UnmarshalBean(val)
		return unmarshalErr
	})
	return bean, err
}

// scanBeans iterates every stored bean in created order, calling fn until it
// returns false. Rows that fail to deserialize are logged and skipped, the
// scan continues.
func (r *BeanRepository) scanBeans(fn func(*core.Bean) bool) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(beanCreatedPrefix + ":")
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
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
			if bean == nil {
				continue
			}
			if !fn(bean) {
				break
			}
		}
		return nil
	}, false)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
