package badger

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage"
)

// ChatterRepository implements storage.ChatterRepository for BadgerDB.
// Snapshots are append-only; each append consumes a sequence number so
// successive observations of the same post are kept side by side.
type ChatterRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ChatterRepository = (*ChatterRepository)(nil)

// NewChatterRepository creates a new ChatterRepository.
func NewChatterRepository(backend *Backend) (*ChatterRepository, error) {
	idSeq, err := backend.GetSequence(chatterIDSeq)
	if err != nil {
		return nil, err
	}

	return &ChatterRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the append sequence.
func (r *ChatterRepository) Close() error {
	return r.idSeq.Release()
}

// AddChatters appends engagement snapshots, never deduplicating.
func (r *ChatterRepository) AddChatters(ctx context.Context, chatters ...*core.Chatter) (int, error) {
	appended := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, chatter := range chatters {
			if err := core.ValidateChatter(chatter); err != nil {
				r.backend.logger.Warn("dropping invalid chatter row", "err", err)
				continue
			}
			if chatter.Collected.IsZero() {
				chatter.Collected = now
			}

			seq, err := r.idSeq.Next()
			if err != nil {
				return err
			}

			urlID := core.IDFromContent(chatter.URL)
			if err := tx.Set(makeChatterKey(urlID, seq), storage.MarshalChatter(chatter)); err != nil {
				return err
			}
			if err := tx.Set(makeChatterURLKey(urlID), []byte(chatter.URL)); err != nil {
				return err
			}
			appended++
		}
		return commitTx(tx)
	}, true)

	return appended, err
}

// ChattersByURL returns every snapshot for a bean URL in append order.
func (r *ChatterRepository) ChattersByURL(ctx context.Context, url string) ([]*core.Chatter, error) {
	var results []*core.Chatter
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChatterKey(core.IDFromContent(url))
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chatter *core.Chatter
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chatter, err = storage.UnmarshalChatter(val)
				return err
			}); err != nil {
				r.backend.logger.Warn("skipping malformed chatter row", "err", err)
				continue
			}
			results = append(results, chatter)
		}
		return nil
	}, false)

	return results, err
}

// ChatterURLs returns the distinct bean URLs with at least one snapshot.
func (r *ChatterRepository) ChatterURLs(ctx context.Context) ([]string, error) {
	var urls []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chatterURLPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := iter.Item().Value(func(val []byte) error {
				urls = append(urls, string(val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	sort.Strings(urls)
	return urls, nil
}

// PutAggregate stores a materialized aggregate under a TTL. BadgerDB expires
// the entry itself, which is what forces recomputation from raw history.
func (r *ChatterRepository) PutAggregate(ctx context.Context, agg *core.ChatterAggregate, ttl time.Duration) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeAggregateKey(core.IDFromContent(agg.URL))
		entry := badger.NewEntry(key, storage.MarshalAggregate(agg))
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return commitTx(tx)
	}, true)
}

// GetAggregate retrieves a materialized aggregate, or ErrNotFound once the
// TTL has expired it.
func (r *ChatterRepository) GetAggregate(ctx context.Context, url string) (*core.ChatterAggregate, error) {
	var result *core.ChatterAggregate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeAggregateKey(core.IDFromContent(url)))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalAggregate(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// DeleteStaleChatters removes snapshots collected before the cutoff. URLs
// left without any snapshot lose their distinct-URL marker too, so
// ChatterURLs stops reporting them.
func (r *ChatterRepository) DeleteStaleChatters(ctx context.Context, cutoff time.Time) (int, error) {
	var victims [][]byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chatterPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chatter *core.Chatter
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chatter, err = storage.UnmarshalChatter(val)
				return err
			}); err != nil {
				r.backend.logger.Warn("skipping malformed chatter row", "err", err)
				continue
			}
			if chatter.Collected.Before(cutoff) {
				victims = append(victims, iter.Item().KeyCopy(nil))
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	if len(victims) == 0 {
		return 0, nil
	}

	affected := make(map[core.ID]bool, len(victims))
	for _, key := range victims {
		affected[chatterKeyURLID(key)] = true
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range victims {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		// Drop the marker for any URL whose last snapshot just went. The
		// iterator sees this transaction's own deletes.
		for urlID := range affected {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = makePartialChatterKey(urlID)
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)
			iter.Rewind()
			remaining := iter.Valid()
			iter.Close()

			if !remaining {
				if err := tx.Delete(makeChatterURLKey(urlID)); err != nil {
					return err
				}
			}
		}
		return commitTx(tx)
	}, true)
	if err != nil {
		return 0, err
	}
	return len(victims), nil
}
