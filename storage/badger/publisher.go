package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage"
)

// PublisherRepository implements storage.PublisherRepository for BadgerDB.
type PublisherRepository struct {
	backend *Backend
}

var _ storage.PublisherRepository = (*PublisherRepository)(nil)

// NewPublisherRepository creates a new PublisherRepository.
func NewPublisherRepository(backend *Backend) (*PublisherRepository, error) {
	return &PublisherRepository{
		backend: backend,
	}, nil
}

// Close releases resources. PublisherRepository has no resources to release.
func (r *PublisherRepository) Close() error {
	return nil
}

// StorePublishers inserts publishers whose source is not yet known.
func (r *PublisherRepository) StorePublishers(ctx context.Context, publishers ...*core.Publisher) (int, error) {
	inserted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, publisher := range publishers {
			key := makePublisherKey(publisher.ID())

			// One row per source: an existing source is a silent no-op.
			_, err := tx.Get(key)
			if err == nil {
				continue
			}
			if err != badger.ErrKeyNotFound {
				return err
			}

			publisher.Updated = now
			if err := tx.Set(key, storage.MarshalPublisher(publisher)); err != nil {
				return err
			}
			inserted++
		}
		return commitTx(tx)
	}, true)

	return inserted, err
}

// MergePublisher merges the non-empty fields of the given record into the
// stored row for the same source.
func (r *PublisherRepository) MergePublisher(ctx context.Context, publisher *core.Publisher) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makePublisherKey(publisher.ID())
		item, err := tx.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var stored *core.Publisher
		if err := item.Value(func(val []byte) error {
			var unmarshalErr error
			stored, unmarshalErr = storage.UnmarshalPublisher(val)
			return unmarshalErr
		}); err != nil {
			return err
		}

		if publisher.BaseURL != "" {
			stored.BaseURL = publisher.BaseURL
		}
		if publisher.Title != "" {
			stored.Title = publisher.Title
		}
		if publisher.Summary != "" {
			stored.Summary = publisher.Summary
		}
		if publisher.Favicon != "" {
			stored.Favicon = publisher.Favicon
		}
		if publisher.RSSFeed != "" {
			stored.RSSFeed = publisher.RSSFeed
		}
		stored.Updated = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalPublisher(stored)); err != nil {
			return err
		}
		return commitTx(tx)
	}, true)
}

// GetPublisher retrieves a publisher by source domain.
func (r *PublisherRepository) GetPublisher(ctx context.Context, source string) (*core.Publisher, error) {
	var result *core.Publisher
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makePublisherKey(core.IDFromContent(source)))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalPublisher(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}
