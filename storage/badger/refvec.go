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


package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage"
)

// RefVectorRepository implements storage.RefVectorRepository for BadgerDB.
// Catalog anchors are keyed by seed ordinal so a prefix scan returns them in
// catalog order, which is what breaks classification ties.
type RefVectorRepository struct {
	backend *Backend
}

var _ storage.RefVectorRepository = (*RefVectorRepository)(nil)

// NewRefVectorRepository creates a new RefVectorRepository.
func NewRefVectorRepository(backend *Backend) *RefVectorRepository {
	return &RefVectorRepository{
		backend: backend,
	}
}

// Close releases resources. RefVectorRepository has no resources to release.
func (r *RefVectorRepository) Close() error {
	return nil
}

// SeedRefVectors inserts catalog anchors not yet present. Existing labels
// are left untouched; the catalogs are fixed once seeded.
func (r *RefVectorRepository) SeedRefVectors(ctx context.Context, set core.RefSet, vectors []core.RefVector) (int, error) {
	existing, err := r.GetRefVectors(ctx, set)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, rv := range existing {
		known[rv.Label] = true
	}

	inserted := 0
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		ordinal := uint32(len(existing))
		for _, rv := range vectors {
			if known[rv.Label] {
				continue
			}
			key := makeRefVectorKey(set, ordinal)
			if err := tx.Set(key, storage.MarshalRefVector(&rv)); err != nil {
				return err
			}
			known[rv.Label] = true
			ordinal++
			inserted++
		}
		return commitTx(tx)
	}, true)

	return inserted, err
}

// GetRefVectors returns a catalog in seed order.
func (r *RefVectorRepository) GetRefVectors(ctx context.Context, set core.RefSet) ([]core.RefVector, error) {
	var results []core.RefVector
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialRefVectorKey(set)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var rv *core.RefVector
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				rv, err = storage.UnmarshalRefVector(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, *rv)
		}
		return nil
	}, false)

	return results, err
}
