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


package beanvault

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/beanvault/ai"
	"github.com/poiesic/beanvault/ai/openai"
	"github.com/poiesic/beanvault/chatter"
	"github.com/poiesic/beanvault/classify"
	"github.com/poiesic/beanvault/cluster"
	"github.com/poiesic/beanvault/ingest"
	"github.com/poiesic/beanvault/maintain"
	"github.com/poiesic/beanvault/storage"
	"github.com/poiesic/beanvault/storage/badger"
	"github.com/poiesic/beanvault/views"
)

const defaultRetention = 90 * 24 * time.Hour

// Warehouse is the explicit engine handle: it owns the storage backend, the
// repositories and the AI provider, and constructs the ingestion pipeline,
// maintenance engines and read views on top of them. There is no global
// connection state; callers hold a Warehouse and pass it where needed.
type Warehouse struct {
	backend       *badger.Backend
	beanRepo      storage.BeanRepository
	chatterRepo   storage.ChatterRepository
	publisherRepo storage.PublisherRepository
	clusterRepo   storage.ClusterRepository
	refVectorRepo storage.RefVectorRepository
	provider      ai.AIProvider
	retention     time.Duration
	logger        *slog.Logger

	// One clustering flight per warehouse: every engine handed out by
	// NewClusterEngine shares this lock.
	clusterRunMu sync.Mutex
}

// WarehouseOption configures a Warehouse.
type WarehouseOption func(*warehouseOptions)

type warehouseOptions struct {
	aiConfig  *ai.Config
	retention time.Duration
}

// WithAIConfig overrides the AI provider configuration.
func WithAIConfig(config *ai.Config) WarehouseOption {
	return func(o *warehouseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithRetention sets how long beans and chatters are kept before the
// retention sweep removes them. Default is 90 days.
func WithRetention(retention time.Duration) WarehouseOption {
	return func(o *warehouseOptions) {
		if retention > 0 {
			o.retention = retention
		}
	}
}

// Open opens the warehouse at the given path, creating it if absent.
func Open(filePath string, opts ...WarehouseOption) (*Warehouse, error) {
	options := &warehouseOptions{
		aiConfig:  ai.DefaultConfig(),
		retention: defaultRetention,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	beanRepo, err := badger.NewBeanRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chatterRepo, err := badger.NewChatterRepository(backend)
	if err != nil {
		beanRepo.Close()
		backend.Close()
		return nil, err
	}

	publisherRepo, err := badger.NewPublisherRepository(backend)
	if err != nil {
		chatterRepo.Close()
		beanRepo.Close()
		backend.Close()
		return nil, err
	}

	clusterRepo, err := badger.NewClusterRepository(backend, beanRepo)
	if err != nil {
		publisherRepo.Close()
		chatterRepo.Close()
		beanRepo.Close()
		backend.Close()
		return nil, err
	}

	refVectorRepo := badger.NewRefVectorRepository(backend)

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		clusterRepo.Close()
		publisherRepo.Close()
		chatterRepo.Close()
		beanRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Warehouse{
		backend:       backend,
		beanRepo:      beanRepo,
		chatterRepo:   chatterRepo,
		publisherRepo: publisherRepo,
		clusterRepo:   clusterRepo,
		refVectorRepo: refVectorRepo,
		provider:      provider,
		retention:     options.retention,
		logger:        slog.Default(),
	}, nil
}

// Close closes the provider, the repositories and the backing store.
func (w *Warehouse) Close() error {
	if err := w.provider.Close(); err != nil {
		w.logger.Error("error closing AI provider", "err", err)
	}

	for _, repo := range []storage.Repository{
		w.refVectorRepo, w.clusterRepo, w.publisherRepo, w.chatterRepo, w.beanRepo,
	} {
		if err := repo.Close(); err != nil {
			w.logger.Error("error closing repository", "err", err)
			return err
		}
	}

	if err := w.backend.Close(); err != nil {
		w.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (w *Warehouse) BeanRepository() storage.BeanRepository {
	return w.beanRepo
}

func (w *Warehouse) ChatterRepository() storage.ChatterRepository {
	return w.chatterRepo
}

func (w *Warehouse) PublisherRepository() storage.PublisherRepository {
	return w.publisherRepo
}

func (w *Warehouse) ClusterRepository() storage.ClusterRepository {
	return w.clusterRepo
}

func (w *Warehouse) RefVectorRepository() storage.RefVectorRepository {
	return w.refVectorRepo
}

// SeedCatalogs embeds and seeds the classification anchor catalogs.
// Idempotent; call once after opening a fresh warehouse.
func (w *Warehouse) SeedCatalogs(ctx context.Context) (int, error) {
	return classify.SeedCatalogs(ctx, w.refVectorRepo, w.provider.Embedder())
}

func (w *Warehouse) NewIngestPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(w.beanRepo, w.chatterRepo, w.publisherRepo, w.provider, opts...)
}

func (w *Warehouse) NewClassifyEngine(opts ...classify.EngineOption) (*classify.Engine, error) {
	return classify.NewEngine(w.beanRepo, w.refVectorRepo, opts...)
}

func (w *Warehouse) NewClusterEngine(opts ...cluster.EngineOption) (*cluster.Engine, error) {
	opts = append([]cluster.EngineOption{cluster.WithRunLock(&w.clusterRunMu)}, opts...)
	return cluster.NewEngine(w.beanRepo, w.clusterRepo, opts...)
}

func (w *Warehouse) NewChatterEngine(opts ...chatter.EngineOption) (*chatter.Engine, error) {
	return chatter.NewEngine(w.chatterRepo, w.beanRepo, opts...)
}

func (w *Warehouse) NewViews(opts ...views.Option) (*views.Views, error) {
	return views.NewViews(w.beanRepo, w.provider, opts...)
}

// NewSweeper creates the retention sweeper wired to this warehouse's
// repositories and compactor.
func (w *Warehouse) NewSweeper() *maintain.Sweeper {
	return maintain.NewSweeper(w.beanRepo, w.chatterRepo, w.backend, w.retention, w.logger)
}

// Refresh runs one full maintenance cycle: classification, clustering and
// chatter aggregation concurrently on a small pool. The three passes write
// disjoint derived state; clustering single-flights across the whole
// warehouse, so overlapping Refresh calls run one clustering pass only.
func (w *Warehouse) Refresh(ctx context.Context) error {
	refresher, err := maintain.NewRefresher(3, w.logger)
	if err != nil {
		return err
	}
	defer refresher.Release()

	classifier, err := w.NewClassifyEngine()
	if err != nil {
		return err
	}
	clusterer, err := w.NewClusterEngine()
	if err != nil {
		return err
	}
	aggregator, err := w.NewChatterEngine()
	if err != nil {
		return err
	}

	return refresher.RunAll(ctx,
		maintain.Task{Name: "classify", Run: func(ctx context.Context) error {
			_, err := classifier.Run(ctx)
			return err
		}},
		maintain.Task{Name: "cluster", Run: func(ctx context.Context) error {
			_, err := clusterer.Run(ctx)
			if errors.Is(err, cluster.ErrAlreadyRunning) {
				// Another refresh already owns the clustering flight.
				return nil
			}
			return err
		}},
		maintain.Task{Name: "chatter", Run: func(ctx context.Context) error {
			_, err := aggregator.Run(ctx)
			return err
		}},
	)
}

// Compact runs the store's compaction discipline.
func (w *Warehouse) Compact(ctx context.Context) error {
	return w.backend.RunCompaction(ctx)
}
