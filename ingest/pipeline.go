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


package ingest

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/beanvault/ai"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/maintain"
	"github.com/poiesic/beanvault/storage"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 50 * time.Millisecond
)

// BeanEmbedding is a precomputed embedding offered by a collector.
type BeanEmbedding struct {
	URL       string
	Embedding []float32
}

// BeanGist is a synthesized digest offered by a collector, optionally with
// extracted entities and regions.
type BeanGist struct {
	URL      string
	Gist     string
	Entities []string
	Regions  []string
}

// Pipeline orchestrates ingestion: validation, idempotent persistence and
// asynchronous embedding enrichment of newly stored beans.
type Pipeline struct {
	beans      storage.BeanRepository
	chatters   storage.ChatterRepository
	publishers storage.PublisherRepository
	embedPool  *ants.Pool
	embedProc  *embeddingProcessor
	vectorDim  int

	// Enrichment writebacks race with the maintenance engines, so they
	// carry the same transient-conflict retry policy.
	maxAttempts int
	baseDelay   time.Duration

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent enrichment.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embedPool != nil {
			p.embedPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embedPool = pool
		return nil
	}
}

// WithVectorDim sets the expected embedding dimensionality.
// Default is 384.
func WithVectorDim(dim int) Option {
	return func(p *Pipeline) error {
		if dim < 1 {
			return core.ErrDimensionMismatch
		}
		p.vectorDim = dim
		return nil
	}
}

// WithRetry sets the writeback retry policy for transient conflicts.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return maintain.ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	beans storage.BeanRepository,
	chatters storage.ChatterRepository,
	publishers storage.PublisherRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if beans == nil {
		return nil, ErrBeanRepositoryRequired
	}
	if chatters == nil {
		return nil, ErrChatterRepositoryRequired
	}
	if publishers == nil {
		return nil, ErrPublisherRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embedPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		beans:       beans,
		chatters:    chatters,
		publishers:  publishers,
		embedPool:   embedPool,
		vectorDim:   384,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	embedProc, err := newEmbeddingProcessor(beans, provider.Embedder(), p.vectorDim, p.maxAttempts, p.baseDelay, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embedProc = embedProc

	return p, nil
}

// IngestBeans validates and stores a batch of beans, then submits the new
// rows for asynchronous embedding. Invalid rows are dropped with a warning;
// duplicates are silently skipped by the store. Embedding errors are logged
// but never fail the ingestion. Returns the count actually inserted.
func (p *Pipeline) IngestBeans(ctx context.Context, beans ...*core.Bean) (int, error) {
	valid := make([]*core.Bean, 0, len(beans))
	for _, bean := range beans {
		if err := core.ValidateBean(bean); err != nil {
			p.logger.Warn("dropping invalid bean", "url", bean.URL, "err", err)
			continue
		}
		valid = append(valid, bean)
	}
	if len(valid) == 0 {
		return 0, nil
	}

	inserted, err := p.beans.StoreBeans(ctx, valid...)
	if err != nil {
		return 0, err
	}
	if inserted == 0 {
		return 0, nil
	}

	urls := make([]string, len(valid))
	for i, bean := range valid {
		urls[i] = bean.URL
	}

	p.embedPool.Submit(func() {
		if _, err := p.embedProc.process(context.Background(), urls...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
		}
	})

	return inserted, nil
}

// IngestChatters appends engagement snapshots. Rows failing validation are
// dropped by the repository. Returns the count appended.
func (p *Pipeline) IngestChatters(ctx context.Context, chatters ...*core.Chatter) (int, error) {
	return p.chatters.AddChatters(ctx, chatters...)
}

// IngestPublishers validates and stores publishers. Known sources are
// silently skipped. Returns the count inserted.
func (p *Pipeline) IngestPublishers(ctx context.Context, publishers ...*core.Publisher) (int, error) {
	valid := make([]*core.Publisher, 0, len(publishers))
	for _, publisher := range publishers {
		if err := core.ValidatePublisher(publisher); err != nil {
			p.logger.Warn("dropping invalid publisher", "source", publisher.Source, "err", err)
			continue
		}
		valid = append(valid, publisher)
	}
	if len(valid) == 0 {
		return 0, nil
	}
	return p.publishers.StorePublishers(ctx, valid...)
}

// IngestEmbeddings applies collector-supplied embeddings to stored beans.
// Vectors failing the dimension check are rejected for that item only.
// Returns the count applied.
func (p *Pipeline) IngestEmbeddings(ctx context.Context, records ...BeanEmbedding) (int, error) {
	applied := 0
	for _, record := range records {
		if err := core.ValidateEmbedding(record.Embedding, p.vectorDim); err != nil {
			p.logger.Warn("rejecting embedding", "url", record.URL, "err", err)
			continue
		}
		patch := storage.EnrichmentPatch{Embedding: core.NormalizeVector(record.Embedding)}
		var n int
		err := maintain.Retry(ctx, func() error {
			var patchErr error
			n, patchErr = p.beans.PatchBeans(ctx, patch, record.URL)
			return patchErr
		}, p.maxAttempts, p.baseDelay, retryableConflict)
		if err != nil {
			return applied, err
		}
		applied += n
	}
	return applied, nil
}

// IngestGists applies collector-supplied gists, entities and regions to
// stored beans. Returns the count applied.
func (p *Pipeline) IngestGists(ctx context.Context, records ...BeanGist) (int, error) {
	applied := 0
	for _, record := range records {
		gist := record.Gist
		patch := storage.EnrichmentPatch{
			Gist:     &gist,
			Entities: record.Entities,
			Regions:  record.Regions,
		}
		var n int
		err := maintain.Retry(ctx, func() error {
			var patchErr error
			n, patchErr = p.beans.PatchBeans(ctx, patch, record.URL)
			return patchErr
		}, p.maxAttempts, p.baseDelay, retryableConflict)
		if err != nil {
			return applied, err
		}
		applied += n
	}
	return applied, nil
}

// EmbedMissing is the synchronous catch-up pass: it embeds every stored
// bean still lacking a vector, batch by batch, until none remain. Returns
// the number of beans embedded.
func (p *Pipeline) EmbedMissing(ctx context.Context, batchSize int) (int, error) {
	if batchSize < 1 {
		batchSize = 64
	}

	total := 0
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		batch, err := p.beans.BeansMissingEmbedding(ctx, batchSize)
		if err != nil {
			return total, err
		}
		if len(batch) == 0 {
			return total, nil
		}

		urls := make([]string, len(batch))
		for i, bean := range batch {
			urls[i] = bean.URL
		}

		embedded, err := p.embedProc.process(ctx, urls...)
		if err != nil {
			return total, err
		}
		total += embedded

		if embedded == 0 {
			// Every remaining bean was rejected; stop instead of spinning.
			return total, errors.New("embedding catch-up stalled")
		}
	}
}

func retryableConflict(err error) bool {
	return errors.Is(err, storage.ErrTransactionFailed)
}

// Release releases resources including the worker pool. In-flight
// enrichment may be dropped; EmbedMissing picks up anything unfinished.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embedPool != nil {
		p.embedPool.Release()
	}
}
