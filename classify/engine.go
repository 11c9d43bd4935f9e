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


package classify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/beanvault/maintain"
	"github.com/poiesic/beanvault/storage"

	"github.com/poiesic/beanvault/core"
)

const (
	defaultBatchSize   = 256
	defaultMaxAttempts = 3
	defaultBaseDelay   = 50 * time.Millisecond
)

// Engine runs batch classification passes: every bean that carries an
// embedding but no category labels yet is classified against the anchor
// catalogs and the result written back as a partial merge.
type Engine struct {
	beans       storage.BeanRepository
	refs        storage.RefVectorRepository
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// EngineOption configures a classification Engine.
type EngineOption func(*Engine) error

// WithBatchSize sets how many beans are classified per batch.
func WithBatchSize(size int) EngineOption {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		e.batchSize = size
		return nil
	}
}

// WithRetry sets the writeback retry policy for transient conflicts.
func WithRetry(maxAttempts int, baseDelay time.Duration) EngineOption {
	return func(e *Engine) error {
		if maxAttempts <= 0 {
			return maintain.ErrInvalidMaxAttempts
		}
		e.maxAttempts = maxAttempts
		e.baseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a classification engine.
func NewEngine(beans storage.BeanRepository, refs storage.RefVectorRepository, opts ...EngineOption) (*Engine, error) {
	if beans == nil {
		return nil, ErrBeanRepositoryRequired
	}
	if refs == nil {
		return nil, ErrRefVectorRepositoryRequired
	}

	e := &Engine{
		beans:       beans,
		refs:        refs,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "classify-engine")

	return e, nil
}

// Run processes all currently-unclassified beans with embeddings, batch by
// batch, until none remain. Beans without an embedding are left for a later
// pass. Returns the number of beans classified.
func (e *Engine) Run(ctx context.Context) (int, error) {
	categories, err := e.refs.GetRefVectors(ctx, core.RefSetCategories)
	if err != nil {
		return 0, err
	}
	sentiments, err := e.refs.GetRefVectors(ctx, core.RefSetSentiments)
	if err != nil {
		return 0, err
	}
	if len(categories) == 0 || len(sentiments) == 0 {
		return 0, ErrCatalogNotSeeded
	}

	total := 0

	// Skipped beans stay unclassified and would otherwise clog the front
	// of every batch, starving classifiable beans behind them. The window
	// widens by the skip count so the scan keeps advancing past them.
	skipped := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		batch, err := e.beans.BeansMissingClassification(ctx, e.batchSize+len(skipped))
		if err != nil {
			return total, err
		}
		if len(batch) == 0 {
			break
		}

		classified := 0
		newSkips := 0
		for _, bean := range batch {
			if skipped[bean.URL] {
				continue
			}

			cats, sents := Classify(bean.Embedding, categories, sentiments)
			if len(cats) == 0 {
				// No usable anchor matched this vector length; leave the
				// bean for a pass after the catalog is reseeded.
				e.logger.Warn("no anchors matched bean embedding", "url", bean.URL)
				skipped[bean.URL] = true
				newSkips++
				continue
			}

			patch := storage.ClassificationPatch{Categories: cats, Sentiments: sents}
			err := maintain.Retry(ctx, func() error {
				_, patchErr := e.beans.PatchBeans(ctx, patch, bean.URL)
				return patchErr
			}, e.maxAttempts, e.baseDelay, func(err error) bool {
				return errors.Is(err, storage.ErrTransactionFailed)
			})
			if err != nil {
				return total, err
			}
			classified++
		}

		total += classified
		e.logger.Debug("classification batch complete", "classified", classified, "skipped", newSkips, "batch", len(batch))

		if classified == 0 && newSkips == 0 {
			// Only already-skipped beans remain; stop instead of spinning.
			break
		}
	}

	return total, nil
}
