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


package chatter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/maintain"
	"github.com/poiesic/beanvault/storage"
)

const (
	defaultWindow      = 24 * time.Hour
	defaultTTL         = 30 * time.Minute
	defaultMaxAttempts = 3
	defaultBaseDelay   = 50 * time.Millisecond
)

// Engine materializes chatter aggregates. For each URL with raw snapshots
// it runs the two-stage rollup with deltas, stores the result with a short
// TTL and writes the derived trend score back onto the bean.
type Engine struct {
	chatters    storage.ChatterRepository
	beans       storage.BeanRepository
	window      time.Duration
	ttl         time.Duration
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// EngineOption configures an aggregation Engine.
type EngineOption func(*Engine) error

// WithWindow sets the trailing reference window used for delta computation.
func WithWindow(window time.Duration) EngineOption {
	return func(e *Engine) error {
		e.window = window
		return nil
	}
}

// WithTTL sets how long materialized aggregates live before they expire
// and must be recomputed from raw history.
func WithTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) error {
		e.ttl = ttl
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

// NewEngine creates a chatter aggregation engine.
func NewEngine(chatters storage.ChatterRepository, beans storage.BeanRepository, opts ...EngineOption) (*Engine, error) {
	if chatters == nil {
		return nil, ErrChatterRepositoryRequired
	}
	if beans == nil {
		return nil, ErrBeanRepositoryRequired
	}

	e := &Engine{
		chatters:    chatters,
		beans:       beans,
		window:      defaultWindow,
		ttl:         defaultTTL,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "chatter-engine")

	return e, nil
}

// Run aggregates the given URLs, or every URL with snapshots when none are
// given. Returns the number of aggregates materialized. A URL without a
// stored bean still gets its aggregate; only the trend writeback is skipped.
func (e *Engine) Run(ctx context.Context, urls ...string) (int, error) {
	if len(urls) == 0 {
		var err error
		urls, err = e.chatters.ChatterURLs(ctx)
		if err != nil {
			return 0, err
		}
	}

	now := time.Now().UTC()
	refreshed := 0
	for _, url := range urls {
		select {
		case <-ctx.Done():
			return refreshed, ctx.Err()
		default:
		}

		snapshots, err := e.chatters.ChattersByURL(ctx, url)
		if err != nil {
			return refreshed, err
		}
		if len(snapshots) == 0 {
			continue
		}

		agg := RollupWithDelta(url, snapshots, now, e.window)
		err = maintain.Retry(ctx, func() error {
			return e.chatters.PutAggregate(ctx, agg, e.ttl)
		}, e.maxAttempts, e.baseDelay, retryableConflict)
		if err != nil {
			return refreshed, err
		}

		patch := storage.TrendPatch{TrendScore: TrendScore(agg)}
		err = maintain.Retry(ctx, func() error {
			_, patchErr := e.beans.PatchBeans(ctx, patch, url)
			return patchErr
		}, e.maxAttempts, e.baseDelay, retryableConflict)
		if err != nil {
			return refreshed, err
		}

		refreshed++
	}

	e.logger.Debug("chatter aggregation complete", "urls", len(urls), "refreshed", refreshed)
	return refreshed, nil
}

// Aggregate returns the materialized aggregate for a URL, recomputing and
// re-materializing it when the stored one has expired.
func (e *Engine) Aggregate(ctx context.Context, url string) (*core.ChatterAggregate, error) {
	agg, err := e.chatters.GetAggregate(ctx, url)
	if err == nil {
		return agg, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if _, err := e.Run(ctx, url); err != nil {
		return nil, err
	}

	return e.chatters.GetAggregate(ctx, url)
}

func retryableConflict(err error) bool {
	return errors.Is(err, storage.ErrTransactionFailed)
}
