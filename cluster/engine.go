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


package cluster

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/maintain"
	"github.com/poiesic/beanvault/storage"
)

const (
	defaultEpsilon     = 0.3
	defaultBatchSize   = 512
	defaultScope       = 28 * 24 * time.Hour
	defaultMaxAttempts = 3
	defaultBaseDelay   = 50 * time.Millisecond
)

// Stats reports what a clustering pass did.
type Stats struct {
	// Processed is the number of beans whose pairwise comparison ran.
	Processed int
	// Edges is the number of directed edges recorded, self-edges included.
	Edges int
	// Assigned is the number of beans that received a cluster representative.
	Assigned int
}

// Engine runs the bounded incremental clustering loop. A full pairwise
// comparison over all history is cost-prohibitive, so each pass pulls small
// batches of beans that have not been compared yet, crosses them against a
// recency-scoped pool and records an edge for every pair within epsilon.
// A second stage assigns each edged bean a representative: the neighbor
// with the largest observed group.
//
// The loop mutates the same predicate it selects on, so two passes must
// never run concurrently on the same store. Engines sharing a run lock
// (WithRunLock) form a single flight; the warehouse hands every engine it
// creates the same lock.
type Engine struct {
	beans       storage.BeanRepository
	clusters    storage.ClusterRepository
	epsilon     float64
	batchSize   int
	scope       time.Duration
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
	mu          *sync.Mutex
}

// EngineOption configures a clustering Engine.
type EngineOption func(*Engine) error

// WithEpsilon sets the distance threshold below which two beans are
// considered related.
func WithEpsilon(epsilon float64) EngineOption {
	return func(e *Engine) error {
		e.epsilon = epsilon
		return nil
	}
}

// WithBatchSize sets how many unprocessed beans are compared per batch.
func WithBatchSize(size int) EngineOption {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		e.batchSize = size
		return nil
	}
}

// WithScope bounds the comparison pool to beans created within the given
// window.
func WithScope(scope time.Duration) EngineOption {
	return func(e *Engine) error {
		e.scope = scope
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

// WithRunLock shares the pass lock across engines. Every engine holding
// the same lock belongs to one flight: while any of them is mid-pass, Run
// on the others returns ErrAlreadyRunning. Default is a lock private to
// the engine.
func WithRunLock(mu *sync.Mutex) EngineOption {
	return func(e *Engine) error {
		if mu != nil {
			e.mu = mu
		}
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

// NewEngine creates a clustering engine.
func NewEngine(beans storage.BeanRepository, clusters storage.ClusterRepository, opts ...EngineOption) (*Engine, error) {
	if beans == nil {
		return nil, ErrBeanRepositoryRequired
	}
	if clusters == nil {
		return nil, ErrClusterRepositoryRequired
	}

	e := &Engine{
		beans:       beans,
		clusters:    clusters,
		epsilon:     defaultEpsilon,
		batchSize:   defaultBatchSize,
		scope:       defaultScope,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default(),
		mu:          &sync.Mutex{},
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "cluster-engine")

	return e, nil
}

// Run executes one full clustering pass: the edge loop until convergence,
// then representative assignment. Returns ErrAlreadyRunning if a pass is
// already in flight on this engine. The pass is abortable between batches
// via ctx; each batch's effects are self-consistent.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	if !e.mu.TryLock() {
		return Stats{}, ErrAlreadyRunning
	}
	defer e.mu.Unlock()

	var stats Stats
	since := time.Now().UTC().Add(-e.scope)

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		batch, err := e.clusters.UnprocessedBeans(ctx, since, e.batchSize)
		if err != nil {
			return stats, err
		}
		if len(batch) == 0 {
			break
		}

		pool, err := e.clusters.ComparisonPool(ctx, since)
		if err != nil {
			return stats, err
		}

		edges := e.compareBatch(batch, pool)
		err = maintain.Retry(ctx, func() error {
			return e.clusters.AddEdges(ctx, edges...)
		}, e.maxAttempts, e.baseDelay, retryableConflict)
		if err != nil {
			return stats, err
		}

		stats.Processed += len(batch)
		stats.Edges += len(edges)
		e.logger.Debug("clustering batch complete", "batch", len(batch), "pool", len(pool), "edges", len(edges))
	}

	assigned, err := e.assignRepresentatives(ctx)
	stats.Assigned = assigned
	if err != nil {
		return stats, err
	}

	e.logger.Info("clustering pass converged",
		"processed", stats.Processed, "edges", stats.Edges, "assigned", stats.Assigned)
	return stats, nil
}

// compareBatch crosses the batch against the pool and collects every edge
// within epsilon, recorded in both directions. Each batch bean also gets a
// zero-distance self-edge, which marks its comparison as done.
func (e *Engine) compareBatch(batch, pool []*core.Bean) []core.ClusterEdge {
	var edges []core.ClusterEdge
	for _, bean := range batch {
		id := bean.ID()
		edges = append(edges, core.ClusterEdge{BeanID: id, NeighborID: id, Distance: 0})

		for _, other := range pool {
			otherID := other.ID()
			if otherID == id {
				continue
			}
			distance := core.CosineDistance(bean.Embedding, other.Embedding)
			if distance <= e.epsilon {
				edges = append(edges,
					core.ClusterEdge{BeanID: id, NeighborID: otherID, Distance: distance},
					core.ClusterEdge{BeanID: otherID, NeighborID: id, Distance: distance})
			}
		}
	}
	return edges
}

// assignRepresentatives picks, for every edged bean without a cluster, the
// neighbor with the largest recorded group as its representative. Greedy
// and local: no transitive closure over edge chains.
func (e *Engine) assignRepresentatives(ctx context.Context) (int, error) {
	assigned := 0
	for {
		select {
		case <-ctx.Done():
			return assigned, ctx.Err()
		default:
		}

		batch, err := e.clusters.UnassignedBeans(ctx, e.batchSize)
		if err != nil {
			return assigned, err
		}
		if len(batch) == 0 {
			return assigned, nil
		}

		progressed := 0
		for _, bean := range batch {
			ok, err := e.assignOne(ctx, bean)
			if err != nil {
				return assigned, err
			}
			if ok {
				assigned++
				progressed++
			}
		}
		if progressed == 0 {
			return assigned, nil
		}
	}
}

func (e *Engine) assignOne(ctx context.Context, bean *core.Bean) (bool, error) {
	id := bean.ID()
	edges, err := e.clusters.EdgesFrom(ctx, id)
	if err != nil {
		return false, err
	}
	if len(edges) == 0 {
		return false, nil
	}

	candidates := make([]core.ID, 0, len(edges))
	for _, edge := range edges {
		candidates = append(candidates, edge.NeighborID)
	}
	slices.Sort(candidates)

	counts, err := e.clusters.NeighborCounts(ctx, candidates...)
	if err != nil {
		return false, err
	}

	// Largest group wins; the sorted order makes ties deterministic.
	representative := id
	best := -1
	for _, candidate := range candidates {
		if counts[candidate] > best {
			best = counts[candidate]
			representative = candidate
		}
	}

	related, err := e.relatedURLs(ctx, id, candidates)
	if err != nil {
		return false, err
	}

	patch := storage.ClusterPatch{
		ClusterID:   representative,
		ClusterSize: best,
		Related:     related,
	}
	err = maintain.Retry(ctx, func() error {
		_, patchErr := e.beans.PatchBeans(ctx, patch, bean.URL)
		return patchErr
	}, e.maxAttempts, e.baseDelay, retryableConflict)
	if err != nil {
		return false, err
	}
	return true, nil
}

// relatedURLs resolves a bean's neighbor IDs to URLs, excluding the bean
// itself. Neighbors whose record has since been swept are dropped.
func (e *Engine) relatedURLs(ctx context.Context, self core.ID, neighbors []core.ID) ([]string, error) {
	ids := make([]core.ID, 0, len(neighbors))
	for _, id := range neighbors {
		if id != self {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []string{}, nil
	}

	records, err := e.clusters.BeansByID(ctx, ids...)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(ids))
	for _, id := range ids {
		if record, ok := records[id]; ok {
			urls = append(urls, record.URL)
		}
	}
	return urls, nil
}

func retryableConflict(err error) bool {
	return errors.Is(err, storage.ErrTransactionFailed)
}
