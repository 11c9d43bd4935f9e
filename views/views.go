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


package views

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/beanvault/ai"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage"
)

// Params narrows a view to a kind, time window, label sets and a page.
// Zero values are ignored.
type Params struct {
	Kind       core.Kind
	Since      time.Time
	Categories []string
	Regions    []string
	Entities   []string
	Sources    []string

	// GroupByCluster keeps one representative per cluster.
	GroupByCluster bool

	Offset int
	Limit  int

	Omit storage.FieldMask
}

func (p Params) filter(ordering storage.Ordering) storage.Filter {
	return storage.Filter{
		Kind:           p.Kind,
		CreatedSince:   p.Since,
		Categories:     p.Categories,
		Regions:        p.Regions,
		Entities:       p.Entities,
		Sources:        p.Sources,
		GroupByCluster: p.GroupByCluster,
		Ordering:       ordering,
		Offset:         p.Offset,
		Limit:          p.Limit,
		Omit:           p.Omit,
	}
}

// Views exposes the read side of the warehouse: the named result sets the
// API, bot and UI layers consume, all built on the shared filter model.
type Views struct {
	beans    storage.BeanRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Views.
type Option func(*Views) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Views) error {
		if logger == nil {
			logger = slog.Default()
		}
		v.logger = logger
		return nil
	}
}

// NewViews creates the read views.
func NewViews(beans storage.BeanRepository, provider ai.AIProvider, opts ...Option) (*Views, error) {
	if beans == nil {
		return nil, ErrBeanRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	v := &Views{
		beans:    beans,
		embedder: provider.Embedder(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// Latest returns beans ordered by created descending.
func (v *Views) Latest(ctx context.Context, p Params) ([]*core.Bean, error) {
	return v.beans.QueryBeans(ctx, p.filter(storage.OrderLatest))
}

// Trending returns beans ordered by updated descending, trend score
// breaking ties.
func (v *Views) Trending(ctx context.Context, p Params) ([]*core.Bean, error) {
	return v.beans.QueryBeans(ctx, p.filter(storage.OrderTrending))
}

// Aggregated returns beans under the combined latest+trending ranking key.
func (v *Views) Aggregated(ctx context.Context, p Params) ([]*core.Bean, error) {
	return v.beans.QueryBeans(ctx, p.filter(storage.OrderAggregated))
}

// TextSearch returns beans whose title, summary or gist contains every
// keyword of the query, under the given params' window and ordering rules.
func (v *Views) TextSearch(ctx context.Context, query string, p Params) ([]*core.Bean, error) {
	filter := p.filter(storage.OrderLatest)
	filter.Where = storage.TextPredicate(query)
	return v.beans.QueryBeans(ctx, filter)
}

// VectorSearch embeds the query text and returns beans ranked by cosine
// similarity, never below minScore.
func (v *Views) VectorSearch(ctx context.Context, query string, minScore float32, p Params) ([]*core.Bean, error) {
	return v.VectorSearchWithMonitor(ctx, query, minScore, p, nil)
}

// VectorSearchWithMonitor is VectorSearch with observation hooks.
func (v *Views) VectorSearchWithMonitor(ctx context.Context, query string, minScore float32, p Params, monitor QueryMonitor) ([]*core.Bean, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	embedding, err := v.embedder.EmbedText(ctx, query)
	if err != nil {
		v.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	embedding = core.NormalizeVector(embedding)
	monitor.AfterEmbedding(embedding)

	filter := p.filter(storage.OrderSimilarity)
	filter.Similarity = &storage.Similarity{Vector: embedding, MinScore: minScore}

	results, err := v.beans.QueryBeans(ctx, filter)
	if err != nil {
		return nil, err
	}
	monitor.Finish(results)
	return results, nil
}

// SimilarToURL is find-by-example: it resolves the URL to its stored
// embedding and runs the same similarity search as if that vector were the
// query. Returns ErrNoEmbedding when the example has not been embedded yet.
func (v *Views) SimilarToURL(ctx context.Context, url string, maxDistance float64, p Params) ([]*core.Bean, error) {
	example, err := v.beans.GetBean(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(example.Embedding) == 0 {
		return nil, ErrNoEmbedding
	}

	filter := p.filter(storage.OrderSimilarity)
	filter.Similarity = &storage.Similarity{Vector: example.Embedding, MaxDistance: maxDistance}
	self := example.URL
	filter.Where = func(bean *core.Bean) bool {
		return bean.URL != self
	}

	return v.beans.QueryBeans(ctx, filter)
}

// ClusterNeighborhood returns every bean sharing the given bean's cluster,
// excluding the bean itself, ordered latest-first.
func (v *Views) ClusterNeighborhood(ctx context.Context, url string) ([]*core.Bean, error) {
	bean, err := v.beans.GetBean(ctx, url)
	if err != nil {
		return nil, err
	}
	if bean.ClusterID == 0 {
		return []*core.Bean{}, nil
	}

	cluster := bean.ClusterID
	self := bean.URL
	filter := storage.Filter{
		Ordering: storage.OrderLatest,
		Where: func(candidate *core.Bean) bool {
			return candidate.URL != self &&
				(candidate.ClusterID == cluster || candidate.ID() == cluster)
		},
	}
	return v.beans.QueryBeans(ctx, filter)
}
