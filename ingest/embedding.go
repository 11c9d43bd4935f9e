package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/beanvault/ai"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/maintain"
	"github.com/poiesic/beanvault/storage"
)

// embeddingProcessor generates embeddings for stored beans that lack one.
// Failure is closed: an embedding error leaves the bean without a vector,
// eligible for a later catch-up pass, and never fails ingestion.
type embeddingProcessor struct {
	beans       storage.BeanRepository
	embedder    ai.Embedder
	vectorDim   int
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(beans storage.BeanRepository, embedder ai.Embedder, vectorDim, maxAttempts int, baseDelay time.Duration, logger *slog.Logger) (*embeddingProcessor, error) {
	if beans == nil {
		return nil, ErrBeanRepositoryRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		beans:       beans,
		embedder:    embedder,
		vectorDim:   vectorDim,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger.With("processor", "embeddings"),
	}, nil
}

// process embeds the beans identified by the given URLs. Beans that are
// missing, already embedded, or whose vector fails the dimension check are
// skipped. Returns the number of beans embedded.
func (ep *embeddingProcessor) process(ctx context.Context, urls ...string) (int, error) {
	var pending []*core.Bean
	for _, url := range urls {
		bean, err := ep.beans.GetBean(ctx, url)
		if err != nil {
			continue
		}
		if len(bean.Embedding) > 0 {
			continue
		}
		pending = append(pending, bean)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	texts := make([]string, len(pending))
	for i, bean := range pending {
		texts[i] = embeddingText(bean)
	}

	ep.logger.Debug("generating embeddings for beans", "beans", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return 0, err
	}

	if len(embeddings) != len(pending) {
		return 0, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(pending), len(embeddings))
	}

	embedded := 0
	for i, bean := range pending {
		if err := core.ValidateEmbedding(embeddings[i], ep.vectorDim); err != nil {
			// Rejected for this item only; the rest of the batch proceeds
			ep.logger.Warn("rejecting embedding", "url", bean.URL, "err", err)
			continue
		}

		patch := storage.EnrichmentPatch{Embedding: core.NormalizeVector(embeddings[i])}
		err := maintain.Retry(ctx, func() error {
			_, patchErr := ep.beans.PatchBeans(ctx, patch, bean.URL)
			return patchErr
		}, ep.maxAttempts, ep.baseDelay, retryableConflict)
		if err != nil {
			return embedded, err
		}
		embedded++
	}

	return embedded, nil
}

// embeddingText builds the text a bean is embedded from: the collector's
// gist when one was supplied, otherwise title plus summary, falling back to
// content when no summary was collected.
func embeddingText(bean *core.Bean) string {
	if bean.Gist != "" {
		return bean.Gist
	}

	parts := make([]string, 0, 2)
	if bean.Title != "" {
		parts = append(parts, bean.Title)
	}
	switch {
	case bean.Summary != "":
		parts = append(parts, bean.Summary)
	case bean.Content != "":
		parts = append(parts, bean.Content)
	}
	return strings.Join(parts, "\n")
}
