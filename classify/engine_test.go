package classify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage/badger"
)

func seedTestCatalogs(t *testing.T, repos *badger.TestRepositories) {
	t.Helper()
	ctx := context.Background()

	categories := []core.RefVector{
		{Label: "politics", Embedding: core.NormalizeVector([]float32{1, 0, 0})},
		{Label: "sports", Embedding: core.NormalizeVector([]float32{0, 1, 0})},
		{Label: "science", Embedding: core.NormalizeVector([]float32{0, 0, 1})},
	}
	sentiments := []core.RefVector{
		{Label: "positive", Embedding: core.NormalizeVector([]float32{1, 1, 0})},
		{Label: "negative", Embedding: core.NormalizeVector([]float32{-1, -1, 0})},
	}

	_, err := repos.RefVectors.SeedRefVectors(ctx, core.RefSetCategories, categories)
	require.NoError(t, err)
	_, err = repos.RefVectors.SeedRefVectors(ctx, core.RefSetSentiments, sentiments)
	require.NoError(t, err)
}

func TestEngineRun(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	seedTestCatalogs(t, repos)

	beans := []*core.Bean{
		{URL: "https://example.org/politics", Kind: core.KindNews,
			Embedding: core.NormalizeVector([]float32{1, 0.1, 0})},
		{URL: "https://example.org/sports", Kind: core.KindNews,
			Embedding: core.NormalizeVector([]float32{0.1, 1, 0})},
		{URL: "https://example.org/unembedded", Kind: core.KindNews},
	}
	_, err = repos.Beans.StoreBeans(ctx, beans...)
	require.NoError(t, err)

	engine, err := NewEngine(repos.Beans, repos.RefVectors)
	require.NoError(t, err)

	classified, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, classified)

	political, err := repos.Beans.GetBean(ctx, "https://example.org/politics")
	require.NoError(t, err)
	assert.Equal(t, "politics", political.Categories[0])
	assert.LessOrEqual(t, len(political.Categories), 3)
	assert.NotEmpty(t, political.Sentiments)

	sporty, err := repos.Beans.GetBean(ctx, "https://example.org/sports")
	require.NoError(t, err)
	assert.Equal(t, "sports", sporty.Categories[0])

	// The unembedded bean waits for a later enrichment pass
	pending, err := repos.Beans.GetBean(ctx, "https://example.org/unembedded")
	require.NoError(t, err)
	assert.Empty(t, pending.Categories)

	// A second run finds nothing left to classify
	classified, err = engine.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, classified)
}

func TestEngineRunUnseededCatalog(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	engine, err := NewEngine(repos.Beans, repos.RefVectors)
	require.NoError(t, err)

	_, err = engine.Run(context.Background())
	assert.ErrorIs(t, err, ErrCatalogNotSeeded)
}

func TestEngineRunSkipsDimensionMismatch(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	seedTestCatalogs(t, repos)

	// The bean's vector length matches no anchor, so it is skipped without
	// stalling the pass.
	bean := &core.Bean{URL: "https://example.org/odd", Kind: core.KindNews,
		Embedding: core.NormalizeVector([]float32{1, 0})}
	_, err = repos.Beans.StoreBeans(ctx, bean)
	require.NoError(t, err)

	engine, err := NewEngine(repos.Beans, repos.RefVectors, WithBatchSize(1))
	require.NoError(t, err)

	classified, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, classified)
}

func TestEngineRunAdvancesPastUnclassifiable(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	seedTestCatalogs(t, repos)

	// The unclassifiable bean sits first in scan order; with a batch of
	// one it must not starve the classifiable bean behind it.
	odd := &core.Bean{URL: "https://example.org/odd", Kind: core.KindNews,
		Created:   time.Now().UTC().Add(-time.Hour),
		Embedding: core.NormalizeVector([]float32{1, 0})}
	good := &core.Bean{URL: "https://example.org/good", Kind: core.KindNews,
		Embedding: core.NormalizeVector([]float32{1, 0.1, 0})}
	_, err = repos.Beans.StoreBeans(ctx, odd, good)
	require.NoError(t, err)

	engine, err := NewEngine(repos.Beans, repos.RefVectors, WithBatchSize(1))
	require.NoError(t, err)

	classified, err := engine.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, classified)

	stored, err := repos.Beans.GetBean(ctx, "https://example.org/good")
	require.NoError(t, err)
	assert.Equal(t, "politics", stored.Categories[0])

	still, err := repos.Beans.GetBean(ctx, "https://example.org/odd")
	require.NoError(t, err)
	assert.Empty(t, still.Categories)
}

func TestNewEngineValidation(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = NewEngine(nil, repos.RefVectors)
	assert.ErrorIs(t, err, ErrBeanRepositoryRequired)

	_, err = NewEngine(repos.Beans, nil)
	assert.ErrorIs(t, err, ErrRefVectorRepositoryRequired)
}
