package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/beanvault/ai/mock"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage/badger"
)

func TestSeedCatalogs(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	embedder := mock.NewMockEmbedderWithDim(32)

	inserted, err := SeedCatalogs(ctx, repos.RefVectors, embedder)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCategories)+len(DefaultSentiments), inserted)

	categories, err := repos.RefVectors.GetRefVectors(ctx, core.RefSetCategories)
	require.NoError(t, err)
	require.Len(t, categories, len(DefaultCategories))
	assert.Equal(t, DefaultCategories[0], categories[0].Label)
	assert.Len(t, categories[0].Embedding, 32)

	sentiments, err := repos.RefVectors.GetRefVectors(ctx, core.RefSetSentiments)
	require.NoError(t, err)
	assert.Len(t, sentiments, len(DefaultSentiments))

	// Seeding twice inserts nothing new
	inserted, err = SeedCatalogs(ctx, repos.RefVectors, embedder)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}
