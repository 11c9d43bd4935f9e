package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/beanvault/core"
)

func anchor(label string, v ...float32) core.RefVector {
	return core.RefVector{Label: label, Embedding: core.NormalizeVector(v)}
}

func TestClassifyCardinality(t *testing.T) {
	categories := []core.RefVector{
		anchor("politics", 1, 0, 0),
		anchor("business", 0.9, 0.1, 0),
		anchor("economy", 0.8, 0.2, 0),
		anchor("sports", 0, 1, 0),
		anchor("science", 0, 0, 1),
	}
	sentiments := []core.RefVector{
		anchor("positive", 1, 0, 0),
		anchor("negative", -1, 0, 0),
	}

	embedding := core.NormalizeVector([]float32{1, 0.05, 0})
	cats, sents := Classify(embedding, categories, sentiments)

	// At most three labels per catalog, nearest first
	assert.Len(t, cats, 3)
	assert.Equal(t, []string{"politics", "business", "economy"}, cats)

	// Fewer anchors than the cap yields fewer labels
	assert.Len(t, sents, 2)
	assert.Equal(t, "positive", sents[0])
}

func TestClassifyTiesFollowCatalogOrder(t *testing.T) {
	// Two anchors at the same distance from the query: the one seeded
	// earlier wins the rank.
	categories := []core.RefVector{
		anchor("first", 0, 1, 0),
		anchor("second", 0, 1, 0),
		anchor("third", 1, 0, 0),
	}

	cats, _ := Classify(core.NormalizeVector([]float32{1, 0, 0}), categories, nil)
	assert.Equal(t, []string{"third", "first", "second"}, cats)
}

func TestClassifySkipsUnusableAnchors(t *testing.T) {
	categories := []core.RefVector{
		{Label: "empty"},
		{Label: "wrong-dim", Embedding: []float32{1, 0}},
		anchor("usable", 1, 0, 0),
	}

	cats, sents := Classify(core.NormalizeVector([]float32{1, 0, 0}), categories, nil)
	assert.Equal(t, []string{"usable"}, cats)
	assert.Empty(t, sents)
}

func TestClassifyEmptyCatalogs(t *testing.T) {
	cats, sents := Classify([]float32{1, 0, 0}, nil, nil)
	assert.Empty(t, cats)
	assert.Empty(t, sents)
}
