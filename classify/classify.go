package classify

import (
	"sort"

	"github.com/poiesic/beanvault/core"
)

// maxLabels is the number of nearest anchors kept per catalog.
const maxLabels = 3

// Classify assigns up to three category and three sentiment labels to an
// embedding by nearest-neighbor lookup against the two anchor catalogs.
// Distance is cosine distance; ties are broken by catalog order. Anchors
// without an embedding are skipped.
func Classify(embedding []float32, categories, sentiments []core.RefVector) (cats, sents []string) {
	return nearestLabels(embedding, categories, maxLabels),
		nearestLabels(embedding, sentiments, maxLabels)
}

func nearestLabels(embedding []float32, anchors []core.RefVector, k int) []string {
	type scored struct {
		label    string
		distance float64
	}

	candidates := make([]scored, 0, len(anchors))
	for _, anchor := range anchors {
		if len(anchor.Embedding) == 0 || len(anchor.Embedding) != len(embedding) {
			continue
		}
		candidates = append(candidates, scored{
			label:    anchor.Label,
			distance: core.CosineDistance(embedding, anchor.Embedding),
		})
	}

	// Stable sort keeps catalog order for equal distances
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	labels := make([]string, len(candidates))
	for i, c := range candidates {
		labels[i] = c.label
	}
	return labels
}
