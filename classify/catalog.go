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

	"github.com/poiesic/beanvault/ai"
	"github.com/poiesic/beanvault/core"
	"github.com/poiesic/beanvault/storage"
)

// DefaultCategories is the fixed label catalog for the categories anchor set.
// Labels act as hand-curated classification anchors; changing the list
// requires reseeding the reference vectors.
var DefaultCategories = []string{
	"politics",
	"business",
	"economy",
	"technology",
	"science",
	"health",
	"environment",
	"sports",
	"entertainment",
	"culture",
	"crime",
	"education",
	"travel",
	"food",
	"world",
	"military",
}

// DefaultSentiments is the fixed label catalog for the sentiments anchor set.
var DefaultSentiments = []string{
	"positive",
	"negative",
	"neutral",
	"hopeful",
	"fearful",
	"angry",
	"celebratory",
	"mournful",
}

// SeedCatalogs embeds the label catalogs and seeds them into the reference
// vector store. Seeding is idempotent: labels already present keep their
// stored vectors. Returns the number of anchors inserted across both sets.
func SeedCatalogs(ctx context.Context, refs storage.RefVectorRepository, embedder ai.Embedder) (int, error) {
	total := 0
	for _, catalog := range []struct {
		set    core.RefSet
		labels []string
	}{
		{core.RefSetCategories, DefaultCategories},
		{core.RefSetSentiments, DefaultSentiments},
	} {
		vectors, err := embedCatalog(ctx, embedder, catalog.labels)
		if err != nil {
			return total, err
		}
		inserted, err := refs.SeedRefVectors(ctx, catalog.set, vectors)
		if err != nil {
			return total, err
		}
		total += inserted
	}
	return total, nil
}

func embedCatalog(ctx context.Context, embedder ai.Embedder, labels []string) ([]core.RefVector, error) {
	embeddings, err := embedder.EmbedTexts(ctx, labels)
	if err != nil {
		return nil, err
	}

	vectors := make([]core.RefVector, len(labels))
	for i, label := range labels {
		var embedding []float32
		if i < len(embeddings) {
			embedding = core.NormalizeVector(embeddings[i])
		}
		vectors[i] = core.RefVector{Label: label, Embedding: embedding}
	}
	return vectors, nil
}
