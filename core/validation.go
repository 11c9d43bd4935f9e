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


package core

import "fmt"

// ValidateBean validates a Bean offered at the ingestion boundary.
//
// Validation rules:
//   - URL must not be empty
//   - Kind must be a known content kind
//
// NOT validated (populated by later passes):
//   - Embedding, Gist, Entities, Regions (enrichment)
//   - Categories, Sentiments, ClusterID, TrendScore (derived)
func ValidateBean(bean *Bean) error {
	if bean == nil {
		return fmt.Errorf("%w: bean is nil", ErrInvalidBean)
	}

	if bean.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidBean, ErrEmptyURL)
	}

	if !ValidKind(bean.Kind) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidBean, ErrInvalidKind, bean.Kind)
	}

	return nil
}

// ValidateChatter validates a Chatter snapshot.
//
// Validation rules:
//   - URL must not be empty
//   - ChatterURL must not be empty
func ValidateChatter(chatter *Chatter) error {
	if chatter == nil {
		return fmt.Errorf("%w: chatter is nil", ErrInvalidChatter)
	}

	if chatter.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatter, ErrEmptyURL)
	}

	if chatter.ChatterURL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatter, ErrEmptyChatterURL)
	}

	return nil
}

// ValidatePublisher validates a Publisher record.
//
// Validation rules:
//   - Source must not be empty
//   - BaseURL must not be empty
func ValidatePublisher(publisher *Publisher) error {
	if publisher == nil {
		return fmt.Errorf("%w: publisher is nil", ErrInvalidPublisher)
	}

	if publisher.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPublisher, ErrEmptySource)
	}

	if publisher.BaseURL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPublisher, ErrEmptyBaseURL)
	}

	return nil
}

// ValidateEmbedding checks that a vector has the expected dimension.
// A mismatch rejects that item only, never the whole batch.
func ValidateEmbedding(vector []float32, dim int) error {
	if len(vector) != dim {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dim, len(vector))
	}
	return nil
}
