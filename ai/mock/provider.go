package mock

import "github.com/poiesic/beanvault/ai"

// MockProvider is a test double for ai.AIProvider aggregating a mock
// embedder.
type MockProvider struct {
	embedder *MockEmbedder
}

var _ ai.AIProvider = (*MockProvider)(nil)

// NewMockProvider creates a provider with default deterministic behavior.
func NewMockProvider() *MockProvider {
	return &MockProvider{embedder: NewMockEmbedder()}
}

// NewMockProviderWithDim creates a provider whose embedder produces vectors
// of the given dimensionality.
func NewMockProviderWithDim(dim int) *MockProvider {
	return &MockProvider{embedder: NewMockEmbedderWithDim(dim)}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// GetMockEmbedder returns the concrete mock for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
