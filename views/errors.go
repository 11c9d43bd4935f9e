package views

import "errors"

var (
	// ErrBeanRepositoryRequired is returned when a bean repository is not provided.
	ErrBeanRepositoryRequired = errors.New("bean repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrNoEmbedding is returned by find-by-example when the example bean
	// has no stored embedding yet.
	ErrNoEmbedding = errors.New("bean has no stored embedding")
)
