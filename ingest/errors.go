package ingest

import "errors"

var (
	// ErrBeanRepositoryRequired is returned when a bean repository is not provided.
	ErrBeanRepositoryRequired = errors.New("bean repository required")

	// ErrChatterRepositoryRequired is returned when a chatter repository is not provided.
	ErrChatterRepositoryRequired = errors.New("chatter repository required")

	// ErrPublisherRepositoryRequired is returned when a publisher repository is not provided.
	ErrPublisherRepositoryRequired = errors.New("publisher repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)
