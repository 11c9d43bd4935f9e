package chatter

import "errors"

var (
	// ErrChatterRepositoryRequired is returned when a chatter repository is not provided.
	ErrChatterRepositoryRequired = errors.New("chatter repository required")

	// ErrBeanRepositoryRequired is returned when a bean repository is not provided.
	ErrBeanRepositoryRequired = errors.New("bean repository required")
)
