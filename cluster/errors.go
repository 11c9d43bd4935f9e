package cluster

import "errors"

var (
	// ErrBeanRepositoryRequired is returned when a bean repository is not provided.
	ErrBeanRepositoryRequired = errors.New("bean repository required")

	// ErrClusterRepositoryRequired is returned when a cluster repository is not provided.
	ErrClusterRepositoryRequired = errors.New("cluster repository required")

	// ErrAlreadyRunning is returned when a clustering pass is started while
	// another pass on the same engine is still in flight.
	ErrAlreadyRunning = errors.New("clustering pass already running")
)
