package classify

import "errors"

var (
	// ErrBeanRepositoryRequired is returned when a bean repository is not provided.
	ErrBeanRepositoryRequired = errors.New("bean repository required")

	// ErrRefVectorRepositoryRequired is returned when a reference vector repository is not provided.
	ErrRefVectorRepositoryRequired = errors.New("reference vector repository required")

	// ErrCatalogNotSeeded is returned when a classification pass runs before
	// the anchor catalogs have been seeded.
	ErrCatalogNotSeeded = errors.New("reference vector catalogs not seeded")
)
