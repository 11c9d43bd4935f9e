package maintain

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidWorkerCount is returned when a refresher is created with
	// a non-positive worker count
	ErrInvalidWorkerCount = errors.New("worker count must be greater than 0")
)
