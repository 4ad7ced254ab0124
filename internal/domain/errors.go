package domain

import "errors"

var (
	// ErrValidation marks a request missing required fields.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence marks a storage read or write failure.
	ErrPersistence = errors.New("persistence failed")
	// ErrUpstream marks a failed call to the external analysis service.
	ErrUpstream = errors.New("upstream failed")
	// ErrNotFound marks a reference to a panchayat that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDisabled marks a feature that is not configured.
	ErrDisabled = errors.New("feature disabled")
)
