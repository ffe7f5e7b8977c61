package domain

import "errors"

var (
	// ErrInvalidInput marks client mistakes such as an empty query or unknown filter value
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration marks missing credentials or other deployment mistakes
	ErrConfiguration = errors.New("configuration error")

	// ErrUpstream marks transport failures, non-2xx responses and explicit
	// error payloads from the job provider
	ErrUpstream = errors.New("upstream provider error")

	// ErrNotFound marks a valid lookup that produced no match
	ErrNotFound = errors.New("not found")

	// ErrPersistence marks storage-layer failures
	ErrPersistence = errors.New("persistence error")
)
