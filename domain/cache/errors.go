package cache

import "errors"

// Errors returned by plan memo backends.
var (
	// ErrKeyNotFound is returned when a key does not exist in the cache.
	ErrKeyNotFound = errors.New("cache key not found")

	// ErrInvalidKey is returned for an empty key.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrConnectionFailed is returned when the backend is unreachable.
	ErrConnectionFailed = errors.New("cache connection failed")

	// ErrOperationTimeout is returned when a backend call times out.
	ErrOperationTimeout = errors.New("cache operation timeout")

	// ErrUnknownBackend is returned for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)
