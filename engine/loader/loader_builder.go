package loader

import (
	"log"
	"strings"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger is an option builder that sets the logger load failures are reported to.
// A nil logger is ignored.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *log.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithWorkers is an option builder that sets the number of decode workers.
//
// Parameters:
//   - n: the worker count, values below 1 are raised to 1
//
// Returns:
//   - LoaderBuilderOption: a function that applies the workers option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithBackend is an option builder that registers a decoder for a file extension,
// replacing the built-in one if any.
//
// Parameters:
//   - ext: the extension including the dot, matched case-insensitively
//   - fn: the decode function
//
// Returns:
//   - LoaderBuilderOption: a function that applies the backend option to a loader
func WithBackend(ext string, fn BackendFunc) LoaderBuilderOption {
	return func(l *loader) {
		if fn != nil {
			l.backends[strings.ToLower(ext)] = fn
		}
	}
}

// WithPayload is an option builder that pre-populates the cache with a ready handle.
//
// Parameters:
//   - path: the cache key
//   - payload: the decoded payload
//
// Returns:
//   - LoaderBuilderOption: a function that applies the payload option to a loader
func WithPayload(path string, payload any) LoaderBuilderOption {
	return func(l *loader) {
		if _, ok := l.handles[path]; ok {
			return
		}
		h := newHandle(path)
		h.settle(payload, nil)
		l.handles[path] = h
		l.order = append(l.order, path)
	}
}
