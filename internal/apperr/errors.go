// Package apperr defines the sentinel errors shared across the engine.
package apperr

import "errors"

var (
	// ErrInvalidPattern is returned when a regex query pattern does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrRebuildInProgress is returned when a rebuild is requested while
	// another one is still running.
	ErrRebuildInProgress = errors.New("rebuild in progress")

	// ErrStorageUnavailable is returned when the index database cannot be
	// opened or written.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrFullTextUnavailable is returned by token queries when the binary was
	// built without FTS5 support.
	ErrFullTextUnavailable = errors.New("full-text search unavailable")
)
