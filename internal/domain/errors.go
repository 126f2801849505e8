package domain

import "errors"

var (
	// ErrNotFound reports a missing source file or index document.
	ErrNotFound = errors.New("not found")
	// ErrConnectionFailed reports an unreachable index service.
	ErrConnectionFailed = errors.New("index service unreachable")
	// ErrEmptyQuery reports a query that cleaned down to nothing.
	ErrEmptyQuery = errors.New("empty query")
	// ErrNotInitialized reports a search issued before the index was set up.
	ErrNotInitialized = errors.New("search index not initialized")
	// ErrBulkPartialFailure reports a bulk submission with rejected items.
	ErrBulkPartialFailure = errors.New("bulk indexing rejected some documents")
)
