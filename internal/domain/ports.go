package domain

import "context"

// PageSource extracts ordered page records from a source document.
// A missing file is reported as ErrNotFound; a single unreadable page is
// skipped, never aborting the rest of the document.
type PageSource interface {
	Extract(ctx context.Context, path string) ([]PageRecord, error)
	Info(path string) (PDFInfo, error)
}

// SearchOptions tune a single search call.
type SearchOptions struct {
	Size     int
	Category string
	Explain  bool
}

// SearchIndex is the external full-text index the pipeline writes to and
// queries. Implementations issue one blocking call per operation; failures
// are returned, never retried.
type SearchIndex interface {
	// CreateIndex creates the index with its schema. An already-existing
	// index is treated as success. When recreate is true any existing
	// index is deleted first.
	CreateIndex(ctx context.Context, recreate bool) error
	DeleteIndex(ctx context.Context) error
	IndexExists(ctx context.Context) (bool, error)

	// BulkIndex submits all records in one bulk call with refresh-on-write
	// visibility. Per-item rejections are logged and reported as a single
	// ErrBulkPartialFailure.
	BulkIndex(ctx context.Context, records []PageRecord) error

	// Search runs a boosted keyword query. An empty query with a non-empty
	// opts.Category browses the whole category in engine order.
	Search(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)

	// GetByPage looks a record up by its (page_number, file_path) key.
	GetByPage(ctx context.Context, pageNumber int, filePath string) (*PageRecord, error)

	Count(ctx context.Context) (int, error)
	CategoryCounts(ctx context.Context) (CategoryCounts, error)
	Analyze(ctx context.Context, text string) ([]string, error)
	Health(ctx context.Context) IndexHealth
}
