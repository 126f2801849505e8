package domain

import "time"

// PageRecord represents a single indexed page of a source PDF document.
type PageRecord struct {
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	PageNumber int       `json:"page_number"`
	Category   string    `json:"category"`
	FilePath   string    `json:"file_path"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPageRecord builds a record, stamping CreatedAt when it is zero.
// PageNumber together with FilePath identifies the record within a batch.
func NewPageRecord(title, content string, pageNumber int, category, filePath string) PageRecord {
	return PageRecord{
		Title:      title,
		Content:    content,
		PageNumber: pageNumber,
		Category:   category,
		FilePath:   filePath,
		CreatedAt:  time.Now(),
	}
}

// SearchResult is one ranked hit decoded from an index response.
type SearchResult struct {
	Record     PageRecord
	Score      float64
	Highlights map[string][]string
	// Explanation is nil unless the query requested score diagnostics.
	Explanation *Explanation
}

// Explanation is a node of the engine's relevance-score breakdown tree.
// Value is a pointer because malformed nodes may omit it entirely.
type Explanation struct {
	Value       *float64      `json:"value"`
	Description string        `json:"description"`
	Details     []Explanation `json:"details"`
}

// Page is one page yielded by the external PDF extractor. Text may be
// empty for image-only pages.
type Page struct {
	Number int
	Text   string
}

// PDFInfo describes a source document without extracting its pages.
type PDFInfo struct {
	FileName   string
	FilePath   string
	FileSize   int64
	TotalPages int
}

// CategoryCounts maps a category label to its document count in the index.
type CategoryCounts map[string]int

// IndexHealth is a point-in-time snapshot of the external index state.
type IndexHealth struct {
	Connected     bool
	ClusterStatus string
	IndexExists   bool
	DocumentCount int
	IndexName     string
}

// Statistics aggregates index-level numbers for the stats command.
type Statistics struct {
	TotalDocuments int
	Categories     CategoryCounts
	Health         IndexHealth
}
