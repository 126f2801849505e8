// Package service orchestrates the pipeline: PDF extraction into the index
// on one side, query execution and result post-processing on the other.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"lawsearch/internal/domain"
	"lawsearch/internal/textutil"
)

const (
	fallbackExcerptLength = 300
	// similarKeywordCount is how many leading keywords of a base page seed
	// a similar-documents search.
	similarKeywordCount = 5
)

// SearchService ties the page source, the search index and the text
// normalizer together. It is the only type callers outside internal/ touch.
type SearchService struct {
	source      domain.PageSource
	index       domain.SearchIndex
	normalizer  *textutil.Normalizer
	log         *slog.Logger
	initialized bool
}

// New builds the service. Search calls before InitializeIndex fail fast
// with domain.ErrNotInitialized.
func New(source domain.PageSource, index domain.SearchIndex, normalizer *textutil.Normalizer, log *slog.Logger) *SearchService {
	return &SearchService{source: source, index: index, normalizer: normalizer, log: log}
}

// InitializeIndex creates the index and ingests the PDF's pages in one bulk
// submission. With recreate false an already-populated index is left alone.
func (s *SearchService) InitializeIndex(ctx context.Context, pdfPath string, recreate bool) error {
	s.log.Info("initializing index", "pdf", pdfPath, "recreate", recreate)

	if err := s.index.CreateIndex(ctx, recreate); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	if !recreate {
		count, err := s.index.Count(ctx)
		if err != nil {
			return fmt.Errorf("count documents: %w", err)
		}
		if count > 0 {
			s.log.Info("index already populated, skipping ingestion", "documents", count)
			s.initialized = true
			return nil
		}
	}

	records, err := s.source.Extract(ctx, pdfPath)
	if err != nil {
		return fmt.Errorf("extract %s: %w", pdfPath, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("extract %s: no pages with text", pdfPath)
	}

	s.log.Info("indexing records", "count", len(records))
	if err := s.index.BulkIndex(ctx, records); err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	s.initialized = true
	return nil
}

// Search cleans the query, runs it against the index and guarantees every
// result carries at least one highlight: hits the engine returned without
// fragments get a locally built excerpt.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if !s.initialized {
		return nil, domain.ErrNotInitialized
	}
	cleaned := s.normalizer.Clean(query)
	if cleaned == "" {
		return nil, domain.ErrEmptyQuery
	}

	results, err := s.index.Search(ctx, cleaned, opts)
	if err != nil {
		return nil, err
	}

	keywords := s.normalizer.ExtractKeywords(cleaned, 0)
	for i := range results {
		if len(results[i].Highlights) > 0 {
			continue
		}
		excerpt := s.normalizer.HighlightExcerpt(results[i].Record.Content, keywords, fallbackExcerptLength)
		results[i].Highlights = map[string][]string{"content": {excerpt}}
	}
	s.log.Info("search finished", "query", cleaned, "results", len(results))
	return results, nil
}

// SearchByCategory browses every document of one category, in the engine's
// default order.
func (s *SearchService) SearchByCategory(ctx context.Context, category string, size int) ([]domain.SearchResult, error) {
	if !s.initialized {
		return nil, domain.ErrNotInitialized
	}
	if strings.TrimSpace(category) == "" {
		return nil, domain.ErrEmptyQuery
	}
	return s.index.Search(ctx, "", domain.SearchOptions{Size: size, Category: category})
}

// DocumentByPage fetches the record keyed by (pageNumber, filePath).
func (s *SearchService) DocumentByPage(ctx context.Context, pageNumber int, filePath string) (*domain.PageRecord, error) {
	if !s.initialized {
		return nil, domain.ErrNotInitialized
	}
	return s.index.GetByPage(ctx, pageNumber, filePath)
}

// Statistics reports document totals, per-category counts and index health.
func (s *SearchService) Statistics(ctx context.Context) (domain.Statistics, error) {
	stats := domain.Statistics{Health: s.index.Health(ctx)}

	total, err := s.index.Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("count documents: %w", err)
	}
	stats.TotalDocuments = total

	counts, err := s.index.CategoryCounts(ctx)
	if err != nil {
		return stats, fmt.Errorf("category counts: %w", err)
	}
	stats.Categories = counts
	return stats, nil
}

// SuggestQueries mines keyword completions for a partial query from the
// contents of matching documents. The index analyzer tokenizes the partial
// input when it is reachable; otherwise the local normalizer stands in.
func (s *SearchService) SuggestQueries(ctx context.Context, partial string, size int) ([]string, error) {
	if size <= 0 {
		size = 5
	}
	results, err := s.Search(ctx, partial, domain.SearchOptions{Size: size * 2})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			return nil, nil
		}
		return nil, err
	}

	needles, err := s.index.Analyze(ctx, partial)
	if err != nil || len(needles) == 0 {
		needles = s.normalizer.ExtractKeywords(partial, 0)
	}

	seen := make(map[string]struct{})
	var suggestions []string
	for _, res := range results {
		for _, keyword := range s.normalizer.ExtractKeywords(res.Record.Content, 0) {
			if !containsAny(keyword, needles) {
				continue
			}
			if _, dup := seen[keyword]; dup {
				continue
			}
			seen[keyword] = struct{}{}
			suggestions = append(suggestions, keyword)
			if len(suggestions) >= size {
				return suggestions, nil
			}
		}
	}
	return suggestions, nil
}

// SimilarDocuments finds pages resembling the record at (pageNumber,
// filePath) by searching with the base page's leading keywords.
func (s *SearchService) SimilarDocuments(ctx context.Context, pageNumber int, filePath string, size int) ([]domain.SearchResult, error) {
	if size <= 0 {
		size = 5
	}
	base, err := s.DocumentByPage(ctx, pageNumber, filePath)
	if err != nil {
		return nil, err
	}
	keywords := s.normalizer.ExtractKeywords(base.Content, 0)
	if len(keywords) == 0 {
		return nil, nil
	}
	if len(keywords) > similarKeywordCount {
		keywords = keywords[:similarKeywordCount]
	}
	return s.Search(ctx, strings.Join(keywords, " "), domain.SearchOptions{Size: size})
}

// ResetIndex drops the index entirely; the next initialization recreates it.
func (s *SearchService) ResetIndex(ctx context.Context) error {
	s.initialized = false
	return s.index.DeleteIndex(ctx)
}

// PDFInfo exposes source-document metadata for the stats display.
func (s *SearchService) PDFInfo(path string) (domain.PDFInfo, error) {
	return s.source.Info(path)
}

func containsAny(keyword string, needles []string) bool {
	lower := strings.ToLower(keyword)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
