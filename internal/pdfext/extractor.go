// Package pdfext turns a PDF file into the ordered page records the index
// consumes. Pages without extractable text are skipped, never fatal.
package pdfext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"lawsearch/internal/category"
	"lawsearch/internal/domain"
	"lawsearch/internal/textutil"
)

const (
	maxTitleRunes      = 100
	fallbackTitleRunes = 50
	minTitleLineRunes  = 5
)

// Extractor reads PDF pages and builds classified page records.
type Extractor struct {
	normalizer *textutil.Normalizer
	classifier *category.Classifier
	log        *slog.Logger
	readPages  func(path string) ([]domain.Page, error)
}

var _ domain.PageSource = (*Extractor)(nil)

// NewExtractor wires the normalizer and classifier used on every page.
func NewExtractor(normalizer *textutil.Normalizer, classifier *category.Classifier, log *slog.Logger) *Extractor {
	return &Extractor{
		normalizer: normalizer,
		classifier: classifier,
		log:        log,
		readPages:  readPDFPages,
	}
}

// Extract returns one record per page with extractable text, in ascending
// page order. A missing file is domain.ErrNotFound; a page that fails to
// yield text is logged and skipped.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.PageRecord, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pdf %s: %w", path, domain.ErrNotFound)
	}
	pages, err := e.readPages(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	e.log.Info("extracting pdf", "path", path, "pages", len(pages))

	var records []domain.PageRecord
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		if strings.TrimSpace(page.Text) == "" {
			e.log.Warn("no extractable text on page", "page", page.Number)
			continue
		}
		cleaned := e.normalizer.Clean(page.Text)
		if cleaned == "" {
			e.log.Warn("page text cleaned to nothing", "page", page.Number)
			continue
		}
		records = append(records, domain.NewPageRecord(
			e.deriveTitle(page.Text, cleaned),
			cleaned,
			page.Number,
			e.classifier.Classify(cleaned),
			path,
		))
		e.log.Debug("page processed", "page", page.Number, "chars", utf8.RuneCountInString(cleaned))
	}
	e.log.Info("pdf extraction done", "path", path, "records", len(records))
	return records, nil
}

// Info reports file metadata and the page count without extracting text.
// The parser panics on malformed files; that surfaces as an error here.
func (e *Extractor) Info(path string) (info domain.PDFInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = domain.PDFInfo{}, fmt.Errorf("parse pdf %s: %v", path, r)
		}
	}()
	st, err := os.Stat(path)
	if err != nil {
		return domain.PDFInfo{}, fmt.Errorf("pdf %s: %w", path, domain.ErrNotFound)
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return domain.PDFInfo{}, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	return domain.PDFInfo{
		FileName:   filepath.Base(path),
		FilePath:   path,
		FileSize:   st.Size(),
		TotalPages: r.NumPage(),
	}, nil
}

// deriveTitle prefers the page's first non-trivial line; short first lines
// fall back to the head of the cleaned content.
func (e *Extractor) deriveTitle(raw, cleaned string) string {
	firstLine, _, _ := strings.Cut(raw, "\n")
	firstLine = e.normalizer.Clean(firstLine)
	if utf8.RuneCountInString(firstLine) > minTitleLineRunes {
		return cutRunes(firstLine, maxTitleRunes)
	}
	return cutRunes(cleaned, fallbackTitleRunes)
}

func cutRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// readPDFPages extracts the plain text of every page, in order. A page that
// cannot be read contributes an empty text entry rather than an error. The
// parser panics on malformed input outside of GetPlainText, so both the
// file-level and the per-page walks convert panics into failure values.
func readPDFPages(path string) (pages []domain.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("parse pdf %s: %v", path, r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	total := r.NumPage()
	pages = make([]domain.Page, 0, total)
	for i := 1; i <= total; i++ {
		pages = append(pages, domain.Page{Number: i, Text: pageText(r, i)})
	}
	return pages, nil
}

// pageText extracts one page's plain text; any failure, panic included,
// yields an empty page the caller logs and skips.
func pageText(r *pdf.Reader, i int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := r.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
