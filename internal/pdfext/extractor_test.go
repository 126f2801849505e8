package pdfext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawsearch/internal/category"
	"lawsearch/internal/domain"
	"lawsearch/internal/textutil"
)

func newTestExtractor(pages []domain.Page) *Extractor {
	e := NewExtractor(textutil.NewNormalizer(), category.NewClassifier(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.readPages = func(string) ([]domain.Page, error) { return pages, nil }
	return e
}

func TestExtract_MissingFile(t *testing.T) {
	e := newTestExtractor(nil)
	_, err := e.Extract(context.Background(), "testdata/does-not-exist.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExtract_SkipsEmptyPages(t *testing.T) {
	e := newTestExtractor([]domain.Page{
		{Number: 1, Text: "스토킹범죄의 처벌 등에 관한 법률\n제1조 내용"},
		{Number: 2, Text: "   \n "},
		{Number: 3, Text: "도박 및 사행행위 규제 조항"},
	})
	records, err := e.extractFromPages(t)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].PageNumber)
	assert.Equal(t, 3, records[1].PageNumber)
	assert.Equal(t, "스토킹", records[0].Category)
	assert.Equal(t, "사행산업", records[1].Category)
	for _, r := range records {
		assert.NotEmpty(t, r.Content)
		assert.False(t, r.CreatedAt.IsZero())
	}
}

// extractFromPages runs Extract against a path that exists on disk.
func (e *Extractor) extractFromPages(t *testing.T) ([]domain.PageRecord, error) {
	t.Helper()
	return e.Extract(context.Background(), "extractor.go")
}

// malformedPDF builds a file whose header and xref parse but whose page-tree
// object is a bare keyword, which trips the parser after a successful open.
func malformedPDF() []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	catalog := b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	pages := b.Len()
	b.WriteString("2 0 obj\ngarbage\nendobj\n")
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 3\n0000000000 65535 f \n%010d 00000 n \n%010d 00000 n \n", catalog, pages)
	fmt.Fprintf(&b, "trailer\n<< /Size 3 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return b.Bytes()
}

func TestExtract_MalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, malformedPDF(), 0o644))

	e := NewExtractor(textutil.NewNormalizer(), category.NewClassifier(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.NotPanics(t, func() {
		_, err := e.Extract(context.Background(), path)
		assert.Error(t, err)
	})
	assert.NotPanics(t, func() {
		_, err := e.Info(path)
		assert.Error(t, err)
	})
}

func TestExtract_ReadFailure(t *testing.T) {
	e := newTestExtractor(nil)
	e.readPages = func(string) ([]domain.Page, error) { return nil, errors.New("broken xref") }
	_, err := e.extractFromPages(t)
	assert.ErrorContains(t, err, "broken xref")
}

func TestDeriveTitle(t *testing.T) {
	e := newTestExtractor(nil)

	t.Run("first line used when long enough", func(t *testing.T) {
		raw := "스토킹범죄의 처벌 등에 관한 법률\n본문이 이어진다"
		title := e.deriveTitle(raw, e.normalizer.Clean(raw))
		assert.Equal(t, "스토킹범죄의 처벌 등에 관한 법률", title)
	})

	t.Run("long first line truncated to 100 runes", func(t *testing.T) {
		raw := strings.Repeat("가", 150) + "\n나머지"
		title := e.deriveTitle(raw, e.normalizer.Clean(raw))
		assert.Equal(t, strings.Repeat("가", 100)+"...", title)
	})

	t.Run("short first line falls back to content head", func(t *testing.T) {
		raw := "제1조\n" + strings.Repeat("나", 80)
		cleaned := e.normalizer.Clean(raw)
		title := e.deriveTitle(raw, cleaned)
		assert.True(t, strings.HasSuffix(title, "..."))
		assert.Equal(t, 53, len([]rune(title)))
	})

	t.Run("short content kept whole", func(t *testing.T) {
		raw := "제1조\n짧은 내용"
		title := e.deriveTitle(raw, e.normalizer.Clean(raw))
		assert.Equal(t, "제1조 짧은 내용", title)
	})
}
