package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawsearch/internal/domain"
)

type fakePort struct {
	results []domain.SearchResult
	err     error
}

func (f fakePort) Search(context.Context, string, domain.SearchOptions) ([]domain.SearchResult, error) {
	return f.results, f.err
}

func (f fakePort) SearchByCategory(context.Context, string, int) ([]domain.SearchResult, error) {
	return f.results, f.err
}

func (f fakePort) Statistics(context.Context) (domain.Statistics, error) {
	return domain.Statistics{}, f.err
}

func execute(t *testing.T, port SearchPort, line string) Model {
	t.Helper()
	m := New(port, Options{})
	model, _ := m.execute(line)
	got, ok := model.(Model)
	require.True(t, ok)
	return got
}

func TestExecute_UnsearchableInputIsNotAnError(t *testing.T) {
	m := execute(t, fakePort{err: domain.ErrEmptyQuery}, "!!!")
	assert.NotContains(t, m.status, "Error")
	assert.Contains(t, m.status, "no matches")
	assert.Empty(t, m.results)
}

func TestExecute_ServiceErrorShownInStatus(t *testing.T) {
	m := execute(t, fakePort{err: errors.New("connection reset")}, "스토킹")
	assert.Contains(t, m.status, "Error: connection reset")
	assert.Empty(t, m.results)
}

func TestExecute_ResultsUpdateStatus(t *testing.T) {
	hits := []domain.SearchResult{{Record: domain.PageRecord{Title: "제목", PageNumber: 1}, Score: 1}}
	m := execute(t, fakePort{results: hits}, "스토킹")
	assert.Contains(t, m.status, `Results for "스토킹"`)
	assert.Len(t, m.results, 1)
}
