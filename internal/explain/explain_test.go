package explain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawsearch/internal/domain"
)

func val(v float64) *float64 { return &v }

func node(value float64, desc string, details ...domain.Explanation) domain.Explanation {
	return domain.Explanation{Value: val(value), Description: desc, Details: details}
}

func TestRender_NilTree(t *testing.T) {
	assert.Equal(t, "", Render(nil))
}

func TestRender_LabelRules(t *testing.T) {
	cases := []struct {
		desc  string
		label string
	}{
		{"weight(content:스토킹 in 0) [PerFieldSimilarity], result of:", `content field weight for "스토킹"`},
		{"weight(title:처벌 in 12) [PerFieldSimilarity], result of:", `title field weight for "처벌"`},
		{"tf(freq=3.0), with freq of:", "term frequency 3.0"},
		{"sum of:", "field score total"},
		{"max of:", "best score selection"},
		{"idf, computed as log(1 + (N - n + 0.5) / (n + 0.5)) from:", "term rarity weight (idf)"},
		{"boost", "query boost"},
		{"avgdl, average length of field", "field length normalization"},
		{"score(doc=3)", "match score"},
		{"something about the title similarity", "title match score"},
		{"completely opaque text", "score calculation"},
		{"", ""},
	}
	for _, tc := range cases {
		root := domain.Explanation{Value: val(1), Description: tc.desc}
		line := Render(&root)
		assert.Equal(t, tc.label+" = 1.0000", line, "description %q", tc.desc)
	}
}

func TestRender_MissingValue(t *testing.T) {
	root := domain.Explanation{Description: "sum of:"}
	assert.Equal(t, "field score total = N/A", Render(&root))
}

func TestRender_TopFourChildrenByValue(t *testing.T) {
	children := make([]domain.Explanation, 6)
	for i := range children {
		children[i] = node(float64(i+1), fmt.Sprintf("score(doc=%d)", i))
	}
	root := node(21, "sum of:", children...)

	out := Render(&root)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5) // root + exactly 4 children

	// children render in descending value order
	assert.Contains(t, lines[1], "6.0000")
	assert.Contains(t, lines[2], "5.0000")
	assert.Contains(t, lines[3], "4.0000")
	assert.Contains(t, lines[4], "3.0000")
}

func TestRender_DepthLimit(t *testing.T) {
	// chain of nested sums far deeper than the limit
	deepest := node(1, "sum of:")
	current := deepest
	for i := 0; i < 10; i++ {
		current = node(float64(i), "sum of:", current)
	}
	out := Render(&current)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 4)
	for i, line := range lines {
		assert.Equal(t, strings.Repeat("  ", i), line[:2*i])
	}
}

func TestRender_MaxCombinatorFieldHeaders(t *testing.T) {
	titleSum := node(2.5, "sum of:",
		node(2.5, "weight(title:스토킹 in 0) [PerFieldSimilarity], result of:"))
	contentSum := node(1.2, "sum of:",
		node(1.2, "weight(content:스토킹 in 0) [PerFieldSimilarity], result of:"))
	opaqueSum := node(0.4, "sum of:", node(0.4, "opaque"))
	root := node(2.5, "max of:", titleSum, contentSum, opaqueSum)

	out := Render(&root)
	assert.Contains(t, out, "[title]")
	assert.Contains(t, out, "[content]")
	assert.Contains(t, out, "[unknown field]")

	// field-grouped sums indent one extra level under their header
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 3)
	var header, sum int
	for i, l := range lines {
		if strings.Contains(l, "[title]") {
			header = i
		}
		if strings.Contains(l, "field score total = 2.5000") {
			sum = i
		}
	}
	assert.Equal(t, header+1, sum)
	assert.True(t, strings.HasPrefix(lines[sum], strings.Repeat("  ", 2)))
}

func TestRender_MalformedNodesNeverPanic(t *testing.T) {
	root := domain.Explanation{
		Description: "max of:",
		Details: []domain.Explanation{
			{}, // no value, no description, no details
			{Description: "sum of:"},
			{Value: val(3)},
		},
	}
	assert.NotPanics(t, func() { _ = Render(&root) })
	out := Render(&root)
	assert.Contains(t, out, "N/A")
}
