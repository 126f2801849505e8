// Package explain renders an index relevance-score breakdown as an indented,
// human-readable attribution. It only narrates scores, never changes them,
// and tolerates malformed nodes at every level.
package explain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"lawsearch/internal/domain"
)

const (
	// maxDepth caps recursion; deeper nodes are not rendered so pathological
	// breakdowns cannot explode the output.
	maxDepth = 4
	// maxChildren caps how many detail nodes are shown per level.
	maxChildren = 4

	missingValue = "N/A"
	unknownField = "unknown field"
)

var (
	weightRe  = regexp.MustCompile(`weight\((\w+):([^\s)]+)`)
	freqRe    = regexp.MustCompile(`freq=([0-9.]+)`)
	fieldRe   = regexp.MustCompile(`\b(title|content)\b`)
	similarRe = regexp.MustCompile(`score\(|similarity`)
)

// rule pairs a description matcher with its human-readable rendering.
// Rules are tried in order; the first match wins. Descriptions embed field
// and term names, so this is a pattern list, not an exact-string table.
type rule struct {
	re     *regexp.Regexp
	render func(match []string) string
}

var rules = []rule{
	{weightRe, func(m []string) string {
		return fmt.Sprintf("%s field weight for %q", m[1], m[2])
	}},
	{freqRe, func(m []string) string {
		return fmt.Sprintf("term frequency %s", m[1])
	}},
	{regexp.MustCompile(`sum of`), constLabel("field score total")},
	{regexp.MustCompile(`max of`), constLabel("best score selection")},
	{regexp.MustCompile(`\bidf\b`), constLabel("term rarity weight (idf)")},
	{regexp.MustCompile(`\btf\b`), constLabel("term frequency score (tf)")},
	{regexp.MustCompile(`boost`), constLabel("query boost")},
	{regexp.MustCompile(`avgdl|\bdl\b`), constLabel("field length normalization")},
}

func constLabel(label string) func([]string) string {
	return func([]string) string { return label }
}

// Render walks the breakdown tree and returns the indented attribution.
// A nil tree renders as an empty string.
func Render(root *domain.Explanation) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	renderNode(&b, *root, 0)
	return strings.TrimRight(b.String(), "\n")
}

func renderNode(b *strings.Builder, node domain.Explanation, depth int) {
	if depth >= maxDepth {
		return
	}
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s = %s\n", indent, describe(node.Description), formatValue(node.Value))

	children := topChildren(node.Details)
	if len(children) == 0 {
		return
	}
	switch {
	case strings.Contains(node.Description, "sum of"):
		for _, child := range children {
			renderNode(b, child, depth+1)
		}
	case strings.Contains(node.Description, "max of"):
		for _, child := range children {
			if strings.Contains(child.Description, "sum of") {
				// group per-field sums under a synthesized field header
				fmt.Fprintf(b, "%s  [%s]\n", indent, fieldOf(child))
				renderNode(b, child, depth+2)
			} else {
				renderNode(b, child, depth+1)
			}
		}
	default:
		for _, child := range children {
			renderNode(b, child, depth+1)
		}
	}
}

// describe translates an engine score description into a readable label.
func describe(desc string) string {
	if desc == "" {
		return ""
	}
	for _, r := range rules {
		if m := r.re.FindStringSubmatch(desc); m != nil {
			return r.render(m)
		}
	}
	if similarRe.MatchString(desc) {
		return describeSimilarity(desc)
	}
	return "score calculation"
}

// describeSimilarity names whichever text field the description mentions.
func describeSimilarity(desc string) string {
	if m := fieldRe.FindStringSubmatch(desc); m != nil {
		return m[1] + " match score"
	}
	return "match score"
}

// fieldOf infers the field a per-field sum scores by inspecting its first
// grandchild's description.
func fieldOf(node domain.Explanation) string {
	if len(node.Details) == 0 {
		return unknownField
	}
	desc := node.Details[0].Description
	if m := weightRe.FindStringSubmatch(desc); m != nil {
		return m[1]
	}
	if m := fieldRe.FindStringSubmatch(desc); m != nil {
		return m[1]
	}
	return unknownField
}

// topChildren returns at most maxChildren details, highest value first.
// Nodes without a value sort as zero.
func topChildren(details []domain.Explanation) []domain.Explanation {
	if len(details) == 0 {
		return nil
	}
	sorted := make([]domain.Explanation, len(details))
	copy(sorted, details)
	sort.SliceStable(sorted, func(i, j int) bool {
		return nodeValue(sorted[i]) > nodeValue(sorted[j])
	})
	if len(sorted) > maxChildren {
		sorted = sorted[:maxChildren]
	}
	return sorted
}

func nodeValue(node domain.Explanation) float64 {
	if node.Value == nil {
		return 0
	}
	return *node.Value
}

func formatValue(v *float64) string {
	if v == nil {
		return missingValue
	}
	return fmt.Sprintf("%.4f", *v)
}
