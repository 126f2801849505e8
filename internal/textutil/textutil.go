package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMinKeywordLength is the minimum rune length of extracted keywords.
	DefaultMinKeywordLength = 2
	// DefaultExcerptLength is the rune length of highlighted excerpts.
	DefaultExcerptLength = 200
	// DefaultChunkSize is the rune length of text chunks.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the rune overlap between adjacent chunks.
	DefaultChunkOverlap = 100

	ellipsis  = "..."
	markBegin = "**"
	markEnd   = "**"
)

// Normalizer cleans raw page text and produces keywords, excerpts and
// chunks from it. All length arithmetic is rune-based; the corpus is Korean.
type Normalizer struct {
	disallowed *regexp.Regexp
	whitespace *regexp.Regexp
}

// NewNormalizer builds a normalizer that keeps ASCII word characters,
// whitespace and the given extra script classes (regexp character-class
// fragments, e.g. `\p{Hangul}`). With no arguments Hangul is kept.
func NewNormalizer(scripts ...string) *Normalizer {
	if len(scripts) == 0 {
		scripts = []string{`\p{Hangul}`}
	}
	return &Normalizer{
		disallowed: regexp.MustCompile(`[^\w\s` + strings.Join(scripts, "") + `]`),
		whitespace: regexp.MustCompile(`\s+`),
	}
}

// Clean strips disallowed runes, collapses whitespace runs to single spaces
// and trims the ends. Cleaning an already clean string is a no-op.
func (n *Normalizer) Clean(text string) string {
	if text == "" {
		return ""
	}
	text = n.disallowed.ReplaceAllString(text, " ")
	text = n.whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractKeywords cleans text and returns its whitespace-separated tokens of
// at least minLength runes, in order, duplicates retained. minLength <= 0
// selects the default.
func (n *Normalizer) ExtractKeywords(text string, minLength int) []string {
	if minLength <= 0 {
		minLength = DefaultMinKeywordLength
	}
	var keywords []string
	for _, word := range strings.Fields(n.Clean(text)) {
		if utf8.RuneCountInString(word) >= minLength {
			keywords = append(keywords, word)
		}
	}
	return keywords
}

// HighlightExcerpt returns a window of roughly maxLength runes around the
// first keyword that occurs in text, with every occurrence of that keyword
// inside the window wrapped in emphasis markers and ellipses marking cut
// edges. Later keywords are ignored once one matches. When no keyword
// occurs (or none are given) it returns a plain truncation.
func (n *Normalizer) HighlightExcerpt(text string, keywords []string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultExcerptLength
	}
	runes := []rune(text)
	if text == "" || len(keywords) == 0 {
		return truncate(runes, maxLength)
	}
	for _, keyword := range keywords {
		pos := indexRunes(runes, []rune(keyword))
		if pos < 0 {
			continue
		}
		start := pos - maxLength/2
		if start < 0 {
			start = 0
		}
		end := pos + maxLength/2
		if end > len(runes) {
			end = len(runes)
		}
		excerpt := strings.ReplaceAll(string(runes[start:end]), keyword, markBegin+keyword+markEnd)
		if start > 0 {
			excerpt = ellipsis + excerpt
		}
		if end < len(runes) {
			excerpt += ellipsis
		}
		return excerpt
	}
	return truncate(runes, maxLength)
}

// Chunk splits text into windows of at most maxSize runes, breaking at the
// last space inside a window when one exists strictly after its start, and
// overlapping adjacent windows by overlap runes. Text within maxSize is
// returned unchanged as a single chunk. The walk stops at the text end or
// once the advanced start is <= 0 (overlap >= maxSize); a window that would
// otherwise fail to advance restarts at its own end.
func (n *Normalizer) Chunk(text string, maxSize, overlap int) []string {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= maxSize {
		return []string{text}
	}
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + maxSize
		if end > len(runes) {
			end = len(runes)
		} else {
			// prefer a word boundary before the window end
			if space := lastSpace(runes, start, end); space > start {
				end = space
			}
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= 0 {
			break
		}
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

func truncate(runes []rune, maxLength int) string {
	if len(runes) > maxLength {
		return string(runes[:maxLength]) + ellipsis
	}
	return string(runes)
}

// indexRunes returns the rune offset of the first occurrence of sub in runes,
// or -1 when absent.
func indexRunes(runes, sub []rune) int {
	if len(sub) == 0 || len(sub) > len(runes) {
		return -1
	}
	for i := 0; i+len(sub) <= len(runes); i++ {
		match := true
		for j := range sub {
			if runes[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// lastSpace returns the highest index of a space in runes[start:end),
// or -1 when there is none.
func lastSpace(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
