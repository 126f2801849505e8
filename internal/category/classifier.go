// Package category assigns one of a fixed set of labels to a block of text
// by counting which keyword group it mentions the most.
package category

import "strings"

// Fallback is returned when no group keyword occurs in the text.
const Fallback = "기타"

// Group is one label with the keywords that vote for it.
type Group struct {
	Label    string
	Keywords []string
}

// DefaultGroups are the legal-domain groups, in tie-break priority order:
// an earlier group wins any count tie with a later one.
func DefaultGroups() []Group {
	return []Group{
		{Label: "스토킹", Keywords: []string{"스토킹", "괴롭힘", "추적", "감시", "접근금지"}},
		{Label: "성폭력", Keywords: []string{"성폭력", "성추행", "성희롱", "강간", "추행"}},
		{Label: "사행산업", Keywords: []string{"도박", "사행", "카지노", "경마", "복권", "게임"}},
	}
}

// Classifier is a pure keyword-count classifier. It holds no external state;
// the same text always yields the same label.
type Classifier struct {
	groups []Group
}

// NewClassifier builds a classifier over the given groups, or the default
// legal-domain groups when none are given. Group order is the tie-break order.
func NewClassifier(groups ...Group) *Classifier {
	if len(groups) == 0 {
		groups = DefaultGroups()
	}
	return &Classifier{groups: groups}
}

// Classify lower-cases text, counts per group how many distinct keywords
// occur as substrings, and returns the label of the group with the strictly
// highest count. Ties keep the earlier group; zero matches everywhere
// returns Fallback.
func (c *Classifier) Classify(text string) string {
	lower := strings.ToLower(text)
	best := Fallback
	bestCount := 0
	for _, g := range c.groups {
		count := 0
		for _, kw := range g.Keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > bestCount {
			bestCount = count
			best = g.Label
		}
	}
	return best
}
