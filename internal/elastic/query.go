package elastic

import (
	"lawsearch/internal/domain"
)

// Per-clause boost weights. Exact phrases dominate, a full title match
// outranks scattered content terms, and fuzzy matches only break ties.
const (
	boostPhrase  = 3.0
	boostTitle   = 2.5
	boostContent = 1.0
	boostFuzzy   = 0.5

	titleFragmentSize    = 100
	contentFragmentSize  = 150
	contentFragmentCount = 3

	// DefaultSize caps a result set when the caller passes none.
	DefaultSize = 10
)

// QueryBuilder assembles search request bodies. The highlight delimiters are
// whatever the presentation layer wants to render matches with.
type QueryBuilder struct {
	preTag  string
	postTag string
}

// NewQueryBuilder builds a query builder with the given highlight delimiters;
// empty delimiters fall back to "**".
func NewQueryBuilder(preTag, postTag string) *QueryBuilder {
	if preTag == "" {
		preTag = "**"
	}
	if postTag == "" {
		postTag = "**"
	}
	return &QueryBuilder{preTag: preTag, postTag: postTag}
}

// Build constructs the boosted disjunctive query for a keyword search.
// An empty query with a category browses the whole category instead; the
// category filter never contributes to scoring.
func (b *QueryBuilder) Build(query string, opts domain.SearchOptions) map[string]any {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}

	boolQuery := map[string]any{}
	if query == "" {
		boolQuery["must"] = []any{map[string]any{"match_all": map[string]any{}}}
	} else {
		boolQuery["should"] = []any{
			map[string]any{"match_phrase": map[string]any{
				"content": map[string]any{"query": query, "boost": boostPhrase},
			}},
			map[string]any{"match": map[string]any{
				"title": map[string]any{"query": query, "operator": "and", "boost": boostTitle},
			}},
			map[string]any{"match": map[string]any{
				"content": map[string]any{"query": query, "boost": boostContent},
			}},
			map[string]any{"match": map[string]any{
				"content": map[string]any{"query": query, "fuzziness": "AUTO", "boost": boostFuzzy},
			}},
		}
		boolQuery["minimum_should_match"] = 1
	}
	if opts.Category != "" {
		boolQuery["filter"] = []any{
			map[string]any{"term": map[string]any{"category": opts.Category}},
		}
	}

	body := map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"size":  size,
	}
	if query != "" {
		body["highlight"] = map[string]any{
			"pre_tags":  []string{b.preTag},
			"post_tags": []string{b.postTag},
			"fields": map[string]any{
				"title": map[string]any{
					"fragment_size":       titleFragmentSize,
					"number_of_fragments": 1,
				},
				"content": map[string]any{
					"fragment_size":       contentFragmentSize,
					"number_of_fragments": contentFragmentCount,
				},
			},
		}
		body["sort"] = []any{
			map[string]any{"_score": map[string]any{"order": "desc"}},
		}
	}
	if opts.Explain {
		body["explain"] = true
	}
	return body
}

// BuildPageLookup constructs the point-lookup query keyed by page number
// and file path.
func (b *QueryBuilder) BuildPageLookup(pageNumber int, filePath string) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"term": map[string]any{"page_number": pageNumber}},
					map[string]any{"term": map[string]any{"file_path": filePath}},
				},
			},
		},
		"size": 1,
	}
}

// BuildCategoryCounts constructs the terms aggregation over categories.
func (b *QueryBuilder) BuildCategoryCounts() map[string]any {
	return map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"categories": map[string]any{
				"terms": map[string]any{
					"field": "category",
					"size":  10,
				},
			},
		},
	}
}

// searchResponse mirrors the slice of an index search response we consume.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source      domain.PageRecord   `json:"_source"`
			Score       float64             `json:"_score"`
			Highlight   map[string][]string `json:"highlight"`
			Explanation *domain.Explanation `json:"_explanation"`
		} `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		Categories struct {
			Buckets []struct {
				Key      string `json:"key"`
				DocCount int    `json:"doc_count"`
			} `json:"buckets"`
		} `json:"categories"`
	} `json:"aggregations"`
}

// decodeResults maps raw hits onto typed results. Hits without highlight
// fragments keep a nil map; the service layer fills the fallback excerpt.
func decodeResults(resp searchResponse) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		results = append(results, domain.SearchResult{
			Record:      hit.Source,
			Score:       hit.Score,
			Highlights:  hit.Highlight,
			Explanation: hit.Explanation,
		})
	}
	return results
}
