package elastic

import "strings"

// koreanLegalPrefix selects the domain-tuned analyzer. Any other index name
// gets the minimal standard analyzer. Changing a schema means recreating the
// index; there is no live migration.
const koreanLegalPrefix = "korean_legal"

// SchemaFor returns the index-creation body (settings + mappings) for the
// given index name.
func SchemaFor(indexName string) map[string]any {
	if strings.HasPrefix(indexName, koreanLegalPrefix) {
		return koreanLegalSchema()
	}
	return standardSchema()
}

// standardSchema is the minimal variant: standard tokenizer, case folding
// and stopword removal.
func standardSchema() map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"korean_analyzer": map[string]any{
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "stop"},
					},
				},
			},
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": fieldMappings("korean_analyzer"),
	}
}

// koreanLegalSchema is the domain-tuned variant: nori tokenization with a
// curated user dictionary, part-of-speech stopword classes, reading-form
// normalization and synonym expansion across the category vocabularies.
func koreanLegalSchema() map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"analysis": map[string]any{
				"tokenizer": map[string]any{
					"korean_legal_tokenizer": map[string]any{
						"type":            "nori_tokenizer",
						"decompound_mode": "mixed",
						"user_dictionary_rules": []string{
							"스토킹",
							"접근금지",
							"성폭력",
							"성추행",
							"성희롱",
							"사행산업",
							"사행행위",
							"접근금지명령",
						},
					},
				},
				"filter": map[string]any{
					"korean_pos_filter": map[string]any{
						"type": "nori_part_of_speech",
						"stoptags": []string{
							"E",   // endings
							"J",   // particles
							"MAG", // general adverbs
							"XR",  // roots
						},
					},
					"korean_synonyms": map[string]any{
						"type": "synonym",
						"synonyms": []string{
							"스토킹, 괴롭힘, 추적",
							"성폭력, 성범죄",
							"도박, 사행, 사행행위",
							"카지노, 경마, 복권",
						},
					},
				},
				"analyzer": map[string]any{
					"korean_legal_analyzer": map[string]any{
						"type":      "custom",
						"tokenizer": "korean_legal_tokenizer",
						"filter": []string{
							"lowercase",
							"nori_readingform",
							"korean_pos_filter",
							"korean_synonyms",
						},
					},
				},
			},
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": fieldMappings("korean_legal_analyzer"),
	}
}

// fieldMappings applies the analyzer to both text fields; category and
// file_path are exact-match keys, page_number and created_at are typed.
func fieldMappings(analyzer string) map[string]any {
	return map[string]any{
		"properties": map[string]any{
			"title": map[string]any{
				"type":     "text",
				"analyzer": analyzer,
			},
			"content": map[string]any{
				"type":     "text",
				"analyzer": analyzer,
			},
			"category": map[string]any{
				"type": "keyword",
			},
			"file_path": map[string]any{
				"type": "keyword",
			},
			"page_number": map[string]any{
				"type": "integer",
			},
			"created_at": map[string]any{
				"type": "date",
			},
		},
	}
}
