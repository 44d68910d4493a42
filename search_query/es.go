package search_query

import "book-search/domain"

var (
	authorFields  = []string{"author", "author._2gram", "author._3gram"}
	titleFields   = []string{"title", "title._2gram", "title._3gram"}
	generalFields = append(append([]string{}, titleFields...), authorFields...)
)

// boolPrefix matches every word of query as a prefix-aware term over fields.
func boolPrefix(fields []string, query string) map[string]any {
	return map[string]any{
		"multi_match": map[string]any{
			"query":    query,
			"type":     "bool_prefix",
			"fields":   fields,
			"operator": "and",
		},
	}
}

// BuildSearchQuery returns the Elasticsearch Query DSL for q.
// Spelling variants are left to the index analyzer, which folds ё to е itself.
func BuildSearchQuery(q domain.SearchQuery) map[string]any {
	var must []any
	if q.General != "" {
		must = append(must, boolPrefix(generalFields, q.General))
	}
	if q.Author != "" {
		must = append(must, boolPrefix(authorFields, q.Author))
	}
	if q.Title != "" {
		must = append(must, boolPrefix(titleFields, q.Title))
	}
	if len(must) == 0 {
		return map[string]any{"match_none": map[string]any{}}
	}
	return map[string]any{"bool": map[string]any{"must": must}}
}

// IndexBody returns the settings and mappings of the books index.
func IndexBody() map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]any{
				"char_filter": map[string]any{
					"yo_mapping": map[string]any{
						"type":     "mapping",
						"mappings": []string{"ё=>е", "Ё=>Е"},
					},
				},
				"filter": map[string]any{
					"russian_stop":    map[string]any{"type": "stop", "stopwords": "_russian_"},
					"russian_stemmer": map[string]any{"type": "stemmer", "language": "russian"},
				},
				"analyzer": map[string]any{
					"ru_text": map[string]any{
						"type":        "custom",
						"char_filter": []string{"yo_mapping"},
						"tokenizer":   "standard",
						"filter":      []string{"lowercase", "russian_stop", "russian_stemmer"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":     map[string]any{"type": "integer"},
				"author": map[string]any{"type": "search_as_you_type", "analyzer": "ru_text"},
				"title":  map[string]any{"type": "search_as_you_type", "analyzer": "ru_text"},
			},
		},
	}
}
