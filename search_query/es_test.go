package search_query

import (
	"testing"

	"book-search/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multiMatch(t *testing.T, clause any) map[string]any {
	t.Helper()
	c, ok := clause.(map[string]any)
	require.True(t, ok)
	mm, ok := c["multi_match"].(map[string]any)
	require.True(t, ok)
	return mm
}

func TestBuildSearchQuery_EmptyIsMatchNone(t *testing.T) {
	got := BuildSearchQuery(domain.SearchQuery{})
	assert.Equal(t, map[string]any{"match_none": map[string]any{}}, got)
}

func TestBuildSearchQuery_GeneralUsesTitleAndAuthor(t *testing.T) {
	got := BuildSearchQuery(domain.SearchQuery{General: "Акунин Азазель"})

	must := got["bool"].(map[string]any)["must"].([]any)
	require.Len(t, must, 1)

	mm := multiMatch(t, must[0])
	assert.Equal(t, "bool_prefix", mm["type"])
	assert.Equal(t, "and", mm["operator"])
	assert.Equal(t, "Акунин Азазель", mm["query"])
	assert.Contains(t, mm["fields"], "title")
	assert.Contains(t, mm["fields"], "author")
	assert.Contains(t, mm["fields"], "title._2gram")
	assert.Contains(t, mm["fields"], "author._3gram")
}

func TestBuildSearchQuery_AuthorAndTitleScoped(t *testing.T) {
	got := BuildSearchQuery(domain.SearchQuery{Author: "Акунин", Title: "Азазель"})

	must := got["bool"].(map[string]any)["must"].([]any)
	require.Len(t, must, 2)

	authorFields := multiMatch(t, must[0])["fields"].([]string)
	titleFields := multiMatch(t, must[1])["fields"].([]string)
	for _, f := range authorFields {
		assert.Contains(t, f, "author")
	}
	for _, f := range titleFields {
		assert.Contains(t, f, "title")
	}
}

func TestBuildSearchQuery_KeepsYoForAnalyzer(t *testing.T) {
	got := BuildSearchQuery(domain.SearchQuery{Title: "Чёрный город"})
	must := got["bool"].(map[string]any)["must"].([]any)
	assert.Equal(t, "Чёрный город", multiMatch(t, must[0])["query"])
}

func TestIndexBody_FoldsYo(t *testing.T) {
	body := IndexBody()
	analysis := body["settings"].(map[string]any)["analysis"].(map[string]any)
	yo := analysis["char_filter"].(map[string]any)["yo_mapping"].(map[string]any)
	assert.Contains(t, yo["mappings"], "ё=>е")

	props := body["mappings"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "search_as_you_type", props["author"].(map[string]any)["type"])
	assert.Equal(t, "ru_text", props["title"].(map[string]any)["analyzer"])
}
