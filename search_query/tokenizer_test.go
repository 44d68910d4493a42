package search_query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"only delimiters", "  - , ;  ", []string{}},
		{"dash between words", "Акунин - Весь мир театр", []string{"акунин", "весь", "мир", "театр"}},
		{"case folded", "ЧЁРНЫЙ Город", []string{"чёрный", "город"}},
		{"duplicates kept", "мир мир", []string{"мир", "мир"}},
		{"digits are terms", "Том 2", []string{"том", "2"}},
		{"underscore separates", "___no_such_book___", []string{"no", "such", "book"}},
		{"fts operators are plain text", `title:"x" OR NEAR(a b)*`, []string{"title", "x", "or", "near", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_IdempotentOnOwnOutput(t *testing.T) {
	inputs := []string{
		"Акунин - Весь мир театр",
		"Straße İstanbul ǅemal",
		`he said "hi"; 42nd-street`,
		"Ёжик в тумане",
		"\t\n",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := Tokenize(input)
			second := Tokenize(strings.Join(first, " "))
			assert.Equal(t, len(first), len(second))
			for i := range first {
				assert.Equal(t, first[i], second[i])
			}
		})
	}
}

func TestQuoteLiteral_RoundTrip(t *testing.T) {
	terms := []string{"акунин", `a"b`, `""`, `"`, "", "plain"}

	for _, term := range terms {
		t.Run(term, func(t *testing.T) {
			quoted := QuoteLiteral(term)
			got, ok := UnquoteLiteral(quoted)
			assert.True(t, ok)
			assert.Equal(t, term, got)
		})
	}
}

func TestQuoteLiteral_DoublesQuotes(t *testing.T) {
	assert.Equal(t, `"a""b"`, QuoteLiteral(`a"b`))
}

func TestUnquoteLiteral_Rejects(t *testing.T) {
	for _, s := range []string{"", `"`, `abc`, `"a"b"`, `"abc`} {
		_, ok := UnquoteLiteral(s)
		assert.False(t, ok, s)
	}
}
