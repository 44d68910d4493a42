// Package search_query turns untrusted user text into backend queries.
//
// Two dialects share the same tokenization: an FTS5 MATCH expression for the
// embedded SQLite index and an Elasticsearch Query DSL object for the external engine.
package search_query

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Tokenize extracts maximal runs of Unicode letters and digits from text, case folded.
// Terms keep their first-occurrence order and duplicates are preserved.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	// Caser keeps internal state, so one per call.
	folded := cases.Fold().String(text)
	return strings.FieldsFunc(folded, isDelimiter)
}

func isDelimiter(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// QuoteLiteral wraps term in double quotes, doubling any quote inside it.
func QuoteLiteral(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}

// UnquoteLiteral reverses QuoteLiteral. It reports false when s is not a quoted literal.
func UnquoteLiteral(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] != '"' {
			b.WriteByte(inner[i])
			continue
		}
		if i+1 >= len(inner) || inner[i+1] != '"' {
			return "", false
		}
		b.WriteByte('"')
		i++
	}
	return b.String(), true
}
