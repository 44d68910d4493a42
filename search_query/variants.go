package search_query

import (
	"slices"
	"strings"
)

const (
	yo = "ё"
	ye = "е"
)

// Variants returns the spellings treated as equivalent to term: the term itself, its
// all-е form, and every form with exactly one е written as ё. A word carries at most
// one ё, so both spellings of the same word yield the same set. The result is sorted
// and never empty.
func Variants(term string) []string {
	base := strings.ReplaceAll(term, yo, ye)
	out := []string{term, base}
	for i := 0; ; {
		j := strings.Index(base[i:], ye)
		if j < 0 {
			break
		}
		pos := i + j
		out = append(out, base[:pos]+yo+base[pos+len(ye):])
		i = pos + len(ye)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
