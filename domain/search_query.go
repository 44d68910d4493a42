package domain

import "strings"

// SearchPageLimit is the number of books a single search may display.
const SearchPageLimit = 50

// SearchQuery holds the three optional inputs of a book search.
// An empty field means the input is absent.
type SearchQuery struct {
	General string
	Author  string
	Title   string
}

// NewSearchQuery trims every input so that blank values become absent.
func NewSearchQuery(general, author, title string) SearchQuery {
	return SearchQuery{
		General: strings.TrimSpace(general),
		Author:  strings.TrimSpace(author),
		Title:   strings.TrimSpace(title),
	}
}

// IsEmpty reports whether no input is present.
func (q SearchQuery) IsEmpty() bool {
	return q.General == "" && q.Author == "" && q.Title == ""
}
