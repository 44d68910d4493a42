package search_query

import (
	"strings"

	"book-search/domain"
)

// Column restricts a literal to one FTS5 column. ColumnAny matches every indexed column.
type Column string

const (
	ColumnAny    Column = ""
	ColumnAuthor Column = "author"
	ColumnTitle  Column = "title"
)

// Expr is a node of an FTS5 MATCH expression. Escaping happens only in String.
type Expr interface {
	String() string
}

// Literal is a single quoted term, optionally bound to a column.
type Literal struct {
	Column Column
	Text   string
}

func (l Literal) String() string {
	if l.Column == ColumnAny {
		return QuoteLiteral(l.Text)
	}
	return string(l.Column) + ":" + QuoteLiteral(l.Text)
}

// Or matches when any alternative matches.
type Or []Expr

func (o Or) String() string {
	switch len(o) {
	case 0:
		return ""
	case 1:
		return o[0].String()
	}
	parts := make([]string, len(o))
	for i, e := range o {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// And matches when every operand matches. An empty And renders as the empty string.
type And []Expr

func (a And) String() string {
	parts := make([]string, 0, len(a))
	for _, e := range a {
		if s := e.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " AND ")
}

// TermExpr expands term into its spelling variants bound to column.
func TermExpr(term string, column Column) Expr {
	variants := Variants(term)
	if len(variants) == 1 {
		return Literal{Column: column, Text: variants[0]}
	}
	alts := make(Or, len(variants))
	for i, v := range variants {
		alts[i] = Literal{Column: column, Text: v}
	}
	return alts
}

// InputExprs tokenizes one user input into per-term expressions bound to column.
func InputExprs(text string, column Column) []Expr {
	terms := Tokenize(text)
	exprs := make([]Expr, 0, len(terms))
	for _, term := range terms {
		exprs = append(exprs, TermExpr(term, column))
	}
	return exprs
}

// MatchExpr assembles the FTS5 expression for a search query.
func MatchExpr(q domain.SearchQuery) And {
	var all And
	all = append(all, InputExprs(q.General, ColumnAny)...)
	all = append(all, InputExprs(q.Author, ColumnAuthor)...)
	all = append(all, InputExprs(q.Title, ColumnTitle)...)
	return all
}

// BuildMatch renders the FTS5 MATCH string for q. An empty result means no search
// must be executed and the caller should treat it as zero results.
func BuildMatch(q domain.SearchQuery) string {
	return MatchExpr(q).String()
}

// BuildMatchText renders a general-only MATCH string for free text.
func BuildMatchText(text string) string {
	return BuildMatch(domain.SearchQuery{General: text})
}
