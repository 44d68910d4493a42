package port

import (
	"book-search/domain"
	"context"
)

// BookSearcher finds books for a query, best match first.
type BookSearcher interface {
	Search(ctx context.Context, query domain.SearchQuery, limit int) ([]*domain.Book, error)
	Backend() string
}

// SearchIndex maintains the documents of an external search engine.
type SearchIndex interface {
	EnsureIndex(ctx context.Context) error
	ResetIndex(ctx context.Context) error
	IndexDocument(ctx context.Context, doc domain.SearchDocument) error
	DeleteDocument(ctx context.Context, id int64) error
}
