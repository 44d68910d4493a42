package port

import (
	"book-search/domain"
	"context"
)

type BookRepository interface {
	// ReadByID returns domain.ErrBookNotFound when no book has the id.
	ReadByID(ctx context.Context, id int64) (*domain.Book, error)
	// FetchManyByID returns the existing books among ids in no particular order.
	FetchManyByID(ctx context.Context, ids []int64) ([]*domain.Book, error)
	StreamSearchDocuments(ctx context.Context, fn func(domain.SearchDocument) error) error
}
