package usecase

import (
	"book-search/domain"
	"book-search/logger"
	"book-search/port"
	"context"
	"errors"
)

// IndexBooksUsecase keeps the external search index in step with the primary store.
type IndexBooksUsecase struct {
	books port.BookRepository
	index port.SearchIndex
}

func NewIndexBooksUsecase(books port.BookRepository, index port.SearchIndex) *IndexBooksUsecase {
	return &IndexBooksUsecase{
		books: books,
		index: index,
	}
}

// Reindex drops the index and rebuilds it from the primary store.
func (u *IndexBooksUsecase) Reindex(ctx context.Context) error {
	ctx = logger.WithOperation(ctx, "reindex")
	if err := u.index.ResetIndex(ctx); err != nil {
		return err
	}
	if err := u.index.EnsureIndex(ctx); err != nil {
		return err
	}
	logger.GlobalContext.WithContext(ctx).Info("search index rebuilt")
	return nil
}

// ApplyUpsert indexes the current state of a book. A book that no longer exists is removed.
func (u *IndexBooksUsecase) ApplyUpsert(ctx context.Context, id int64) error {
	ctx = logger.WithBookID(ctx, id)
	if err := u.index.EnsureIndex(ctx); err != nil {
		return err
	}

	book, err := u.books.ReadByID(ctx, id)
	if errors.Is(err, domain.ErrBookNotFound) {
		logger.GlobalContext.WithContext(ctx).Info("book vanished before indexing, removing document")
		return u.index.DeleteDocument(ctx, id)
	}
	if err != nil {
		return err
	}

	return u.index.IndexDocument(ctx, domain.NewSearchDocument(book))
}

func (u *IndexBooksUsecase) ApplyDelete(ctx context.Context, id int64) error {
	if err := u.index.EnsureIndex(ctx); err != nil {
		return err
	}
	return u.index.DeleteDocument(logger.WithBookID(ctx, id), id)
}
