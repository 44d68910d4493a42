package usecase

import (
	"book-search/domain"
	"book-search/port"
	"context"
)

type ReadBookUsecase struct {
	books port.BookRepository
}

func NewReadBookUsecase(books port.BookRepository) *ReadBookUsecase {
	return &ReadBookUsecase{
		books: books,
	}
}

func (u *ReadBookUsecase) Execute(ctx context.Context, id int64) (*domain.Book, error) {
	return u.books.ReadByID(ctx, id)
}
