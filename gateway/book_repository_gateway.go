package gateway

import (
	"book-search/domain"
	"book-search/driver"
	"book-search/logger"
	"context"
	"errors"
	"fmt"
)

// BookStoreDriver is implemented by every primary store driver.
type BookStoreDriver interface {
	ReadBookByID(ctx context.Context, id int64) (*driver.BookRow, error)
	FetchBooksByIDs(ctx context.Context, ids []int64) ([]driver.BookRow, error)
	StreamSearchDocuments(ctx context.Context, fn func(driver.SearchDocumentDriver) error) error
}

type BookRepositoryGateway struct {
	driver BookStoreDriver
}

func NewBookRepositoryGateway(driver BookStoreDriver) *BookRepositoryGateway {
	return &BookRepositoryGateway{
		driver: driver,
	}
}

func (g *BookRepositoryGateway) ReadByID(ctx context.Context, id int64) (*domain.Book, error) {
	row, err := g.driver.ReadBookByID(ctx, id)
	if errors.Is(err, driver.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id=%d", domain.ErrBookNotFound, id)
	}
	if err != nil {
		return nil, &domain.RepositoryError{
			Op:  "ReadByID",
			Err: err.Error(),
		}
	}

	book := toDomainBook(*row)
	if err := book.Validate(); err != nil {
		return nil, &domain.RepositoryError{
			Op:  "ReadByID",
			Err: err.Error(),
		}
	}
	return book, nil
}

func (g *BookRepositoryGateway) FetchManyByID(ctx context.Context, ids []int64) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return []*domain.Book{}, nil
	}

	rows, err := g.driver.FetchBooksByIDs(ctx, ids)
	if err != nil {
		return nil, &domain.RepositoryError{
			Op:  "FetchManyByID",
			Err: err.Error(),
		}
	}

	return toDomainBooks(rows), nil
}

func (g *BookRepositoryGateway) StreamSearchDocuments(ctx context.Context, fn func(domain.SearchDocument) error) error {
	err := g.driver.StreamSearchDocuments(ctx, func(doc driver.SearchDocumentDriver) error {
		return fn(domain.SearchDocument{
			ID:     doc.ID,
			Author: doc.Author,
			Title:  doc.Title,
		})
	})
	if err != nil {
		return &domain.RepositoryError{
			Op:  "StreamSearchDocuments",
			Err: err.Error(),
		}
	}
	return nil
}

func toDomainBooks(rows []driver.BookRow) []*domain.Book {
	books := make([]*domain.Book, 0, len(rows))
	for _, row := range rows {
		book := toDomainBook(row)
		if err := book.Validate(); err != nil {
			logger.Logger.Warn("skipping invalid book row", "id", row.ID, "err", err)
			continue
		}
		books = append(books, book)
	}
	return books
}

func toDomainBook(row driver.BookRow) *domain.Book {
	book := &domain.Book{
		ID:              row.ID,
		Author:          row.Author.String,
		Title:           row.Title.String,
		ArchiveName:     row.ArchiveName.String,
		FileName:        row.FileName.String,
		Genre:           row.Genre.String,
		AuthorFirstName: row.AuthorFirstName.String,
		AuthorLastName:  row.AuthorLastName.String,
		BookTitle:       row.BookTitle.String,
		Annotation:      row.Annotation.String,
		Lang:            row.Lang.String,
		PublishBookName: row.PublishBookName.String,
		Publisher:       row.Publisher.String,
		City:            row.City.String,
		Year:            row.Year.String,
		ISBN:            row.ISBN.String,
	}
	if row.FileSizeMB.Valid {
		size := row.FileSizeMB.Float64
		book.FileSizeMB = &size
	}
	return book
}
