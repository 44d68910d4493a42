package driver

import (
	"database/sql"
	"errors"
)

// ErrRecordNotFound is returned by store drivers when no row matches.
var ErrRecordNotFound = errors.New("record not found")

// BookRow represents a row of the books table.
type BookRow struct {
	ID              int64
	Author          sql.NullString
	Title           sql.NullString
	ArchiveName     sql.NullString
	FileName        sql.NullString
	FileSizeMB      sql.NullFloat64
	Genre           sql.NullString
	AuthorFirstName sql.NullString
	AuthorLastName  sql.NullString
	BookTitle       sql.NullString
	Annotation      sql.NullString
	Lang            sql.NullString
	PublishBookName sql.NullString
	Publisher       sql.NullString
	City            sql.NullString
	Year            sql.NullString
	ISBN            sql.NullString
}

// SearchDocumentDriver represents a book document in the search engine.
type SearchDocumentDriver struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
	Title  string `json:"title"`
}

// DriverError represents an error from the driver layer
type DriverError struct {
	Op  string
	Err string
}

func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err
}

// bookColumns lists the books table columns in scan order.
var bookColumns = []string{
	"id", "author", "title", "archive_name", "file_name", "file_size_mb", "genre",
	"author_first_name", "author_last_name", "book_title", "annotation", "lang",
	"publish_book_name", "publisher", "city", "year", "isbn",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookRow(s rowScanner) (BookRow, error) {
	var r BookRow
	err := s.Scan(
		&r.ID, &r.Author, &r.Title, &r.ArchiveName, &r.FileName, &r.FileSizeMB, &r.Genre,
		&r.AuthorFirstName, &r.AuthorLastName, &r.BookTitle, &r.Annotation, &r.Lang,
		&r.PublishBookName, &r.Publisher, &r.City, &r.Year, &r.ISBN,
	)
	return r, err
}

func scanSearchDocument(s rowScanner) (SearchDocumentDriver, error) {
	var (
		doc    SearchDocumentDriver
		author sql.NullString
		title  sql.NullString
	)
	if err := s.Scan(&doc.ID, &author, &title); err != nil {
		return doc, err
	}
	doc.Author = author.String
	doc.Title = title.String
	return doc, nil
}
