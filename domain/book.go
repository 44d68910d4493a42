package domain

import "errors"

// Book is a catalog record as stored in the primary store.
type Book struct {
	ID              int64    `json:"id"`
	Author          string   `json:"author"`
	Title           string   `json:"title"`
	ArchiveName     string   `json:"archive_name"`
	FileName        string   `json:"file_name"`
	FileSizeMB      *float64 `json:"file_size_mb"`
	Genre           string   `json:"genre"`
	AuthorFirstName string   `json:"author_first_name"`
	AuthorLastName  string   `json:"author_last_name"`
	BookTitle       string   `json:"book_title"`
	Annotation      string   `json:"annotation"`
	Lang            string   `json:"lang"`
	PublishBookName string   `json:"publish_book_name"`
	Publisher       string   `json:"publisher"`
	City            string   `json:"city"`
	Year            string   `json:"year"`
	ISBN            string   `json:"isbn"`
}

// Validate checks the invariants every record coming out of a store must hold.
func (b *Book) Validate() error {
	if b == nil {
		return errors.New("book cannot be nil")
	}
	if b.ID <= 0 {
		return errors.New("book ID must be positive")
	}
	return nil
}

// DisplayTitle returns the title used for export keys, falling back to book_title.
func (b *Book) DisplayTitle() string {
	if b.Title != "" {
		return b.Title
	}
	return b.BookTitle
}

// SearchDocument is the projection of a Book kept in the external search engine.
type SearchDocument struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
	Title  string `json:"title"`
}

func NewSearchDocument(book *Book) SearchDocument {
	return SearchDocument{
		ID:     book.ID,
		Author: book.Author,
		Title:  book.Title,
	}
}
