package usecase

import (
	"book-search/domain"
	"context"
	"fmt"
)

type mockSearcher struct {
	books     []*domain.Book
	err       error
	lastLimit int
	lastQuery domain.SearchQuery
}

func (m *mockSearcher) Search(ctx context.Context, query domain.SearchQuery, limit int) ([]*domain.Book, error) {
	m.lastQuery = query
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if len(m.books) > limit {
		return m.books[:limit], nil
	}
	return m.books, nil
}

func (m *mockSearcher) Backend() string { return "mock" }

type mockBookRepository struct {
	books   map[int64]*domain.Book
	readErr error
}

func newMockBookRepository(books ...*domain.Book) *mockBookRepository {
	m := &mockBookRepository{books: map[int64]*domain.Book{}}
	for _, b := range books {
		m.books[b.ID] = b
	}
	return m
}

func (m *mockBookRepository) ReadByID(ctx context.Context, id int64) (*domain.Book, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	b, ok := m.books[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", domain.ErrBookNotFound, id)
	}
	return b, nil
}

func (m *mockBookRepository) FetchManyByID(ctx context.Context, ids []int64) ([]*domain.Book, error) {
	var out []*domain.Book
	for _, id := range ids {
		if b, ok := m.books[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookRepository) StreamSearchDocuments(ctx context.Context, fn func(domain.SearchDocument) error) error {
	for _, b := range m.books {
		if err := fn(domain.NewSearchDocument(b)); err != nil {
			return err
		}
	}
	return nil
}

type mockFileStorage struct {
	existing  map[string]bool
	existsErr error
	uploadErr error
	uploads   []upload
}

type upload struct {
	key, path, contentType string
}

func (m *mockFileStorage) Bucket() string { return "library" }

func (m *mockFileStorage) FileExists(ctx context.Context, key string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existing[key], nil
}

func (m *mockFileStorage) UploadFile(ctx context.Context, key, path, contentType string) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	m.uploads = append(m.uploads, upload{key: key, path: path, contentType: contentType})
	return nil
}

type mockArchiveExtractor struct {
	err   error
	calls int
}

func (m *mockArchiveExtractor) Extract(ctx context.Context, archiveName, member, destDir string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return destDir + "/" + member, nil
}

type mockSearchIndex struct {
	ensureErr error
	resets    int
	ensures   int
	indexed   []domain.SearchDocument
	deleted   []int64
}

func (m *mockSearchIndex) EnsureIndex(ctx context.Context) error {
	m.ensures++
	return m.ensureErr
}

func (m *mockSearchIndex) ResetIndex(ctx context.Context) error {
	m.resets++
	return nil
}

func (m *mockSearchIndex) IndexDocument(ctx context.Context, doc domain.SearchDocument) error {
	m.indexed = append(m.indexed, doc)
	return nil
}

func (m *mockSearchIndex) DeleteDocument(ctx context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	return nil
}
