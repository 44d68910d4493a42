package gateway

import (
	"book-search/domain"
	"book-search/driver"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSearchEngine struct {
	mu        sync.Mutex
	index     string
	exists    bool
	count     int64
	countErr  error
	existsErr error
	searchErr error
	hits      []int64
	created   int
	deleted   int
	bulks     [][]driver.SearchDocumentDriver
	refreshed int
	indexed   []driver.SearchDocumentDriver
	removed   []int64
	lastQuery map[string]any
	lastSize  int
}

func (m *mockSearchEngine) Index() string { return m.index }

func (m *mockSearchEngine) IndexExists(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists, m.existsErr
}

func (m *mockSearchEngine) CreateIndex(ctx context.Context, body map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
	m.exists = true
	return nil
}

func (m *mockSearchEngine) DeleteIndex(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted++
	m.exists = false
	m.count = 0
	return nil
}

func (m *mockSearchEngine) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, m.countErr
}

func (m *mockSearchEngine) BulkIndex(ctx context.Context, docs []driver.SearchDocumentDriver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulks = append(m.bulks, append([]driver.SearchDocumentDriver(nil), docs...))
	m.count += int64(len(docs))
	return nil
}

func (m *mockSearchEngine) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshed++
	return nil
}

func (m *mockSearchEngine) IndexDocument(ctx context.Context, doc driver.SearchDocumentDriver) error {
	m.indexed = append(m.indexed, doc)
	return nil
}

func (m *mockSearchEngine) DeleteDocument(ctx context.Context, id int64) error {
	m.removed = append(m.removed, id)
	return nil
}

func (m *mockSearchEngine) SearchIDs(ctx context.Context, query map[string]any, size int) ([]int64, error) {
	m.lastQuery = query
	m.lastSize = size
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func newMockEngine(t *testing.T) *mockSearchEngine {
	t.Helper()
	index := "books-" + t.Name()
	t.Cleanup(func() {
		indexMu.Lock()
		delete(readyIndexes, index)
		indexMu.Unlock()
	})
	return &mockSearchEngine{index: index}
}

func storeWithBooks(n int) *mockBookStore {
	store := newMockBookStore()
	for i := 1; i <= n; i++ {
		store.rows[int64(i)] = bookRow(int64(i), fmt.Sprintf("author %d", i), fmt.Sprintf("title %d", i))
	}
	return store
}

func TestElasticsearchSearchGateway_SeedsEmptyIndexInBatches(t *testing.T) {
	engine := newMockEngine(t)
	books := NewBookRepositoryGateway(storeWithBooks(1203))
	g := NewElasticsearchSearchGateway(engine, books, true)

	require.NoError(t, g.EnsureIndex(context.Background()))

	assert.Equal(t, 1, engine.created)
	require.Len(t, engine.bulks, 3)
	assert.Len(t, engine.bulks[0], 500)
	assert.Len(t, engine.bulks[1], 500)
	assert.Len(t, engine.bulks[2], 203)
	assert.Equal(t, 1, engine.refreshed)

	// ready indexes skip the remote checks
	require.NoError(t, g.EnsureIndex(context.Background()))
	assert.Len(t, engine.bulks, 3)
}

func TestElasticsearchSearchGateway_ConcurrentEnsureSeedsOnce(t *testing.T) {
	engine := newMockEngine(t)
	g := NewElasticsearchSearchGateway(engine, NewBookRepositoryGateway(storeWithBooks(10)), true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.EnsureIndex(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, engine.created)
	assert.Len(t, engine.bulks, 1)
}

func TestElasticsearchSearchGateway_EnsureIndexVariants(t *testing.T) {
	t.Run("non-empty index is not seeded", func(t *testing.T) {
		engine := newMockEngine(t)
		engine.exists = true
		engine.count = 5
		g := NewElasticsearchSearchGateway(engine, NewBookRepositoryGateway(storeWithBooks(3)), true)

		require.NoError(t, g.EnsureIndex(context.Background()))
		assert.Equal(t, 0, engine.created)
		assert.Empty(t, engine.bulks)
	})

	t.Run("auto index disabled", func(t *testing.T) {
		engine := newMockEngine(t)
		g := NewElasticsearchSearchGateway(engine, NewBookRepositoryGateway(storeWithBooks(3)), false)

		require.NoError(t, g.EnsureIndex(context.Background()))
		assert.Equal(t, 1, engine.created)
		assert.Empty(t, engine.bulks)
	})

	t.Run("count failure skips seeding", func(t *testing.T) {
		engine := newMockEngine(t)
		engine.exists = true
		engine.countErr = errors.New("timeout")
		g := NewElasticsearchSearchGateway(engine, NewBookRepositoryGateway(storeWithBooks(3)), true)

		require.NoError(t, g.EnsureIndex(context.Background()))
		assert.Empty(t, engine.bulks)
	})

	t.Run("exists failure is unavailable", func(t *testing.T) {
		engine := newMockEngine(t)
		engine.existsErr = errors.New("connection refused")
		g := NewElasticsearchSearchGateway(engine, NewBookRepositoryGateway(storeWithBooks(3)), true)

		err := g.EnsureIndex(context.Background())
		assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	})
}

func TestElasticsearchSearchGateway_SearchOrdersByRelevance(t *testing.T) {
	engine := newMockEngine(t)
	engine.exists = true
	engine.count = 3
	engine.hits = []int64{3, 99, 1, 3, 2}
	g := NewElasticsearchSearchGateway(engine, NewBookRepositoryGateway(storeWithBooks(3)), true)

	books, err := g.Search(context.Background(), domain.SearchQuery{Author: "author"}, 51)
	require.NoError(t, err)

	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	assert.Equal(t, []int64{3, 1, 2}, ids)
	assert.Equal(t, 51, engine.lastSize)
	assert.Contains(t, engine.lastQuery, "bool")
}

func TestElasticsearchSearchGateway_NoHits(t *testing.T) {
	engine := newMockEngine(t)
	engine.exists = true
	engine.count = 1
	store := storeWithBooks(1)
	g := NewElasticsearchSearchGateway(engine, NewBookRepositoryGateway(store), true)

	books, err := g.Search(context.Background(), domain.SearchQuery{}, 51)
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Contains(t, engine.lastQuery, "match_none")
	assert.Empty(t, store.fetched)
}

func TestElasticsearchSearchGateway_SearchErrors(t *testing.T) {
	tests := []struct {
		name      string
		searchErr error
		wantIs    error
	}{
		{name: "disabled", searchErr: driver.ErrElasticsearchDisabled, wantIs: domain.ErrSearchNotConfigured},
		{name: "not initialized", searchErr: driver.ErrElasticsearchNotInitialized, wantIs: domain.ErrSearchNotInitialized},
		{name: "rejected", searchErr: fmt.Errorf("%w: parsing_exception", driver.ErrQueryRejected), wantIs: domain.ErrMalformedQuery},
		{name: "transport", searchErr: &driver.DriverError{Op: "SearchIDs", Err: "EOF"}, wantIs: domain.ErrSearchUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMockEngine(t)
			engine.exists = true
			engine.count = 1
			engine.searchErr = tt.searchErr
			g := NewElasticsearchSearchGateway(engine, NewBookRepositoryGateway(storeWithBooks(1)), true)

			_, err := g.Search(context.Background(), domain.SearchQuery{General: "x"}, 51)
			assert.ErrorIs(t, err, tt.wantIs)
			var searchErr *domain.SearchError
			require.ErrorAs(t, err, &searchErr)
			assert.Equal(t, BackendElasticsearch, searchErr.Backend)
		})
	}
}

func TestElasticsearchSearchGateway_Maintenance(t *testing.T) {
	engine := newMockEngine(t)
	g := NewElasticsearchSearchGateway(engine, NewBookRepositoryGateway(storeWithBooks(2)), true)
	ctx := context.Background()

	require.NoError(t, g.EnsureIndex(ctx))
	require.NoError(t, g.ResetIndex(ctx))
	assert.Equal(t, 1, engine.deleted)

	// reset forgets readiness, so the next ensure recreates and reseeds
	require.NoError(t, g.EnsureIndex(ctx))
	assert.Equal(t, 2, engine.created)
	assert.Len(t, engine.bulks, 2)

	require.NoError(t, g.IndexDocument(ctx, domain.SearchDocument{ID: 9, Author: "a", Title: "t"}))
	require.NoError(t, g.DeleteDocument(ctx, 9))
	assert.Equal(t, []driver.SearchDocumentDriver{{ID: 9, Author: "a", Title: "t"}}, engine.indexed)
	assert.Equal(t, []int64{9}, engine.removed)
}
