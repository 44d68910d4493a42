package gateway

import (
	"book-search/domain"
	"book-search/driver"
	"book-search/logger"
	"book-search/port"
	"book-search/search_query"
	appOtel "book-search/utils/otel"
	"context"
	"errors"
	"sync"
)

const (
	BackendElasticsearch = "elasticsearch"
	seedBatchSize        = 500
)

type SearchEngineDriver interface {
	Index() string
	IndexExists(ctx context.Context) (bool, error)
	CreateIndex(ctx context.Context, body map[string]any) error
	DeleteIndex(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	BulkIndex(ctx context.Context, docs []driver.SearchDocumentDriver) error
	Refresh(ctx context.Context) error
	IndexDocument(ctx context.Context, doc driver.SearchDocumentDriver) error
	DeleteDocument(ctx context.Context, id int64) error
	SearchIDs(ctx context.Context, query map[string]any, size int) ([]int64, error)
}

// indexMu serializes index bootstrap across the whole process.
var (
	indexMu      sync.Mutex
	readyIndexes = map[string]bool{}
)

// ElasticsearchSearchGateway searches an Elasticsearch index and hydrates hits from the primary store.
type ElasticsearchSearchGateway struct {
	engine    SearchEngineDriver
	books     port.BookRepository
	autoIndex bool
}

func NewElasticsearchSearchGateway(engine SearchEngineDriver, books port.BookRepository, autoIndex bool) *ElasticsearchSearchGateway {
	return &ElasticsearchSearchGateway{
		engine:    engine,
		books:     books,
		autoIndex: autoIndex,
	}
}

func (g *ElasticsearchSearchGateway) Backend() string {
	return BackendElasticsearch
}

func (g *ElasticsearchSearchGateway) Search(ctx context.Context, query domain.SearchQuery, limit int) ([]*domain.Book, error) {
	if err := g.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	ids, err := g.engine.SearchIDs(ctx, search_query.BuildSearchQuery(query), limit)
	if err != nil {
		return nil, searchFault("Search", err)
	}
	if len(ids) == 0 {
		return []*domain.Book{}, nil
	}

	books, err := g.books.FetchManyByID(ctx, ids)
	if err != nil {
		return nil, domain.NewSearchError(BackendElasticsearch, "FetchManyByID", domain.SearchUnavailable, err)
	}

	return orderByIDs(books, ids), nil
}

// EnsureIndex creates the index when missing and seeds it from the primary store when empty.
func (g *ElasticsearchSearchGateway) EnsureIndex(ctx context.Context) error {
	indexMu.Lock()
	defer indexMu.Unlock()

	index := g.engine.Index()
	if readyIndexes[index] {
		return nil
	}

	exists, err := g.engine.IndexExists(ctx)
	if err != nil {
		return searchFault("EnsureIndex", err)
	}
	if !exists {
		if err := g.engine.CreateIndex(ctx, search_query.IndexBody()); err != nil {
			return searchFault("EnsureIndex", err)
		}
	}

	if !g.autoIndex {
		readyIndexes[index] = true
		return nil
	}

	count, err := g.engine.Count(ctx)
	if err != nil {
		logger.Logger.Warn("failed to count index documents, skipping seeding", "index", index, "err", err)
		return nil
	}
	if count > 0 {
		readyIndexes[index] = true
		return nil
	}

	seeded, err := g.seed(ctx)
	if err != nil {
		return searchFault("SeedIndex", err)
	}
	if seeded > 0 {
		readyIndexes[index] = true
	}
	return nil
}

func (g *ElasticsearchSearchGateway) seed(ctx context.Context) (int64, error) {
	index := g.engine.Index()
	logger.Logger.Info("seeding empty search index from primary store", "index", index)

	var total int64
	batch := make([]driver.SearchDocumentDriver, 0, seedBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := g.engine.BulkIndex(ctx, batch); err != nil {
			return err
		}
		total += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	err := g.books.StreamSearchDocuments(ctx, func(doc domain.SearchDocument) error {
		batch = append(batch, toDriverDocument(doc))
		if len(batch) >= seedBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}
	if err := g.engine.Refresh(ctx); err != nil {
		return total, err
	}

	appOtel.RecordSeeded(ctx, total)
	logger.Logger.Info("seeded search index", "index", index, "documents", total)
	return total, nil
}

// ResetIndex drops the index so that the next EnsureIndex recreates and reseeds it.
func (g *ElasticsearchSearchGateway) ResetIndex(ctx context.Context) error {
	indexMu.Lock()
	defer indexMu.Unlock()

	delete(readyIndexes, g.engine.Index())
	if err := g.engine.DeleteIndex(ctx); err != nil {
		return searchFault("ResetIndex", err)
	}
	return nil
}

func (g *ElasticsearchSearchGateway) IndexDocument(ctx context.Context, doc domain.SearchDocument) error {
	if err := g.engine.IndexDocument(ctx, toDriverDocument(doc)); err != nil {
		return searchFault("IndexDocument", err)
	}
	return nil
}

func (g *ElasticsearchSearchGateway) DeleteDocument(ctx context.Context, id int64) error {
	if err := g.engine.DeleteDocument(ctx, id); err != nil {
		return searchFault("DeleteDocument", err)
	}
	return nil
}

func toDriverDocument(doc domain.SearchDocument) driver.SearchDocumentDriver {
	return driver.SearchDocumentDriver{
		ID:     doc.ID,
		Author: doc.Author,
		Title:  doc.Title,
	}
}

// orderByIDs arranges books in ids order, dropping ids without a book and repeated ids.
func orderByIDs(books []*domain.Book, ids []int64) []*domain.Book {
	byID := make(map[int64]*domain.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	ordered := make([]*domain.Book, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}
	return ordered
}

func searchFault(op string, err error) error {
	switch {
	case errors.Is(err, driver.ErrElasticsearchDisabled):
		err = domain.ErrSearchNotConfigured
	case errors.Is(err, driver.ErrElasticsearchNotInitialized):
		err = domain.ErrSearchNotInitialized
	case errors.Is(err, driver.ErrQueryRejected):
		return domain.NewSearchError(BackendElasticsearch, op, domain.SearchMalformedQuery, err)
	}
	return domain.NewSearchError(BackendElasticsearch, op, domain.SearchUnavailable, err)
}
