package gateway

import (
	"book-search/domain"
	"book-search/driver"
	"book-search/search_query"
	"context"
	"errors"
)

const BackendFTS = "fts"

type FTSDriver interface {
	MatchBooks(ctx context.Context, match string, limit int) ([]driver.BookRow, error)
}

// FTSSearchGateway searches the embedded SQLite FTS5 index.
type FTSSearchGateway struct {
	driver FTSDriver
}

func NewFTSSearchGateway(driver FTSDriver) *FTSSearchGateway {
	return &FTSSearchGateway{
		driver: driver,
	}
}

func (g *FTSSearchGateway) Backend() string {
	return BackendFTS
}

// Search returns up to limit books in rank order. A query with no usable terms runs nothing.
func (g *FTSSearchGateway) Search(ctx context.Context, query domain.SearchQuery, limit int) ([]*domain.Book, error) {
	match := search_query.BuildMatch(query)
	if match == "" {
		return []*domain.Book{}, nil
	}

	rows, err := g.driver.MatchBooks(ctx, match, limit)
	if err != nil {
		kind := domain.SearchUnavailable
		if errors.Is(err, driver.ErrMalformedMatch) {
			kind = domain.SearchMalformedQuery
		}
		return nil, domain.NewSearchError(BackendFTS, "Search", kind, err)
	}

	return toDomainBooks(rows), nil
}
