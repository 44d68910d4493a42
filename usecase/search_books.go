package usecase

import (
	"book-search/domain"
	"book-search/logger"
	"book-search/port"
	appOtel "book-search/utils/otel"
	"context"
	"time"
)

type SearchBooksUsecase struct {
	searcher port.BookSearcher
}

func NewSearchBooksUsecase(searcher port.BookSearcher) *SearchBooksUsecase {
	return &SearchBooksUsecase{
		searcher: searcher,
	}
}

// Classify turns a fetched result set into an outcome. books must have been fetched
// with limit+1 so that overflow can be detected.
func Classify(books []*domain.Book, limit int) domain.Outcome {
	switch {
	case len(books) == 0:
		return domain.EmptyOutcome()
	case len(books) > limit:
		return domain.OverflowOutcome()
	default:
		return domain.PageOutcome(books)
	}
}

// Execute searches for at most domain.SearchPageLimit books. Backend faults are
// returned as errors; empty and overflowing results are outcomes.
func (u *SearchBooksUsecase) Execute(ctx context.Context, query domain.SearchQuery) (domain.Outcome, error) {
	start := time.Now()
	backend := u.searcher.Backend()
	ctx = logger.WithSearchBackend(logger.WithOperation(ctx, "search_books"), backend)

	books, err := u.searcher.Search(ctx, query, domain.SearchPageLimit+1)
	if err != nil {
		appOtel.RecordError(ctx, "search_books")
		logger.GlobalContext.LogError(ctx, "search_books", err)
		return domain.Outcome{}, err
	}

	outcome := Classify(books, domain.SearchPageLimit)
	elapsed := time.Since(start)
	appOtel.RecordSearch(ctx, backend, outcome.Kind.String(), elapsed)

	logger.GlobalContext.WithContext(ctx).Info("search completed",
		"outcome", outcome.Kind.String(),
		"fetched", len(books),
		"duration_ms", elapsed.Milliseconds(),
	)
	return outcome, nil
}
