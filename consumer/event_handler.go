package consumer

import (
	"context"
	"log/slog"
)

// BookIndexer applies single-book changes to the search index.
type BookIndexer interface {
	ApplyUpsert(ctx context.Context, id int64) error
	ApplyDelete(ctx context.Context, id int64) error
}

// IndexEventHandler applies book events to the search index one at a time.
type IndexEventHandler struct {
	indexer BookIndexer
	logger  *slog.Logger
}

func NewIndexEventHandler(indexer BookIndexer, logger *slog.Logger) *IndexEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexEventHandler{
		indexer: indexer,
		logger:  logger,
	}
}

// HandleEvent re-indexes or removes the event's book.
func (h *IndexEventHandler) HandleEvent(ctx context.Context, event BookEvent) error {
	if event.Deleted() {
		h.logger.Info("removing book from index", "book_id", event.BookID, "event_id", event.EventID)
		return h.indexer.ApplyDelete(ctx, event.BookID)
	}
	h.logger.Info("indexing book", "book_id", event.BookID, "event_id", event.EventID)
	return h.indexer.ApplyUpsert(ctx, event.BookID)
}
