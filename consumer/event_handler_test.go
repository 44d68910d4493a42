package consumer

import (
	"context"
	"errors"
	"testing"
)

type mockBookIndexer struct {
	upserted []int64
	deleted  []int64
	err      error
}

func (m *mockBookIndexer) ApplyUpsert(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, id)
	return nil
}

func (m *mockBookIndexer) ApplyDelete(ctx context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func TestIndexEventHandler_HandleEvent(t *testing.T) {
	tests := []struct {
		name         string
		event        BookEvent
		indexErr     error
		wantErr      bool
		wantUpserted int
		wantDeleted  int
	}{
		{
			name:         "upsert",
			event:        BookEvent{Type: EventBookUpserted, BookID: 12},
			wantUpserted: 1,
		},
		{
			name:        "delete",
			event:       BookEvent{Type: EventBookDeleted, BookID: 12},
			wantDeleted: 1,
		},
		{
			name:     "index failure is returned for redelivery",
			event:    BookEvent{Type: EventBookUpserted, BookID: 3},
			indexErr: errors.New("search unavailable"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indexer := &mockBookIndexer{err: tt.indexErr}
			h := NewIndexEventHandler(indexer, nil)

			err := h.HandleEvent(context.Background(), tt.event)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(indexer.upserted) != tt.wantUpserted {
				t.Errorf("upserted = %v, want %d", indexer.upserted, tt.wantUpserted)
			}
			if len(indexer.deleted) != tt.wantDeleted {
				t.Errorf("deleted = %v, want %d", indexer.deleted, tt.wantDeleted)
			}
		})
	}
}
