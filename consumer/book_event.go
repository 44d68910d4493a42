package consumer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	EventBookUpserted = "book.upserted"
	EventBookDeleted  = "book.deleted"
)

var (
	// ErrUnknownEventType marks stream entries that are not book events.
	ErrUnknownEventType = errors.New("unknown event type")
	// ErrInvalidBookEvent marks book events that can never be applied.
	ErrInvalidBookEvent = errors.New("invalid book event")
)

// BookEvent is a validated change to one catalog book.
type BookEvent struct {
	// MessageID is the Redis Stream message ID.
	MessageID string
	EventID   string
	Type      string
	BookID    int64
	// Source is the service that produced the event.
	Source    string
	CreatedAt time.Time
}

// Deleted reports whether the book left the catalog.
func (e BookEvent) Deleted() bool {
	return e.Type == EventBookDeleted
}

type bookEventPayload struct {
	BookID *int64 `json:"book_id"`
}

// decodeBookEvent validates a stream entry. Entries of other types return
// ErrUnknownEventType and malformed book events return ErrInvalidBookEvent; neither
// becomes valid on redelivery.
func decodeBookEvent(message redis.XMessage) (BookEvent, error) {
	event := BookEvent{
		MessageID: message.ID,
		EventID:   stringField(message, "event_id"),
		Type:      stringField(message, "event_type"),
		Source:    stringField(message, "source"),
	}

	switch event.Type {
	case EventBookUpserted, EventBookDeleted:
	default:
		return event, fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}

	if v := stringField(message, "created_at"); v != "" {
		createdAt, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return event, fmt.Errorf("%w: created_at %q", ErrInvalidBookEvent, v)
		}
		event.CreatedAt = createdAt
	}

	raw := stringField(message, "payload")
	if raw == "" {
		return event, fmt.Errorf("%w: empty payload", ErrInvalidBookEvent)
	}
	var payload bookEventPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return event, fmt.Errorf("%w: %v", ErrInvalidBookEvent, err)
	}
	if payload.BookID == nil {
		return event, fmt.Errorf("%w: payload has no book_id", ErrInvalidBookEvent)
	}
	if *payload.BookID <= 0 {
		return event, fmt.Errorf("%w: book_id %d", ErrInvalidBookEvent, *payload.BookID)
	}
	event.BookID = *payload.BookID

	return event, nil
}

func stringField(message redis.XMessage, key string) string {
	v, _ := message.Values[key].(string)
	return v
}
