package consumer

import (
	appOtel "book-search/utils/otel"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
)

// EventHandler applies book events.
type EventHandler interface {
	// HandleEvent applies one event. Events are acknowledged only when it returns nil.
	HandleEvent(ctx context.Context, event BookEvent) error
}

// Consumer keeps the search index in step with catalog changes published on a Redis Stream.
type Consumer struct {
	client  *redis.Client
	config  Config
	handler EventHandler
	logger  *slog.Logger

	// replayPending makes the next read return this consumer's unacknowledged
	// events instead of new ones.
	replayPending bool
}

// NewConsumer creates a new Redis Streams consumer.
func NewConsumer(config Config, handler EventHandler, logger *slog.Logger) (*Consumer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !config.Enabled {
		return &Consumer{config: config, logger: logger}, nil
	}

	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, err
	}

	return NewConsumerWithClient(redis.NewClient(opts), config, handler, logger), nil
}

// NewConsumerWithClient creates a consumer on an existing client.
func NewConsumerWithClient(client *redis.Client, config Config, handler EventHandler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		client:  client,
		config:  config,
		handler: handler,
		logger:  logger,
		// events left pending by a previous run are retried first
		replayPending: true,
	}
}

// IsEnabled returns true if the consumer is enabled.
func (c *Consumer) IsEnabled() bool {
	return c.config.Enabled
}

// Run consumes book events until ctx is cancelled. Failed batches are retried with
// exponential backoff.
func (c *Consumer) Run(ctx context.Context) error {
	if !c.config.Enabled {
		c.logger.Info("consumer disabled, not starting")
		return nil
	}

	if err := c.ensureConsumerGroup(ctx); err != nil {
		return err
	}

	c.logger.Info("starting consumer",
		"stream", c.config.StreamKey,
		"group", c.config.GroupName,
		"consumer", c.config.ConsumerName,
	)

	retry := backoff.NewExponentialBackOff()
	retry.MaxInterval = 30 * time.Second

	for {
		if ctx.Err() != nil {
			c.logger.Info("consumer context cancelled, stopping")
			return nil
		}

		if err := c.readAndProcess(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			wait := retry.NextBackOff()
			c.logger.Error("error processing book events", "error", err, "retry_in", wait)
			select {
			case <-ctx.Done():
			case <-time.After(wait):
			}
			continue
		}
		retry.Reset()
	}
}

// Close releases the Redis connection.
func (c *Consumer) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ensureConsumerGroup creates the consumer group if it doesn't exist.
func (c *Consumer) ensureConsumerGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.config.StreamKey, c.config.GroupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// readAndProcess applies one batch of events: pending ones while replaying, new ones
// otherwise. It returns an error when any event of the batch failed, leaving those
// events pending for the next replay.
func (c *Consumer) readAndProcess(ctx context.Context) error {
	replaying := c.replayPending
	messages, err := c.read(ctx, replaying)
	if err != nil {
		return err
	}
	if replaying && len(messages) == 0 {
		c.replayPending = false
		return nil
	}

	failed := 0
	for _, message := range messages {
		if !c.process(ctx, message) {
			failed++
		}
	}
	if failed > 0 {
		c.replayPending = true
		return fmt.Errorf("%d of %d book events failed", failed, len(messages))
	}
	return nil
}

func (c *Consumer) read(ctx context.Context, pending bool) ([]redis.XMessage, error) {
	start := ">"
	if pending {
		start = "0"
	}
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.config.GroupName,
		Consumer: c.config.ConsumerName,
		Streams:  []string{c.config.StreamKey, start},
		Count:    c.config.BatchSize,
		Block:    c.config.BlockTimeout,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var messages []redis.XMessage
	for _, stream := range streams {
		messages = append(messages, stream.Messages...)
	}
	return messages, nil
}

// process applies one message and reports whether it is done with. Entries that can
// never be applied are acknowledged and dropped.
func (c *Consumer) process(ctx context.Context, message redis.XMessage) bool {
	event, err := decodeBookEvent(message)
	switch {
	case errors.Is(err, ErrUnknownEventType):
		c.logger.Warn("skipping non-book event", "message_id", message.ID, "event_type", event.Type)
	case err != nil:
		c.logger.Error("dropping invalid book event",
			"message_id", message.ID,
			"event_id", event.EventID,
			"error", err,
		)
		appOtel.RecordError(ctx, "consume_book_event")
	default:
		if err := c.handler.HandleEvent(ctx, event); err != nil {
			c.logger.Error("failed to apply book event",
				"message_id", message.ID,
				"event_type", event.Type,
				"book_id", event.BookID,
				"error", err,
			)
			return false
		}
	}

	if err := c.client.XAck(ctx, c.config.StreamKey, c.config.GroupName, message.ID).Err(); err != nil {
		c.logger.Error("failed to acknowledge message", "message_id", message.ID, "error", err)
	}
	return true
}
