package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"everypoll/src/domain"
	"everypoll/src/infra/kafka"
)

type CacheInvalidator interface {
	InvalidateByPollIDs(ctx context.Context, pollIDs []string) error
	InvalidateAllLists(ctx context.Context) error
}

// CacheInvalidationConsumer drops cached list pages when poll events show they
// went stale. A new poll can shift every page; a vote or a recount only
// changes the pages that show that poll. Edges are not part of list pages.
type CacheInvalidationConsumer struct {
	logger      *slog.Logger
	invalidator CacheInvalidator
}

func NewCacheInvalidationConsumer(
	logger *slog.Logger,
	invalidator CacheInvalidator,
) *CacheInvalidationConsumer {
	return &CacheInvalidationConsumer{
		logger:      logger,
		invalidator: invalidator,
	}
}

func (c *CacheInvalidationConsumer) Start(ctx context.Context, kafkaClient *kafka.KafkaClient, topic string) error {
	c.logger.Info("Starting cache invalidation consumer", "topic", topic)

	handler := func(messages []kafka.Message) error {
		return c.HandleMessages(ctx, messages)
	}

	return kafkaClient.Consumer(ctx, handler, topic)
}

// HandleMessages returns an error only when the cache could not be reached, so
// the batch is redelivered. Undecodable messages are logged and skipped.
func (c *CacheInvalidationConsumer) HandleMessages(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}

	c.logger.Debug("Processing poll events batch", "count", len(messages))

	invalidateAll := false
	pollIDs := make(map[string]struct{})

	for _, msg := range messages {
		var event domain.PollEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("Failed to unmarshal poll event",
				"error", err,
				"key", msg.Key)
			continue
		}

		eventType := msg.Headers["event_type"]
		if eventType == "" {
			eventType = event.Type
		}

		switch eventType {
		case domain.EventPollCreated:
			invalidateAll = true
		case domain.EventVoteCast, domain.EventTallyReconciled:
			if event.PollID != "" {
				pollIDs[event.PollID] = struct{}{}
			}
		default:
			c.logger.Debug("Ignoring poll event", "event_type", eventType, "event_id", event.ID)
		}
	}

	if invalidateAll {
		if err := c.invalidator.InvalidateAllLists(ctx); err != nil {
			return fmt.Errorf("failed to invalidate list pages: %w", err)
		}
		c.logger.Info("Invalidated all cached list pages")
		return nil
	}

	if len(pollIDs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(pollIDs))
	for id := range pollIDs {
		ids = append(ids, id)
	}

	if err := c.invalidator.InvalidateByPollIDs(ctx, ids); err != nil {
		return fmt.Errorf("failed to invalidate pages for %d polls: %w", len(ids), err)
	}

	c.logger.Info("Invalidated cached list pages", "polls", len(ids))
	return nil
}
