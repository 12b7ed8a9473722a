package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"everypoll/src/domain"
	"everypoll/src/infra/kafka"
)

type MessageProducer interface {
	Producer(messages []kafka.Message, topic string) error
}

type DomainEventPublisher struct {
	logger   *slog.Logger
	producer MessageProducer
	topic    string
}

func NewDomainEventPublisher(
	logger *slog.Logger,
	producer MessageProducer,
	topic string,
) *DomainEventPublisher {
	return &DomainEventPublisher{
		logger:   logger,
		producer: producer,
		topic:    topic,
	}
}

// PublishPollEvents sends the batch to Kafka keyed by poll id, so every event of
// one poll lands on the same partition in outbox order. Unlike a best effort
// publisher it fails the whole batch on a marshal error: the outbox rows must
// stay pending rather than be marked published while missing from the topic.
func (p *DomainEventPublisher) PublishPollEvents(ctx context.Context, events []domain.PollEvent) error {
	if len(events) == 0 {
		return nil
	}

	p.logger.Debug("Publishing poll events batch", "count", len(events))

	kafkaMessages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		eventBytes, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal poll event",
				"error", err,
				"event_id", event.ID,
				"poll_id", event.PollID)
			return fmt.Errorf("failed to marshal poll event %s: %w", event.ID, err)
		}

		kafkaMessages = append(kafkaMessages, kafka.Message{
			Key:     event.PollID,
			Value:   eventBytes,
			Headers: p.createEventHeaders(event),
		})
	}

	if err := p.producer.Producer(kafkaMessages, p.topic); err != nil {
		p.logger.Error("Failed to publish poll events to Kafka",
			"error", err,
			"topic", p.topic,
			"events_count", len(kafkaMessages))
		return fmt.Errorf("failed to publish poll events to topic %s: %w", p.topic, err)
	}

	p.logger.Info("Successfully published poll events",
		"topic", p.topic,
		"events_count", len(kafkaMessages))

	return nil
}

// createEventHeaders lets consumers filter on event type without decoding the body.
func (p *DomainEventPublisher) createEventHeaders(event domain.PollEvent) map[string]string {
	return map[string]string{
		"event_type":     event.Type,
		"event_id":       event.ID,
		"source_service": domain.PollEventsSourceServiceHeader,
		"schema_version": domain.PollEventsSchemaVersion,
	}
}

func (p *DomainEventPublisher) PublishSingleEvent(ctx context.Context, event domain.PollEvent) error {
	return p.PublishPollEvents(ctx, []domain.PollEvent{event})
}
