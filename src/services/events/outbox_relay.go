package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"everypoll/src/domain"
)

type PendingEventSource interface {
	PublishPending(ctx context.Context, limit int, publish func([]domain.PollEvent) error) (int, error)
	PendingCount(ctx context.Context) (int64, error)
}

// OutboxRelay moves committed poll events from the outbox table to Kafka. A
// failed batch stays pending and is retried on the next tick, so consumers see
// each event at least once.
type OutboxRelay struct {
	logger    *slog.Logger
	source    PendingEventSource
	publisher *DomainEventPublisher
	interval  time.Duration
	batchSize int
}

func NewOutboxRelay(
	logger *slog.Logger,
	source PendingEventSource,
	publisher *DomainEventPublisher,
	interval time.Duration,
	batchSize int,
) *OutboxRelay {
	return &OutboxRelay{
		logger:    logger,
		source:    source,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run relays until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) error {
	r.logger.Info("Outbox relay started",
		"interval", r.interval.String(),
		"batch_size", r.batchSize)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("Outbox relay iteration failed", "error", err)
				r.logBacklog(ctx)
			}
		}
	}
}

// Drain publishes full batches until the outbox has nothing pending.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		published, err := r.source.PublishPending(ctx, r.batchSize, func(events []domain.PollEvent) error {
			return r.publisher.PublishPollEvents(ctx, events)
		})
		total += published
		if err != nil {
			return total, err
		}

		if published < r.batchSize {
			if total > 0 {
				r.logger.Debug("Outbox drained", "published", total)
			}
			return total, nil
		}
	}
}

func (r *OutboxRelay) logBacklog(ctx context.Context) {
	pending, err := r.source.PendingCount(ctx)
	if err != nil {
		r.logger.Warn("Failed to count pending outbox events", "error", err)
		return
	}
	r.logger.Warn("Outbox backlog", "pending", pending)
}
