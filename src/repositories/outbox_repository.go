package repositories

import (
	"context"
	"fmt"

	"everypoll/src/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OutboxRepository hands pending poll events to a publisher. Rows are locked
// with SKIP LOCKED so several relays can run side by side without sending the
// same event twice in the happy path.
type OutboxRepository struct {
	writePool *pgxpool.Pool
}

func NewOutboxRepository(writePool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{writePool: writePool}
}

// PublishPending loads up to limit unpublished events in occurrence order and
// calls publish with them. The rows are marked published only if publish
// succeeds; otherwise they stay pending for the next run.
func (r *OutboxRepository) PublishPending(
	ctx context.Context,
	limit int,
	publish func([]domain.PollEvent) error,
) (int, error) {
	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return 0, storageError("OutboxRepository.PublishPending - failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, event_type, poll_id, payload, occurred_at
		FROM poll_outbox
		WHERE published_at IS NULL
		ORDER BY occurred_at, id
		LIMIT $1
		FOR UPDATE SKIP LOCKED`,
		limit,
	)
	if err != nil {
		return 0, storageError("OutboxRepository.PublishPending - failed to load pending events", err)
	}

	events := make([]domain.PollEvent, 0, limit)
	for rows.Next() {
		var event domain.PollEvent
		var payload []byte
		if err := rows.Scan(&event.ID, &event.Type, &event.PollID, &payload, &event.OccurredAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("OutboxRepository.PublishPending - failed to scan event: %w", err)
		}
		event.Payload = payload
		events = append(events, event)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, storageError("OutboxRepository.PublishPending - failed to iterate events", err)
	}

	if len(events) == 0 {
		return 0, nil
	}

	if err := publish(events); err != nil {
		return 0, fmt.Errorf("OutboxRepository.PublishPending - failed to publish %d events: %w", len(events), err)
	}

	ids := make([]string, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}

	_, err = tx.Exec(ctx, `UPDATE poll_outbox SET published_at = now() WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, storageError("OutboxRepository.PublishPending - failed to mark events as published", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, storageError("OutboxRepository.PublishPending - failed to commit", err)
	}

	return len(events), nil
}

// PendingCount is logged by the relay when a drain fails.
func (r *OutboxRepository) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.writePool.QueryRow(ctx, `SELECT count(*) FROM poll_outbox WHERE published_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, storageError("OutboxRepository.PendingCount - failed to count pending events", err)
	}
	return count, nil
}
