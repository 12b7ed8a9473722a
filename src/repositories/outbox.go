package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// insertOutboxEvent records a poll event inside the caller's transaction, so
// the event exists if and only if the change that caused it was committed.
func insertOutboxEvent(ctx context.Context, tx pgx.Tx, eventType string, pollID string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO poll_outbox (id, event_type, poll_id, payload)
		VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), eventType, pollID, payloadJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}

	return nil
}
