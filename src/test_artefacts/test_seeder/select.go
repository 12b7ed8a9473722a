package test_seeder

import (
	"context"
	"fmt"

	"everypoll/src/domain"
)

// SelectCounters returns the stored total and per-option counters of a poll.
func (ts TestSeeder) SelectCounters(ctx context.Context, pollID string) (int64, []int64) {
	var total int64
	var counts []int64

	err := ts.pool.QueryRow(ctx, `SELECT total_votes, option_votes FROM polls WHERE id = $1`, pollID).Scan(&total, &counts)
	if err != nil {
		panic(fmt.Sprintf("Seeder.SelectCounters failed: %v", err))
	}

	return total, counts
}

func (ts TestSeeder) CountVotes(ctx context.Context, pollID string, voterID string) int {
	var count int

	err := ts.pool.QueryRow(ctx, `SELECT count(*) FROM votes WHERE poll_id = $1 AND voter_id = $2`, pollID, voterID).Scan(&count)
	if err != nil {
		panic(fmt.Sprintf("Seeder.CountVotes failed: %v", err))
	}

	return count
}

// SelectOutboxEvents returns every outbox row for the poll in insertion order.
func (ts TestSeeder) SelectOutboxEvents(ctx context.Context, pollID string) []domain.PollEvent {
	rows, err := ts.pool.Query(ctx, `
		SELECT id, event_type, poll_id, payload, occurred_at, published_at
		FROM poll_outbox WHERE poll_id = $1
		ORDER BY occurred_at, id`,
		pollID,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.SelectOutboxEvents failed: %v", err))
	}
	defer rows.Close()

	events := []domain.PollEvent{}
	for rows.Next() {
		var event domain.PollEvent
		var payload []byte
		if err := rows.Scan(&event.ID, &event.Type, &event.PollID, &payload, &event.OccurredAt, &event.PublishedAt); err != nil {
			panic(fmt.Sprintf("Seeder.SelectOutboxEvents scan failed: %v", err))
		}
		event.Payload = payload
		events = append(events, event)
	}

	return events
}
