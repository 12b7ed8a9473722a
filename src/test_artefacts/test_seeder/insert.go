package test_seeder

import (
	"context"
	"fmt"

	"everypoll/src/domain/entities"
)

// InsertPoll writes the poll as given, tally included, bypassing the ledger.
func (ts TestSeeder) InsertPoll(ctx context.Context, poll *entities.Poll) {
	query := `
		INSERT INTO polls (id, question, description, options, option_votes, total_votes, creator_id, is_public, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)`

	_, err := ts.pool.Exec(ctx, query,
		poll.ID,
		poll.Question,
		poll.Description,
		poll.Labels(),
		poll.Tally.Counts(),
		poll.Tally.Total,
		poll.CreatorID,
		poll.IsPublic,
		poll.CreatedAt,
		poll.UpdatedAt,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertPoll failed: %v", err))
	}
}

// InsertVote writes a vote row without touching the poll's counters, which
// is how tests produce tally drift.
func (ts TestSeeder) InsertVote(ctx context.Context, vote *entities.Vote) {
	query := `
		INSERT INTO votes (id, poll_id, voter_id, selected_option, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := ts.pool.Exec(ctx, query,
		vote.ID,
		vote.PollID,
		vote.VoterID,
		vote.SelectedOption,
		vote.CreatedAt,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertVote failed: %v", err))
	}
}

func (ts TestSeeder) InsertEdge(ctx context.Context, edge *entities.Edge) {
	query := `
		INSERT INTO poll_relationships (source_poll_id, target_poll_id, kind, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`

	err := ts.pool.QueryRow(ctx, query,
		edge.SourcePollID,
		edge.TargetPollID,
		edge.Kind,
		edge.CreatedAt,
	).Scan(&edge.ID)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertEdge failed: %v", err))
	}
}
