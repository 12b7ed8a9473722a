package repositories

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
	"everypoll/src/infra/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VoteLedgerRepository owns the votes table and is the only writer of a poll's
// counters. One vote and its tally increment are a single transaction; the
// unique key (poll_id, voter_id) decides which of two racing votes wins.
type VoteLedgerRepository struct {
	writePool *pgxpool.Pool
}

func NewVoteLedgerRepository(writePool *pgxpool.Pool) *VoteLedgerRepository {
	return &VoteLedgerRepository{writePool: writePool}
}

func (r *VoteLedgerRepository) CastVote(ctx context.Context, request domain.CastVoteRequest) (domain.VoteReceipt, error) {
	voterID := strings.TrimSpace(request.VoterID)
	if voterID == "" {
		return domain.VoteReceipt{}, domain.ErrUnauthenticated
	}

	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return domain.VoteReceipt{}, storageError("VoteLedgerRepository.CastVote - failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var optionCount int
	err = tx.QueryRow(ctx, `SELECT cardinality(options) FROM polls WHERE id = $1`, request.PollID).Scan(&optionCount)
	if postgres.IsNoRows(err) {
		return domain.VoteReceipt{}, domain.ErrPollNotFound
	}
	if err != nil {
		return domain.VoteReceipt{}, storageError("VoteLedgerRepository.CastVote - failed to load poll", err)
	}

	if request.SelectedOption < 0 || request.SelectedOption >= optionCount {
		return domain.VoteReceipt{}, domain.ErrInvalidOption
	}

	receipt := domain.VoteReceipt{
		VoteID:         uuid.NewString(),
		PollID:         request.PollID,
		VoterID:        voterID,
		SelectedOption: request.SelectedOption,
	}

	// A concurrent insert for the same pair blocks here until the other
	// transaction finishes, then inserts nothing if that one committed.
	err = tx.QueryRow(ctx, `
		INSERT INTO votes (id, poll_id, voter_id, selected_option)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (poll_id, voter_id) DO NOTHING
		RETURNING created_at`,
		receipt.VoteID, receipt.PollID, receipt.VoterID, receipt.SelectedOption,
	).Scan(&receipt.CreatedAt)
	switch {
	case postgres.IsNoRows(err):
		return domain.VoteReceipt{}, domain.ErrAlreadyVoted
	case postgres.IsForeignKeyViolation(err):
		return domain.VoteReceipt{}, domain.ErrPollNotFound
	case err != nil:
		return domain.VoteReceipt{}, storageError("VoteLedgerRepository.CastVote - failed to insert vote", err)
	}

	var total int64
	var counts []int64
	err = tx.QueryRow(ctx, `
		UPDATE polls
		SET option_votes[$2::int + 1] = option_votes[$2::int + 1] + 1,
			total_votes = total_votes + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING total_votes, option_votes`,
		receipt.PollID, receipt.SelectedOption,
	).Scan(&total, &counts)
	if err != nil {
		return domain.VoteReceipt{}, storageError("VoteLedgerRepository.CastVote - failed to update tally", err)
	}

	receipt.Tally, err = entities.TallyFromCounts(total, counts)
	if err != nil {
		return domain.VoteReceipt{}, fmt.Errorf("VoteLedgerRepository.CastVote - poll %s: %w", receipt.PollID, err)
	}

	payload := domain.VoteCastPayload{VoteID: receipt.VoteID, SelectedOption: receipt.SelectedOption, TotalVotes: total}
	if err := insertOutboxEvent(ctx, tx, domain.EventVoteCast, receipt.PollID, payload); err != nil {
		return domain.VoteReceipt{}, storageError("VoteLedgerRepository.CastVote", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.VoteReceipt{}, storageError("VoteLedgerRepository.CastVote - failed to commit", err)
	}

	return receipt, nil
}

// HasVoted reads from the primary so it reflects every vote that has
// already been acknowledged.
func (r *VoteLedgerRepository) HasVoted(ctx context.Context, pollID string, voterID string) (int, bool, error) {
	var option int
	err := r.writePool.QueryRow(ctx, `
		SELECT selected_option FROM votes WHERE poll_id = $1 AND voter_id = $2`,
		pollID, strings.TrimSpace(voterID),
	).Scan(&option)
	if postgres.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, storageError("VoteLedgerRepository.HasVoted - failed to query vote", err)
	}
	return option, true, nil
}

// RecountTallies rebuilds the poll's counters from its votes. The poll row is
// locked for the duration, so no vote can change the counters meanwhile.
func (r *VoteLedgerRepository) RecountTallies(ctx context.Context, pollID string) (domain.Reconciliation, error) {
	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return domain.Reconciliation{}, storageError("VoteLedgerRepository.RecountTallies - failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var optionCount int
	var storedTotal int64
	var storedCounts []int64
	err = tx.QueryRow(ctx, `
		SELECT cardinality(options), total_votes, option_votes
		FROM polls WHERE id = $1
		FOR UPDATE`,
		pollID,
	).Scan(&optionCount, &storedTotal, &storedCounts)
	if postgres.IsNoRows(err) {
		return domain.Reconciliation{}, domain.ErrPollNotFound
	}
	if err != nil {
		return domain.Reconciliation{}, storageError("VoteLedgerRepository.RecountTallies - failed to lock poll", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT selected_option, COUNT(*)
		FROM votes WHERE poll_id = $1
		GROUP BY selected_option`,
		pollID,
	)
	if err != nil {
		return domain.Reconciliation{}, storageError("VoteLedgerRepository.RecountTallies - failed to count votes", err)
	}

	counts := make([]int64, optionCount)
	var total int64
	for rows.Next() {
		var option int
		var count int64
		if err := rows.Scan(&option, &count); err != nil {
			rows.Close()
			return domain.Reconciliation{}, fmt.Errorf("VoteLedgerRepository.RecountTallies - failed to scan count: %w", err)
		}
		if option < 0 || option >= optionCount {
			rows.Close()
			return domain.Reconciliation{}, fmt.Errorf("VoteLedgerRepository.RecountTallies - vote for option %d outside poll %s", option, pollID)
		}
		counts[option] = count
		total += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Reconciliation{}, storageError("VoteLedgerRepository.RecountTallies - error iterating counts", err)
	}

	tally, err := entities.TallyFromCounts(total, counts)
	if err != nil {
		return domain.Reconciliation{}, fmt.Errorf("VoteLedgerRepository.RecountTallies - poll %s: %w", pollID, err)
	}

	drift := storedTotal != total || !slices.Equal(storedCounts, counts)
	if drift {
		_, err = tx.Exec(ctx, `
			UPDATE polls SET option_votes = $2, total_votes = $3, updated_at = NOW()
			WHERE id = $1`,
			pollID, counts, total,
		)
		if err != nil {
			return domain.Reconciliation{}, storageError("VoteLedgerRepository.RecountTallies - failed to rewrite tally", err)
		}
	}

	payload := domain.TallyReconciledPayload{TotalVotes: total, Drift: drift}
	if err := insertOutboxEvent(ctx, tx, domain.EventTallyReconciled, pollID, payload); err != nil {
		return domain.Reconciliation{}, storageError("VoteLedgerRepository.RecountTallies", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Reconciliation{}, storageError("VoteLedgerRepository.RecountTallies - failed to commit", err)
	}

	return domain.Reconciliation{PollID: pollID, Tally: tally, Drift: drift}, nil
}
