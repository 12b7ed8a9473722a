package polls

import (
	"context"
	"fmt"

	"everypoll/src/domain"
)

// ReconcileTallies recounts the poll's votes and repairs the stored counters.
// Only the poll's creator may trigger it.
func (ps *PollService) ReconcileTallies(ctx context.Context, pollID string, requesterID string) (domain.Reconciliation, error) {
	if requesterID == "" {
		return domain.Reconciliation{}, domain.ErrUnauthenticated
	}

	poll, err := ps.pollReader.GetPoll(ctx, pollID)
	if err != nil {
		return domain.Reconciliation{}, fmt.Errorf("PollService.ReconcileTallies - failed to load poll %s: %w", pollID, err)
	}

	if poll.CreatorID != requesterID {
		return domain.Reconciliation{}, domain.ErrNotPollCreator
	}

	reconciliation, err := ps.voteLedger.RecountTallies(ctx, pollID)
	if err != nil {
		return domain.Reconciliation{}, fmt.Errorf("PollService.ReconcileTallies - failed to recount: %w", err)
	}

	if reconciliation.Drift {
		ps.logger.Warn("Tally drift repaired",
			"poll_id", pollID,
			"total_votes", reconciliation.Tally.Total)
	}

	return reconciliation, nil
}
