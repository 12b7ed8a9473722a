package polls

import (
	"context"
	"errors"
	"fmt"

	"everypoll/src/domain"
)

// CastVote records the vote and returns the poll's counters as they were right
// after it was applied. ErrAlreadyVoted is a terminal state, logged at info.
func (ps *PollService) CastVote(ctx context.Context, request domain.CastVoteRequest) (domain.VoteState, error) {
	if request.VoterID == "" {
		return domain.VoteState{}, domain.ErrUnauthenticated
	}

	receipt, err := ps.voteLedger.CastVote(ctx, request)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyVoted) {
			ps.logger.Info("Vote rejected, voter already voted",
				"poll_id", request.PollID,
				"voter_id", request.VoterID)
		}
		return domain.VoteState{}, fmt.Errorf("PollService.CastVote - failed to cast vote: %w", err)
	}

	ps.logger.Debug("Vote cast",
		"poll_id", receipt.PollID,
		"vote_id", receipt.VoteID,
		"option", receipt.SelectedOption,
		"total_votes", receipt.Tally.Total)

	return domain.VoteState{
		PollID:         receipt.PollID,
		OptionID:       receipt.SelectedOption,
		TotalVotes:     receipt.Tally.Total,
		PerOptionVotes: receipt.Tally.PerOption,
	}, nil
}
