package polls

import (
	"context"
	"fmt"

	"everypoll/src/domain"
)

// GetPoll composes the poll, the viewer's own vote and both edge directions.
// An empty viewerID means an anonymous reader: no UserVote is looked up.
func (ps *PollService) GetPoll(ctx context.Context, pollID string, viewerID string) (domain.PollView, error) {
	poll, err := ps.pollReader.GetPoll(ctx, pollID)
	if err != nil {
		return domain.PollView{}, fmt.Errorf("PollService.GetPoll - failed to load poll %s: %w", pollID, err)
	}

	view := domain.PollView{Poll: poll}

	if viewerID != "" {
		option, found, err := ps.voteLedger.HasVoted(ctx, pollID, viewerID)
		if err != nil {
			return domain.PollView{}, fmt.Errorf("PollService.GetPoll - failed to load viewer vote: %w", err)
		}
		if found {
			view.UserVote = &option
		}
	}

	relationships, err := ps.loadRelationships(ctx, pollID)
	if err != nil {
		return domain.PollView{}, err
	}
	view.Relationships = relationships

	return view, nil
}

// HasVoted reports the option the voter picked, if any.
func (ps *PollService) HasVoted(ctx context.Context, pollID string, voterID string) (int, bool, error) {
	if voterID == "" {
		return 0, false, domain.ErrUnauthenticated
	}

	option, found, err := ps.voteLedger.HasVoted(ctx, pollID, voterID)
	if err != nil {
		return 0, false, fmt.Errorf("PollService.HasVoted - failed to look up vote: %w", err)
	}

	return option, found, nil
}
