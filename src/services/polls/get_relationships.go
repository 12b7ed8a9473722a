package polls

import (
	"context"
	"fmt"

	"everypoll/src/domain"
)

// GetRelationships fails with ErrPollNotFound for an unknown poll instead of
// returning two empty lists.
func (ps *PollService) GetRelationships(ctx context.Context, pollID string) (domain.Relationships, error) {
	if _, err := ps.pollReader.GetPoll(ctx, pollID); err != nil {
		return domain.Relationships{}, fmt.Errorf("PollService.GetRelationships - failed to load poll %s: %w", pollID, err)
	}

	return ps.loadRelationships(ctx, pollID)
}

func (ps *PollService) loadRelationships(ctx context.Context, pollID string) (domain.Relationships, error) {
	outgoing, err := ps.relationshipReader.OutgoingEdges(ctx, pollID)
	if err != nil {
		return domain.Relationships{}, fmt.Errorf("PollService.GetRelationships - failed to load outgoing edges: %w", err)
	}

	incoming, err := ps.relationshipReader.IncomingEdges(ctx, pollID)
	if err != nil {
		return domain.Relationships{}, fmt.Errorf("PollService.GetRelationships - failed to load incoming edges: %w", err)
	}

	return domain.Relationships{
		Outgoing: outgoing,
		Incoming: incoming,
	}, nil
}
