package polls

import (
	"context"
	"fmt"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
)

// CreatePoll validates the request and stores the poll with zeroed counters.
func (ps *PollService) CreatePoll(ctx context.Context, request domain.CreatePollRequest) (entities.Poll, error) {
	normalized, err := domain.NormalizeCreatePoll(request)
	if err != nil {
		return entities.Poll{}, err
	}

	poll, err := ps.pollWriter.CreatePoll(ctx, normalized)
	if err != nil {
		return entities.Poll{}, fmt.Errorf("PollService.CreatePoll - failed to create poll: %w", err)
	}

	ps.logger.Info("Poll created",
		"poll_id", poll.ID,
		"creator_id", poll.CreatorID,
		"options", len(poll.Options))

	return poll, nil
}
