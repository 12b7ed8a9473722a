package polls

import (
	"context"
	"fmt"

	"everypoll/src/domain"
)

func (ps *PollService) ListPolls(ctx context.Context, query domain.ListPollsQuery) (domain.PollPage, error) {
	normalized, err := domain.NormalizeListPolls(query)
	if err != nil {
		return domain.PollPage{}, err
	}

	polls, hasMore, err := ps.pollReader.ListPolls(ctx, normalized)
	if err != nil {
		return domain.PollPage{}, fmt.Errorf("PollService.ListPolls - failed to list polls: %w", err)
	}

	return domain.PollPage{
		Polls:   polls,
		Page:    normalized.Page,
		Limit:   normalized.Limit,
		HasMore: hasMore,
	}, nil
}
