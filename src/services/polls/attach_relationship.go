package polls

import (
	"context"
	"fmt"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
)

func (ps *PollService) AttachRelationship(ctx context.Context, request domain.AttachRelationshipRequest) (entities.Edge, error) {
	if err := domain.ValidateAttachRelationship(request); err != nil {
		return entities.Edge{}, err
	}

	edge, err := ps.pollWriter.AttachRelationship(ctx, request)
	if err != nil {
		return entities.Edge{}, fmt.Errorf("PollService.AttachRelationship - failed to attach %s edge: %w", request.Kind, err)
	}

	ps.logger.Info("Relationship attached",
		"edge_id", edge.ID,
		"source_poll_id", edge.SourcePollID,
		"target_poll_id", edge.TargetPollID,
		"kind", edge.Kind)

	return edge, nil
}
