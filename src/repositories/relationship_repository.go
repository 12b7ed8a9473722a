package repositories

import (
	"context"
	"fmt"

	"everypoll/src/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RelationshipRepository answers single-hop questions about poll edges.
type RelationshipRepository struct {
	pool *pgxpool.Pool
}

func NewRelationshipRepository(pool *pgxpool.Pool) *RelationshipRepository {
	return &RelationshipRepository{pool: pool}
}

func (rr *RelationshipRepository) OutgoingEdges(ctx context.Context, pollID string) ([]domain.RelatedPoll, error) {
	return rr.queryEdges(ctx, "RelationshipRepository.OutgoingEdges", `
		SELECT r.id, r.kind, p.id, p.question
		FROM poll_relationships r
		JOIN polls p ON p.id = r.target_poll_id
		WHERE r.source_poll_id = $1
		ORDER BY r.id`, pollID)
}

func (rr *RelationshipRepository) IncomingEdges(ctx context.Context, pollID string) ([]domain.RelatedPoll, error) {
	return rr.queryEdges(ctx, "RelationshipRepository.IncomingEdges", `
		SELECT r.id, r.kind, p.id, p.question
		FROM poll_relationships r
		JOIN polls p ON p.id = r.source_poll_id
		WHERE r.target_poll_id = $1
		ORDER BY r.id`, pollID)
}

func (rr *RelationshipRepository) queryEdges(ctx context.Context, operation string, query string, pollID string) ([]domain.RelatedPoll, error) {
	rows, err := rr.pool.Query(ctx, query, pollID)
	if err != nil {
		return nil, storageError(operation+" - edge query failed", err)
	}
	defer rows.Close()

	related := make([]domain.RelatedPoll, 0)
	for rows.Next() {
		var item domain.RelatedPoll
		if err := rows.Scan(&item.EdgeID, &item.Kind, &item.PollID, &item.Question); err != nil {
			return nil, fmt.Errorf("%s - failed to scan edge: %w", operation, err)
		}
		related = append(related, item)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError(operation+" - error iterating edge rows", err)
	}

	return related, nil
}
