package repositories

import (
	"context"
	"strings"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
	"everypoll/src/infra/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PollWriteRepository struct {
	writePool *pgxpool.Pool
}

func NewPollWriteRepository(writePool *pgxpool.Pool) *PollWriteRepository {
	return &PollWriteRepository{writePool: writePool}
}

// CreatePoll expects a request already normalized by domain.NormalizeCreatePoll.
func (r *PollWriteRepository) CreatePoll(ctx context.Context, request domain.CreatePollRequest) (entities.Poll, error) {
	poll := entities.Poll{
		ID:          uuid.NewString(),
		Question:    request.Question,
		Description: request.Description,
		Options:     entities.OptionsFromLabels(request.Options),
		CreatorID:   request.CreatorID,
		IsPublic:    request.IsPublic,
		Tally:       entities.NewTally(len(request.Options)),
	}

	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return entities.Poll{}, storageError("PollWriteRepository.CreatePoll - failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO polls (id, question, description, options, option_votes, total_votes, creator_id, is_public)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
		RETURNING created_at, updated_at`,
		poll.ID,
		poll.Question,
		postgres.NewNullString(&request.Description),
		request.Options,
		poll.Tally.Counts(),
		poll.CreatorID,
		poll.IsPublic,
	).Scan(&poll.CreatedAt, &poll.UpdatedAt)
	if err != nil {
		return entities.Poll{}, storageError("PollWriteRepository.CreatePoll - failed to insert poll", err)
	}

	payload := domain.PollCreatedPayload{CreatorID: poll.CreatorID, IsPublic: poll.IsPublic}
	if err := insertOutboxEvent(ctx, tx, domain.EventPollCreated, poll.ID, payload); err != nil {
		return entities.Poll{}, storageError("PollWriteRepository.CreatePoll", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return entities.Poll{}, storageError("PollWriteRepository.CreatePoll - failed to commit", err)
	}

	return poll, nil
}

// AttachRelationship links source to target. Only the creator of the source
// poll may attach edges from it. Identical triples are stored again, not merged.
func (r *PollWriteRepository) AttachRelationship(ctx context.Context, request domain.AttachRelationshipRequest) (entities.Edge, error) {
	if err := domain.ValidateAttachRelationship(request); err != nil {
		return entities.Edge{}, err
	}

	tx, err := r.writePool.Begin(ctx)
	if err != nil {
		return entities.Edge{}, storageError("PollWriteRepository.AttachRelationship - failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var creatorID string
	err = tx.QueryRow(ctx, `SELECT creator_id FROM polls WHERE id = $1`, request.SourcePollID).Scan(&creatorID)
	if postgres.IsNoRows(err) {
		return entities.Edge{}, domain.ErrPollNotFound
	}
	if err != nil {
		return entities.Edge{}, storageError("PollWriteRepository.AttachRelationship - failed to load source poll", err)
	}

	if creatorID != strings.TrimSpace(request.RequesterID) {
		return entities.Edge{}, domain.ErrNotPollCreator
	}

	edge := entities.Edge{
		SourcePollID: request.SourcePollID,
		TargetPollID: request.TargetPollID,
		Kind:         request.Kind,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO poll_relationships (source_poll_id, target_poll_id, kind)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		edge.SourcePollID, edge.TargetPollID, string(edge.Kind),
	).Scan(&edge.ID, &edge.CreatedAt)
	switch {
	case postgres.IsForeignKeyViolation(err):
		return entities.Edge{}, domain.ErrPollNotFound
	case postgres.IsCheckViolation(err):
		return entities.Edge{}, domain.ErrSelfReference
	case err != nil:
		return entities.Edge{}, storageError("PollWriteRepository.AttachRelationship - failed to insert edge", err)
	}

	payload := domain.RelationshipAttachedPayload{EdgeID: edge.ID, TargetPollID: edge.TargetPollID, Kind: edge.Kind}
	if err := insertOutboxEvent(ctx, tx, domain.EventRelationshipAttached, edge.SourcePollID, payload); err != nil {
		return entities.Edge{}, storageError("PollWriteRepository.AttachRelationship", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return entities.Edge{}, storageError("PollWriteRepository.AttachRelationship - failed to commit", err)
	}

	return edge, nil
}
