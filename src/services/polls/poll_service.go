package polls

import (
	"context"
	"log/slog"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
)

type PollWriter interface {
	CreatePoll(ctx context.Context, request domain.CreatePollRequest) (entities.Poll, error)
	AttachRelationship(ctx context.Context, request domain.AttachRelationshipRequest) (entities.Edge, error)
}

type PollReader interface {
	GetPoll(ctx context.Context, pollID string) (entities.Poll, error)
	ListPolls(ctx context.Context, query domain.ListPollsQuery) ([]entities.Poll, bool, error)
}

type VoteLedger interface {
	CastVote(ctx context.Context, request domain.CastVoteRequest) (domain.VoteReceipt, error)
	HasVoted(ctx context.Context, pollID string, voterID string) (int, bool, error)
	RecountTallies(ctx context.Context, pollID string) (domain.Reconciliation, error)
}

type RelationshipReader interface {
	OutgoingEdges(ctx context.Context, pollID string) ([]domain.RelatedPoll, error)
	IncomingEdges(ctx context.Context, pollID string) ([]domain.RelatedPoll, error)
}

// PollService is the boundary the HTTP adapter calls. It composes reads and
// delegates every write to the repositories; it keeps no state of its own.
type PollService struct {
	logger             *slog.Logger
	pollWriter         PollWriter
	pollReader         PollReader
	voteLedger         VoteLedger
	relationshipReader RelationshipReader
}

func NewPollService(
	logger *slog.Logger,
	pollWriter PollWriter,
	pollReader PollReader,
	voteLedger VoteLedger,
	relationshipReader RelationshipReader,
) *PollService {
	return &PollService{
		logger:             logger,
		pollWriter:         pollWriter,
		pollReader:         pollReader,
		voteLedger:         voteLedger,
		relationshipReader: relationshipReader,
	}
}
