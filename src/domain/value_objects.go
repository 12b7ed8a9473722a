package domain

import (
	"encoding/json"
	"time"

	"everypoll/src/domain/entities"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// ############################################################
// ##################### ESCRITA ##############################
// ############################################################

type CreatePollRequest struct {
	CreatorID   string
	Question    string
	Description string
	Options     []string
	IsPublic    bool
}

type CastVoteRequest struct {
	PollID         string
	VoterID        string
	SelectedOption int
}

// VoteReceipt is returned by a successful CastVote. Tally is the state of the
// poll's counters right after the vote was applied.
type VoteReceipt struct {
	VoteID         string
	PollID         string
	VoterID        string
	SelectedOption int
	Tally          entities.Tally
	CreatedAt      time.Time
}

type AttachRelationshipRequest struct {
	RequesterID  string
	SourcePollID string
	TargetPollID string
	Kind         entities.RelationshipKind
}

// Reconciliation is the outcome of recounting a poll's votes.
type Reconciliation struct {
	PollID string
	Tally  entities.Tally
	Drift  bool
}

// ############################################################
// ##################### LEITURA ##############################
// ############################################################

type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityPublicOrOwn Visibility = "public_or_own"
	VisibilityAll         Visibility = "all"
)

type ListPollsQuery struct {
	Page       int
	Limit      int
	Search     string
	Visibility Visibility
	ViewerID   string
}

// Offset converts the 1-based page into a row offset.
func (q ListPollsQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type PollPage struct {
	Polls   []entities.Poll
	Page    int
	Limit   int
	HasMore bool
}

// RelatedPoll is one end of a relationship edge as seen from a given poll.
type RelatedPoll struct {
	EdgeID   int64
	Kind     entities.RelationshipKind
	PollID   string
	Question string
}

type Relationships struct {
	Outgoing []RelatedPoll
	Incoming []RelatedPoll
}

// PollView is a poll composed for one viewer.
type PollView struct {
	entities.Poll
	UserVote *int
	Relationships
}

// VoteState is the fragment returned to the client after a vote.
type VoteState struct {
	PollID         string
	OptionID       int
	TotalVotes     int64
	PerOptionVotes map[int]int64
}

// ############################################################
// ##################### EVENTOS ##############################
// ############################################################

const (
	EventPollCreated              = "poll.created"
	EventVoteCast                 = "poll.vote_cast"
	EventRelationshipAttached     = "poll.relationship_attached"
	EventTallyReconciled          = "poll.tally_reconciled"
	PollEventsSchemaVersion       = "v1"
	PollEventsSourceServiceHeader = "everypoll-api"
)

// PollEvent is what the outbox stores and what travels on the poll events topic.
type PollEvent struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	PollID      string          `json:"poll_id"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurred_at"`
	PublishedAt *time.Time      `json:"-"`
}

type PollCreatedPayload struct {
	CreatorID string `json:"creator_id"`
	IsPublic  bool   `json:"is_public"`
}

type VoteCastPayload struct {
	VoteID         string `json:"vote_id"`
	SelectedOption int    `json:"selected_option"`
	TotalVotes     int64  `json:"total_votes"`
}

type RelationshipAttachedPayload struct {
	EdgeID       int64                     `json:"edge_id"`
	TargetPollID string                    `json:"target_poll_id"`
	Kind         entities.RelationshipKind `json:"kind"`
}

type TallyReconciledPayload struct {
	TotalVotes int64 `json:"total_votes"`
	Drift      bool  `json:"drift"`
}
