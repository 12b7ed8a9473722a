package fakes

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"

	"github.com/google/uuid"
)

type voteKey struct {
	pollID  string
	voterID string
}

// PollStore is an in-memory stand-in for the PostgreSQL repositories. One
// mutex plays the role of the database transaction, so every method is an
// atomic unit just like its SQL counterpart.
type PollStore struct {
	mu         sync.Mutex
	polls      map[string]entities.Poll
	votes      map[voteKey]entities.Vote
	edges      []entities.Edge
	nextEdgeID int64
	clock      time.Time

	// Err, when set, is returned by every call, as a broken connection would.
	Err error
}

func NewPollStore() *PollStore {
	return &PollStore{
		polls: make(map[string]entities.Poll),
		votes: make(map[voteKey]entities.Vote),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick hands out strictly increasing timestamps so list order is deterministic.
func (s *PollStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *PollStore) CreatePoll(ctx context.Context, request domain.CreatePollRequest) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return entities.Poll{}, s.Err
	}

	now := s.tick()
	poll := entities.Poll{
		ID:          uuid.NewString(),
		Question:    request.Question,
		Description: request.Description,
		Options:     entities.OptionsFromLabels(request.Options),
		CreatorID:   request.CreatorID,
		IsPublic:    request.IsPublic,
		Tally:       entities.NewTally(len(request.Options)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.polls[poll.ID] = poll

	return poll, nil
}

func (s *PollStore) AttachRelationship(ctx context.Context, request domain.AttachRelationshipRequest) (entities.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return entities.Edge{}, s.Err
	}

	source, ok := s.polls[request.SourcePollID]
	if !ok {
		return entities.Edge{}, domain.ErrPollNotFound
	}
	if source.CreatorID != request.RequesterID {
		return entities.Edge{}, domain.ErrNotPollCreator
	}
	if _, ok := s.polls[request.TargetPollID]; !ok {
		return entities.Edge{}, domain.ErrPollNotFound
	}

	s.nextEdgeID++
	edge := entities.Edge{
		ID:           s.nextEdgeID,
		SourcePollID: request.SourcePollID,
		TargetPollID: request.TargetPollID,
		Kind:         request.Kind,
		CreatedAt:    s.tick(),
	}
	s.edges = append(s.edges, edge)

	return edge, nil
}

func (s *PollStore) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return entities.Poll{}, s.Err
	}

	poll, ok := s.polls[pollID]
	if !ok {
		return entities.Poll{}, domain.ErrPollNotFound
	}
	return poll, nil
}

func (s *PollStore) ListPolls(ctx context.Context, query domain.ListPollsQuery) ([]entities.Poll, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, false, s.Err
	}

	search := strings.ToLower(query.Search)
	matching := make([]entities.Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		if search != "" && !strings.Contains(strings.ToLower(poll.Question), search) {
			continue
		}
		switch query.Visibility {
		case domain.VisibilityAll:
		case domain.VisibilityPublicOrOwn:
			if !poll.IsPublic && poll.CreatorID != query.ViewerID {
				continue
			}
		default:
			if !poll.IsPublic {
				continue
			}
		}
		matching = append(matching, poll)
	}

	sort.Slice(matching, func(i, j int) bool {
		if !matching[i].CreatedAt.Equal(matching[j].CreatedAt) {
			return matching[i].CreatedAt.After(matching[j].CreatedAt)
		}
		return matching[i].ID > matching[j].ID
	})

	offset := query.Offset()
	if offset >= len(matching) {
		return []entities.Poll{}, false, nil
	}

	end := offset + query.Limit
	hasMore := end < len(matching)
	if end > len(matching) {
		end = len(matching)
	}

	return matching[offset:end], hasMore, nil
}

func (s *PollStore) CastVote(ctx context.Context, request domain.CastVoteRequest) (domain.VoteReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return domain.VoteReceipt{}, s.Err
	}

	poll, ok := s.polls[request.PollID]
	if !ok {
		return domain.VoteReceipt{}, domain.ErrPollNotFound
	}
	if !poll.HasOption(request.SelectedOption) {
		return domain.VoteReceipt{}, domain.ErrInvalidOption
	}

	key := voteKey{pollID: request.PollID, voterID: request.VoterID}
	if _, exists := s.votes[key]; exists {
		return domain.VoteReceipt{}, domain.ErrAlreadyVoted
	}

	tally, err := poll.Tally.Apply(request.SelectedOption)
	if err != nil {
		return domain.VoteReceipt{}, err
	}

	vote := entities.Vote{
		ID:             uuid.NewString(),
		PollID:         request.PollID,
		VoterID:        request.VoterID,
		SelectedOption: request.SelectedOption,
		CreatedAt:      s.tick(),
	}
	s.votes[key] = vote

	poll.Tally = tally
	poll.UpdatedAt = vote.CreatedAt
	s.polls[poll.ID] = poll

	return domain.VoteReceipt{
		VoteID:         vote.ID,
		PollID:         vote.PollID,
		VoterID:        vote.VoterID,
		SelectedOption: vote.SelectedOption,
		Tally:          tally,
		CreatedAt:      vote.CreatedAt,
	}, nil
}

func (s *PollStore) HasVoted(ctx context.Context, pollID string, voterID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, false, s.Err
	}

	vote, ok := s.votes[voteKey{pollID: pollID, voterID: voterID}]
	if !ok {
		return 0, false, nil
	}
	return vote.SelectedOption, true, nil
}

func (s *PollStore) RecountTallies(ctx context.Context, pollID string) (domain.Reconciliation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return domain.Reconciliation{}, s.Err
	}

	poll, ok := s.polls[pollID]
	if !ok {
		return domain.Reconciliation{}, domain.ErrPollNotFound
	}

	tally := entities.NewTally(len(poll.Options))
	for key, vote := range s.votes {
		if key.pollID != pollID {
			continue
		}
		next, err := tally.Apply(vote.SelectedOption)
		if err != nil {
			return domain.Reconciliation{}, err
		}
		tally = next
	}

	drift := tally.Total != poll.Tally.Total
	for option, count := range tally.PerOption {
		if poll.Tally.PerOption[option] != count {
			drift = true
		}
	}

	poll.Tally = tally
	s.polls[pollID] = poll

	return domain.Reconciliation{PollID: pollID, Tally: tally, Drift: drift}, nil
}

func (s *PollStore) OutgoingEdges(ctx context.Context, pollID string) ([]domain.RelatedPoll, error) {
	return s.relatedPolls(pollID, func(edge entities.Edge) (string, bool) {
		return edge.TargetPollID, edge.SourcePollID == pollID
	})
}

func (s *PollStore) IncomingEdges(ctx context.Context, pollID string) ([]domain.RelatedPoll, error) {
	return s.relatedPolls(pollID, func(edge entities.Edge) (string, bool) {
		return edge.SourcePollID, edge.TargetPollID == pollID
	})
}

func (s *PollStore) relatedPolls(pollID string, otherEnd func(entities.Edge) (string, bool)) ([]domain.RelatedPoll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	related := []domain.RelatedPoll{}
	for _, edge := range s.edges {
		otherID, ok := otherEnd(edge)
		if !ok {
			continue
		}
		related = append(related, domain.RelatedPoll{
			EdgeID:   edge.ID,
			Kind:     edge.Kind,
			PollID:   otherID,
			Question: s.polls[otherID].Question,
		})
	}

	return related, nil
}

// CorruptTally overwrites a poll's stored counters, simulating drift.
func (s *PollStore) CorruptTally(pollID string, tally entities.Tally) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll := s.polls[pollID]
	poll.Tally = tally
	s.polls[pollID] = poll
}
