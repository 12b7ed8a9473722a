package stubs

import (
	"time"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type PollStub struct {
	poll entities.Poll
}

func NewPollStub() PollStub {
	now := time.Now().UTC()

	labels := []string{gofakeit.Word(), gofakeit.Word(), gofakeit.Word()}

	poll := entities.Poll{
		ID:          gofakeit.UUID(),
		Question:    gofakeit.Question(),
		Description: gofakeit.Sentence(8),
		Options:     entities.OptionsFromLabels(labels),
		CreatorID:   gofakeit.UUID(),
		IsPublic:    true,
		Tally:       entities.NewTally(len(labels)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return PollStub{poll: poll}
}

func (ps PollStub) WithID(id string) PollStub {
	ps.poll.ID = id
	return ps
}

func (ps PollStub) WithQuestion(question string) PollStub {
	ps.poll.Question = question
	return ps
}

// WithOptions replaces the options and resets the tally to match them.
func (ps PollStub) WithOptions(labels ...string) PollStub {
	ps.poll.Options = entities.OptionsFromLabels(labels)
	ps.poll.Tally = entities.NewTally(len(labels))
	return ps
}

func (ps PollStub) WithCreatorID(creatorID string) PollStub {
	ps.poll.CreatorID = creatorID
	return ps
}

func (ps PollStub) WithIsPublic(isPublic bool) PollStub {
	ps.poll.IsPublic = isPublic
	return ps
}

func (ps PollStub) WithTally(tally entities.Tally) PollStub {
	ps.poll.Tally = tally
	return ps
}

func (ps PollStub) WithCreatedAt(createdAt time.Time) PollStub {
	ps.poll.CreatedAt = createdAt
	ps.poll.UpdatedAt = createdAt
	return ps
}

func (ps PollStub) Get() entities.Poll {
	return ps.poll
}

// CreateRequest is the request that would have produced this poll.
func (ps PollStub) CreateRequest() domain.CreatePollRequest {
	return domain.CreatePollRequest{
		CreatorID:   ps.poll.CreatorID,
		Question:    ps.poll.Question,
		Description: ps.poll.Description,
		Options:     ps.poll.Labels(),
		IsPublic:    ps.poll.IsPublic,
	}
}
