package stubs

import (
	"time"

	"everypoll/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type VoteStub struct {
	vote entities.Vote
}

func NewVoteStub() VoteStub {
	vote := entities.Vote{
		ID:             gofakeit.UUID(),
		PollID:         gofakeit.UUID(),
		VoterID:        gofakeit.UUID(),
		SelectedOption: 0,
		CreatedAt:      time.Now().UTC(),
	}

	return VoteStub{vote: vote}
}

func (vs VoteStub) WithPollID(pollID string) VoteStub {
	vs.vote.PollID = pollID
	return vs
}

func (vs VoteStub) WithVoterID(voterID string) VoteStub {
	vs.vote.VoterID = voterID
	return vs
}

func (vs VoteStub) WithSelectedOption(option int) VoteStub {
	vs.vote.SelectedOption = option
	return vs
}

func (vs VoteStub) Get() entities.Vote {
	return vs.vote
}
