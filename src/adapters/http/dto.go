package http

import (
	"time"

	"everypoll/src/domain"
	"everypoll/src/domain/entities"
)

// ############################################################
// ##################### REQUESTS #############################
// ############################################################

type CreatePollRequestDTO struct {
	Question    string   `json:"question"`
	Description string   `json:"description,omitempty"`
	Options     []string `json:"options"`
	IsPublic    *bool    `json:"isPublic,omitempty"`
}

type CastVoteRequestDTO struct {
	OptionID *int `json:"optionId"`
}

type AttachRelationshipRequestDTO struct {
	TargetPollID string `json:"targetPollId"`
	Kind         string `json:"kind"`
}

// ############################################################
// ##################### RESPONSES ############################
// ############################################################

type OptionDTO struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type PollDTO struct {
	ID             string        `json:"id"`
	Question       string        `json:"question"`
	Description    string        `json:"description,omitempty"`
	Options        []OptionDTO   `json:"options"`
	CreatorID      string        `json:"creatorId"`
	IsPublic       bool          `json:"isPublic"`
	TotalVotes     int64         `json:"totalVotes"`
	PerOptionVotes map[int]int64 `json:"perOptionVotes"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type RelatedPollDTO struct {
	EdgeID   int64  `json:"edgeId"`
	Kind     string `json:"kind"`
	PollID   string `json:"pollId"`
	Question string `json:"question"`
}

type RelationshipsDTO struct {
	Outgoing []RelatedPollDTO `json:"outgoing"`
	Incoming []RelatedPollDTO `json:"incoming"`
}

type PollDetailDTO struct {
	PollDTO
	UserVote *int `json:"userVote,omitempty"`
	RelationshipsDTO
}

type PollPageDTO struct {
	Polls   []PollDTO `json:"polls"`
	Page    int       `json:"page"`
	Limit   int       `json:"limit"`
	HasMore bool      `json:"hasMore"`
}

type VoteStateDTO struct {
	PollID         string        `json:"pollId"`
	OptionID       int           `json:"optionId"`
	TotalVotes     int64         `json:"totalVotes"`
	PerOptionVotes map[int]int64 `json:"perOptionVotes"`
}

type EdgeDTO struct {
	ID           int64     `json:"id"`
	SourcePollID string    `json:"sourcePollId"`
	TargetPollID string    `json:"targetPollId"`
	Kind         string    `json:"kind"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ReconciliationDTO struct {
	PollID         string        `json:"pollId"`
	TotalVotes     int64         `json:"totalVotes"`
	PerOptionVotes map[int]int64 `json:"perOptionVotes"`
	Drift          bool          `json:"drift"`
}

// ############################################################
// ##################### MAPPERS ##############################
// ############################################################

func MapPollToResponse(poll entities.Poll) PollDTO {
	options := make([]OptionDTO, len(poll.Options))
	for i, option := range poll.Options {
		options[i] = OptionDTO{ID: option.Index, Text: option.Label}
	}

	perOption := poll.Tally.PerOption
	if perOption == nil {
		perOption = entities.NewTally(len(poll.Options)).PerOption
	}

	return PollDTO{
		ID:             poll.ID,
		Question:       poll.Question,
		Description:    poll.Description,
		Options:        options,
		CreatorID:      poll.CreatorID,
		IsPublic:       poll.IsPublic,
		TotalVotes:     poll.Tally.Total,
		PerOptionVotes: perOption,
		CreatedAt:      poll.CreatedAt,
		UpdatedAt:      poll.UpdatedAt,
	}
}

func MapRelationshipsToResponse(relationships domain.Relationships) RelationshipsDTO {
	return RelationshipsDTO{
		Outgoing: mapRelatedPolls(relationships.Outgoing),
		Incoming: mapRelatedPolls(relationships.Incoming),
	}
}

func mapRelatedPolls(related []domain.RelatedPoll) []RelatedPollDTO {
	result := make([]RelatedPollDTO, len(related))
	for i, r := range related {
		result[i] = RelatedPollDTO{
			EdgeID:   r.EdgeID,
			Kind:     string(r.Kind),
			PollID:   r.PollID,
			Question: r.Question,
		}
	}
	return result
}

func MapPollViewToResponse(view domain.PollView) PollDetailDTO {
	return PollDetailDTO{
		PollDTO:          MapPollToResponse(view.Poll),
		UserVote:         view.UserVote,
		RelationshipsDTO: MapRelationshipsToResponse(view.Relationships),
	}
}

func MapPollPageToResponse(page domain.PollPage) PollPageDTO {
	pollsDTO := make([]PollDTO, len(page.Polls))
	for i, poll := range page.Polls {
		pollsDTO[i] = MapPollToResponse(poll)
	}

	return PollPageDTO{
		Polls:   pollsDTO,
		Page:    page.Page,
		Limit:   page.Limit,
		HasMore: page.HasMore,
	}
}

func MapEdgeToResponse(edge entities.Edge) EdgeDTO {
	return EdgeDTO{
		ID:           edge.ID,
		SourcePollID: edge.SourcePollID,
		TargetPollID: edge.TargetPollID,
		Kind:         string(edge.Kind),
		CreatedAt:    edge.CreatedAt,
	}
}
