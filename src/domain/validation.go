package domain

import (
	"math"
	"strings"
	"unicode/utf8"

	"everypoll/src/domain/entities"
)

// NormalizeCreatePoll trims the request text and checks it against the poll
// invariants. Nothing is written before this passes.
func NormalizeCreatePoll(request CreatePollRequest) (CreatePollRequest, error) {
	if strings.TrimSpace(request.CreatorID) == "" {
		return CreatePollRequest{}, ErrUnauthenticated
	}

	question := strings.TrimSpace(request.Question)
	if question == "" || !storableText(question) {
		return CreatePollRequest{}, ErrInvalidQuestion
	}

	description := strings.TrimSpace(request.Description)
	if !storableText(description) {
		return CreatePollRequest{}, ErrInvalidDescription
	}

	if len(request.Options) < entities.MinPollOptions || len(request.Options) > entities.MaxPollOptions {
		return CreatePollRequest{}, ErrInvalidOptionCount
	}

	options := make([]string, len(request.Options))
	for i, option := range request.Options {
		label := strings.TrimSpace(option)
		if label == "" || !storableText(label) {
			return CreatePollRequest{}, ErrInvalidOptionLabel
		}
		options[i] = label
	}

	return CreatePollRequest{
		CreatorID:   strings.TrimSpace(request.CreatorID),
		Question:    question,
		Description: description,
		Options:     options,
		IsPublic:    request.IsPublic,
	}, nil
}

// NormalizeListPolls applies paging defaults. Zero values fall back to the
// first page and the default limit; negative values are rejected.
func NormalizeListPolls(query ListPollsQuery) (ListPollsQuery, error) {
	if query.Page < 0 || query.Limit < 0 {
		return ListPollsQuery{}, ErrInvalidPagination
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = DefaultPageLimit
	}
	if query.Limit > MaxPageLimit {
		query.Limit = MaxPageLimit
	}

	// the row offset must fit in an int
	if query.Page-1 > math.MaxInt/query.Limit {
		return ListPollsQuery{}, ErrInvalidPagination
	}

	query.Search = strings.TrimSpace(query.Search)
	query.ViewerID = strings.TrimSpace(query.ViewerID)

	switch query.Visibility {
	case VisibilityPublic, VisibilityAll:
	case VisibilityPublicOrOwn:
		if query.ViewerID == "" {
			query.Visibility = VisibilityPublic
		}
	default:
		query.Visibility = VisibilityPublic
	}

	return query, nil
}

// storableText reports whether PostgreSQL can hold s in a TEXT column.
func storableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

func ValidateAttachRelationship(request AttachRelationshipRequest) error {
	if strings.TrimSpace(request.RequesterID) == "" {
		return ErrUnauthenticated
	}
	if request.SourcePollID == request.TargetPollID {
		return ErrSelfReference
	}
	if !request.Kind.Valid() {
		return ErrInvalidRelationshipKind
	}
	return nil
}
