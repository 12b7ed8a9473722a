package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error leaving the core wraps exactly one of these, so
// callers can branch with errors.Is on the kind or on the specific error.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrTransientStorage = errors.New("storage temporarily unavailable")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)

var (
	ErrPollNotFound = fmt.Errorf("poll not found: %w", ErrNotFound)

	ErrInvalidQuestion         = fmt.Errorf("question must be non-empty text: %w", ErrValidation)
	ErrInvalidDescription      = fmt.Errorf("description must be valid text: %w", ErrValidation)
	ErrInvalidOptionCount      = fmt.Errorf("poll must have between 2 and 10 options: %w", ErrValidation)
	ErrInvalidOptionLabel      = fmt.Errorf("option text must be non-empty text: %w", ErrValidation)
	ErrInvalidOption           = fmt.Errorf("selected option is out of range: %w", ErrValidation)
	ErrSelfReference           = fmt.Errorf("a poll cannot reference itself: %w", ErrValidation)
	ErrInvalidRelationshipKind = fmt.Errorf("unknown relationship kind: %w", ErrValidation)
	ErrInvalidPagination       = fmt.Errorf("page and limit are out of range: %w", ErrValidation)

	ErrAlreadyVoted = fmt.Errorf("user has already voted on this poll: %w", ErrConflict)

	ErrNotPollCreator = fmt.Errorf("only the poll creator can do this: %w", ErrForbidden)
)

// Transient marks err as safe to retry while keeping the original cause.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransientStorage, err)
}
