package comparer

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"everypoll/src/domain/entities"
)

func IgnoreFieldsFor[T any](fields ...string) cmp.Option {
	var t T
	return cmpopts.IgnoreFields(t, fields...)
}

// PollIgnoringGenerated compares polls on what the caller supplied and the
// tally, skipping the id and timestamps the store assigns.
func PollIgnoringGenerated() cmp.Option {
	return IgnoreFieldsFor[entities.Poll]("ID", "CreatedAt", "UpdatedAt")
}
