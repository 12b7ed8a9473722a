package repositories

import (
	"fmt"

	"everypoll/src/domain"
	"everypoll/src/infra/postgres"
)

// storageError wraps a driver error with the operation name and marks it
// transient when the database says a retry is safe.
func storageError(operation string, err error) error {
	if postgres.IsTransient(err) {
		return fmt.Errorf("%s: %w", operation, domain.Transient(err))
	}
	return fmt.Errorf("%s: %w", operation, err)
}
