package services

import (
	"errors"

	"quiz-progression-system/models"
)

// retryOnConflict runs op and, when it loses a storage race, runs it one
// more time. A second conflict surfaces to the caller unchanged; any other
// error passes through without a retry.
func retryOnConflict(op func() error) error {
	if err := op(); !errors.Is(err, models.ErrStorageConflict) {
		return err
	}
	return op()
}
