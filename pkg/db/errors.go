package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrPendingNotFound    = errors.New("pending submission not found")
	ErrNoKeywords         = errors.New("submission needs at least one keyword")
)

// wrapErr marks a driver error as retryable storage failure while keeping the
// cause reachable for errors.Is / errors.As.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrPendingNotFound) || errors.Is(err, ErrNoKeywords) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorageUnavailable, err))
}
