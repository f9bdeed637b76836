package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidState  = errors.New("invalid state")
	ErrMissingReason = errors.New("missing reason")
	ErrNotFound      = errors.New("not found")
	ErrStoreFailure  = errors.New("store failure")
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")
)

// StoreError wraps a persistence error so it matches ErrStoreFailure while
// keeping the driver error reachable through errors.Is/As.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStoreFailure, err)
}

// IsValidationError reports whether err is a caller-facing validation error
// that must not be retried.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrMissingReason) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput)
}
