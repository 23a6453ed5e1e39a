package service

import (
	"errors"
	"fmt"

	"github.com/okian/prospect/internal/adapters/repository"
)

// Sentinel kinds returned by Service operations.
var (
	ErrNotFound        = errors.New("athlete not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
	ErrBackfillRunning = errors.New("a recompute run is already in progress")
)

// storeErr maps store sentinels onto service kinds, tagging op.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// invalidWith marks err as bad input while keeping it inspectable.
func invalidWith(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
