package services

import (
	"errors"
	"fmt"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/lock"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
)

// Error categories. Handlers map them to status codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrStoreFailure       = errors.New("store failure")
	ErrConflict           = errors.New("another settlement for the same key is in progress")
)

// Specific precondition failures
var (
	ErrNotPending             = fmt.Errorf("%w: request is not pending", ErrPreconditionFailed)
	ErrAlreadyDistributed     = fmt.Errorf("%w: prizes already distributed", ErrPreconditionFailed)
	ErrTournamentNotCompleted = fmt.Errorf("%w: tournament is not completed", ErrPreconditionFailed)
	ErrInvalidAmount          = fmt.Errorf("%w: amount must be greater than zero", ErrPreconditionFailed)
	ErrInvalidInput           = fmt.Errorf("%w: invalid input", ErrPreconditionFailed)
)

// classify turns a repository or lock error into one of the categories above.
// Errors that already carry a category are returned unchanged.
func classify(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPreconditionFailed),
		errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrStoreFailure), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%s %w", what, ErrNotFound)
	case errors.Is(err, lock.ErrLockHeld):
		return fmt.Errorf("%w: %s: %w", ErrConflict, what, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrStoreFailure, what, err)
	}
}
