package apperr

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrNotFound indicates that the requested account or order does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a uniqueness or state conflict.
var ErrConflict = errors.New("conflict")

// ErrAuth indicates a credential mismatch.
var ErrAuth = errors.New("authentication failed")

// ErrExternal indicates that an email or notification delivery failed.
var ErrExternal = errors.New("external service error")

// ErrInternal indicates an unexpected failure.
var ErrInternal = errors.New("internal error")

// Kind classifies an error so callers can branch without looking at messages.
type Kind int

// Error kinds, one per sentinel.
const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindStateConflict
	KindAuth
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStateConflict:
		return "state_conflict"
	case KindAuth:
		return "auth"
	case KindExternal:
		return "external"
	default:
		return "internal"
	}
}

// KindOf returns the kind of err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalid):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindStateConflict
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrExternal):
		return KindExternal
	default:
		return KindInternal
	}
}

// StateConflictError reports that a record exists but is not in the status
// required by the requested transition.
type StateConflictError struct {
	Entity   string
	ID       string
	Actual   int
	Expected int
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s found but status is %d, expected status %d", e.Entity, e.Actual, e.Expected)
}

// Unwrap lets errors.Is(err, ErrConflict) match.
func (e *StateConflictError) Unwrap() error { return ErrConflict }

// ExternalError wraps a failed call to an email or notification collaborator.
type ExternalError struct {
	Op  string
	Err error
}

// External wraps err as an ExternalError for the operation op.
func External(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ExternalError{Op: op, Err: err}
}

func (e *ExternalError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + ErrExternal.Error()
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrExternal.Error(), e.Err)
}

// Is reports ErrExternal as a match.
func (e *ExternalError) Is(target error) bool { return target == ErrExternal }

// Unwrap returns the underlying cause.
func (e *ExternalError) Unwrap() error { return e.Err }
