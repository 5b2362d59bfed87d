package kafka

import (
	"errors"

	"service-shop-delivery/internal/apperr"
)

// PermanentError marks a failure that redelivery cannot fix.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e PermanentError) Unwrap() error { return e.Err }

// Permanent returns a permanent error.
func Permanent(err error) error {
	return PermanentError{Err: err}
}

// isPermanent reports whether the message should be skipped instead of
// redelivered. Validation failures count as permanent.
func isPermanent(err error) bool {
	var pe PermanentError
	return errors.As(err, &pe) || errors.Is(err, apperr.ErrInvalid)
}
