package claims

import (
	"errors"
	"fmt"
)

var (
	ErrHeaderNotFound    = errors.New("claim header not found")
	ErrBundleNotFound    = errors.New("claim bundle not found")
	ErrInvalidCharge     = errors.New("charge amount must be positive")
	ErrInvalidWeights    = errors.New("scenario weights must sum to 1")
	ErrInvalidCount      = errors.New("generation count must be positive")
	ErrNegativeResidual  = errors.New("negative patient responsibility")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrVersionConflict   = errors.New("claim modified concurrently")
)

// ValidationError marks malformed generation input, distinct from
// invariant violations detected after construction.
type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func newValidationError(format string, args ...interface{}) error {
	return ValidationError{reason: fmt.Errorf(format, args...)}
}

// InvariantError reports a cross-entity consistency break for one claim.
type InvariantError struct {
	ClaimKey string
	reason   error
}

func (e InvariantError) Error() string {
	if e.ClaimKey == "" {
		return e.reason.Error()
	}
	return fmt.Sprintf("claim %s: %s", e.ClaimKey, e.reason.Error())
}

func (e InvariantError) Unwrap() error {
	return e.reason
}

func IsInvariantError(err error) bool {
	var ie InvariantError
	return errors.As(err, &ie)
}

func invariantViolation(claimKey, format string, args ...interface{}) error {
	return InvariantError{ClaimKey: claimKey, reason: fmt.Errorf(format, args...)}
}
