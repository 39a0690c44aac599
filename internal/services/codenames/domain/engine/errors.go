package engine

import (
	"errors"

	apperrors "github.com/mikeczech/codenames/internal/platform/errors"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/command"
)

// nonRetryableError wraps an error to signal that retrying the operation
// would be harmful, for example re-deciding a command whose events were
// already persisted before the fold failed.
type nonRetryableError struct {
	err error
}

func (e *nonRetryableError) Error() string { return e.err.Error() }
func (e *nonRetryableError) Unwrap() error { return e.err }

// NonRetryable returns true from IsNonRetryable checks.
func (e *nonRetryableError) NonRetryable() bool { return true }

// wrapNonRetryable marks an error as non-retryable.
func wrapNonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &nonRetryableError{err: err}
}

// IsNonRetryable returns true when the error (or any error in its chain)
// signals that the operation must not be retried.
func IsNonRetryable(err error) bool {
	var target interface{ NonRetryable() bool }
	if errors.As(err, &target) {
		return target.NonRetryable()
	}
	return false
}

// RejectionError converts the first rejection of a decision into a domain
// error. It returns nil for accepted decisions.
func RejectionError(decision command.Decision) error {
	if !decision.Rejected() {
		return nil
	}
	rejection := decision.Rejections[0]
	code := apperrors.Code(rejection.Code)
	if code == "" {
		code = apperrors.CodeUnknown
	}
	return apperrors.New(code, rejection.Message)
}
