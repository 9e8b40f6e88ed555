package reservations

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures so callers branch on outcome type
// instead of matching message strings.
type Kind int

const (
	// KindValidation covers bad input: missing phone number, missing
	// required cancellation reason, wrong event type for the operation.
	KindValidation Kind = iota
	// KindInvalidCredential means the cancellation token failed
	// signature or expiry checks.
	KindInvalidCredential
	// KindNotFound covers missing rows, already-cancelled registrations
	// (deliberately indistinguishable, for privacy) and cross-tenant
	// lookups.
	KindNotFound
	// KindDeadlineExceeded means cancellation is disabled or the event
	// is too close to its start time.
	KindDeadlineExceeded
	// KindConflict is a transient serialization failure; the request can
	// be retried as-is.
	KindConflict
	// KindInvariant marks a write that would corrupt engine state, such
	// as a hard delete outside the sanctioned path. Never retried.
	KindInvariant
)

// Error is the engine's only error type on domain paths.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the engine kind from an error chain. The second return
// is false for plain infrastructure errors.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
