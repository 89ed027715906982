package lifecycle

import (
	"errors"
)

// Kind classifies a lifecycle failure.
type Kind string

const (
	// KindValidation rejects malformed input before any remote call.
	KindValidation Kind = "validation"
	// KindNotFound means a referenced entity is absent.
	KindNotFound Kind = "not_found"
	// KindAuthorization means an ownership check failed.
	KindAuthorization Kind = "authorization"
	// KindUpstream wraps an identity-store or relational-store failure.
	KindUpstream Kind = "upstream"
	// KindPartialFailure means a compensating or best-effort step failed
	// after the primary mutation succeeded. Operators use these to find and
	// reconcile leftover state by hand.
	KindPartialFailure Kind = "partial_failure"
)

// Error is the single error shape returned by the coordinator.
type Error struct {
	Kind    Kind
	Step    string // sub-step that failed, set for upstream and partial failures
	Message string
	cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Step != "" {
		msg = e.Step + ": " + msg
	}
	if e.cause != nil {
		return msg + ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// IsKind reports whether err is a lifecycle error of the given kind.
func IsKind(err error, kind Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == kind
}

func validationErr(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func notFoundErr(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func authorizationErr(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func upstreamErr(step string, cause error) *Error {
	return &Error{Kind: KindUpstream, Step: step, Message: "call failed", cause: cause}
}

func partialFailureErr(step, message string, cause error) *Error {
	return &Error{Kind: KindPartialFailure, Step: step, Message: message, cause: cause}
}
