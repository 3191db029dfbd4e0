package platform

import (
	"errors"
	"fmt"
)

// Class tells the delivery policy how to react to a failed send.
type Class int

const (
	ClassUnknown     Class = iota // Not retried
	ClassRateLimited              // Long linear backoff
	ClassClient                   // Short fixed backoff
)

func (c Class) String() string {
	switch c {
	case ClassRateLimited:
		return "rate_limited"
	case ClassClient:
		return "client_error"
	default:
		return "unknown"
	}
}

// Platform failure kinds. Adapters wrap these in *Error so callers can use errors.Is.
var (
	ErrRateLimited       = errors.New("rate limited")
	ErrFeedbackRequired  = errors.New("feedback required")
	ErrSentryBlock       = errors.New("sentry block")
	ErrPleaseWait        = errors.New("please wait a few minutes")
	ErrLoginRequired     = errors.New("login required")
	ErrChallengeRequired = errors.New("challenge required")
	ErrSessionInvalid    = errors.New("session invalid")
	ErrClient            = errors.New("client error")
)

// Error is a classified platform failure.
type Error struct {
	Kind       error  // One of the Err* sentinels above
	StatusCode int    // HTTP or API status code, 0 if none
	Message    string // Platform-provided text
	Err        error  // Underlying cause, if any
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NewError builds a classified error of the given kind.
func NewError(kind error, status int, message string, cause error) *Error {
	return &Error{Kind: kind, StatusCode: status, Message: message, Err: cause}
}

// ClassOf maps an error returned by a Client to its retry class.
func ClassOf(err error) Class {
	switch {
	case err == nil:
		return ClassUnknown
	case errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrFeedbackRequired),
		errors.Is(err, ErrSentryBlock),
		errors.Is(err, ErrPleaseWait):
		return ClassRateLimited
	case errors.Is(err, ErrClient),
		errors.Is(err, ErrLoginRequired),
		errors.Is(err, ErrChallengeRequired),
		errors.Is(err, ErrSessionInvalid):
		return ClassClient
	default:
		return ClassUnknown
	}
}

// IsSessionExpired reports whether err means the stored session can no longer be used
// and a fresh credential login should be attempted.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrLoginRequired) ||
		errors.Is(err, ErrChallengeRequired) ||
		errors.Is(err, ErrSessionInvalid)
}
