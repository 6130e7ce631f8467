// Package apierr gives the HTTP layer a small typed error taxonomy
// instead of ad hoc status codes sprinkled through handlers: a Kind
// maps deterministically to one HTTP status, and Error carries a
// human-readable message plus the wrapped cause for logging.
package apierr

import (
	"errors"
	"net/http"
)

// Kind classifies what went wrong, independent of the HTTP transport.
type Kind string

const (
	// InputError means the request itself was malformed or missing a
	// required field.
	InputError Kind = "input_error"
	// UpstreamUnavailable means a downstream tool or service (yt-dlp,
	// ffmpeg, OpenRouter) could not be reached or errored outright.
	UpstreamUnavailable Kind = "upstream_unavailable"
	// ProbeEmpty means the acquisition probes ran but returned no
	// usable signal to analyze.
	ProbeEmpty Kind = "probe_empty"
	// ClipFailure means a segment's transcode/render pipeline failed.
	ClipFailure Kind = "clip_failure"
	// EnhancementFailure means an optional enhancement stage (caption,
	// translation, dub) failed; the base clip may still be usable.
	EnhancementFailure Kind = "enhancement_failure"
	// Timeout means a bounded operation exceeded its deadline.
	Timeout Kind = "timeout"
	// Cancelled means the request's context was cancelled by the
	// caller before completion.
	Cancelled Kind = "cancelled"
	// Internal is the fallback for anything not otherwise classified.
	Internal Kind = "internal"
)

// Status is the HTTP status code the API layer writes for this Kind.
func (k Kind) Status() int {
	switch k {
	case InputError:
		return http.StatusBadRequest
	case UpstreamUnavailable:
		return http.StatusBadGateway
	case ProbeEmpty, ClipFailure, EnhancementFailure:
		return http.StatusUnprocessableEntity
	case Timeout:
		return http.StatusGatewayTimeout
	case Cancelled:
		return 499 // nginx's "client closed request", closest match in absence of a standard code
	default:
		return http.StatusInternalServerError
	}
}

// Error is a Kind-classified error with a client-safe message. Err, if
// set, is the underlying cause and is not part of Message (so Message
// stays safe to return to callers while Err stays in server logs).
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a Error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// As extracts an *Error from err, if any part of its chain is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
