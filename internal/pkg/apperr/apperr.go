// Package apperr defines the typed error kinds surfaced by the core
// components, so callers can branch on the failure class and render a
// specific message instead of inspecting error strings.
package apperr

import "errors"

// Kind classifies a failure.
type Kind string

const (
	KindMissingCredential  Kind = "missing_credential"
	KindTransport          Kind = "transport_error"
	KindRemote             Kind = "remote_error"
	KindEmptyResponse      Kind = "empty_response"
	KindNoSources          Kind = "no_sources"
	KindInvalidCategory    Kind = "invalid_category"
	KindStorageUnavailable Kind = "storage_unavailable"
)

// Error carries a kind plus a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// New creates a typed error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of err if it is (or wraps) an *Error, else "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
