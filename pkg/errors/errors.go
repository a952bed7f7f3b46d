// Package errors defines the structured error types surfaced by the CyberRisk client layer.
// Every failure that crosses the transport boundary is normalized into a ClientError
// carrying its Kind, the HTTP status (when a response was received) and the
// server-supplied message (when the body carried an "error" field).
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	// KindNetwork means no response was received (connection refused, timeout, ...).
	KindNetwork Kind = "network_error"

	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP Kind = "http_error"

	// KindAuthExpired is the 401 case of KindHTTP. It forces session teardown.
	KindAuthExpired Kind = "auth_expired"

	// KindValidation is a purely local input error detected before any network call.
	KindValidation Kind = "validation_error"

	// KindDecode means a 2xx response carried a body that could not be parsed.
	KindDecode Kind = "decode_error"

	// KindStorage means the KeyValueStore was unavailable.
	KindStorage Kind = "storage_error"
)

// ================================================================================
// ClientError Interface
// ================================================================================

// ClientError represents a structured error with additional metadata
type ClientError interface {
	error

	// Kind returns the failure category
	Kind() Kind

	// HTTPStatus returns the response status, or 0 when none was received
	HTTPStatus() int

	// ServerMessage returns the "error" field of the response body, if any
	ServerMessage() string

	// Unwrap returns the underlying error for error chain support
	Unwrap() error

	// WithCause adds a cause error to the error chain
	WithCause(cause error) ClientError

	// WithMetadata adds additional context metadata
	WithMetadata(key string, value interface{}) ClientError

	// Metadata returns all metadata
	Metadata() map[string]interface{}
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	kind          Kind
	httpStatus    int
	message       string
	serverMessage string
	cause         error
	metadata      map[string]interface{}
}

// Error implements the error interface
func (e *baseError) Error() string {
	msg := e.message
	if e.serverMessage != "" {
		msg = e.serverMessage
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, msg)
}

func (e *baseError) Kind() Kind            { return e.kind }
func (e *baseError) HTTPStatus() int       { return e.httpStatus }
func (e *baseError) ServerMessage() string { return e.serverMessage }
func (e *baseError) Unwrap() error         { return e.cause }

// WithCause adds a cause error to the error chain
func (e *baseError) WithCause(cause error) ClientError {
	e.cause = cause
	return e
}

// WithMetadata adds additional context metadata
func (e *baseError) WithMetadata(key string, value interface{}) ClientError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all metadata
func (e *baseError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Constructors
// ================================================================================

// New creates a ClientError of the given kind.
func New(kind Kind, message string) ClientError {
	return &baseError{kind: kind, message: message}
}

// ErrNetwork wraps a transport failure where no response was received.
func ErrNetwork(cause error) ClientError {
	return New(KindNetwork, "request did not reach the server").WithCause(cause)
}

// ErrHTTP describes a non-2xx response. A 401 status is reported as KindAuthExpired.
func ErrHTTP(status int, serverMessage string) ClientError {
	kind := KindHTTP
	if status == http.StatusUnauthorized {
		kind = KindAuthExpired
	}
	return &baseError{
		kind:          kind,
		httpStatus:    status,
		message:       fmt.Sprintf("server responded with %d %s", status, http.StatusText(status)),
		serverMessage: serverMessage,
	}
}

// ErrValidation reports a local input problem.
func ErrValidation(message string) ClientError {
	return New(KindValidation, message)
}

// ErrDecode reports a malformed response body.
func ErrDecode(status int, cause error) ClientError {
	return (&baseError{
		kind:       KindDecode,
		httpStatus: status,
		message:    "malformed response body",
	}).WithCause(cause)
}

// ErrStorage reports that the KeyValueStore could not be used.
func ErrStorage(op string, cause error) ClientError {
	return New(KindStorage, "storage "+op+" failed").WithCause(cause)
}

// ================================================================================
// Inspection Helpers
// ================================================================================

// As extracts a ClientError from err's chain.
func As(err error) (ClientError, bool) {
	var ce ClientError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or "" if err is not a ClientError.
func KindOf(err error) Kind {
	if ce, ok := As(err); ok {
		return ce.Kind()
	}
	return ""
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsAuthExpired reports whether err is a 401 from the server.
func IsAuthExpired(err error) bool {
	return IsKind(err, KindAuthExpired)
}

// MessageOr returns the human-readable message for err: the server-supplied
// message when present, the local message for validation errors, otherwise fallback.
func MessageOr(err error, fallback string) string {
	ce, ok := As(err)
	if !ok {
		return fallback
	}
	if msg := ce.ServerMessage(); msg != "" {
		return msg
	}
	if ce.Kind() == KindValidation {
		if be, ok := ce.(*baseError); ok {
			return be.message
		}
	}
	return fallback
}
