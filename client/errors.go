package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failure the remote store can hand back. Callers own
// presentation; nothing here is retried automatically.
type Kind int

const (
	// KindUnauthorized: missing/invalid/expired token. Force sign-out.
	KindUnauthorized Kind = iota + 1
	// KindForbidden: valid session, insufficient privilege. Render in place.
	KindForbidden
	// KindNotFound: stale reference. Caller should trigger a refetch.
	KindNotFound
	// KindValidation: server rejected the input. Keep the user's input.
	KindValidation
	// KindTransient: network or server failure. Safe to re-submit.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindTransient:
		return "transient"
	}
	return "unknown"
}

// APIError is the classified failure of a remote call.
type APIError struct {
	Kind    Kind
	Status  int               // HTTP status, 0 for transport failures
	Message string            // server-provided message when present
	Fields  map[string]string // field-level validation messages
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func kindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsUnauthorized reports whether err is an invalid/expired-session failure.
func IsUnauthorized(err error) bool { return kindOf(err) == KindUnauthorized }

// IsForbidden reports whether err is a privilege failure.
func IsForbidden(err error) bool { return kindOf(err) == KindForbidden }

// IsNotFound reports whether err is a stale-reference failure.
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsValidation reports whether err is a rejected-input failure.
func IsValidation(err error) bool { return kindOf(err) == KindValidation }

// IsTransient reports whether err is a retryable network/server failure.
func IsTransient(err error) bool { return kindOf(err) == KindTransient }

// apiMessage is the error body shape used by the remote store.
type apiMessage struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func classify(status int, m apiMessage) *APIError {
	e := &APIError{Status: status, Message: m.Message, Fields: m.Errors}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthorized
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity || status == http.StatusConflict:
		e.Kind = KindValidation
	default:
		e.Kind = KindTransient
	}
	return e
}

func transient(err error) *APIError {
	return &APIError{Kind: KindTransient, Message: err.Error()}
}
