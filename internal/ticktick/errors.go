package ticktick

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Kind discriminates the failure modes of an API call.
type Kind string

const (
	// KindBadRequest is an HTTP 400 response.
	KindBadRequest Kind = "bad_request"

	// KindAuth is an HTTP 401 response (token rejected).
	KindAuth Kind = "auth"

	// KindForbidden is an HTTP 403 response.
	KindForbidden Kind = "forbidden"

	// KindNotFound is an HTTP 404 response.
	KindNotFound Kind = "not_found"

	// KindRateLimit is an HTTP 429 response.
	KindRateLimit Kind = "rate_limit"

	// KindAPI is any other non-2xx response, or a 2xx response whose
	// non-empty body is not valid JSON.
	KindAPI Kind = "api"

	// KindTimeout means the configured per-request deadline fired before a
	// response arrived.
	KindTimeout Kind = "timeout"

	// KindNetwork is a transport-level failure before any response was
	// received.
	KindNetwork Kind = "network"
)

// statusKinds is the single mapping from HTTP status to error kind.
// Statuses not listed here fall back to KindAPI.
var statusKinds = map[int]Kind{
	http.StatusBadRequest:      KindBadRequest,
	http.StatusUnauthorized:    KindAuth,
	http.StatusForbidden:       KindForbidden,
	http.StatusNotFound:        KindNotFound,
	http.StatusTooManyRequests: KindRateLimit,
}

// KindForStatus returns the error kind for an HTTP status code.
func KindForStatus(statusCode int) Kind {
	if kind, ok := statusKinds[statusCode]; ok {
		return kind
	}
	return KindAPI
}

// Error is the closed failure taxonomy for API calls.
type Error struct {
	Kind       Kind
	StatusCode int

	// Message is human-readable, derived from the response body when the
	// provider supplied one.
	Message string

	// RetryAfter is the advisory seconds-to-wait from a 429 response's
	// Retry-After header; nil when the header was missing or non-numeric.
	RetryAfter *int

	// Timeout is the configured deadline that fired, set for KindTimeout.
	Timeout time.Duration

	// Err is the underlying transport error, set for KindNetwork.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("request timed out after %s", e.Timeout)
	case KindNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a ticktick Error of kind not_found.
func IsNotFound(err error) bool {
	return errKind(err) == KindNotFound
}

// IsAuth reports whether err is a ticktick Error of kind auth.
func IsAuth(err error) bool {
	return errKind(err) == KindAuth
}

// IsRateLimit reports whether err is a ticktick Error of kind rate_limit.
func IsRateLimit(err error) bool {
	return errKind(err) == KindRateLimit
}

func errKind(err error) Kind {
	if apiErr, ok := err.(*Error); ok {
		return apiErr.Kind
	}
	return ""
}

// newStatusError builds an Error for a non-2xx response. The message
// prefers the body's error_description, then message, then error, falling
// back to the HTTP status line; an unparsable or empty body never masks the
// status classification.
func newStatusError(statusCode int, statusText string, body []byte, header http.Header) *Error {
	apiErr := &Error{
		Kind:       KindForStatus(statusCode),
		StatusCode: statusCode,
		Message:    apiErrorMessage(statusCode, statusText, body),
	}

	if apiErr.Kind == KindRateLimit {
		if seconds, err := strconv.Atoi(header.Get("Retry-After")); err == nil {
			apiErr.RetryAfter = &seconds
		}
	}

	return apiErr
}

func apiErrorMessage(statusCode int, statusText string, body []byte) string {
	var payload struct {
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.ErrorDescription != "" {
			return payload.ErrorDescription
		}
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("HTTP %d: %s", statusCode, statusText)
}
