package panggil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// Kind identifies one member of the closed error taxonomy. Every failure
// surfaced by the client carries exactly one Kind.
type Kind string

const (
	KindNetwork            Kind = "NETWORK"
	KindTimeout            Kind = "TIMEOUT"
	KindValidation         Kind = "VALIDATION"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindForbidden          Kind = "FORBIDDEN"
	KindNotFound           Kind = "NOT_FOUND"
	KindBadRequest         Kind = "BAD_REQUEST"
	KindServer             Kind = "SERVER"
	KindServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
	KindUnknown            Kind = "UNKNOWN"
)

// ErrNoToken is returned by a refresh that completed without producing a
// usable access token.
var ErrNoToken = errors.New("panggil: no access token")

var defaultMessages = map[Kind]string{
	KindNetwork:            "Network error. Check your connection and try again.",
	KindTimeout:            "The request timed out. Please try again.",
	KindValidation:         "Some fields contain invalid values.",
	KindUnauthorized:       "Your session has expired. Please sign in again.",
	KindForbidden:          "You do not have permission to perform this action.",
	KindNotFound:           "The requested resource was not found.",
	KindBadRequest:         "The request could not be processed.",
	KindServer:             "Something went wrong on our side. Please try again later.",
	KindServiceUnavailable: "The service is temporarily unavailable. Please try again later.",
	KindUnknown:            "An unexpected error occurred.",
}

// DefaultMessage returns the human-readable fallback message for the kind.
func (k Kind) DefaultMessage() string {
	if msg, ok := defaultMessages[k]; ok {
		return msg
	}
	return defaultMessages[KindUnknown]
}

// Retryable reports whether errors of this kind may succeed on retry.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindTimeout, KindServiceUnavailable, KindServer:
		return true
	default:
		return false
	}
}

// ClassifyStatus maps an HTTP status code to its taxonomy kind.
func ClassifyStatus(status int) Kind {
	if status >= 500 {
		return KindServer
	}
	switch status {
	case 400, 409:
		return KindBadRequest
	case 401:
		return KindUnauthorized
	case 403:
		return KindForbidden
	case 404:
		return KindNotFound
	case 408:
		return KindTimeout
	case 422:
		return KindValidation
	case 429:
		return KindServiceUnavailable
	default:
		return KindUnknown
	}
}

// AppError is the single error type surfaced to callers. It is a value,
// never mutated after construction.
type AppError struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Details    any
	Timestamp  time.Time
}

// NewAppError builds an AppError, substituting the kind's default message
// when msg is empty. A status of 0 means no HTTP status applies.
func NewAppError(kind Kind, msg string, status int, details any) *AppError {
	if msg == "" {
		msg = kind.DefaultMessage()
	}
	return &AppError{
		Kind:       kind,
		Message:    msg,
		HTTPStatus: status,
		Details:    details,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Message, e.HTTPStatus)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches AppErrors by Kind for errors.Is comparisons.
func (e *AppError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*AppError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Issue is a single structural problem reported by a Validator.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationFailure carries the per-field issues of a failed schema
// validation. Normalize converts it to a KindValidation AppError.
type ValidationFailure struct {
	Issues []Issue
}

func (v *ValidationFailure) Error() string {
	return fmt.Sprintf("validation failed with %d issue(s)", len(v.Issues))
}

// Normalize converts an arbitrary error into the canonical AppError form.
// An already-typed AppError passes through unchanged; transport failures
// become KindNetwork or KindTimeout; schema failures become KindValidation
// carrying their issues; everything else becomes KindUnknown with the
// original preserved as Details. The second return value reports whether the
// error fell through to KindUnknown, so the caller can route it to the
// logging collaborator.
func Normalize(err error) (*AppError, bool) {
	if err == nil {
		return nil, false
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, false
	}

	var vf *ValidationFailure
	if errors.As(err, &vf) {
		return NewAppError(KindValidation, "", 0, vf.Issues), false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewAppError(KindTimeout, "", 0, err.Error()), false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewAppError(KindTimeout, "", 0, err.Error()), false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return NewAppError(KindNetwork, "", 0, err.Error()), false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NewAppError(KindNetwork, "", 0, err.Error()), false
	}
	// A cancelled attempt is an ordinary transport failure; the retry policy
	// decides what happens next.
	if errors.Is(err, context.Canceled) {
		return NewAppError(KindNetwork, "", 0, err.Error()), false
	}

	return NewAppError(KindUnknown, "", 0, err.Error()), true
}
