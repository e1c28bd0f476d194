package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for retry decisions and HTTP status mapping.
type Kind int

const (
	// KindInternal is anything uncaught, logged in full server side and
	// reported generically to the caller.
	KindInternal Kind = iota

	// KindInvalidInput covers bad file count, type or size. Never retried.
	KindInvalidInput

	// KindTimeout means the upstream model did not respond within budget
	// after exhausting the transport retries.
	KindTimeout

	// KindSchemaMismatch means the model output did not conform to the
	// structured contract after the corrective retry.
	KindSchemaMismatch

	// KindQuotaExceeded is an upstream rate/quota rejection, not retried.
	KindQuotaExceeded

	// KindBadRequest is an upstream malformed-request rejection, not retried.
	KindBadRequest

	// KindEmptyResponse means the model returned no usable text.
	KindEmptyResponse
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindTimeout:
		return "timeout"
	case KindSchemaMismatch:
		return "schema_mismatch"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindBadRequest:
		return "bad_request"
	case KindEmptyResponse:
		return "empty_response"
	default:
		return "internal"
	}
}

// Fault is a classified error. Message is safe to show to callers,
// the wrapped error is for server-side logs only.
type Fault struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.Err }

func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the curated caller-facing message for err.
// Raw upstream error text never crosses the external boundary.
func UserMessage(err error) string {
	var f *Fault
	if errors.As(err, &f) && f.Message != "" {
		return f.Message
	}
	return "internal server error"
}
