// Package coreerr defines the error taxonomy shared across the
// coordination store, orchestrator, and LLM executor facade.
package coreerr

import "fmt"

// Kind tags a CoreError with one of the taxonomy buckets.
type Kind string

const (
	NotFound           Kind = "NOT_FOUND"
	InvalidState       Kind = "INVALID_STATE"
	AccessDenied       Kind = "ACCESS_DENIED"
	BadInput           Kind = "BAD_INPUT"
	ProviderUnavailable Kind = "PROVIDER_UNAVAILABLE"
	UpstreamError      Kind = "UPSTREAM_ERROR"
	Cancelled          Kind = "CANCELLED"
	MaxIterations      Kind = "MAX_ITERATIONS"
)

// CoreError is the tagged error value returned by coordination and
// execution operations. Callers use errors.As to recover the Kind.
type CoreError struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *CoreError) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %s", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err)
	}
	return e.Message
}

func (e *CoreError) Unwrap() error { return e.Err }

// Is reports whether target is a *CoreError with the same Kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New builds a CoreError of the given kind.
func New(kind Kind, op, message string) *CoreError {
	return &CoreError{Kind: kind, Op: op, Message: message}
}

// Wrap builds a CoreError of the given kind wrapping err.
func Wrap(kind Kind, op, message string, err error) *CoreError {
	return &CoreError{Kind: kind, Op: op, Message: message, Err: err}
}

// WithErr returns a copy of e with Err set.
func (e *CoreError) WithErr(err error) *CoreError {
	c := *e
	c.Err = err
	return &c
}

// KindOf extracts the Kind from err if it is (or wraps) a *CoreError.
// Returns UpstreamError as the default bucket for unrecognized errors.
func KindOf(err error) Kind {
	var ce *CoreError
	if asCoreError(err, &ce) {
		return ce.Kind
	}
	return UpstreamError
}

func asCoreError(err error, target **CoreError) bool {
	for err != nil {
		if ce, ok := err.(*CoreError); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
