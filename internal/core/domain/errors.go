package domain

import "fmt"

// ValidationError is returned when caller-supplied input is malformed.
// It is always produced before any upstream I/O.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UpstreamError wraps a failure of an external provider: unreachable host,
// timeout, non-success status or an unparseable body.
type UpstreamError struct {
	Provider string `json:"provider"`
	Detail   string `json:"detail"`
	Err      error  `json:"-"`
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %s", e.Provider, e.Detail)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError builds an UpstreamError whose detail is the wrapped error text.
func NewUpstreamError(provider string, err error) *UpstreamError {
	return &UpstreamError{Provider: provider, Detail: err.Error(), Err: err}
}

// NotFoundError means the upstream call succeeded but produced nothing usable,
// or a lookup had no match within its bound.
type NotFoundError struct {
	What string `json:"what"`
}

func (e *NotFoundError) Error() string {
	return e.What + " not found"
}

// DecodeError reports a malformed encoded polyline.
type DecodeError struct {
	Offset int    `json:"offset"`
	Reason string `json:"reason"`
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("polyline decode at byte %d: %s", e.Offset, e.Reason)
}
