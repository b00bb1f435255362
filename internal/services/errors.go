package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the recommendation pipeline and save workflow.
// Handlers map these onto HTTP status codes; everything else is a 500.
var (
	// ErrServiceUnavailable means the generative backend is not
	// configured. Checked before any external call is attempted.
	ErrServiceUnavailable = errors.New("generative service not configured")

	// ErrUpstreamEmpty means the generative backend answered without
	// producing any text.
	ErrUpstreamEmpty = errors.New("generative service returned empty response")

	ErrConflict  = errors.New("resource already exists")
	ErrForbidden = errors.New("operation not permitted for this user")
	ErrNotFound  = errors.New("resource not found")

	// ErrInvalidCredentials covers both unknown email and wrong
	// password so login failures are indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UpstreamError wraps a transport, auth or quota failure from the
// generative backend. It is never retried at this layer.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the generative output could not be
// parsed or validated even after the one permitted shape
// normalization. RawPrefix carries a truncated excerpt of the raw
// model text for diagnostics.
type MalformedResponseError struct {
	Reason    string
	RawPrefix string
}

const rawPrefixLimit = 500

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed generative response: %s", e.Reason)
}

func newMalformedResponseError(reason, raw string) *MalformedResponseError {
	if len(raw) > rawPrefixLimit {
		raw = raw[:rawPrefixLimit]
	}
	return &MalformedResponseError{Reason: reason, RawPrefix: raw}
}
