// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Kind classifies a provider failure for retry decisions and diagnostics.
type Kind string

const (
	// KindClientTimeout means the local call timed out before the provider
	// answered.
	KindClientTimeout Kind = "client-timeout"

	// KindConnection means the provider could not be reached at all
	// (network or DNS failure).
	KindConnection Kind = "connection"

	// KindUpstream means the provider responded with a server-side failure
	// status, including rate limiting.
	KindUpstream Kind = "upstream"

	// KindUpstreamTimeout means the provider reported a timeout or
	// gateway-timeout status.
	KindUpstreamTimeout Kind = "upstream-timeout"

	// KindValidation means the provider's response failed structural
	// validation: it answered, but not with the requested artifact.
	KindValidation Kind = "validation"

	// KindUnknown covers everything else. Treated as fatal.
	KindUnknown Kind = "unknown"
)

// Retryable reports whether a failure of this kind is worth retrying with
// the same checkpoint. Validation and unknown failures are fatal.
func (k Kind) Retryable() bool {
	switch k {
	case KindClientTimeout, KindConnection, KindUpstream, KindUpstreamTimeout:
		return true
	}
	return false
}

// Error is a classified provider failure. It carries the operation name and
// elapsed time so a failure can be diagnosed without logs from the provider
// side.
type Error struct {
	// Op is the operation that failed: select, plan, draft, convert, or
	// generate.
	Op string

	// Vendor names the provider implementation.
	Vendor string

	// Kind is the failure classification.
	Kind Kind

	// Elapsed is how long the operation ran before failing.
	Elapsed time.Duration

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %s after %s: %v",
		e.Vendor, e.Op, e.Kind, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure is retryable.
func (e *Error) Retryable() bool { return e.Kind.Retryable() }

// IsRetryable reports whether err wraps a retryable provider failure.
func IsRetryable(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Retryable()
}

// KindOf returns err's classification, or KindUnknown when err does not wrap
// a provider Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// Sentinel causes recognized by the classifier. Vendor transports wrap
// structurally broken 200-responses in these so they classify as validation
// failures rather than unknown ones.
var (
	errEmptyResponse     = errors.New("provider returned empty response")
	errMalformedResponse = errors.New("malformed provider response")
)

// statusError carries a failing HTTP status from a vendor transport.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("status %d", e.status)
	}
	return fmt.Sprintf("status %d: %s", e.status, e.body)
}

func (e *statusError) kind() Kind {
	switch {
	case e.status == http.StatusGatewayTimeout || e.status == http.StatusRequestTimeout:
		return KindUpstreamTimeout
	case e.status == http.StatusTooManyRequests || e.status >= 500:
		return KindUpstream
	default:
		return KindUnknown
	}
}

// Classify wraps err as a classified Error for op. Errors that are already
// classified pass through unchanged, so the innermost classification wins.
func Classify(op, vendor string, start time.Time, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{
		Op:      op,
		Vendor:  vendor,
		Kind:    classifyCause(err),
		Elapsed: time.Since(start),
		Err:     err,
	}
}

// validationError builds a classified validation failure for op.
func validationError(op, vendor string, start time.Time, err error) error {
	return &Error{
		Op:      op,
		Vendor:  vendor,
		Kind:    KindValidation,
		Elapsed: time.Since(start),
		Err:     err,
	}
}

func classifyCause(err error) Kind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindClientTimeout
	case errors.Is(err, errEmptyResponse), errors.Is(err, errMalformedResponse):
		return KindValidation
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.kind()
	}

	// *url.Error and the net error types all implement net.Error.
	var ne net.Error
	if errors.As(err, &ne) {
		if ne.Timeout() {
			return KindClientTimeout
		}
		return KindConnection
	}

	return KindUnknown
}
