package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
)

// Failure sentinels. Every error returned by a Provider wraps one of these or
// is an *HTTPError.
var (
	ErrMissingCredential = errors.New("ai: missing credential")
	ErrNetwork           = errors.New("ai: network failure")
	ErrTimeout           = errors.New("ai: request timed out")
	ErrMalformedReply    = errors.New("ai: malformed reply")

	// ErrCanceled means the caller gave up before the provider answered. It
	// says nothing about the provider's health.
	ErrCanceled = errors.New("ai: request canceled by caller")
)

// HTTPError is a non-success HTTP status returned by a provider.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("ai: provider returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("ai: provider returned HTTP %d: %s", e.Status, e.Message)
}

// FailureKind names the class of a provider failure for logs and metrics.
type FailureKind string

const (
	FailureNone              FailureKind = ""
	FailureMissingCredential FailureKind = "missing_credential"
	FailureNetwork           FailureKind = "network"
	FailureTimeout           FailureKind = "timeout"
	FailureHTTP              FailureKind = "http_status"
	FailureMalformedReply    FailureKind = "malformed_reply"
	FailureCanceled          FailureKind = "canceled"
	FailureUnknown           FailureKind = "unknown"
)

// Classify maps err to its FailureKind.
func Classify(err error) FailureKind {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrMissingCredential):
		return FailureMissingCredential
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.As(err, &httpErr):
		return FailureHTTP
	case errors.Is(err, ErrMalformedReply):
		return FailureMalformedReply
	case errors.Is(err, ErrNetwork):
		return FailureNetwork
	default:
		return FailureUnknown
	}
}

// statusPattern matches the status codes SDK clients embed in error strings,
// e.g. "API returned unexpected status code: 429" or "404 Not Found".
var statusPattern = regexp.MustCompile(`(?:status code:?\s*|^)([1-5]\d\d)\b`)

// transportError converts an SDK error into one of the failure kinds.
// callCtx is the context the request ran under.
func transportError(callCtx context.Context, err error) error {
	if Classify(err) != FailureUnknown {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
			return fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		if errors.Is(err, context.Canceled) && !errors.Is(err, ErrCanceled) {
			return fmt.Errorf("%w: %w", ErrCanceled, err)
		}
		return err
	}
	switch ctxErr := callCtx.Err(); {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(ctxErr, context.Canceled):
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		status, _ := strconv.Atoi(m[1])
		return &HTTPError{Status: status, Message: err.Error()}
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
