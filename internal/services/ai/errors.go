package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FailureKind classifies why a provider attempt failed.
type FailureKind string

const (
	FailureQuota       FailureKind = "quota"
	FailureTimeout     FailureKind = "timeout"
	FailureTransport   FailureKind = "transport"
	FailureServer      FailureKind = "server"
	FailureRejected    FailureKind = "rejected"
	FailureEmpty       FailureKind = "empty"
	FailureMalformed   FailureKind = "malformed"
	FailureUnavailable FailureKind = "unavailable"
	FailureCanceled    FailureKind = "canceled"
)

// ErrAllProvidersFailed is matched by every *ChainError.
var ErrAllProvidersFailed = errors.New("all AI providers failed")

var errEmptyOutput = errors.New("provider returned no text")

// ProviderError is a failed provider attempt.
type ProviderError struct {
	Provider string
	Kind     FailureKind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Recoverable reports whether the chain may move on to the next provider.
// Only cancellation by the caller stops the chain.
func (e *ProviderError) Recoverable() bool {
	return e.Kind != FailureCanceled
}

// ChainError is returned when no provider produced text. It carries the
// attempt log and, when the caller gave up, the context error.
type ChainError struct {
	Attempts []Attempt
	Cause    error
}

func (e *ChainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v after %d attempts: %v", ErrAllProvidersFailed, len(e.Attempts), e.Cause)
	}
	if len(e.Attempts) == 0 {
		return ErrAllProvidersFailed.Error() + ": no providers configured"
	}
	return fmt.Sprintf("%v after %d attempts", ErrAllProvidersFailed, len(e.Attempts))
}

func (e *ChainError) Is(target error) bool { return target == ErrAllProvidersFailed }

func (e *ChainError) Unwrap() error { return e.Cause }

// kindOf returns the failure kind of err, treating unknown errors as
// transport failures.
func kindOf(err error) FailureKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	}
	return FailureTransport
}

// transportError classifies an error from http.Client.Do.
func transportError(provider string, err error) *ProviderError {
	kind := FailureTransport
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		kind = FailureCanceled
	case errors.Is(err, context.DeadlineExceeded):
		kind = FailureTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = FailureTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// statusError classifies a non-200 provider response. A 429 or a body that
// talks about quota is a quota failure whatever the status.
func statusError(provider string, status int, body string) *ProviderError {
	kind := FailureRejected
	switch {
	case status == 429 || isQuotaMessage(body):
		kind = FailureQuota
	case status == 408 || status == 504:
		kind = FailureTimeout
	case status >= 500:
		kind = FailureServer
	}
	if len(body) > 300 {
		body = body[:300]
	}
	return &ProviderError{Provider: provider, Kind: kind, Status: status, Err: errors.New(strings.TrimSpace(body))}
}

func isQuotaMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "quota") ||
		strings.Contains(m, "resource_exhausted") ||
		strings.Contains(m, "rate limit")
}
