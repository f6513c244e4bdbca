package pubg

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds returned by the client. Match them with errors.Is.
var (
	ErrNotFound            = errors.New("pubg: not found")
	ErrRateLimited         = errors.New("pubg: rate limited")
	ErrUpstreamUnavailable = errors.New("pubg: upstream unavailable")
	ErrInvalidCredentials  = errors.New("pubg: invalid credentials")
	ErrValidation          = errors.New("pubg: malformed response")
)

// APIError describes a non-2xx response. It unwraps to one of the error kinds.
type APIError struct {
	Status int
	Body   string
	// RetryAfter is set on rate limit responses when the reset time is known.
	RetryAfter time.Duration
	Kind       error
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("pubg api status %d", e.Status)
	}
	return fmt.Sprintf("pubg api status %d: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return e.Kind }

// ShapeError reports an upstream payload that could not be turned into a
// typed record. It unwraps to ErrValidation and the underlying cause.
type ShapeError struct {
	Resource string
	Err      error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("pubg: malformed %s: %v", e.Resource, e.Err)
}

func (e *ShapeError) Unwrap() []error { return []error{ErrValidation, e.Err} }

func shapeErr(resource string, err error) error {
	return &ShapeError{Resource: resource, Err: err}
}

// RetryAfter returns how long the caller should wait before retrying, when
// err carries that information.
func RetryAfter(err error) (time.Duration, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter, true
	}
	return 0, false
}
