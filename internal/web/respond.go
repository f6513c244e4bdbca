package web

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/pubglens/internal/logging"
	"github.com/pubglens/internal/services/ai"
	"github.com/pubglens/internal/services/pubg"
)

// Error codes returned in the JSON envelope.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeNotFound            = "NOT_FOUND"
	CodeRateLimited         = "RATE_LIMITED"
	CodeUpstreamAuth        = "UPSTREAM_AUTH"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamInvalid     = "UPSTREAM_INVALID"
	CodeAIUnavailable       = "AI_UNAVAILABLE"
	CodeInternal            = "INTERNAL"
)

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// badRequest is a client input problem reported as 400.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func errBadRequest(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

// respondJSON writes v as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Success: true, Data: data})
}

// problem is the HTTP rendering of an error.
type problem struct {
	status  int
	code    string
	message string
	details any
}

// classify maps service errors onto HTTP statuses.
func classify(err error) problem {
	var (
		br *badRequest
		ce *ai.ChainError
	)
	switch {
	case errors.As(err, &br):
		return problem{http.StatusBadRequest, CodeBadRequest, br.msg, nil}
	case errors.Is(err, context.DeadlineExceeded):
		return problem{http.StatusGatewayTimeout, CodeUpstreamUnavailable, "request timed out", nil}
	case errors.As(err, &ce):
		return problem{http.StatusServiceUnavailable, CodeAIUnavailable, "AI analysis is unavailable: every provider failed", ce.Attempts}
	case errors.Is(err, pubg.ErrNotFound):
		return problem{http.StatusNotFound, CodeNotFound, notFoundMessage(err), nil}
	case errors.Is(err, pubg.ErrRateLimited):
		return problem{http.StatusTooManyRequests, CodeRateLimited, "PUBG API rate limit reached, try again shortly", nil}
	case errors.Is(err, pubg.ErrInvalidCredentials):
		return problem{http.StatusBadGateway, CodeUpstreamAuth, "PUBG API rejected the configured credentials", nil}
	case errors.Is(err, pubg.ErrValidation):
		return problem{http.StatusBadGateway, CodeUpstreamInvalid, "PUBG API returned an unexpected response", nil}
	case errors.Is(err, pubg.ErrUpstreamUnavailable):
		return problem{http.StatusBadGateway, CodeUpstreamUnavailable, "PUBG API is unavailable", nil}
	}
	return problem{http.StatusInternalServerError, CodeInternal, "internal server error", nil}
}

func notFoundMessage(err error) string {
	if errors.Is(err, ai.ErrNoMatches) {
		return "no recent matches available for analysis"
	}
	return "not found"
}

// respondError translates err into an error envelope. Server side failures
// are logged with the request id.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	p := classify(err)

	log := logging.Ctx(r.Context())
	if p.status >= http.StatusInternalServerError || p.status == http.StatusBadGateway {
		log.Error().Err(err).Int("status", p.status).Str("code", p.code).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", p.status).Str("code", p.code).Msg("request rejected")
	}

	if p.status == http.StatusTooManyRequests {
		d, ok := pubg.RetryAfter(err)
		if !ok {
			d = pubg.DefaultRetryAfter
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.Seconds()))))
	}

	respondJSON(w, p.status, envelope{
		Success: false,
		Error: &apiError{
			Code:      p.code,
			Message:   p.message,
			RequestID: logging.RequestIDFromContext(r.Context()),
			Details:   p.details,
		},
	})
}
