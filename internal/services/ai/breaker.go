package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/pubglens/internal/logging"
	"github.com/pubglens/internal/metrics"
)

// breakerProvider skips a provider that keeps failing until its cooldown
// has passed. A skipped call fails fast as FailureUnavailable.
type breakerProvider struct {
	Provider
	cb *gobreaker.CircuitBreaker[string]
}

// WithBreaker wraps p in a circuit breaker that opens after the given number
// of consecutive failures. Zero failures returns p unchanged.
func WithBreaker(p Provider, failures uint32, cooldown time.Duration) Provider {
	if failures == 0 {
		return p
	}

	name := p.Name()
	settings := gobreaker.Settings{
		Name:        "ai-" + name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || kindOf(err) == FailureCanceled
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
			logging.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("AI provider circuit breaker state changed")
		},
	}
	metrics.SetBreakerState(name, int(gobreaker.StateClosed))

	return &breakerProvider{
		Provider: p,
		cb:       gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (b *breakerProvider) Generate(ctx context.Context, p Prompt) (string, error) {
	text, err := b.cb.Execute(func() (string, error) {
		return b.Provider.Generate(ctx, p)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", &ProviderError{Provider: b.Name(), Kind: FailureUnavailable, Err: err}
	}
	return text, err
}

// Timeout forwards the wrapped provider's attempt timeout.
func (b *breakerProvider) Timeout() time.Duration {
	return attemptTimeout(b.Provider, 0)
}
