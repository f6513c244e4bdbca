package ai

import (
	"context"
	"time"

	"github.com/pubglens/internal/config"
	"github.com/pubglens/internal/logging"
	"github.com/pubglens/internal/metrics"
)

// DefaultAttemptTimeout bounds a provider attempt that does not set its own.
const DefaultAttemptTimeout = 30 * time.Second

// Chain tries providers in order, once each, until one produces text.
type Chain struct {
	providers []Provider
	timeout   time.Duration
}

// NewChain creates a chain over providers in the given order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers, timeout: DefaultAttemptTimeout}
}

// NewChainFromConfig builds the Gemini, Ollama, OpenAI chain from the
// configured providers, each behind its own circuit breaker.
func NewChainFromConfig(cfg config.AIConfig) *Chain {
	hc := NewHTTPClient()

	var providers []Provider
	for _, name := range cfg.ProviderNames() {
		var p Provider
		switch name {
		case "gemini":
			p = NewGemini(cfg, hc)
		case "ollama":
			p = NewOllama(cfg, hc)
		case "openai":
			p = NewOpenAI(cfg, hc)
		default:
			continue
		}
		providers = append(providers, WithBreaker(p, uint32(max(cfg.BreakerFailures, 0)), cfg.BreakerCooldown))
	}
	return NewChain(providers...)
}

// Providers returns the provider names in chain order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

type timeouter interface {
	Timeout() time.Duration
}

func attemptTimeout(p Provider, fallback time.Duration) time.Duration {
	if t, ok := p.(timeouter); ok && t.Timeout() > 0 {
		return t.Timeout()
	}
	return fallback
}

// Generate runs the chain. It returns either the first provider's text or a
// *ChainError, never partial output.
func (c *Chain) Generate(ctx context.Context, prompt Prompt) (*Generation, error) {
	attempts := make([]Attempt, 0, len(c.providers))
	log := logging.Ctx(ctx)

	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, &ChainError{Attempts: attempts, Cause: err}
		}

		start := time.Now()
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout(p, c.timeout))
		text, err := p.Generate(attemptCtx, prompt)
		cancel()
		elapsed := time.Since(start)

		if err == nil && isEmpty(text) {
			err = emptyOutput(p.Name())
		}

		if err == nil {
			attempts = append(attempts, Attempt{
				Provider:   p.Name(),
				Outcome:    "succeeded",
				DurationMs: elapsed.Milliseconds(),
			})
			metrics.RecordProviderAttempt(p.Name(), "succeeded", elapsed)
			log.Info().
				Str("provider", p.Name()).
				Int("attempt", len(attempts)).
				Dur("elapsed", elapsed).
				Msg("AI analysis generated")
			return &Generation{
				Provider: p.Name(),
				Model:    p.Model(),
				Text:     cleanText(text),
				Attempts: attempts,
			}, nil
		}

		kind := kindOf(err)
		switch {
		case ctx.Err() != nil:
			kind = FailureCanceled
		case kind == FailureCanceled:
			kind = FailureTransport
		}
		attempts = append(attempts, Attempt{
			Provider:   p.Name(),
			Outcome:    string(kind),
			Error:      err.Error(),
			DurationMs: elapsed.Milliseconds(),
		})
		metrics.RecordProviderAttempt(p.Name(), string(kind), elapsed)

		if kind == FailureCanceled {
			return nil, &ChainError{Attempts: attempts, Cause: context.Cause(ctx)}
		}
		log.Warn().
			Err(err).
			Str("provider", p.Name()).
			Str("kind", string(kind)).
			Msg("AI provider failed, trying next")
	}

	return nil, &ChainError{Attempts: attempts}
}
