package pubg

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithBaseURL overrides the API root, e.g. for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithCache enables response caching.
func WithCache(cache Cache, ttl CacheTTL) Option {
	return func(c *Client) {
		c.cache = cache
		c.ttl = ttl
	}
}

// WithRateLimit sets the client-side request budget. Zero or less disables it.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		c.perMinute = perMinute
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// WithLimiterWait bounds how long a call may queue for the local rate limiter
// before failing with ErrRateLimited.
func WithLimiterWait(d time.Duration) Option {
	return func(c *Client) { c.maxLimiterWait = d }
}
