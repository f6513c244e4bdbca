// Package pubg provides a client for the PUBG developer API.
package pubg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/pubglens/internal/config"
	"github.com/pubglens/internal/logging"
	"github.com/pubglens/internal/metrics"
)

const (
	// MaxSearchNames is the upstream cap on names per search request.
	MaxSearchNames = 10
	// MaxRecentMatches is how many recent match references are exposed.
	MaxRecentMatches = 20
	// DefaultRetryAfter is reported for an upstream 429 without a reset hint.
	DefaultRetryAfter = time.Minute

	mediaType    = "application/vnd.api+json"
	maxErrorBody = 4 << 10
)

// Cache is the subset of a key/value store the client needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CacheTTL sets how long each kind of response stays cached.
type CacheTTL struct {
	Player time.Duration
	Stats  time.Duration
	Match  time.Duration
}

// Client handles PUBG API requests.
type Client struct {
	apiKey         string
	baseURL        string
	httpClient     *http.Client
	limiter        *rate.Limiter
	perMinute      int
	maxLimiterWait time.Duration
	cache          Cache
	ttl            CacheTTL
}

// NewClient creates a new PUBG API client.
func NewClient(cfg config.PUBGConfig, opts ...Option) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		maxLimiterWait: 10 * time.Second,
	}
	if c.baseURL == "" {
		c.baseURL = "https://api.pubg.com"
	}
	WithRateLimit(cfg.RequestsPerMinute)(c)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchPlayers looks up players by exact name. An unknown name yields an
// empty list rather than an error.
func (c *Client) SearchPlayers(ctx context.Context, platform string, names []string) ([]Player, error) {
	clean := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			clean = append(clean, n)
		}
	}
	if len(clean) == 0 || len(clean) > MaxSearchNames {
		return nil, fmt.Errorf("search needs 1 to %d player names, got %d", MaxSearchNames, len(clean))
	}

	key := searchKey(platform, clean)
	var cached []Player
	if c.cacheGet(ctx, "search", key, &cached) {
		return cached, nil
	}

	q := url.Values{}
	q.Set("filter[playerNames]", strings.Join(clean, ","))

	body, err := c.doRequest(ctx, "players", shardPath(platform, "players"), q, true)
	if errors.Is(err, ErrNotFound) {
		return []Player{}, nil
	}
	if err != nil {
		return nil, err
	}

	players, err := ShapePlayers(body, platform)
	if err != nil {
		return nil, err
	}
	c.cacheSet(ctx, key, players, c.ttl.Player)
	return players, nil
}

// GetPlayer fetches one player by account id.
func (c *Client) GetPlayer(ctx context.Context, platform, accountID string) (*Player, error) {
	key := "player:" + platform + ":" + accountID
	var cached Player
	if c.cacheGet(ctx, "player", key, &cached) {
		return &cached, nil
	}

	body, err := c.doRequest(ctx, "player", shardPath(platform, "players", accountID), nil, true)
	if err != nil {
		return nil, err
	}

	player, err := ShapePlayer(body, platform)
	if err != nil {
		return nil, err
	}
	c.cacheSet(ctx, key, player, c.ttl.Player)
	return player, nil
}

// GetLifetimeStats fetches the all-time stats of a player.
func (c *Client) GetLifetimeStats(ctx context.Context, platform, accountID string) (*LifetimeStats, error) {
	key := "lifetime:" + platform + ":" + accountID
	var cached LifetimeStats
	if c.cacheGet(ctx, "lifetime", key, &cached) {
		return &cached, nil
	}

	body, err := c.doRequest(ctx, "lifetime", shardPath(platform, "players", accountID, "seasons", "lifetime"), nil, true)
	if err != nil {
		return nil, err
	}

	stats, err := ShapeLifetimeStats(body, platform, accountID)
	if err != nil {
		return nil, err
	}
	c.cacheSet(ctx, key, stats, c.ttl.Stats)
	return stats, nil
}

// GetRecentMatches returns up to limit of the player's most recent matches,
// newest first. A non-positive limit means MaxRecentMatches.
func (c *Client) GetRecentMatches(ctx context.Context, platform, accountID string, limit int) ([]MatchRef, error) {
	if limit <= 0 || limit > MaxRecentMatches {
		limit = MaxRecentMatches
	}

	player, err := c.GetPlayer(ctx, platform, accountID)
	if err != nil {
		return nil, err
	}

	ids := player.MatchIDs
	if len(ids) > limit {
		ids = ids[:limit]
	}
	refs := make([]MatchRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, MatchRef{ID: id})
	}
	return refs, nil
}

// GetMatch fetches one match with its participants. The matches endpoint is
// not rate limited upstream, so it skips the local limiter.
func (c *Client) GetMatch(ctx context.Context, platform, matchID string) (*Match, error) {
	key := "match:" + platform + ":" + matchID
	var cached Match
	if c.cacheGet(ctx, "match", key, &cached) {
		return &cached, nil
	}

	body, err := c.doRequest(ctx, "match", shardPath(platform, "matches", matchID), nil, false)
	if err != nil {
		return nil, err
	}

	match, err := ShapeMatch(body, platform)
	if err != nil {
		return nil, err
	}
	c.cacheSet(ctx, key, match, c.ttl.Match)
	return match, nil
}

// doRequest performs one authenticated GET and returns the body of a 200
// response. Anything else is translated into one of the error kinds.
func (c *Client) doRequest(ctx context.Context, endpoint, path string, q url.Values, limited bool) ([]byte, error) {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.RecordUpstreamRequest(endpoint, outcome, time.Since(start))
	}()

	if limited && c.limiter != nil {
		waitCtx, cancel := context.WithTimeout(ctx, c.maxLimiterWait)
		err := c.limiter.Wait(waitCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				outcome = "canceled"
				return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, ctx.Err())
			}
			outcome = "rate_limited"
			return nil, &APIError{
				Status:     http.StatusTooManyRequests,
				Body:       "local request budget exhausted",
				RetryAfter: c.limiterDelay(),
				Kind:       ErrRateLimited,
			}
		}
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("%w: build request: %w", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", mediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "transport_error"
		logging.Ctx(ctx).Warn().Err(err).Str("endpoint", endpoint).Msg("pubg request failed")
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			outcome = "transport_error"
			return nil, fmt.Errorf("%w: read body: %w", ErrUpstreamUnavailable, err)
		}
		return body, nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr.Kind = ErrInvalidCredentials
		outcome = "unauthorized"
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Kind = ErrNotFound
		outcome = "not_found"
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr.Kind = ErrRateLimited
		apiErr.RetryAfter = retryAfter(resp.Header, time.Now())
		if apiErr.RetryAfter == 0 {
			apiErr.RetryAfter = DefaultRetryAfter
		}
		outcome = "rate_limited"
	default:
		apiErr.Kind = ErrUpstreamUnavailable
		outcome = "upstream_error"
	}

	logging.Ctx(ctx).Debug().
		Int("status", resp.StatusCode).
		Str("endpoint", endpoint).
		Msg("pubg request returned error status")
	return nil, apiErr
}

// limiterDelay reports when the local limiter will next have a token.
func (c *Client) limiterDelay() time.Duration {
	r := c.limiter.Reserve()
	d := r.Delay()
	r.Cancel()
	if d <= 0 || d == rate.InfDuration {
		return time.Minute / time.Duration(max(c.perMinute, 1))
	}
	return d
}

// retryAfter reads the reset hint of a 429. PUBG sends X-Ratelimit-Reset as
// a unix timestamp; Retry-After in seconds is honoured as well.
func retryAfter(h http.Header, now time.Time) time.Duration {
	if v := h.Get("X-Ratelimit-Reset"); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			if d := time.Unix(ts, 0).Sub(now); d > 0 {
				return d.Round(time.Second)
			}
		}
	}
	if v := h.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func shardPath(platform string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/shards/")
	b.WriteString(url.PathEscape(platform))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

func searchKey(platform string, names []string) string {
	lower := make([]string, len(names))
	for i, n := range names {
		lower[i] = strings.ToLower(n)
	}
	sort.Strings(lower)
	return "search:" + platform + ":" + strings.Join(lower, ",")
}

func (c *Client) cacheGet(ctx context.Context, kind, key string, out any) bool {
	if c.cache == nil {
		return false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	hit := raw != "" && json.Unmarshal([]byte(raw), out) == nil
	metrics.RecordCacheLookup(kind, hit)
	return hit
}

func (c *Client) cacheSet(ctx context.Context, key string, v any, ttl time.Duration) {
	if c.cache == nil || ttl <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, string(data), ttl); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
