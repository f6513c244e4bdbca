package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/pubglens/internal/config"
	"github.com/pubglens/internal/embeds"
	"github.com/pubglens/internal/services/ai"
	"github.com/pubglens/internal/services/pubg"
)

type fakeStats struct {
	mu      sync.Mutex
	players []pubg.Player
	stats   map[string]*pubg.LifetimeStats
	matches map[string]*pubg.Match
	err     error
	calls   []string
}

func (f *fakeStats) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeStats) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeStats) SearchPlayers(_ context.Context, platform string, names []string) ([]pubg.Player, error) {
	f.record("search:" + platform + ":" + strings.Join(names, ","))
	if f.err != nil {
		return nil, f.err
	}
	out := []pubg.Player{}
	for _, n := range names {
		for _, p := range f.players {
			if p.Name == n {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeStats) GetPlayer(_ context.Context, _ string, id string) (*pubg.Player, error) {
	f.record("player:" + id)
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.players {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &pubg.APIError{Status: 404, Kind: pubg.ErrNotFound}
}

func (f *fakeStats) GetLifetimeStats(_ context.Context, _ string, id string) (*pubg.LifetimeStats, error) {
	f.record("stats:" + id)
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.stats[id]; ok {
		return s, nil
	}
	return nil, &pubg.APIError{Status: 404, Kind: pubg.ErrNotFound}
}

func (f *fakeStats) GetRecentMatches(ctx context.Context, platform, id string, limit int) ([]pubg.MatchRef, error) {
	p, err := f.GetPlayer(ctx, platform, id)
	if err != nil {
		return nil, err
	}
	ids := p.MatchIDs
	if len(ids) > limit {
		ids = ids[:limit]
	}
	refs := make([]pubg.MatchRef, len(ids))
	for i, mid := range ids {
		refs[i] = pubg.MatchRef{ID: mid}
	}
	return refs, nil
}

func (f *fakeStats) GetMatch(_ context.Context, _ string, id string) (*pubg.Match, error) {
	f.record("match:" + id)
	if f.err != nil {
		return nil, f.err
	}
	if m, ok := f.matches[id]; ok {
		return m, nil
	}
	return nil, &pubg.APIError{Status: 404, Kind: pubg.ErrNotFound}
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	match *ai.MatchInput
	trend *ai.TrendInput
	err   error
}

func (f *fakeAnalyzer) result(kind string) *ai.AnalysisResult {
	return &ai.AnalysisResult{
		ID:        uuid.New(),
		Kind:      kind,
		Provider:  "ollama",
		Model:     "qwen2:0.5b",
		Text:      "Rotate earlier.",
		CreatedAt: time.Now(),
		Attempts: []ai.Attempt{
			{Provider: "gemini", Outcome: "quota", Error: "gemini: quota"},
			{Provider: "ollama", Outcome: "succeeded"},
		},
	}
}

func (f *fakeAnalyzer) AnalyzeMatch(_ context.Context, in ai.MatchInput) (*ai.AnalysisResult, error) {
	f.mu.Lock()
	f.match = &in
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	res := f.result(ai.KindMatch)
	res.Player = in.Player.Name
	res.MatchID = in.MatchID
	return res, nil
}

func (f *fakeAnalyzer) AnalyzeTrend(_ context.Context, in ai.TrendInput) (*ai.AnalysisResult, error) {
	f.mu.Lock()
	f.trend = &in
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(in.Matches) == 0 {
		return nil, ai.ErrNoMatches
	}
	res := f.result(ai.KindTrend)
	res.Player = in.PlayerName
	res.Matches = len(in.Matches)
	return res, nil
}

type fakeSharer struct {
	enabled bool
	err     error
	shared  []*embeds.Context
}

func (f *fakeSharer) Enabled() bool { return f.enabled }

func (f *fakeSharer) Share(_ context.Context, _ *ai.AnalysisResult, mc *embeds.Context) error {
	if f.err != nil {
		return f.err
	}
	f.shared = append(f.shared, mc)
	return nil
}

type fakePinger struct{ err error }

func (f fakePinger) Enabled() bool                { return true }
func (f fakePinger) Ping(_ context.Context) error { return f.err }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			SecretKey:         "s3cret",
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 1000,
			RateLimitWindow:   time.Minute,
			PageMatchLimit:    5,
		},
		PUBG: config.PUBGConfig{DefaultPlatform: "steam"},
	}
}

var testTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newFakeStats() *fakeStats {
	return &fakeStats{
		players: []pubg.Player{
			{ID: "account.a", Name: "Alpha", Platform: "steam", MatchIDs: []string{"m-3", "m-2", "m-1"}},
			{ID: "account.z", Name: "Zulu", Platform: "steam"},
		},
		stats: map[string]*pubg.LifetimeStats{
			"account.a": {
				PlayerID: "account.a",
				Platform: "steam",
				Total:    pubg.ModeStats{Mode: "all", RoundsPlayed: 12, Wins: 2, KDRatio: 1.5},
				Modes:    []pubg.ModeStats{{Mode: "squad-fpp", RoundsPlayed: 12, Wins: 2, KDRatio: 1.5}},
			},
		},
		matches: map[string]*pubg.Match{
			"m-3": testMatchAt("m-3", testTime.Add(2*time.Hour), 1),
			"m-2": testMatchAt("m-2", testTime.Add(time.Hour), 7),
		},
	}
}

func testMatchAt(id string, at time.Time, rank int) *pubg.Match {
	return &pubg.Match{
		ID:        id,
		MapName:   "Baltic_Main",
		GameMode:  "squad-fpp",
		CreatedAt: at,
		Participants: []pubg.Participant{
			{ID: "p-1", PlayerID: "account.a", Name: "Alpha", RosterID: "r-1", Rank: rank, Stats: pubg.ParticipantStats{Kills: 3, DamageDealt: 310}},
			{ID: "p-2", PlayerID: "account.b", Name: "Bravo", RosterID: "r-1", Rank: rank},
			{ID: "p-3", PlayerID: "account.c", Name: "Charlie", RosterID: "r-2", Rank: 2},
		},
	}
}

type harness struct {
	stats    *fakeStats
	analyzer *fakeAnalyzer
	sharer   *fakeSharer
	handler  http.Handler
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	h := &harness{
		stats:    newFakeStats(),
		analyzer: &fakeAnalyzer{},
		sharer:   &fakeSharer{enabled: true},
	}
	srv := New(cfg, Deps{
		Stats:     h.stats,
		Analyzer:  h.analyzer,
		Sharer:    h.sharer,
		Cache:     fakePinger{},
		Providers: []string{"gemini", "ollama"},
	})
	h.handler = srv.Handler()
	return h
}

func (h *harness) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Invalid JSON response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("Invalid data %s: %v", env.Data, err)
		}
	}
	return env
}

func TestHealthMakesNoUpstreamCalls(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.stats.err = fmt.Errorf("%w: down", pubg.ErrUpstreamUnavailable)

	rec := h.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"healthy"}` {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
	if n := h.stats.callCount(); n != 0 {
		t.Errorf("Expected no upstream calls, got %d", n)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	rec := h.do(http.MethodGet, "/health", "", RequestIDHeader, "req-123")
	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("Expected echoed request id, got %q", got)
	}

	rec = h.do(http.MethodGet, "/health", "")
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("Expected generated uuid request id, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.do(http.MethodGet, "/health", "")

	rec := h.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "pubglens_http_requests_total") {
		t.Error("Expected API request counter in exposition")
	}
}

func TestAPITest(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	var plain testResponse
	decode(t, h.do(http.MethodGet, "/api/test", ""), &plain)
	if plain.Status != "ok" || plain.Diagnostics != nil {
		t.Errorf("Expected liveness only, got %+v", plain)
	}

	var wrong testResponse
	decode(t, h.do(http.MethodGet, "/api/test", "", SecretKeyHeader, "nope"), &wrong)
	if wrong.Diagnostics != nil {
		t.Error("Expected no diagnostics with a wrong key")
	}

	var full testResponse
	decode(t, h.do(http.MethodGet, "/api/test", "", SecretKeyHeader, "s3cret"), &full)
	if full.Diagnostics == nil {
		t.Fatal("Expected diagnostics with the secret key")
	}
	d := full.Diagnostics
	if d.DefaultPlatform != "steam" || d.Cache != "ok" || !d.DiscordSharing {
		t.Errorf("Unexpected diagnostics %+v", d)
	}
	if strings.Join(d.AIProviders, ",") != "gemini,ollama" {
		t.Errorf("Unexpected providers %v", d.AIProviders)
	}
	if n := h.stats.callCount(); n != 0 {
		t.Errorf("Expected no upstream calls, got %d", n)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Server.RateLimitRequests = 2
	h := newHarness(t, cfg)

	for i := 0; i < 2; i++ {
		if rec := h.do(http.MethodGet, "/api/test", ""); rec.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := h.do(http.MethodGet, "/api/test", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rec.Code)
	}
	env := decode(t, rec, nil)
	if env.Success || env.Error == nil || env.Error.Code != CodeRateLimited {
		t.Errorf("Unexpected envelope %+v", env)
	}

	if rec := h.do(http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected /health outside the API limit, got %d", rec.Code)
	}
}

func TestUnknownRoutes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)

	rec := h.do(http.MethodGet, "/api/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if env := decode(t, rec, nil); env.Error == nil || env.Error.Code != CodeNotFound {
		t.Errorf("Expected JSON not found, got %s", rec.Body.String())
	}

	rec = h.do(http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Expected HTML 404, got %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func (h *harness) doForm(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}
