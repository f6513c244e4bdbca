package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"runtime"
	"time"
)

// SecretKeyHeader unlocks the diagnostics of /api/test.
const SecretKeyHeader = "X-Secret-Key"

type testResponse struct {
	Status      string       `json:"status"`
	Time        time.Time    `json:"time"`
	Diagnostics *diagnostics `json:"diagnostics,omitempty"`
}

type diagnostics struct {
	Uptime          string   `json:"uptime"`
	GoVersion       string   `json:"go_version"`
	Goroutines      int      `json:"goroutines"`
	DefaultPlatform string   `json:"default_platform"`
	AIProviders     []string `json:"ai_providers"`
	Cache           string   `json:"cache"`
	DiscordSharing  bool     `json:"discord_sharing"`
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	resp := testResponse{Status: "ok", Time: time.Now().UTC()}
	if s.authorized(r) {
		resp.Diagnostics = s.diagnostics(r.Context())
	}
	respondData(w, http.StatusOK, resp)
}

func (s *Server) authorized(r *http.Request) bool {
	key := r.Header.Get(SecretKeyHeader)
	secret := s.cfg.Server.SecretKey
	if key == "" || secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(secret)) == 1
}

func (s *Server) diagnostics(ctx context.Context) *diagnostics {
	d := &diagnostics{
		Uptime:          time.Since(s.started).Round(time.Second).String(),
		GoVersion:       runtime.Version(),
		Goroutines:      runtime.NumGoroutine(),
		DefaultPlatform: s.cfg.PUBG.DefaultPlatform,
		AIProviders:     s.deps.Providers,
		Cache:           "disabled",
		DiscordSharing:  s.deps.Sharer != nil && s.deps.Sharer.Enabled(),
	}
	if d.AIProviders == nil {
		d.AIProviders = []string{}
	}

	if c := s.deps.Cache; c != nil && c.Enabled() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		d.Cache = "ok"
		if err := c.Ping(pingCtx); err != nil {
			d.Cache = "error: " + err.Error()
		}
	}
	return d
}
