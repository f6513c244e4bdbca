// Package web serves the JSON API and HTML pages.
package web

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pubglens/internal/config"
	"github.com/pubglens/internal/embeds"
	"github.com/pubglens/internal/services/ai"
	"github.com/pubglens/internal/services/pubg"
	"github.com/pubglens/pkg/healthcheck"
)

// StatsService is the upstream data the handlers read.
type StatsService interface {
	SearchPlayers(ctx context.Context, platform string, names []string) ([]pubg.Player, error)
	GetPlayer(ctx context.Context, platform, accountID string) (*pubg.Player, error)
	GetLifetimeStats(ctx context.Context, platform, accountID string) (*pubg.LifetimeStats, error)
	GetRecentMatches(ctx context.Context, platform, accountID string, limit int) ([]pubg.MatchRef, error)
	GetMatch(ctx context.Context, platform, matchID string) (*pubg.Match, error)
}

// Analyzer produces AI analyses.
type Analyzer interface {
	AnalyzeMatch(ctx context.Context, in ai.MatchInput) (*ai.AnalysisResult, error)
	AnalyzeTrend(ctx context.Context, in ai.TrendInput) (*ai.AnalysisResult, error)
}

// Sharer posts analyses to Discord.
type Sharer interface {
	Enabled() bool
	Share(ctx context.Context, res *ai.AnalysisResult, mc *embeds.Context) error
}

// Pinger reports the state of the optional cache.
type Pinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// Deps are the services behind the handlers. Sharer and Cache may be nil.
type Deps struct {
	Stats     StatsService
	Analyzer  Analyzer
	Sharer    Sharer
	Cache     Pinger
	Providers []string
}

// Server holds the handler dependencies.
type Server struct {
	cfg      *config.Config
	deps     Deps
	pages    map[string]*template.Template
	validate *validator.Validate
	started  time.Time
}

// New creates the server. It panics if the embedded templates do not parse.
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{
		cfg:      cfg,
		deps:     deps,
		pages:    mustParsePages(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		started:  time.Now(),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(deadline(s.cfg.Server.RequestTimeout))

	r.Method(http.MethodGet, "/health", healthcheck.Handler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	static, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/", s.handleIndex)
	r.Post("/search", s.handleSearchForm)
	r.Get("/player/{name}", s.handlePlayerPage)

	r.Route("/api", func(r chi.Router) {
		r.Use(corsHandler(s.cfg.Server.CORSOrigins))
		r.Use(rateLimit(s.cfg.Server.RateLimitRequests, s.cfg.Server.RateLimitWindow))

		r.Get("/test", s.handleTest)
		r.Post("/player/search", s.handleSearchPlayers)
		r.Get("/player/{id}/stats", s.handlePlayerStats)
		r.Get("/player/{id}/matches", s.handlePlayerMatches)
		r.Get("/match/{id}", s.handleMatch)

		r.Group(func(r chi.Router) {
			r.Use(rateLimit(analyzeLimit(s.cfg.Server.RateLimitRequests), s.cfg.Server.RateLimitWindow))

			r.Get("/match/{id}/analyze", s.handleAnalyzeMatch)
			r.Post("/match/{id}/analyze", s.handleAnalyzeMatch)
			r.Get("/player/{id}/trend-analysis", s.handleTrendAnalysis)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			respondError(w, r, pubg.ErrNotFound)
			return
		}
		s.renderError(w, r, pubg.ErrNotFound)
	})

	return r
}

// analyzeLimit is the per-IP budget of the analysis routes.
func analyzeLimit(requests int) int {
	if requests <= 0 {
		return 0
	}
	return max(requests/5, 1)
}

// platform resolves the platform query parameter.
func (s *Server) platform(r *http.Request) (string, error) {
	p := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("platform")))
	if p == "" {
		return s.cfg.PUBG.DefaultPlatform, nil
	}
	if !config.ValidPlatform(p) {
		return "", errBadRequest("platform must be one of %s", strings.Join(config.Platforms, ", "))
	}
	return p, nil
}

// pathID returns a validated URL parameter.
func (s *Server) pathID(r *http.Request, name string) (string, error) {
	id := chi.URLParam(r, name)
	if err := s.validate.Var(id, "required,max=128,printascii,excludesall=/?#"); err != nil {
		return "", errBadRequest("invalid %s", name)
	}
	return id, nil
}
