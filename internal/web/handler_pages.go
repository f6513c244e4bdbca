package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pubglens/internal/config"
	"github.com/pubglens/internal/logging"
	"github.com/pubglens/internal/services/pubg"
)

type indexPage struct {
	Platforms []string
	Platform  string
}

type playerPage struct {
	Platforms []string
	Platform  string
	Player    pubg.Player
	Stats     *pubg.LifetimeStats
	Matches   []pubg.MatchSummary
}

type errorPage struct {
	Platforms []string
	Platform  string
	Status    int
	Message   string
	RequestID string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", indexPage{
		Platforms: config.Platforms,
		Platform:  s.cfg.PUBG.DefaultPlatform,
	})
}

// handleSearchForm redirects a form search to the player page.
func (s *Server) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("player_name"))
	if name == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	target := "/player/" + url.PathEscape(name)
	if p := strings.ToLower(r.FormValue("platform")); p != "" && p != s.cfg.PUBG.DefaultPlatform && config.ValidPlatform(p) {
		target += "?platform=" + url.QueryEscape(p)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handlePlayerPage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = strings.TrimSpace(name)
	if err := s.validate.Var(name, "required,max=64"); err != nil {
		s.renderError(w, r, errBadRequest("invalid player name"))
		return
	}
	platform, err := s.platform(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	players, err := s.deps.Stats.SearchPlayers(r.Context(), platform, []string{name})
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	if len(players) == 0 {
		s.renderError(w, r, pubg.ErrNotFound)
		return
	}
	player := players[0]

	stats, err := s.deps.Stats.GetLifetimeStats(r.Context(), platform, player.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	ids := player.MatchIDs
	if limit := s.cfg.Server.PageMatchLimit; len(ids) > limit {
		ids = ids[:max(limit, 0)]
	}
	refs := make([]pubg.MatchRef, len(ids))
	for i, id := range ids {
		refs[i] = pubg.MatchRef{ID: id}
	}

	// The profile still renders when match details are unavailable.
	matches, err := s.summaries(r.Context(), platform, player.ID, refs)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("player", player.Name).Msg("recent matches unavailable")
	}

	s.render(w, r, http.StatusOK, "player.html", playerPage{
		Platforms: config.Platforms,
		Platform:  platform,
		Player:    player,
		Stats:     stats,
		Matches:   matches,
	})
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	p := classify(err)
	if p.status >= http.StatusInternalServerError || p.status == http.StatusBadGateway {
		logging.Ctx(r.Context()).Error().Err(err).Int("status", p.status).Msg("page failed")
	}

	msg := p.message
	if p.status == http.StatusNotFound {
		msg = "Player or page not found. Names are case sensitive on the PUBG API."
	}
	s.render(w, r, p.status, "error.html", errorPage{
		Platforms: config.Platforms,
		Platform:  s.cfg.PUBG.DefaultPlatform,
		Status:    p.status,
		Message:   msg,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}
