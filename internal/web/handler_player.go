package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pubglens/internal/config"
	"github.com/pubglens/internal/logging"
	"github.com/pubglens/internal/services/pubg"
)

const maxBodyBytes = 16 << 10

type searchRequest struct {
	PlayerName string `json:"player_name" validate:"required,max=400"`
	Platform   string `json:"platform" validate:"omitempty,oneof=steam kakao psn xbox console stadia"`
}

type searchResponse struct {
	Platform string        `json:"platform"`
	Players  []pubg.Player `json:"players"`
}

type matchesResponse struct {
	PlayerID  string              `json:"player_id"`
	Platform  string              `json:"platform"`
	Matches   []pubg.MatchRef     `json:"matches"`
	Summaries []pubg.MatchSummary `json:"summaries,omitempty"`
}

// splitNames turns "a, b,c" into its names, dropping blanks.
func splitNames(raw string) []string {
	var names []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func (s *Server) handleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, r, errBadRequest("could not read request body"))
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, r, errBadRequest("request body must be JSON with a player_name field"))
		return
	}
	req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	if err := s.validate.Struct(req); err != nil {
		respondError(w, r, errBadRequest("player_name is required and platform must be one of %s", strings.Join(config.Platforms, ", ")))
		return
	}

	names := splitNames(req.PlayerName)
	if len(names) == 0 || len(names) > pubg.MaxSearchNames {
		respondError(w, r, errBadRequest("give between 1 and %d player names", pubg.MaxSearchNames))
		return
	}

	platform := req.Platform
	if platform == "" {
		platform = s.cfg.PUBG.DefaultPlatform
	}

	players, err := s.deps.Stats.SearchPlayers(r.Context(), platform, names)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Strs("names", names).
		Int("found", len(players)).
		Msg("player search")
	respondData(w, http.StatusOK, searchResponse{Platform: platform, Players: players})
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	platform, err := s.platform(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	stats, err := s.deps.Stats.GetLifetimeStats(r.Context(), platform, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}

func (s *Server) handlePlayerMatches(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	platform, err := s.platform(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	limit, err := intParam(r, "limit", pubg.MaxRecentMatches, 1, pubg.MaxRecentMatches)
	if err != nil {
		respondError(w, r, err)
		return
	}

	refs, err := s.deps.Stats.GetRecentMatches(r.Context(), platform, id, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := matchesResponse{PlayerID: id, Platform: platform, Matches: refs}
	if boolParam(r, "expand") {
		resp.Summaries, err = s.summaries(r.Context(), platform, id, refs)
		if err != nil {
			respondError(w, r, err)
			return
		}
	}
	respondData(w, http.StatusOK, resp)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	id, err := s.pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	platform, err := s.platform(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	match, err := s.deps.Stats.GetMatch(r.Context(), platform, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, match)
}

// summaries fetches each match in turn and extracts the player's line.
// Matches the API no longer serves are skipped.
func (s *Server) summaries(ctx context.Context, platform, player string, refs []pubg.MatchRef) ([]pubg.MatchSummary, error) {
	out := make([]pubg.MatchSummary, 0, len(refs))
	for _, ref := range refs {
		m, err := s.deps.Stats.GetMatch(ctx, platform, ref.ID)
		if errors.Is(err, pubg.ErrNotFound) {
			logging.Ctx(ctx).Debug().Str("match_id", ref.ID).Msg("match expired, skipping")
			continue
		}
		if err != nil {
			return nil, err
		}
		if sum, ok := m.SummaryFor(player); ok {
			out = append(out, sum)
		}
	}
	return out, nil
}

// intParam parses an optional integer query parameter within [lo, hi].
func intParam(r *http.Request, key string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, errBadRequest("%s must be an integer between %d and %d", key, lo, hi)
	}
	return v, nil
}

func boolParam(r *http.Request, key string) bool {
	v, _ := strconv.ParseBool(r.FormValue(key))
	return v
}
