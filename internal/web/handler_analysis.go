package web

import (
	"net/http"
	"strings"

	"github.com/pubglens/internal/embeds"
	"github.com/pubglens/internal/logging"
	"github.com/pubglens/internal/services/ai"
	"github.com/pubglens/internal/services/pubg"
)

// DefaultTrendMatches is how many recent matches a trend analysis covers
// unless the caller asks for another number.
const DefaultTrendMatches = 10

type analysisResponse struct {
	*ai.AnalysisResult
	Shared bool `json:"shared"`
}

func (s *Server) handleAnalyzeMatch(w http.ResponseWriter, r *http.Request) {
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
	player := strings.TrimSpace(r.FormValue("player"))
	if player == "" {
		respondError(w, r, errBadRequest("player is required (name or account id)"))
		return
	}

	match, err := s.deps.Stats.GetMatch(r.Context(), platform, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	in, err := ai.NewMatchInput(match, player)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.deps.Analyzer.AnalyzeMatch(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := analysisResponse{AnalysisResult: res}
	if boolParam(r, "share") {
		resp.Shared = s.share(r, res, &embeds.Context{
			MapName:  in.MapName,
			GameMode: in.GameMode,
			Rank:     in.Player.Rank,
		})
	}
	respondData(w, http.StatusOK, resp)
}

func (s *Server) handleTrendAnalysis(w http.ResponseWriter, r *http.Request) {
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
	n, err := intParam(r, "matches", DefaultTrendMatches, 1, pubg.MaxRecentMatches)
	if err != nil {
		respondError(w, r, err)
		return
	}

	player, err := s.deps.Stats.GetPlayer(r.Context(), platform, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ids := player.MatchIDs
	if len(ids) > n {
		ids = ids[:n]
	}
	refs := make([]pubg.MatchRef, len(ids))
	for i, mid := range ids {
		refs[i] = pubg.MatchRef{ID: mid}
	}

	summaries, err := s.summaries(r.Context(), platform, player.ID, refs)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.deps.Analyzer.AnalyzeTrend(r.Context(), ai.TrendInput{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Matches:    summaries,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := analysisResponse{AnalysisResult: res}
	if boolParam(r, "share") {
		resp.Shared = s.share(r, res, nil)
	}
	respondData(w, http.StatusOK, resp)
}

// share posts res to Discord. A failure is logged and never fails the
// request that produced the analysis.
func (s *Server) share(r *http.Request, res *ai.AnalysisResult, mc *embeds.Context) bool {
	if s.deps.Sharer == nil || !s.deps.Sharer.Enabled() {
		return false
	}
	if err := s.deps.Sharer.Share(r.Context(), res, mc); err != nil {
		logging.Ctx(r.Context()).Warn().
			Err(err).
			Str("analysis_id", res.ID.String()).
			Msg("sharing analysis failed")
		return false
	}
	return true
}
