package ai

import (
	"sort"

	"github.com/pubglens/internal/services/pubg"
)

// TrendWindow is how many of the latest matches appear in trend series.
const TrendWindow = 10

// unrankedPlacement stands in for a missing placement.
const unrankedPlacement = 100

// TrendStats aggregates a player's recent matches.
type TrendStats struct {
	TotalMatches int     `json:"total_matches"`
	AvgKills     float64 `json:"avg_kills"`
	AvgDamage    float64 `json:"avg_damage"`
	AvgDBNOs     float64 `json:"avg_dbnos"`
	AvgRevives   float64 `json:"avg_revives"`
	AvgAssists   float64 `json:"avg_assists"`
	AvgHeadshots float64 `json:"avg_headshots"`
	AvgRank      float64 `json:"avg_rank"`
	KillTrend    []int   `json:"kill_trend"`
	RankTrend    []int   `json:"rank_trend"`
	DBNOTrend    []int   `json:"dbno_trend"`
	ReviveTrend  []int   `json:"revive_trend"`
}

// Aggregate averages the matches and builds series over the latest
// TrendWindow of them, oldest first. The input is not modified.
func Aggregate(matches []pubg.MatchSummary) TrendStats {
	n := len(matches)
	if n == 0 {
		return TrendStats{}
	}

	ordered := make([]pubg.MatchSummary, n)
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var kills, dbnos, revives, assists, headshots, rank int
	var damage float64
	for _, m := range ordered {
		kills += m.Kills
		dbnos += m.DBNOs
		revives += m.Revives
		assists += m.Assists
		headshots += m.Headshots
		damage += m.Damage
		rank += placement(m)
	}

	total := float64(n)
	t := TrendStats{
		TotalMatches: n,
		AvgKills:     float64(kills) / total,
		AvgDamage:    damage / total,
		AvgDBNOs:     float64(dbnos) / total,
		AvgRevives:   float64(revives) / total,
		AvgAssists:   float64(assists) / total,
		AvgHeadshots: float64(headshots) / total,
		AvgRank:      float64(rank) / total,
	}

	window := ordered
	if len(window) > TrendWindow {
		window = window[len(window)-TrendWindow:]
	}
	for _, m := range window {
		t.KillTrend = append(t.KillTrend, m.Kills)
		t.RankTrend = append(t.RankTrend, placement(m))
		t.DBNOTrend = append(t.DBNOTrend, m.DBNOs)
		t.ReviveTrend = append(t.ReviveTrend, m.Revives)
	}
	return t
}

func placement(m pubg.MatchSummary) int {
	if m.Rank <= 0 {
		return unrankedPlacement
	}
	return m.Rank
}
