package ai

import (
	"fmt"
	"math"
	"strings"

	"github.com/pubglens/internal/data"
)

// SystemPrompt sets the coaching persona for every analysis.
const SystemPrompt = `You are a professional PUBG coach and mentor to competitive players.
You analyse match statistics and give specific, actionable advice.

Rules:
- Base every statement on the numbers you are given; never invent data.
- Prefer concrete drills and decision rules over generic tips
  (not "practise aim" but "10 minutes of single-tap M416 headshots in the training range").
- Keep an encouraging, motivating tone.
- Use clear markdown sections with short bullet points.`

// MatchMetrics are the derived figures quoted in a match prompt.
type MatchMetrics struct {
	SurvivalMinutes  float64
	KillsPerMinute   float64
	DamagePerKill    float64
	HeadshotRate     float64 // percent of kills
	KillContribution float64 // percent of the team's kills
	KnockConversion  float64 // kills per knock, percent
	WalkKm           float64
	RideKm           float64
}

// TotalKm is the distance travelled on foot and in vehicles.
func (m MatchMetrics) TotalKm() float64 { return m.WalkKm + m.RideKm }

// ComputeMetrics derives the per-match figures of the analysed player.
func ComputeMetrics(in MatchInput) MatchMetrics {
	s := in.Player.Stats
	m := MatchMetrics{
		SurvivalMinutes: s.TimeSurvived / 60,
		WalkKm:          s.WalkDistance / 1000,
		RideKm:          s.RideDistance / 1000,
		DamagePerKill:   s.DamageDealt,
	}

	if m.SurvivalMinutes > 0 {
		m.KillsPerMinute = float64(s.Kills) / math.Max(m.SurvivalMinutes, 1)
	}
	if s.Kills > 0 {
		m.DamagePerKill = s.DamageDealt / float64(s.Kills)
		m.HeadshotRate = float64(s.HeadshotKills) / float64(s.Kills) * 100
	}

	teamKills := s.Kills
	for _, t := range in.Teammates {
		teamKills += t.Stats.Kills
	}
	if teamKills > 0 {
		m.KillContribution = float64(s.Kills) / float64(teamKills) * 100
	}
	m.KnockConversion = float64(s.Kills) / math.Max(float64(s.DBNOs), 1) * 100

	return m
}

func languageRule(language string) string {
	if language == "" {
		language = "English"
	}
	return fmt.Sprintf("\nWrite the whole answer in %s.", language)
}

// BuildMatchPrompt renders the single match coaching prompt.
func BuildMatchPrompt(in MatchInput, language string) Prompt {
	p := in.Player
	s := p.Stats
	m := ComputeMetrics(in)

	var sb strings.Builder

	sb.WriteString("## Match\n")
	fmt.Fprintf(&sb, "- Mode: %s\n", data.GameModeName(in.GameMode))
	fmt.Fprintf(&sb, "- Map: %s\n", data.MapName(in.MapName))
	fmt.Fprintf(&sb, "- Final placement: #%d\n", p.Rank)
	fmt.Fprintf(&sb, "- Survival time: %.1f min\n", m.SurvivalMinutes)

	fmt.Fprintf(&sb, "\n## Player: %s\n", p.Name)
	sb.WriteString("### Combat\n")
	fmt.Fprintf(&sb, "- Kills: %d (%.1f%% of team kills)\n", s.Kills, m.KillContribution)
	fmt.Fprintf(&sb, "- Damage: %.0f (%.0f per kill)\n", s.DamageDealt, m.DamagePerKill)
	fmt.Fprintf(&sb, "- Headshot kills: %d (%.1f%% of kills)\n", s.HeadshotKills, m.HeadshotRate)
	fmt.Fprintf(&sb, "- Knocks: %d (knock to kill conversion %.1f%%)\n", s.DBNOs, m.KnockConversion)
	fmt.Fprintf(&sb, "- Assists: %d\n", s.Assists)
	fmt.Fprintf(&sb, "- Longest kill: %.0f m\n", s.LongestKill)
	sb.WriteString("### Survival and movement\n")
	fmt.Fprintf(&sb, "- Kills per minute alive: %.2f\n", m.KillsPerMinute)
	fmt.Fprintf(&sb, "- Distance: %.1f km on foot + %.1f km by vehicle (%.1f km total)\n", m.WalkKm, m.RideKm, m.TotalKm())
	fmt.Fprintf(&sb, "- Weapons picked up: %d\n", s.WeaponsAcquired)
	sb.WriteString("### Teamwork\n")
	fmt.Fprintf(&sb, "- Revives: %d\n", s.Revives)
	fmt.Fprintf(&sb, "- Team kills: %d\n", s.TeamKills)
	sb.WriteString("### Items\n")
	fmt.Fprintf(&sb, "- Boosts used: %d\n", s.Boosts)
	fmt.Fprintf(&sb, "- Heals used: %d\n", s.Heals)

	sb.WriteString("\n## Teammates\n")
	if len(in.Teammates) == 0 {
		sb.WriteString("Solo play, no teammate data.\n")
	}
	for i, t := range in.Teammates {
		ts := t.Stats
		perKill := ts.DamageDealt
		hsRate := 0.0
		if ts.Kills > 0 {
			perKill = ts.DamageDealt / float64(ts.Kills)
			hsRate = float64(ts.HeadshotKills) / float64(ts.Kills) * 100
		}
		fmt.Fprintf(&sb, "%d. %s: %d kills, %.0f damage (%.0f per kill), %.1f min alive, "+
			"%d headshots (%.1f%%), knocks/revives/assists %d/%d/%d\n",
			i+1, t.Name, ts.Kills, ts.DamageDealt, perKill, ts.TimeSurvived/60,
			ts.HeadshotKills, hsRate, ts.DBNOs, ts.Revives, ts.Assists)
	}

	sb.WriteString(`
## What to analyse
1. Combat performance: kill pace, damage efficiency (200-300 per kill is typical), headshot accuracy, finishing knocked players, engagement style.
2. Teamwork: share of team kills, revives and assists, carry or support role.
3. Strategy: positioning that led to the placement, movement efficiency (foot vs vehicle), zone play for this map.
4. Resources: boosts, heals and weapon swaps.
5. Improvement plan: three things to change next game, a measurable 1-2 week goal, a longer-term direction.
6. Verdict: an S/A/B/C/D grade with reasons, top 3 strengths, top 3 priorities and a concrete goal for the next match.`)
	sb.WriteString(languageRule(language))

	return Prompt{System: SystemPrompt, User: sb.String()}
}

// BuildTrendPrompt renders the multi-match trend prompt.
func BuildTrendPrompt(player string, t TrendStats, language string) Prompt {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analyse the last %d matches of PUBG player %s.\n\n", t.TotalMatches, player)
	sb.WriteString("## Averages\n")
	fmt.Fprintf(&sb, "- Kills: %.1f\n", t.AvgKills)
	fmt.Fprintf(&sb, "- Damage: %.0f\n", t.AvgDamage)
	fmt.Fprintf(&sb, "- Placement: #%.1f\n", t.AvgRank)
	fmt.Fprintf(&sb, "- Knocks: %.1f\n", t.AvgDBNOs)
	fmt.Fprintf(&sb, "- Revives: %.1f\n", t.AvgRevives)
	fmt.Fprintf(&sb, "- Assists: %.1f\n", t.AvgAssists)
	fmt.Fprintf(&sb, "- Headshot kills: %.1f\n", t.AvgHeadshots)

	fmt.Fprintf(&sb, "\n## Last %d matches, oldest first\n", len(t.KillTrend))
	fmt.Fprintf(&sb, "- Kills: %v\n", t.KillTrend)
	fmt.Fprintf(&sb, "- Placement: %v\n", t.RankTrend)
	fmt.Fprintf(&sb, "- Knocks: %v\n", t.DBNOTrend)
	fmt.Fprintf(&sb, "- Revives: %v\n", t.ReviveTrend)

	sb.WriteString(`
## What to analyse
1. Trend: is performance improving or declining, how kills relate to placement, knock vs kill efficiency, consistency.
2. Teamwork: revive pattern, assists, individual vs team contribution.
3. Strengths and weaknesses of the current play style.
4. Improvement strategy: 1-2 week goals, 1-2 month direction, concrete actions.
5. Recommended play style, modes and patterns to avoid.
6. Realistic numeric targets for the next 10 matches.`)
	sb.WriteString(languageRule(language))

	return Prompt{System: SystemPrompt, User: sb.String()}
}
