package ai

import (
	"math"
	"strings"
	"testing"

	"github.com/pubglens/internal/services/pubg"
)

func sampleInput() MatchInput {
	return MatchInput{
		MatchID:  "m-1",
		MapName:  "Baltic_Main",
		GameMode: "squad-fpp",
		Player: pubg.Participant{
			ID:   "p-1",
			Name: "Alpha",
			Rank: 2,
			Stats: pubg.ParticipantStats{
				Kills:         4,
				DBNOs:         5,
				HeadshotKills: 1,
				DamageDealt:   520,
				TimeSurvived:  1500,
				WalkDistance:  2300,
				RideDistance:  4100,
			},
		},
		Teammates: []pubg.Participant{
			{ID: "p-2", Name: "Bravo", Stats: pubg.ParticipantStats{Kills: 4, DamageDealt: 300, TimeSurvived: 1200}},
		},
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeMetrics(t *testing.T) {
	t.Parallel()

	m := ComputeMetrics(sampleInput())

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"survival minutes", m.SurvivalMinutes, 25},
		{"kills per minute", m.KillsPerMinute, 0.16},
		{"damage per kill", m.DamagePerKill, 130},
		{"headshot rate", m.HeadshotRate, 25},
		{"kill contribution", m.KillContribution, 50},
		{"knock conversion", m.KnockConversion, 80},
		{"walk km", m.WalkKm, 2.3},
		{"ride km", m.RideKm, 4.1},
		{"total km", m.TotalKm(), 6.4},
	}
	for _, c := range checks {
		if !near(c.got, c.want) {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestComputeMetricsNoKills(t *testing.T) {
	t.Parallel()

	in := MatchInput{Player: pubg.Participant{Stats: pubg.ParticipantStats{DamageDealt: 87, TimeSurvived: 30}}}
	m := ComputeMetrics(in)

	if m.DamagePerKill != 87 {
		t.Errorf("Expected damage per kill to fall back to damage, got %v", m.DamagePerKill)
	}
	if m.HeadshotRate != 0 || m.KillContribution != 0 || m.KnockConversion != 0 || m.KillsPerMinute != 0 {
		t.Errorf("Expected zero ratios, got %+v", m)
	}
}

func TestBuildMatchPrompt(t *testing.T) {
	t.Parallel()

	p := BuildMatchPrompt(sampleInput(), "Vietnamese")

	if p.System != SystemPrompt {
		t.Error("Expected coaching system prompt")
	}
	for _, want := range []string{
		"Mode: Squad FPP",
		"Map: Erangel",
		"Final placement: #2",
		"Kills: 4 (50.0% of team kills)",
		"Damage: 520 (130 per kill)",
		"knock to kill conversion 80.0%",
		"2.3 km on foot + 4.1 km by vehicle (6.4 km total)",
		"1. Bravo: 4 kills",
		"Write the whole answer in Vietnamese.",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestBuildMatchPromptSolo(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.Teammates = nil
	p := BuildMatchPrompt(in, "")

	if !strings.Contains(p.User, "Solo play, no teammate data.") {
		t.Error("Expected solo marker in prompt")
	}
	if !strings.HasSuffix(p.User, "Write the whole answer in English.") {
		t.Error("Expected English as the default language")
	}
}

func TestBuildTrendPrompt(t *testing.T) {
	t.Parallel()

	stats := TrendStats{
		TotalMatches: 3,
		AvgKills:     2.5,
		AvgRank:      12,
		KillTrend:    []int{1, 2, 5},
		RankTrend:    []int{20, 10, 6},
		DBNOTrend:    []int{0, 1, 2},
		ReviveTrend:  []int{0, 0, 1},
	}
	p := BuildTrendPrompt("Alpha", stats, "English")

	for _, want := range []string{
		"last 3 matches of PUBG player Alpha",
		"- Kills: 2.5",
		"- Placement: #12.0",
		"## Last 3 matches, oldest first",
		"- Kills: [1 2 5]",
		"- Placement: [20 10 6]",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}
