package pubg

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return b
}

func TestShapePlayers(t *testing.T) {
	t.Parallel()

	got, err := ShapePlayers(fixture(t, "players.json"), "steam")
	if err != nil {
		t.Fatalf("ShapePlayers() error = %v", err)
	}

	want := []Player{
		{
			ID:       "account.a",
			Name:     "Alpha",
			Platform: "steam",
			TitleID:  "pubg",
			BanType:  "Innocent",
			ClanID:   "clan.x",
			MatchIDs: []string{"m-1", "m-0"},
		},
		{
			ID:       "account.b",
			Name:     "Bravo",
			Platform: "steam",
			TitleID:  "pubg",
			BanType:  "Innocent",
			MatchIDs: []string{},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ShapePlayers() mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestShapeLifetimeStats(t *testing.T) {
	t.Parallel()

	got, err := ShapeLifetimeStats(fixture(t, "lifetime.json"), "steam", "account.other")
	if err != nil {
		t.Fatalf("ShapeLifetimeStats() error = %v", err)
	}

	want := &LifetimeStats{
		PlayerID: "account.a",
		Platform: "steam",
		Total: ModeStats{
			Mode: "all", RoundsPlayed: 25, Wins: 3, Top10s: 12, Losses: 19,
			Kills: 48, Assists: 10, DBNOs: 30, HeadshotKills: 10, Revives: 6,
			TeamKills: 1, Heals: 55, Boosts: 45, WeaponsAcquired: 120,
			DamageDealt: 6000, LongestKill: 300, TimeSurvived: 29000,
			WalkDistance: 38000, RideDistance: 21000,
			KDRatio: 2.53, WinRatio: 0.12, Top10Ratio: 0.48, AvgDamage: 240, HeadshotRate: 0.21,
		},
		Modes: []ModeStats{
			{
				Mode: "solo", RoundsPlayed: 5, Wins: 1, Top10s: 3, Losses: 4,
				Kills: 8, HeadshotKills: 2, Heals: 5, Boosts: 5, WeaponsAcquired: 20,
				DamageDealt: 1000, LongestKill: 300, TimeSurvived: 5000,
				WalkDistance: 8000, RideDistance: 1000,
				KDRatio: 2, WinRatio: 0.2, Top10Ratio: 0.6, AvgDamage: 200, HeadshotRate: 0.25,
			},
			{
				Mode: "squad-fpp", RoundsPlayed: 20, Wins: 2, Top10s: 9, Losses: 15,
				Kills: 40, Assists: 10, DBNOs: 30, HeadshotKills: 8, Revives: 6,
				TeamKills: 1, Heals: 50, Boosts: 40, WeaponsAcquired: 100,
				DamageDealt: 5000, LongestKill: 250.5, TimeSurvived: 24000,
				WalkDistance: 30000, RideDistance: 20000,
				KDRatio: 2.67, WinRatio: 0.1, Top10Ratio: 0.45, AvgDamage: 250, HeadshotRate: 0.2,
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ShapeLifetimeStats() mismatch\n got: %+v\nwant: %+v", got, want)
	}

	if m, ok := got.Mode("solo"); !ok || m.Kills != 8 {
		t.Errorf("Mode(solo) = %+v, %v", m, ok)
	}
	if _, ok := got.Mode("duo"); ok {
		t.Error("Expected duo with zero rounds to be dropped")
	}
}

func TestShapeLifetimeStatsWithoutPlayerRelationship(t *testing.T) {
	t.Parallel()

	body := []byte(`{"data":{"type":"playerSeason","attributes":{"gameModeStats":{"solo":{"roundsPlayed":2,"kills":3,"losses":2}}}}}`)
	got, err := ShapeLifetimeStats(body, "steam", "account.a")
	if err != nil {
		t.Fatalf("ShapeLifetimeStats() error = %v", err)
	}
	if got.PlayerID != "account.a" || got.Total.Kills != 3 {
		t.Errorf("Expected requested account id to fill in, got %+v", got)
	}
}

func TestShapeMatch(t *testing.T) {
	t.Parallel()

	got, err := ShapeMatch(fixture(t, "match.json"), "steam")
	if err != nil {
		t.Fatalf("ShapeMatch() error = %v", err)
	}

	wantCreated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if !got.CreatedAt.Equal(wantCreated) {
		t.Errorf("Expected createdAt %v, got %v", wantCreated, got.CreatedAt)
	}
	got.CreatedAt = wantCreated

	want := &Match{
		ID:        "m-1",
		Platform:  "steam",
		MapName:   "Baltic_Main",
		GameMode:  "squad-fpp",
		MatchType: "official",
		CreatedAt: wantCreated,
		Duration:  1800,
		Participants: []Participant{
			{
				ID: "p-3", PlayerID: "account.c", Name: "Charlie", RosterID: "r-2",
				TeamID: 3, Rank: 1, Won: true,
				Stats: ParticipantStats{
					Kills: 5, DBNOs: 5, HeadshotKills: 2, Heals: 3, Boosts: 6,
					RoadKills: 1, KillPlace: 1, KillStreaks: 2, WinPlace: 1,
					WeaponsAcquired: 9, VehicleDestroys: 1, DamageDealt: 600,
					LongestKill: 210, TimeSurvived: 1800, WalkDistance: 1800,
					RideDistance: 3000, DeathType: "alive",
				},
			},
			{
				ID: "p-1", PlayerID: "account.a", Name: "Alpha", RosterID: "r-1",
				TeamID: 7, Rank: 2,
				Stats: ParticipantStats{
					Kills: 3, Assists: 1, DBNOs: 4, HeadshotKills: 1, Heals: 2,
					Boosts: 3, Revives: 1, KillPlace: 5, KillStreaks: 1, WinPlace: 2,
					WeaponsAcquired: 6, DamageDealt: 412.5, LongestKill: 120.5,
					TimeSurvived: 1500, WalkDistance: 2500, RideDistance: 1000,
					DeathType: "byplayer",
				},
			},
			{
				ID: "p-2", PlayerID: "account.b", Name: "Bravo", RosterID: "r-1",
				TeamID: 7, Rank: 2,
				Stats: ParticipantStats{
					Kills: 1, Assists: 2, DBNOs: 1, Heals: 4, Boosts: 1,
					KillPlace: 20, WinPlace: 2, WeaponsAcquired: 5, DamageDealt: 150,
					LongestKill: 30, TimeSurvived: 1400, WalkDistance: 2000,
					SwimDistance: 12.5, DeathType: "byplayer",
				},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ShapeMatch() mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestMatchHelpers(t *testing.T) {
	t.Parallel()

	m, err := ShapeMatch(fixture(t, "match.json"), "steam")
	if err != nil {
		t.Fatalf("ShapeMatch() error = %v", err)
	}

	p, ok := m.FindParticipant("alpha")
	if !ok || p.ID != "p-1" {
		t.Fatalf("FindParticipant by name = %+v, %v", p, ok)
	}
	if byID, ok := m.FindParticipant("account.a"); !ok || byID.ID != "p-1" {
		t.Errorf("FindParticipant by account id = %+v, %v", byID, ok)
	}
	if _, ok := m.FindParticipant("nobody"); ok {
		t.Error("Expected unknown player to be absent")
	}

	mates := m.Teammates(p)
	if len(mates) != 1 || mates[0].Name != "Bravo" {
		t.Errorf("Expected Bravo as only teammate, got %+v", mates)
	}

	s, ok := m.SummaryFor("account.a")
	if !ok {
		t.Fatal("SummaryFor() missing player")
	}
	if s.Rank != 2 || s.Kills != 3 || s.Damage != 412.5 || s.MapName != "Baltic_Main" {
		t.Errorf("Unexpected summary %+v", s)
	}
}

func TestShapeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		shape func() error
	}{
		{
			name: "not json",
			shape: func() error {
				_, err := ShapeMatch([]byte("<html>"), "steam")
				return err
			},
		},
		{
			name: "bad createdAt",
			shape: func() error {
				_, err := ShapeMatch([]byte(`{"data":{"id":"m","attributes":{"createdAt":"yesterday","mapName":"Erangel_Main","gameMode":"solo"}}}`), "steam")
				return err
			},
		},
		{
			name: "match without map",
			shape: func() error {
				_, err := ShapeMatch([]byte(`{"data":{"id":"m","attributes":{"createdAt":"2024-05-01T12:00:00Z","gameMode":"solo"}}}`), "steam")
				return err
			},
		},
		{
			name: "player without name",
			shape: func() error {
				_, err := ShapePlayer([]byte(`{"data":{"type":"player","id":"account.x","attributes":{}}}`), "steam")
				return err
			},
		},
		{
			name: "wrong resource type",
			shape: func() error {
				_, err := ShapePlayer([]byte(`{"data":{"type":"match","id":"m","attributes":{"name":"x"}}}`), "steam")
				return err
			},
		},
		{
			name: "lifetime without modes",
			shape: func() error {
				_, err := ShapeLifetimeStats([]byte(`{"data":{"attributes":{}}}`), "steam", "account.a")
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.shape()
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected ErrValidation, got %v", err)
			}
			var se *ShapeError
			if !errors.As(err, &se) {
				t.Errorf("Expected *ShapeError, got %T", err)
			}
		})
	}
}
