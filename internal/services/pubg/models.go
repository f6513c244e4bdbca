package pubg

import (
	"strings"
	"time"
)

// Player is a PUBG account as returned by the players endpoint.
type Player struct {
	ID       string   `json:"id" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	Platform string   `json:"platform" validate:"required"`
	TitleID  string   `json:"title_id,omitempty"`
	BanType  string   `json:"ban_type,omitempty"`
	ClanID   string   `json:"clan_id,omitempty"`
	MatchIDs []string `json:"match_ids"`
}

// ModeStats holds lifetime counters for one game mode plus derived ratios.
type ModeStats struct {
	Mode            string  `json:"mode"`
	RoundsPlayed    int     `json:"rounds_played" validate:"gte=0"`
	Wins            int     `json:"wins" validate:"gte=0"`
	Top10s          int     `json:"top10s" validate:"gte=0"`
	Losses          int     `json:"losses" validate:"gte=0"`
	Kills           int     `json:"kills" validate:"gte=0"`
	Assists         int     `json:"assists" validate:"gte=0"`
	DBNOs           int     `json:"dbnos" validate:"gte=0"`
	HeadshotKills   int     `json:"headshot_kills" validate:"gte=0"`
	Revives         int     `json:"revives" validate:"gte=0"`
	TeamKills       int     `json:"team_kills"`
	Heals           int     `json:"heals"`
	Boosts          int     `json:"boosts"`
	WeaponsAcquired int     `json:"weapons_acquired"`
	DamageDealt     float64 `json:"damage_dealt" validate:"gte=0"`
	LongestKill     float64 `json:"longest_kill"`
	TimeSurvived    float64 `json:"time_survived"`
	WalkDistance    float64 `json:"walk_distance"`
	RideDistance    float64 `json:"ride_distance"`

	KDRatio      float64 `json:"kd_ratio"`
	WinRatio     float64 `json:"win_ratio"`
	Top10Ratio   float64 `json:"top10_ratio"`
	AvgDamage    float64 `json:"avg_damage"`
	HeadshotRate float64 `json:"headshot_rate"`
}

// LifetimeStats is a player's all-time summary across game modes.
type LifetimeStats struct {
	PlayerID string      `json:"player_id" validate:"required"`
	Platform string      `json:"platform"`
	Total    ModeStats   `json:"total"`
	Modes    []ModeStats `json:"modes" validate:"dive"`
}

// Mode returns the stats for one game mode.
func (s *LifetimeStats) Mode(mode string) (ModeStats, bool) {
	for _, m := range s.Modes {
		if m.Mode == mode {
			return m, true
		}
	}
	return ModeStats{}, false
}

// MatchRef points at a match without its details.
type MatchRef struct {
	ID string `json:"id"`
}

// Match is one finished game.
type Match struct {
	ID           string        `json:"id" validate:"required"`
	Platform     string        `json:"platform"`
	MapName      string        `json:"map_name" validate:"required"`
	GameMode     string        `json:"game_mode" validate:"required"`
	MatchType    string        `json:"match_type,omitempty"`
	CreatedAt    time.Time     `json:"created_at" validate:"required"`
	Duration     int           `json:"duration_seconds" validate:"gte=0"`
	IsCustom     bool          `json:"is_custom"`
	Participants []Participant `json:"participants" validate:"dive"`
}

// Participant is one player's line in a match.
type Participant struct {
	ID       string           `json:"id" validate:"required"`
	PlayerID string           `json:"player_id"`
	Name     string           `json:"name" validate:"required"`
	RosterID string           `json:"roster_id,omitempty"`
	TeamID   int              `json:"team_id"`
	Rank     int              `json:"rank"`
	Won      bool             `json:"won"`
	Stats    ParticipantStats `json:"stats"`
}

// ParticipantStats are the per-match counters of a participant.
type ParticipantStats struct {
	Kills           int     `json:"kills"`
	Assists         int     `json:"assists"`
	DBNOs           int     `json:"dbnos"`
	HeadshotKills   int     `json:"headshot_kills"`
	Heals           int     `json:"heals"`
	Boosts          int     `json:"boosts"`
	Revives         int     `json:"revives"`
	TeamKills       int     `json:"team_kills"`
	RoadKills       int     `json:"road_kills"`
	KillPlace       int     `json:"kill_place"`
	KillStreaks     int     `json:"kill_streaks"`
	WinPlace        int     `json:"win_place"`
	WeaponsAcquired int     `json:"weapons_acquired"`
	VehicleDestroys int     `json:"vehicle_destroys"`
	DamageDealt     float64 `json:"damage_dealt"`
	LongestKill     float64 `json:"longest_kill"`
	TimeSurvived    float64 `json:"time_survived"`
	WalkDistance    float64 `json:"walk_distance"`
	RideDistance    float64 `json:"ride_distance"`
	SwimDistance    float64 `json:"swim_distance"`
	DeathType       string  `json:"death_type,omitempty"`
}

// FindParticipant looks a player up by account id or by name, ignoring case.
func (m *Match) FindParticipant(player string) (*Participant, bool) {
	for i := range m.Participants {
		p := &m.Participants[i]
		if p.PlayerID == player || strings.EqualFold(p.Name, player) {
			return p, true
		}
	}
	return nil, false
}

// Teammates returns the other participants sharing p's roster.
func (m *Match) Teammates(p *Participant) []Participant {
	var mates []Participant
	if p.RosterID == "" {
		return mates
	}
	for _, other := range m.Participants {
		if other.RosterID == p.RosterID && other.ID != p.ID {
			mates = append(mates, other)
		}
	}
	return mates
}

// MatchSummary is one player's result in one match, as used by match lists
// and trend analysis.
type MatchSummary struct {
	MatchID      string    `json:"match_id"`
	MapName      string    `json:"map_name"`
	GameMode     string    `json:"game_mode"`
	CreatedAt    time.Time `json:"created_at"`
	Duration     int       `json:"duration_seconds"`
	Rank         int       `json:"rank"`
	Kills        int       `json:"kills"`
	Assists      int       `json:"assists"`
	DBNOs        int       `json:"dbnos"`
	Revives      int       `json:"revives"`
	Headshots    int       `json:"headshots"`
	Damage       float64   `json:"damage"`
	TimeSurvived float64   `json:"time_survived"`
}

// SummaryFor extracts the summary line of player (account id or name).
func (m *Match) SummaryFor(player string) (MatchSummary, bool) {
	p, ok := m.FindParticipant(player)
	if !ok {
		return MatchSummary{}, false
	}
	return MatchSummary{
		MatchID:      m.ID,
		MapName:      m.MapName,
		GameMode:     m.GameMode,
		CreatedAt:    m.CreatedAt,
		Duration:     m.Duration,
		Rank:         p.Rank,
		Kills:        p.Stats.Kills,
		Assists:      p.Stats.Assists,
		DBNOs:        p.Stats.DBNOs,
		Revives:      p.Stats.Revives,
		Headshots:    p.Stats.HeadshotKills,
		Damage:       p.Stats.DamageDealt,
		TimeSurvived: p.Stats.TimeSurvived,
	}, true
}
