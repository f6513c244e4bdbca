package pubg

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func check(resource string, v any) error {
	if err := validatorInstance().Struct(v); err != nil {
		return shapeErr(resource, err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num / den)
}

func shapePlayer(r playerResource, platform string) (Player, error) {
	if r.Type != "" && r.Type != "player" {
		return Player{}, shapeErr("player", fmt.Errorf("unexpected resource type %q", r.Type))
	}

	p := Player{
		ID:       r.ID,
		Name:     r.Attributes.Name,
		Platform: platform,
		TitleID:  r.Attributes.TitleID,
		BanType:  r.Attributes.BanType,
		ClanID:   r.Attributes.ClanID,
		MatchIDs: make([]string, 0, len(r.Relationships.Matches.Data)),
	}
	for _, ref := range r.Relationships.Matches.Data {
		p.MatchIDs = append(p.MatchIDs, ref.ID)
	}

	if err := check("player", p); err != nil {
		return Player{}, err
	}
	return p, nil
}

// ShapePlayers converts a players search payload.
func ShapePlayers(body []byte, platform string) ([]Player, error) {
	var resp playersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shapeErr("players", err)
	}

	players := make([]Player, 0, len(resp.Data))
	for _, r := range resp.Data {
		p, err := shapePlayer(r, platform)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// ShapePlayer converts a single player payload.
func ShapePlayer(body []byte, platform string) (*Player, error) {
	var resp playerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shapeErr("player", err)
	}
	p, err := shapePlayer(resp.Data, platform)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func shapeModeStats(mode string, s gameModeStatsResource) ModeStats {
	m := ModeStats{
		Mode:            mode,
		RoundsPlayed:    s.RoundsPlayed,
		Wins:            s.Wins,
		Top10s:          s.Top10s,
		Losses:          s.Losses,
		Kills:           s.Kills,
		Assists:         s.Assists,
		DBNOs:           s.DBNOs,
		HeadshotKills:   s.HeadshotKills,
		Revives:         s.Revives,
		TeamKills:       s.TeamKills,
		Heals:           s.Heals,
		Boosts:          s.Boosts,
		WeaponsAcquired: s.WeaponsAcquired,
		DamageDealt:     s.DamageDealt,
		LongestKill:     s.LongestKill,
		TimeSurvived:    s.TimeSurvived,
		WalkDistance:    s.WalkDistance,
		RideDistance:    s.RideDistance,
	}
	m.derive()
	return m
}

func (m *ModeStats) derive() {
	m.KDRatio = ratio(float64(m.Kills), math.Max(float64(m.Losses), 1))
	m.WinRatio = ratio(float64(m.Wins), float64(m.RoundsPlayed))
	m.Top10Ratio = ratio(float64(m.Top10s), float64(m.RoundsPlayed))
	m.AvgDamage = ratio(m.DamageDealt, float64(m.RoundsPlayed))
	m.HeadshotRate = ratio(float64(m.HeadshotKills), float64(m.Kills))
}

func (m *ModeStats) add(o ModeStats) {
	m.RoundsPlayed += o.RoundsPlayed
	m.Wins += o.Wins
	m.Top10s += o.Top10s
	m.Losses += o.Losses
	m.Kills += o.Kills
	m.Assists += o.Assists
	m.DBNOs += o.DBNOs
	m.HeadshotKills += o.HeadshotKills
	m.Revives += o.Revives
	m.TeamKills += o.TeamKills
	m.Heals += o.Heals
	m.Boosts += o.Boosts
	m.WeaponsAcquired += o.WeaponsAcquired
	m.DamageDealt += o.DamageDealt
	m.LongestKill = math.Max(m.LongestKill, o.LongestKill)
	m.TimeSurvived += o.TimeSurvived
	m.WalkDistance += o.WalkDistance
	m.RideDistance += o.RideDistance
}

// ShapeLifetimeStats converts a lifetime season payload. Modes without any
// played rounds are dropped; the rest are sorted by mode name.
func ShapeLifetimeStats(body []byte, platform, accountID string) (*LifetimeStats, error) {
	var resp lifetimeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shapeErr("lifetime stats", err)
	}
	if resp.Data.Attributes.GameModeStats == nil {
		return nil, shapeErr("lifetime stats", fmt.Errorf("missing gameModeStats"))
	}

	playerID := resp.Data.Relationships.Player.Data.ID
	if playerID == "" {
		playerID = accountID
	}
	stats := &LifetimeStats{
		PlayerID: playerID,
		Platform: platform,
		Total:    ModeStats{Mode: "all"},
		Modes:    []ModeStats{},
	}
	for mode, raw := range resp.Data.Attributes.GameModeStats {
		if raw.RoundsPlayed == 0 {
			continue
		}
		m := shapeModeStats(mode, raw)
		stats.Modes = append(stats.Modes, m)
		stats.Total.add(m)
	}
	sort.Slice(stats.Modes, func(i, j int) bool { return stats.Modes[i].Mode < stats.Modes[j].Mode })
	stats.Total.derive()

	if err := check("lifetime stats", stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ShapeMatch converts a match payload with its included participants and
// rosters. Participants are ordered by rank, then name.
func ShapeMatch(body []byte, platform string) (*Match, error) {
	var resp matchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shapeErr("match", err)
	}

	attrs := resp.Data.Attributes
	createdAt, err := time.Parse(time.RFC3339, attrs.CreatedAt)
	if err != nil {
		return nil, shapeErr("match", fmt.Errorf("createdAt: %w", err))
	}

	if platform == "" {
		platform = attrs.ShardID
	}
	m := &Match{
		ID:           resp.Data.ID,
		Platform:     platform,
		MapName:      attrs.MapName,
		GameMode:     attrs.GameMode,
		MatchType:    attrs.MatchType,
		CreatedAt:    createdAt.UTC(),
		Duration:     attrs.Duration,
		IsCustom:     attrs.IsCustomMatch,
		Participants: []Participant{},
	}

	type rosterInfo struct {
		id     string
		teamID int
		rank   int
		won    bool
	}
	rosterOf := make(map[string]rosterInfo)
	var participants []includedResource

	for _, inc := range resp.Included {
		switch inc.Type {
		case "participant":
			participants = append(participants, inc)
		case "roster":
			var ra rosterAttributes
			if err := json.Unmarshal(inc.Attributes, &ra); err != nil {
				return nil, shapeErr("roster", err)
			}
			var rr rosterRelationships
			if len(inc.Relationships) > 0 {
				if err := json.Unmarshal(inc.Relationships, &rr); err != nil {
					return nil, shapeErr("roster", err)
				}
			}
			info := rosterInfo{id: inc.ID, teamID: ra.Stats.TeamID, rank: ra.Stats.Rank, won: ra.Won == "true"}
			for _, ref := range rr.Participants.Data {
				rosterOf[ref.ID] = info
			}
		}
	}

	for _, inc := range participants {
		var pa participantAttributes
		if err := json.Unmarshal(inc.Attributes, &pa); err != nil {
			return nil, shapeErr("participant", err)
		}
		s := pa.Stats
		p := Participant{
			ID:       inc.ID,
			PlayerID: s.PlayerID,
			Name:     s.Name,
			Rank:     s.WinPlace,
			Stats: ParticipantStats{
				Kills:           s.Kills,
				Assists:         s.Assists,
				DBNOs:           s.DBNOs,
				HeadshotKills:   s.HeadshotKills,
				Heals:           s.Heals,
				Boosts:          s.Boosts,
				Revives:         s.Revives,
				TeamKills:       s.TeamKills,
				RoadKills:       s.RoadKills,
				KillPlace:       s.KillPlace,
				KillStreaks:     s.KillStreaks,
				WinPlace:        s.WinPlace,
				WeaponsAcquired: s.WeaponsAcquired,
				VehicleDestroys: s.VehicleDestroys,
				DamageDealt:     s.DamageDealt,
				LongestKill:     s.LongestKill,
				TimeSurvived:    s.TimeSurvived,
				WalkDistance:    s.WalkDistance,
				RideDistance:    s.RideDistance,
				SwimDistance:    s.SwimDistance,
				DeathType:       s.DeathType,
			},
		}
		if r, ok := rosterOf[inc.ID]; ok {
			p.RosterID = r.id
			p.TeamID = r.teamID
			p.Won = r.won
			if r.rank > 0 {
				p.Rank = r.rank
			}
		}
		m.Participants = append(m.Participants, p)
	}

	sort.SliceStable(m.Participants, func(i, j int) bool {
		a, b := m.Participants[i], m.Participants[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.Name < b.Name
	})

	if err := check("match", m); err != nil {
		return nil, err
	}
	return m, nil
}
