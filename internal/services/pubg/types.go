package pubg

import "github.com/goccy/go-json"

// Raw JSON:API payloads as returned by api.pubg.com.

type resourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type playerResource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes struct {
		Name         string `json:"name"`
		ShardID      string `json:"shardId"`
		TitleID      string `json:"titleId"`
		PatchVersion string `json:"patchVersion"`
		BanType      string `json:"banType"`
		ClanID       string `json:"clanId"`
	} `json:"attributes"`
	Relationships struct {
		Matches struct {
			Data []resourceRef `json:"data"`
		} `json:"matches"`
	} `json:"relationships"`
}

type playersResponse struct {
	Data []playerResource `json:"data"`
}

type playerResponse struct {
	Data playerResource `json:"data"`
}

type gameModeStatsResource struct {
	Assists         int     `json:"assists"`
	Boosts          int     `json:"boosts"`
	DBNOs           int     `json:"dBNOs"`
	DamageDealt     float64 `json:"damageDealt"`
	HeadshotKills   int     `json:"headshotKills"`
	Heals           int     `json:"heals"`
	Kills           int     `json:"kills"`
	LongestKill     float64 `json:"longestKill"`
	Losses          int     `json:"losses"`
	MaxKillStreaks  int     `json:"maxKillStreaks"`
	Revives         int     `json:"revives"`
	RideDistance    float64 `json:"rideDistance"`
	RoadKills       int     `json:"roadKills"`
	RoundMostKills  int     `json:"roundMostKills"`
	RoundsPlayed    int     `json:"roundsPlayed"`
	Suicides        int     `json:"suicides"`
	SwimDistance    float64 `json:"swimDistance"`
	TeamKills       int     `json:"teamKills"`
	TimeSurvived    float64 `json:"timeSurvived"`
	Top10s          int     `json:"top10s"`
	VehicleDestroys int     `json:"vehicleDestroys"`
	WalkDistance    float64 `json:"walkDistance"`
	WeaponsAcquired int     `json:"weaponsAcquired"`
	Wins            int     `json:"wins"`
}

type lifetimeResponse struct {
	Data struct {
		Type       string `json:"type"`
		Attributes struct {
			GameModeStats map[string]gameModeStatsResource `json:"gameModeStats"`
		} `json:"attributes"`
		Relationships struct {
			Player struct {
				Data resourceRef `json:"data"`
			} `json:"player"`
		} `json:"relationships"`
	} `json:"data"`
}

type matchResponse struct {
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			CreatedAt     string `json:"createdAt"`
			Duration      int    `json:"duration"`
			GameMode      string `json:"gameMode"`
			MapName       string `json:"mapName"`
			MatchType     string `json:"matchType"`
			IsCustomMatch bool   `json:"isCustomMatch"`
			ShardID       string `json:"shardId"`
			SeasonState   string `json:"seasonState"`
		} `json:"attributes"`
	} `json:"data"`
	Included []includedResource `json:"included"`
}

// includedResource is decoded in two steps because participants, rosters
// and assets share the array but not the attribute shape.
type includedResource struct {
	Type          string          `json:"type"`
	ID            string          `json:"id"`
	Attributes    json.RawMessage `json:"attributes"`
	Relationships json.RawMessage `json:"relationships"`
}

type participantAttributes struct {
	Actor   string `json:"actor"`
	ShardID string `json:"shardId"`
	Stats   struct {
		DBNOs           int     `json:"DBNOs"`
		Assists         int     `json:"assists"`
		Boosts          int     `json:"boosts"`
		DamageDealt     float64 `json:"damageDealt"`
		DeathType       string  `json:"deathType"`
		HeadshotKills   int     `json:"headshotKills"`
		Heals           int     `json:"heals"`
		KillPlace       int     `json:"killPlace"`
		KillStreaks     int     `json:"killStreaks"`
		Kills           int     `json:"kills"`
		LongestKill     float64 `json:"longestKill"`
		Name            string  `json:"name"`
		PlayerID        string  `json:"playerId"`
		Revives         int     `json:"revives"`
		RideDistance    float64 `json:"rideDistance"`
		RoadKills       int     `json:"roadKills"`
		SwimDistance    float64 `json:"swimDistance"`
		TeamKills       int     `json:"teamKills"`
		TimeSurvived    float64 `json:"timeSurvived"`
		VehicleDestroys int     `json:"vehicleDestroys"`
		WalkDistance    float64 `json:"walkDistance"`
		WeaponsAcquired int     `json:"weaponsAcquired"`
		WinPlace        int     `json:"winPlace"`
	} `json:"stats"`
}

type rosterAttributes struct {
	Won   string `json:"won"`
	Stats struct {
		Rank   int `json:"rank"`
		TeamID int `json:"teamId"`
	} `json:"stats"`
}

type rosterRelationships struct {
	Participants struct {
		Data []resourceRef `json:"data"`
	} `json:"participants"`
}
