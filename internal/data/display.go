// Package data provides display names and colours for PUBG identifiers.
package data

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

var (
	//go:embed maps.json
	mapsJSON []byte
	//go:embed gamemodes.json
	gameModesJSON []byte

	mapNames     map[string]string
	mapNamesOnce sync.Once

	gameModes     map[string]string
	gameModesOnce sync.Once
)

func loadTable(raw []byte) map[string]string {
	table := make(map[string]string)
	if err := json.Unmarshal(raw, &table); err != nil {
		// Embedded at build time; a decode failure is a programming error.
		panic("data: invalid embedded table: " + err.Error())
	}
	return table
}

// MapName returns the display name of a map, e.g. "Baltic_Main" -> "Erangel".
// Unknown maps are returned with the "_Main" suffix stripped.
func MapName(id string) string {
	mapNamesOnce.Do(func() { mapNames = loadTable(mapsJSON) })
	if name, ok := mapNames[id]; ok {
		return name
	}
	return strings.TrimSuffix(id, "_Main")
}

// GameModeName returns the display name of a game mode, e.g. "squad-fpp" ->
// "Squad FPP". Unknown modes are returned unchanged.
func GameModeName(mode string) string {
	gameModesOnce.Do(func() { gameModes = loadTable(gameModesJSON) })
	if name, ok := gameModes[strings.ToLower(mode)]; ok {
		return name
	}
	return mode
}

// Rank colours.
const (
	ColorGold   = "#FFD700"
	ColorSilver = "#C0C0C0"
	ColorBronze = "#CD7F32"
	ColorPlain  = "#666666"
)

// RankColor returns the colour used to highlight a finishing position.
func RankColor(rank int) string {
	switch {
	case rank == 1:
		return ColorGold
	case rank >= 2 && rank <= 3:
		return ColorSilver
	case rank >= 4 && rank <= 10:
		return ColorBronze
	default:
		return ColorPlain
	}
}
