package data

import "testing"

func TestMapName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Baltic_Main":  "Erangel",
		"Desert_Main":  "Miramar",
		"Tiger_Main":   "Taego",
		"Neon_Main":    "Rondo",
		"Mystery_Main": "Mystery",
		"":             "",
	}
	for in, want := range tests {
		if got := MapName(in); got != want {
			t.Errorf("MapName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGameModeName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"squad-fpp":      "Squad FPP",
		"SOLO":           "Solo",
		"ranked-squad":   "Ranked Squad",
		"normal-duo-fpp": "Duo FPP (Casual)",
		"zombie-squad":   "zombie-squad",
	}
	for in, want := range tests {
		if got := GameModeName(in); got != want {
			t.Errorf("GameModeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRankColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rank int
		want string
	}{
		{1, ColorGold},
		{2, ColorSilver},
		{3, ColorSilver},
		{4, ColorBronze},
		{10, ColorBronze},
		{11, ColorPlain},
		{0, ColorPlain},
	}
	for _, tt := range tests {
		if got := RankColor(tt.rank); got != tt.want {
			t.Errorf("RankColor(%d) = %s, want %s", tt.rank, got, tt.want)
		}
	}
}
