package ai

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pubglens/internal/services/pubg"
)

// Prompt is what every provider receives.
type Prompt struct {
	System string
	User   string
}

// Provider is one generative-text backend of the fallback chain.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Attempt records one provider call made while serving a request.
type Attempt struct {
	Provider   string `json:"provider"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Generation is the successful outcome of a chain run.
type Generation struct {
	Provider string
	Model    string
	Text     string
	Attempts []Attempt
}

// Analysis kinds.
const (
	KindMatch = "match"
	KindTrend = "trend"
)

// AnalysisResult is the text produced by whichever provider succeeded,
// tagged with that provider. It lives for one request only.
type AnalysisResult struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Player    string    `json:"player"`
	MatchID   string    `json:"match_id,omitempty"`
	Matches   int       `json:"matches,omitempty"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Attempts  []Attempt `json:"attempts"`
}

// MatchInput is everything a single match analysis needs.
type MatchInput struct {
	MatchID   string
	MapName   string
	GameMode  string
	CreatedAt time.Time
	Player    pubg.Participant
	Teammates []pubg.Participant
}

// TrendInput carries a player's recent match summaries, in any order.
type TrendInput struct {
	PlayerID   string
	PlayerName string
	Matches    []pubg.MatchSummary
}
