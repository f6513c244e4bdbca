package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pubglens/internal/logging"
	"github.com/pubglens/internal/metrics"
	"github.com/pubglens/internal/services/pubg"
)

// ErrNoMatches is returned for a trend analysis without any match data.
var ErrNoMatches = fmt.Errorf("%w: no matches to analyse", pubg.ErrNotFound)

// Generator is the capability the analyzer needs from a Chain.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (*Generation, error)
}

// Analyzer produces match and trend analyses.
type Analyzer struct {
	gen      Generator
	language string
	now      func() time.Time
}

// NewAnalyzer creates an analyzer writing in the given language.
func NewAnalyzer(gen Generator, language string) *Analyzer {
	return &Analyzer{gen: gen, language: language, now: time.Now}
}

// NewMatchInput picks player (account id or name) out of m together with
// the members of their roster.
func NewMatchInput(m *pubg.Match, player string) (MatchInput, error) {
	p, ok := m.FindParticipant(player)
	if !ok {
		return MatchInput{}, fmt.Errorf("%w: player %q is not in match %s", pubg.ErrNotFound, player, m.ID)
	}
	return MatchInput{
		MatchID:   m.ID,
		MapName:   m.MapName,
		GameMode:  m.GameMode,
		CreatedAt: m.CreatedAt,
		Player:    *p,
		Teammates: m.Teammates(p),
	}, nil
}

// AnalyzeMatch asks the provider chain for a coaching report on one match.
func (a *Analyzer) AnalyzeMatch(ctx context.Context, in MatchInput) (*AnalysisResult, error) {
	prompt := BuildMatchPrompt(in, a.language)

	res, err := a.run(ctx, KindMatch, prompt)
	if err != nil {
		return nil, err
	}
	res.Player = in.Player.Name
	res.MatchID = in.MatchID
	return res, nil
}

// AnalyzeTrend asks the provider chain for a report over recent matches.
func (a *Analyzer) AnalyzeTrend(ctx context.Context, in TrendInput) (*AnalysisResult, error) {
	if len(in.Matches) == 0 {
		return nil, ErrNoMatches
	}

	name := in.PlayerName
	if name == "" {
		name = in.PlayerID
	}
	prompt := BuildTrendPrompt(name, Aggregate(in.Matches), a.language)

	res, err := a.run(ctx, KindTrend, prompt)
	if err != nil {
		return nil, err
	}
	res.Player = name
	res.Matches = len(in.Matches)
	return res, nil
}

func (a *Analyzer) run(ctx context.Context, kind string, prompt Prompt) (*AnalysisResult, error) {
	gen, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		metrics.RecordAnalysis(kind, false)
		var ce *ChainError
		if errors.As(err, &ce) {
			logging.Ctx(ctx).Error().
				Str("kind", kind).
				Int("attempts", len(ce.Attempts)).
				Msg("all AI providers failed")
		}
		return nil, err
	}
	metrics.RecordAnalysis(kind, true)

	return &AnalysisResult{
		ID:        uuid.New(),
		Kind:      kind,
		Provider:  gen.Provider,
		Model:     gen.Model,
		Text:      gen.Text,
		CreatedAt: a.now().UTC(),
		Attempts:  gen.Attempts,
	}, nil
}
