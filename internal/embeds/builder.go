// Package embeds provides Discord embed builders for shared analyses.
package embeds

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/pubglens/internal/data"
	"github.com/pubglens/internal/services/ai"
)

// ColorInfo is used for trend analyses and unranked matches.
const ColorInfo = 0x3498DB

// Discord rejects embeds above these sizes.
const (
	maxDescription = 4096
	maxFieldValue  = 1024
)

// Footer is shown under every shared analysis.
var Footer = "pubglens"

// Context is the optional match line shown above a match analysis.
type Context struct {
	MapName  string
	GameMode string
	Rank     int
}

// Analysis creates the embed posted when an analysis is shared.
func Analysis(res *ai.AnalysisResult, mc *Context) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: truncate(res.Text, maxDescription),
		Color:       ColorInfo,
		Timestamp:   res.CreatedAt.Format(time.RFC3339),
		Fields:      make([]*discordgo.MessageEmbedField, 0, 4),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%s | %s", Footer, res.ID),
		},
	}

	switch res.Kind {
	case ai.KindTrend:
		embed.Title = fmt.Sprintf("📈 Trend analysis: %s", res.Player)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Matches",
			Value:  strconv.Itoa(res.Matches),
			Inline: true,
		})
	default:
		embed.Title = fmt.Sprintf("📊 Match analysis: %s", res.Player)
		if mc != nil {
			embed.Color = rankColor(mc.Rank)
			embed.Fields = append(embed.Fields,
				&discordgo.MessageEmbedField{Name: "Map", Value: data.MapName(mc.MapName), Inline: true},
				&discordgo.MessageEmbedField{Name: "Mode", Value: data.GameModeName(mc.GameMode), Inline: true},
				&discordgo.MessageEmbedField{Name: "Placement", Value: fmt.Sprintf("#%d", mc.Rank), Inline: true},
			)
		}
		if res.MatchID != "" {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "Match ID",
				Value: truncate(res.MatchID, maxFieldValue),
			})
		}
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Model",
		Value:  fmt.Sprintf("%s (%s)", res.Provider, res.Model),
		Inline: true,
	})

	return embed
}

// rankColor turns the page highlight colour of a placement into an embed colour.
func rankColor(rank int) int {
	hex := strings.TrimPrefix(data.RankColor(rank), "#")
	c, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return ColorInfo
	}
	return int(c)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
