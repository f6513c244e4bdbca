// Package notify shares finished analyses to a Discord channel webhook.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/pubglens/internal/config"
	"github.com/pubglens/internal/embeds"
	"github.com/pubglens/internal/logging"
	"github.com/pubglens/internal/services/ai"
)

// ErrDisabled is returned by Share when no webhook is configured.
var ErrDisabled = errors.New("discord sharing is disabled")

type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts analysis embeds through a webhook.
type Discord struct {
	session  webhookExecutor
	id       string
	token    string
	username string
}

// NewDiscord creates a notifier from the webhook URL. An empty URL gives a
// disabled notifier.
func NewDiscord(cfg config.DiscordConfig) (*Discord, error) {
	d := &Discord{username: cfg.Username}
	if cfg.WebhookURL == "" {
		return d, nil
	}

	id, token, err := ParseWebhookURL(cfg.WebhookURL)
	if err != nil {
		return nil, err
	}

	// Webhook execution needs no bot token.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	d.session = session
	d.id = id
	d.token = token
	return d, nil
}

// ParseWebhookURL extracts the webhook id and token from
// https://discord.com/api/webhooks/{id}/{token}.
func ParseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid discord webhook url: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "webhooks" && i+2 < len(parts) {
			id, token = parts[i+1], parts[i+2]
			break
		}
	}
	if id == "" || token == "" {
		return "", "", fmt.Errorf("invalid discord webhook url: expected /api/webhooks/{id}/{token}")
	}
	return id, token, nil
}

// Enabled reports whether a webhook is configured.
func (d *Discord) Enabled() bool {
	return d != nil && d.session != nil
}

// Share posts res to the channel. mc adds the match line for match analyses
// and may be nil.
func (d *Discord) Share(ctx context.Context, res *ai.AnalysisResult, mc *embeds.Context) error {
	if !d.Enabled() {
		return ErrDisabled
	}

	params := &discordgo.WebhookParams{
		Username: d.username,
		Embeds:   []*discordgo.MessageEmbed{embeds.Analysis(res, mc)},
	}
	if _, err := d.session.WebhookExecute(d.id, d.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("execute discord webhook: %w", err)
	}

	logging.Ctx(ctx).Info().
		Str("analysis_id", res.ID.String()).
		Str("kind", res.Kind).
		Msg("analysis shared to discord")
	return nil
}
