package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/pubglens/internal/config"
	"github.com/pubglens/internal/embeds"
	"github.com/pubglens/internal/services/ai"
)

type fakeWebhook struct {
	id, token string
	params    *discordgo.WebhookParams
	err       error
}

func (f *fakeWebhook) WebhookExecute(id, token string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.id, f.token, f.params = id, token, data
	return nil, f.err
}

func TestParseWebhookURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		url       string
		wantID    string
		wantToken string
		wantErr   bool
	}{
		{name: "discord", url: "https://discord.com/api/webhooks/123/abc-def", wantID: "123", wantToken: "abc-def"},
		{name: "versioned", url: "https://discordapp.com/api/v10/webhooks/9/tok/", wantID: "9", wantToken: "tok"},
		{name: "missing token", url: "https://discord.com/api/webhooks/123", wantErr: true},
		{name: "not a webhook", url: "https://example.com/hook", wantErr: true},
		{name: "garbage", url: "://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, token, err := ParseWebhookURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q", tt.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseWebhookURL() error = %v", err)
			}
			if id != tt.wantID || token != tt.wantToken {
				t.Errorf("Expected %s/%s, got %s/%s", tt.wantID, tt.wantToken, id, token)
			}
		})
	}
}

func TestNewDiscord(t *testing.T) {
	t.Parallel()

	d, err := NewDiscord(config.DiscordConfig{})
	if err != nil {
		t.Fatalf("NewDiscord() error = %v", err)
	}
	if d.Enabled() {
		t.Error("Expected notifier without webhook to be disabled")
	}

	d, err = NewDiscord(config.DiscordConfig{WebhookURL: "https://discord.com/api/webhooks/1/t"})
	if err != nil || !d.Enabled() {
		t.Errorf("Expected enabled notifier, got %v", err)
	}

	if _, err := NewDiscord(config.DiscordConfig{WebhookURL: "https://discord.com/nope"}); err == nil {
		t.Error("Expected error for a bad webhook url")
	}
}

func TestShare(t *testing.T) {
	t.Parallel()

	fake := &fakeWebhook{}
	d := &Discord{session: fake, id: "123", token: "tok", username: "pubglens"}
	res := &ai.AnalysisResult{
		ID:        uuid.New(),
		Kind:      ai.KindMatch,
		Player:    "Alpha",
		Provider:  "gemini",
		Model:     "gemini-1.5-flash",
		Text:      "Grade A",
		CreatedAt: time.Now(),
	}

	if err := d.Share(context.Background(), res, &embeds.Context{MapName: "Desert_Main", GameMode: "solo", Rank: 3}); err != nil {
		t.Fatalf("Share() error = %v", err)
	}
	if fake.id != "123" || fake.token != "tok" {
		t.Errorf("Unexpected webhook %s/%s", fake.id, fake.token)
	}
	if fake.params.Username != "pubglens" || len(fake.params.Embeds) != 1 {
		t.Fatalf("Unexpected params %+v", fake.params)
	}
	if fake.params.Embeds[0].Description != "Grade A" {
		t.Errorf("Expected analysis text in embed, got %q", fake.params.Embeds[0].Description)
	}
}

func TestShareErrors(t *testing.T) {
	t.Parallel()

	res := &ai.AnalysisResult{ID: uuid.New(), Kind: ai.KindTrend}

	var disabled *Discord
	if err := disabled.Share(context.Background(), res, nil); !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}

	upstream := errors.New("HTTP 404 Not Found")
	d := &Discord{session: &fakeWebhook{err: upstream}, id: "1", token: "t"}
	if err := d.Share(context.Background(), res, nil); !errors.Is(err, upstream) {
		t.Errorf("Expected wrapped webhook error, got %v", err)
	}
}
