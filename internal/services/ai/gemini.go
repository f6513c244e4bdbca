package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pubglens/internal/config"
)

var errBlocked = errors.New("prompt blocked")

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Gemini calls the Google Generative Language REST API.
type Gemini struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	httpClient  *http.Client
}

// NewGemini creates the primary provider.
func NewGemini(cfg config.AIConfig, hc *http.Client) *Gemini {
	return &Gemini{
		apiKey:      cfg.Gemini.APIKey,
		baseURL:     strings.TrimRight(cfg.Gemini.BaseURL, "/"),
		model:       cfg.Gemini.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Gemini.Timeout,
		httpClient:  hc,
	}
}

func (g *Gemini) Name() string { return "gemini" }
func (g *Gemini) Model() string { return g.model }
func (g *Gemini) Timeout() time.Duration { return g.timeout }

func (g *Gemini) Generate(ctx context.Context, p Prompt) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: p.User}}}},
	}
	if p.System != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: p.System}}}
	}
	req.GenerationConfig.Temperature = g.temperature
	req.GenerationConfig.MaxOutputTokens = g.maxTokens

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	headers := map[string]string{"x-goog-api-key": g.apiKey}

	var resp geminiResponse
	if err := postJSON(ctx, g.httpClient, g.Name(), endpoint, headers, req, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		if reason := resp.PromptFeedback.BlockReason; reason != "" {
			return "", &ProviderError{Provider: g.Name(), Kind: FailureRejected, Err: fmt.Errorf("%w: %s", errBlocked, reason)}
		}
		return "", emptyOutput(g.Name())
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := sb.String()
	if isEmpty(text) {
		return "", emptyOutput(g.Name())
	}
	return text, nil
}
