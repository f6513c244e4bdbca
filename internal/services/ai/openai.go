package ai

import (
	"context"
	"net/http"
	"time"

	"github.com/pubglens/internal/config"
)

// ChatMessage represents a message in the chat completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the request to a chat completions API.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// ChatResponse represents the response from a chat completions API.
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// OpenAI calls an OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	apiKey      string
	apiURL      string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	httpClient  *http.Client
}

// NewOpenAI creates the last-resort hosted provider.
func NewOpenAI(cfg config.AIConfig, hc *http.Client) *OpenAI {
	return &OpenAI{
		apiKey:      cfg.OpenAI.APIKey,
		apiURL:      cfg.OpenAI.URL,
		model:       cfg.OpenAI.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.OpenAI.Timeout,
		httpClient:  hc,
	}
}

func (c *OpenAI) Name() string { return "openai" }
func (c *OpenAI) Model() string { return c.model }
func (c *OpenAI) Timeout() time.Duration { return c.timeout }

func (c *OpenAI) Generate(ctx context.Context, p Prompt) (string, error) {
	messages := make([]ChatMessage, 0, 2)
	if p.System != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: p.System})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: p.User})

	payload := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var chatResp ChatResponse
	if err := postJSON(ctx, c.httpClient, c.Name(), c.apiURL, headers, payload, &chatResp); err != nil {
		return "", err
	}

	if len(chatResp.Choices) == 0 || isEmpty(chatResp.Choices[0].Message.Content) {
		return "", emptyOutput(c.Name())
	}
	return chatResp.Choices[0].Message.Content, nil
}
