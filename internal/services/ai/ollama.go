package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pubglens/internal/config"
)

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Ollama calls a locally hosted model through the Ollama generate API.
type Ollama struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	httpClient  *http.Client
}

// NewOllama creates the local small-model provider.
func NewOllama(cfg config.AIConfig, hc *http.Client) *Ollama {
	return &Ollama{
		baseURL:     strings.TrimRight(cfg.Ollama.URL, "/"),
		model:       cfg.Ollama.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Ollama.Timeout,
		httpClient:  hc,
	}
}

func (o *Ollama) Name() string { return "ollama" }
func (o *Ollama) Model() string { return o.model }
func (o *Ollama) Timeout() time.Duration { return o.timeout }

func (o *Ollama) Generate(ctx context.Context, p Prompt) (string, error) {
	req := ollamaRequest{
		Model:  o.model,
		Prompt: p.User,
		System: p.System,
		Stream: false,
		Options: ollamaOptions{
			Temperature: o.temperature,
			NumPredict:  o.maxTokens,
		},
	}

	var resp ollamaResponse
	if err := postJSON(ctx, o.httpClient, o.Name(), o.baseURL+"/api/generate", nil, req, &resp); err != nil {
		return "", err
	}
	if isEmpty(resp.Response) {
		return "", emptyOutput(o.Name())
	}
	return resp.Response, nil
}
