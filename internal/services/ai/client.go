// Package ai turns match data into coaching text through an ordered chain of
// generative-AI providers.
package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const maxResponseBody = 2 << 20

// NewHTTPClient returns the pooled client shared by all providers. It has no
// overall timeout; each attempt is bounded by its context instead.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// postJSON sends payload and decodes a 200 response into out. Every failure
// comes back as a *ProviderError.
func postJSON(ctx context.Context, hc *http.Client, provider, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ProviderError{Provider: provider, Kind: FailureRejected, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &ProviderError{Provider: provider, Kind: FailureRejected, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return transportError(provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return transportError(provider, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(provider, resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &ProviderError{Provider: provider, Kind: FailureMalformed, Err: fmt.Errorf("parse response: %w", err)}
	}
	return nil
}

// cleanText trims the output and removes a code fence wrapping the whole
// answer, which small models like to add.
func cleanText(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") && len(content) >= 6 {
		content = strings.TrimSuffix(content, "```")
		if nl := strings.IndexByte(content, '\n'); nl >= 0 {
			content = content[nl+1:]
		} else {
			content = strings.TrimPrefix(content, "```")
		}
	}
	return strings.TrimSpace(content)
}

func emptyOutput(provider string) error {
	return &ProviderError{Provider: provider, Kind: FailureEmpty, Err: errEmptyOutput}
}

func isEmpty(text string) bool {
	return cleanText(text) == ""
}
