// Package specialist wraps the external reasoning service behind a
// uniform adapter so the orchestrator can invoke every specialist
// identically. Adapters shape the request and coerce the response;
// they perform no judgment themselves.
package specialist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fyrsmithlabs/reviewd/internal/config"
)

// Reasoner sends one analysis request to the external reasoning
// service and returns its raw text response. Implementations must be
// safe for concurrent use.
type Reasoner interface {
	Analyze(ctx context.Context, system, prompt string) (string, error)
}

// HTTPReasoner implements Reasoner against the Anthropic Messages API.
type HTTPReasoner struct {
	apiKey     config.Secret
	baseURL    string
	model      string
	httpClient *http.Client
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewHTTPReasoner creates a reasoning-service client.
func NewHTTPReasoner(apiKey config.Secret, baseURL, model string) (*HTTPReasoner, error) {
	if !apiKey.IsSet() {
		return nil, fmt.Errorf("reasoner API key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	return &HTTPReasoner{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Analyze sends one request and returns the text of the first content
// block.
func (r *HTTPReasoner) Analyze(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     r.model,
		MaxTokens: 4096,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", r.apiKey.Value())
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling reasoning service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("reasoning service error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("reasoning service returned %d", resp.StatusCode)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty response from reasoning service")
	}
	return parsed.Content[0].Text, nil
}
