// Package ai turns email text into a short summary using the Claude
// Messages API. The result is opaque text; nothing else in the
// application depends on its shape.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 300
	defaultURL       = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"

	// maxInputChars (runes) keeps very long threads inside the request budget.
	maxInputChars = 24000

	systemPrompt = "You summarize emails for a busy reader. Reply with two or three " +
		"plain sentences covering who wants what and by when. No preamble."
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("ai summarizer not configured")

// Summarizer produces a summary for an email.
type Summarizer interface {
	Summarize(ctx context.Context, subject, body string) (string, error)
}

// Client calls the Claude Messages API.
type Client struct {
	apiKey    string
	model     string
	maxTokens int
	url       string
	client    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.client = c }
}

// WithURL points the client at a different endpoint.
func WithURL(u string) Option {
	return func(cl *Client) { cl.url = u }
}

// New creates a Client. Empty model and non-positive maxTokens fall back to
// defaults.
func New(apiKey, model string, maxTokens int, opts ...Option) *Client {
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	c := &Client{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		url:       defaultURL,
		client:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summarize asks the model for a summary of one email.
func (c *Client) Summarize(ctx context.Context, subject, body string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	body = clip(body, maxInputChars)
	prompt := fmt.Sprintf("Subject: %s\n\n%s", subject, body)

	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    systemPrompt,
		Messages: []apiMessage{{
			Role:    "user",
			Content: []apiContentBlock{{Type: "text", Text: prompt}},
		}},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create summary request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call summary API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read summary response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("summary API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("summary API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode summary response: %w", err)
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	summary := strings.TrimSpace(strings.Join(parts, ""))
	if summary == "" {
		return "", errors.New("summary API returned no text")
	}
	return summary, nil
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Content    []apiContentBlock `json:"content"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

var _ Summarizer = (*Client)(nil)

// clip returns at most n runes of s.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
