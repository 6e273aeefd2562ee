package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1/chat/completions"
	GroqBaseURL   = "https://api.groq.com/openai/v1/chat/completions"
)

// OpenAIClient calls an OpenAI-compatible Chat Completions endpoint and asks
// for a JSON object. Groq exposes the same API under GroqBaseURL.
type OpenAIClient struct {
	http     *http.Client
	apiKey   string
	model    string
	baseURL  string
	provider string
}

// NewOpenAIClient creates a client for provider ("openai" or "groq"). An empty
// baseURL selects the provider's public endpoint.
func NewOpenAIClient(provider, apiKey, model, baseURL string, timeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = OpenAIBaseURL
		if provider == "groq" {
			baseURL = GroqBaseURL
		}
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIClient{
		http:     &http.Client{Timeout: timeout},
		apiKey:   apiKey,
		model:    model,
		baseURL:  baseURL,
		provider: provider,
	}
}

func (c *OpenAIClient) Name() string { return c.provider + ":" + c.model }
func (c *OpenAIClient) Close() error { return nil }

type chatReq struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float32           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
type chatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateJSON sends prompt as the system message and input as the user
// message, requesting JSON output.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	reqBody := chatReq{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: inputJSON(input)},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("%s: unexpected status %s: %s", c.provider, resp.Status, string(body))
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, newRateLimitError(c.provider, resp, body)
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			return nil, NewPermanentError(err)
		case resp.StatusCode == http.StatusBadRequest && strings.Contains(string(body), "context_length_exceeded"):
			return nil, NewPermanentError(err)
		}
		return nil, err
	}
	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return nil, ErrInvalidJSON
	}
	raw := json.RawMessage(out.Choices[0].Message.Content)
	if !json.Valid(raw) {
		return nil, ErrInvalidJSON
	}
	return raw, nil
}
