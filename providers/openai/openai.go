// Package openai is a promptfn.Provider for OpenAI-compatible HTTP endpoints.
// Legacy models go to /completions, chat models to /chat/completions.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/skosovsky/promptfn"
)

// DefaultBaseURL is the public OpenAI API.
const DefaultBaseURL = "https://api.openai.com/v1"

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

// Client sends completion requests with a bearer credential.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another OpenAI-compatible server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New returns a Client. An empty apiKey is promptfn.ErrMissingCredential.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", promptfn.ErrMissingCredential)
	}
	c := &Client{apiKey: apiKey, baseURL: DefaultBaseURL, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name implements promptfn.Provider.
func (c *Client) Name() string { return "openai" }

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Suffix      string  `json:"suffix,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []promptfn.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature"`
}

type choice struct {
	Text    string `json:"text"`
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type completionResponse struct {
	Choices []choice `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete implements promptfn.Provider.
func (c *Client) Complete(ctx context.Context, req promptfn.Request) (*promptfn.Completion, error) {
	var (
		path string
		body any
	)
	if req.Family == promptfn.FamilyLegacy {
		path = "/completions"
		body = completionRequest{Model: req.Model, Prompt: req.Prompt, Suffix: req.Suffix, MaxTokens: req.MaxTokens, Temperature: req.Temperature}
	} else {
		path = "/chat/completions"
		body = chatRequest{Model: req.Model, Messages: req.Messages, MaxTokens: req.MaxTokens, Temperature: req.Temperature}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &promptfn.ProviderError{Provider: c.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(raw))
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Error.Message != "" {
			msg = er.Error.Message
		}
		return nil, &promptfn.ProviderError{Provider: c.Name(), Status: resp.StatusCode, Message: msg}
	}

	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &promptfn.ProviderError{Provider: c.Name(), Status: resp.StatusCode, Message: "decode response", Err: err}
	}
	if len(cr.Choices) == 0 {
		return nil, &promptfn.ProviderError{Provider: c.Name(), Status: resp.StatusCode, Message: "response has no choices"}
	}
	ch := cr.Choices[0]
	text := ch.Text
	if ch.Message != nil {
		text = ch.Message.Content
	}
	return &promptfn.Completion{Text: text, FinishReason: ch.FinishReason}, nil
}

var _ promptfn.Provider = (*Client)(nil)
