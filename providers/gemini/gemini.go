// Package gemini is a promptfn.Provider backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/skosovsky/promptfn"
)

// Client wraps a genai client. Every request is sent as GenerateContent; legacy
// requests become a single user turn.
type Client struct {
	cli *genai.Client
}

type config struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*config)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = u }
}

// WithHTTPClient replaces the HTTP client used by genai.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.http = hc }
}

// New returns a Client for apiKey. An empty key is promptfn.ErrMissingCredential.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", promptfn.ErrMissingCredential)
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.http,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Client{cli: cli}, nil
}

// Name implements promptfn.Provider.
func (c *Client) Name() string { return "gemini" }

// Complete implements promptfn.Provider.
func (c *Client) Complete(ctx context.Context, req promptfn.Request) (*promptfn.Completion, error) {
	gc := &genai.GenerateContentConfig{Temperature: genai.Ptr(float32(req.Temperature))}
	if req.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(req.MaxTokens)
	}
	contents, system := toContents(req)
	if system != "" {
		gc.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.cli.Models.GenerateContent(ctx, req.Model, contents, gc)
	if err != nil {
		return nil, c.wrap(err)
	}
	if len(resp.Candidates) == 0 {
		return nil, &promptfn.ProviderError{Provider: c.Name(), Status: http.StatusOK, Message: "response has no candidates"}
	}
	return &promptfn.Completion{Text: resp.Text(), FinishReason: string(resp.Candidates[0].FinishReason)}, nil
}

// toContents maps the request onto Gemini turns. System messages are joined into the
// system instruction; assistant turns are sent with the "model" role.
func toContents(req promptfn.Request) ([]*genai.Content, string) {
	if len(req.Messages) == 0 {
		return []*genai.Content{genai.NewContentFromText(req.Prompt+req.Suffix, genai.RoleUser)}, ""
	}
	var system []string
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case promptfn.RoleSystem:
			system = append(system, m.Content)
		case promptfn.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}

func (c *Client) wrap(err error) error {
	var ae genai.APIError
	if errors.As(err, &ae) {
		return &promptfn.ProviderError{Provider: c.Name(), Status: ae.Code, Message: ae.Message, Err: err}
	}
	var pae *genai.APIError
	if errors.As(err, &pae) && pae != nil {
		return &promptfn.ProviderError{Provider: c.Name(), Status: pae.Code, Message: pae.Message, Err: err}
	}
	return &promptfn.ProviderError{Provider: c.Name(), Err: err}
}

var _ promptfn.Provider = (*Client)(nil)
