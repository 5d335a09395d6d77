package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrURLMissing is returned by New when a project key is given without a URL.
var ErrURLMissing = errors.New("report: project key set without a report URL")

// Reporter delivers one event.
type Reporter interface {
	Report(ctx context.Context, ev Event) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, ev Event) error

func (f ReporterFunc) Report(ctx context.Context, ev Event) error { return f(ctx, ev) }

// StatusError is returned for a non-2xx response from the endpoint.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("report: endpoint returned %d: %s", e.Status, e.Body)
}

// Client posts events as JSON to a fixed URL.
type Client struct {
	url  string
	key  string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New returns a Client for the project key. An empty key disables reporting and
// returns (nil, nil); a key without a URL is ErrURLMissing.
func New(url, key string, opts ...Option) (*Client, error) {
	if key == "" {
		return nil, nil
	}
	if url == "" {
		return nil, ErrURLMissing
	}
	c := &Client{url: url, key: key, http: &http.Client{Timeout: 10 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Report posts ev. The project key is filled in when ev does not carry one.
// A nil Client reports nothing.
func (c *Client) Report(ctx context.Context, ev Event) error {
	if c == nil {
		return nil
	}
	if ev.ProjectKey == "" {
		ev.ProjectKey = c.key
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("report: encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

var _ Reporter = (*Client)(nil)
