// Package anthropic implements the client and stream decoder for the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"net/http"

	"github.com/papercomputeco/relay/pkg/llm/provider/transport"
	"github.com/papercomputeco/relay/pkg/stream"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://api.anthropic.com/v1"

	// DefaultAPIVersion is sent as the anthropic-version header.
	DefaultAPIVersion = "2023-06-01"

	// DefaultMaxTokens is used when a request does not set max_tokens, which
	// this API requires.
	DefaultMaxTokens = 1024

	testModel = "claude-sonnet-4-20250514"
)

// Client talks to the Messages API.
type Client struct {
	http *transport.Client
}

type options struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithAPIVersion overrides DefaultAPIVersion.
func WithAPIVersion(version string) Option {
	return func(o *options) {
		o.apiVersion = version
	}
}

// WithHTTPClient sets the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// New returns a Client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	o := &options{
		baseURL:    DefaultBaseURL,
		apiVersion: DefaultAPIVersion,
	}
	for _, opt := range opts {
		opt(o)
	}

	tc := transport.New(o.baseURL)
	if o.httpClient != nil {
		tc.HTTPClient = o.httpClient
	}
	tc.Header.Set("x-api-key", apiKey)
	tc.Header.Set("anthropic-version", o.apiVersion)

	return &Client{http: tc}
}

// TestConnection sends a minimal message and reports whether the API
// accepted it.
func (c *Client) TestConnection(ctx context.Context) (bool, error) {
	req := &MessagesRequest{
		Model:     testModel,
		Messages:  []Message{{Role: "user", Content: "Hi"}},
		MaxTokens: 10,
	}
	return c.http.Check(ctx, http.MethodPost, "/messages", req)
}

// CreateMessage sends a non-streaming request.
func (c *Client) CreateMessage(ctx context.Context, req *MessagesRequest) (*MessagesResponse, error) {
	var resp MessagesResponse
	if err := c.http.JSON(ctx, http.MethodPost, "/messages", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateMessageStream sends req with streaming enabled and returns the event
// stream. The caller must drain or Close the stream.
func (c *Client) CreateMessageStream(ctx context.Context, req *MessagesRequest) (*stream.Stream[StreamEvent], error) {
	streaming := true
	sreq := *req
	sreq.Stream = &streaming

	body, err := c.http.Stream(ctx, http.MethodPost, "/messages", &sreq)
	if err != nil {
		return nil, err
	}
	return NewStream(body), nil
}
