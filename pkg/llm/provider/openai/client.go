// Package openai implements the client and stream decoder for the OpenAI
// chat completions API and compatible servers.
package openai

import (
	"context"
	"net/http"

	"github.com/papercomputeco/relay/pkg/llm/provider/transport"
	"github.com/papercomputeco/relay/pkg/stream"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Client talks to the OpenAI API.
type Client struct {
	http *transport.Client
}

type options struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL overrides DefaultBaseURL, e.g. for OpenAI compatible servers.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// New returns a Client using bearer authentication with apiKey.
func New(apiKey string, opts ...Option) *Client {
	o := &options{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(o)
	}

	tc := transport.New(o.baseURL)
	if o.httpClient != nil {
		tc.HTTPClient = o.httpClient
	}
	tc.Header.Set("Authorization", "Bearer "+apiKey)

	return &Client{http: tc}
}

// TestConnection lists models and reports whether the API accepted the key.
func (c *Client) TestConnection(ctx context.Context) (bool, error) {
	return c.http.Check(ctx, http.MethodGet, "/models", nil)
}

// ListModels returns the models visible to the key.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var resp ModelListResponse
	if err := c.http.JSON(ctx, http.MethodGet, "/models", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ChatCompletion sends a non-streaming request.
func (c *Client) ChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	var resp ChatCompletionResponse
	if err := c.http.JSON(ctx, http.MethodPost, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChatCompletionStream sends req with streaming enabled and returns the
// chunk stream. The caller must drain or Close the stream.
func (c *Client) ChatCompletionStream(ctx context.Context, req *ChatCompletionRequest) (*stream.Stream[*StreamChunk], error) {
	streaming := true
	sreq := *req
	sreq.Stream = &streaming

	body, err := c.http.Stream(ctx, http.MethodPost, "/chat/completions", &sreq)
	if err != nil {
		return nil, err
	}
	return NewStream(body), nil
}

// GenerateImage sends an image generation request.
func (c *Client) GenerateImage(ctx context.Context, req *ImageGenerationRequest) (*ImageGenerationResponse, error) {
	var resp ImageGenerationResponse
	if err := c.http.JSON(ctx, http.MethodPost, "/images/generations", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
