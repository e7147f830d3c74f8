// Package google implements the client and stream decoder for the Gemini
// generateContent API.
package google

import (
	"context"
	"net/http"
	"net/url"

	"github.com/papercomputeco/relay/pkg/llm/provider/transport"
	"github.com/papercomputeco/relay/pkg/stream"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Client talks to the Gemini API. The API key travels in the "key" query
// parameter.
type Client struct {
	http *transport.Client
}

type options struct {
	baseURL    string
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

// WithHTTPClient sets the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// New returns a Client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	o := &options{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(o)
	}

	tc := transport.New(o.baseURL)
	if o.httpClient != nil {
		tc.HTTPClient = o.httpClient
	}
	tc.Query.Set("key", apiKey)

	return &Client{http: tc}
}

// TestConnection lists models and reports whether the API accepted the key.
func (c *Client) TestConnection(ctx context.Context) (bool, error) {
	return c.http.Check(ctx, http.MethodGet, "/models", nil)
}

// ListModels returns the first page of available models.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var resp ModelListResponse
	if err := c.http.JSON(ctx, http.MethodGet, "/models", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Models, nil
}

// GenerateContent sends a non-streaming request to model.
func (c *Client) GenerateContent(ctx context.Context, model string, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	var resp GenerateContentResponse
	if err := c.http.JSON(ctx, http.MethodPost, modelPath(model, "generateContent"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateContentStream sends a streaming request to model and returns the
// response stream. The caller must drain or Close the stream.
func (c *Client) GenerateContentStream(ctx context.Context, model string, req *GenerateContentRequest) (*stream.Stream[*GenerateContentResponse], error) {
	body, err := c.http.Stream(ctx, http.MethodPost, modelPath(model, "streamGenerateContent"), req)
	if err != nil {
		return nil, err
	}
	return NewStream(body), nil
}

func modelPath(model, method string) string {
	return "/models/" + url.PathEscape(model) + ":" + method
}
