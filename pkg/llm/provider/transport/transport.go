// Package transport is the HTTP plumbing shared by the provider clients:
// building JSON requests, checking statuses and handing streaming bodies to
// pkg/stream.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds non-streaming calls made with the default client.
// Streaming calls are bounded by their context only.
const DefaultTimeout = 5 * time.Minute

// MaxRecordSize caps a single undelimited record in a provider stream.
const MaxRecordSize = 4 << 20

// MaxMediaRecordSize caps a record of a stream whose elements can carry
// base64 inline media, such as Google inlineData image parts.
const MaxMediaRecordSize = 64 << 20

// Client sends requests to one provider API.
type Client struct {
	// BaseURL is the API root, e.g. "https://api.openai.com/v1".
	BaseURL string

	// Header is added to every request.
	Header http.Header

	// Query is added to every request URL.
	Query url.Values

	HTTPClient *http.Client
}

// New returns a Client for baseURL using a default *http.Client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Header:  http.Header{},
		Query:   url.Values{},
		HTTPClient: &http.Client{
			// LLM requests can be slow, especially with thinking blocks
			Timeout: DefaultTimeout,
		},
	}
}

// Do sends method to path with an optional JSON body and returns the raw
// response. The caller owns the response body.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	return resp, nil
}

// Check sends a request and reports whether the upstream answered 2xx. The
// response body is discarded.
func (c *Client) Check(ctx context.Context, method, path string, body any) (bool, error) {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return isSuccess(resp.StatusCode), nil
}

// JSON sends a request and decodes a 2xx JSON response into out. Any other
// status yields an *InvalidResponseError.
func (c *Client) JSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Stream sends a request and returns the body of a 2xx response for
// incremental decoding. The context must outlive the stream.
func (c *Client) Stream(ctx context.Context, method, path string, body any) (io.ReadCloser, error) {
	// The client timeout would cut long generations short.
	hc := *c.HTTPClient
	hc.Timeout = 0
	sc := *c
	sc.HTTPClient = &hc

	resp, err := sc.Do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) url(path string) string {
	u := c.BaseURL + path
	if len(c.Query) > 0 {
		u += "?" + c.Query.Encode()
	}
	return u
}

func checkStatus(resp *http.Response) error {
	if isSuccess(resp.StatusCode) {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	return &InvalidResponseError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
