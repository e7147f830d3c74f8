// Package provider holds the provider-neutral configuration of an upstream
// LLM API: which protocol it speaks, how to reach it, and what models it
// offers. It dispatches to the per-provider clients in its subpackages.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/relay/pkg/llm/provider/google"
	"github.com/papercomputeco/relay/pkg/llm/provider/openai"
)

// Type identifies an upstream API protocol.
type Type string

// Supported provider types
const (
	OpenAI     Type = "openai"
	Anthropic  Type = "anthropic"
	Google     Type = "google"
	OpenRouter Type = "openrouter"
)

// OpenRouterBaseURL is the default root of the OpenAI compatible OpenRouter
// API.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// SupportedProviders returns the list of all supported provider types.
func SupportedProviders() []Type {
	return []Type{OpenAI, Anthropic, Google, OpenRouter}
}

// ParseType returns the Type named by s, case-insensitively.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, supported := range SupportedProviders() {
		if t == supported {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown provider type: %q (supported: %v)", s, SupportedProviders())
}

// UnmarshalJSON rejects unknown provider types.
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Type) String() string { return string(t) }

// Config is the connection configuration of one provider account.
type Config struct {
	ProviderType Type   `json:"provider_type"`
	APIKey       string `json:"api_key"`
	BaseURL      string `json:"base_url,omitempty"`
}

// ErrMissingAPIKey is returned when a Config without an API key is used to
// contact a provider.
var ErrMissingAPIKey = errors.New("api key is required")

// Validate checks that the Config names a supported provider and carries a
// key.
func (c *Config) Validate() error {
	if _, err := ParseType(string(c.ProviderType)); err != nil {
		return err
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// TestConnection reports whether the provider accepts the configured
// credentials. OpenRouter is not contacted and always reports true.
func (c *Config) TestConnection(ctx context.Context) (bool, error) {
	switch c.ProviderType {
	case OpenAI:
		return openai.New(c.APIKey, openai.WithBaseURL(c.BaseURL)).TestConnection(ctx)
	case Anthropic:
		return anthropic.New(c.APIKey, anthropic.WithBaseURL(c.BaseURL)).TestConnection(ctx)
	case Google:
		return google.New(c.APIKey, google.WithBaseURL(c.BaseURL)).TestConnection(ctx)
	case OpenRouter:
		return true, nil
	default:
		return false, fmt.Errorf("unknown provider type: %q", c.ProviderType)
	}
}

// OpenStream starts a streamed generation for req and returns its
// normalized chunks.
func (c *Config) OpenStream(ctx context.Context, req *llm.ChatRequest) (*ChunkStream, error) {
	switch c.ProviderType {
	case OpenAI, OpenRouter:
		baseURL := c.BaseURL
		if baseURL == "" && c.ProviderType == OpenRouter {
			baseURL = OpenRouterBaseURL
		}

		oreq := openai.NewRequest(req)
		oreq.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

		s, err := openai.New(c.APIKey, openai.WithBaseURL(baseURL)).ChatCompletionStream(ctx, oreq)
		if err != nil {
			return nil, err
		}
		return newChunkStream(s, openai.Normalize), nil

	case Anthropic:
		s, err := anthropic.New(c.APIKey, anthropic.WithBaseURL(c.BaseURL)).CreateMessageStream(ctx, anthropic.NewRequest(req))
		if err != nil {
			return nil, err
		}
		return newChunkStream(s, anthropic.Normalize), nil

	case Google:
		s, err := google.New(c.APIKey, google.WithBaseURL(c.BaseURL)).GenerateContentStream(ctx, req.Model, google.NewRequest(req))
		if err != nil {
			return nil, err
		}
		return newChunkStream(s, google.Normalize), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %q", c.ProviderType)
	}
}
