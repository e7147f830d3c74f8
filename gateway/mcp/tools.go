package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/relay/pkg/llm/provider"
	"github.com/papercomputeco/relay/pkg/storage"
	"github.com/papercomputeco/relay/pkg/utils"
)

var (
	listModelsToolName    = "list_models"
	listModelsDescription = "List the models the relay gateway knows for a provider, with capabilities, pricing per million tokens and context window."

	testConnectionToolName    = "test_connection"
	testConnectionDescription = "Check whether a provider accepts the given API key. Key and base URL fall back to the gateway's configured values."

	listTranscriptsToolName    = "list_transcripts"
	listTranscriptsDescription = "List recently recorded stream transcripts, most recent first."
)

// ListModelsInput represents the input arguments for the list_models tool.
type ListModelsInput struct {
	ProviderType string `json:"provider_type" jsonschema:"one of openai, anthropic, google, openrouter"`
}

// ListModelsOutput represents the output of the list_models tool.
type ListModelsOutput struct {
	Models []provider.ModelInfo `json:"models"`
}

func (s *Server) handleListModels(_ context.Context, _ *mcp.CallToolRequest, input ListModelsInput) (*mcp.CallToolResult, ListModelsOutput, error) {
	pt, err := provider.ParseType(input.ProviderType)
	if err != nil {
		return errorResult("Invalid provider: %v", err), ListModelsOutput{}, nil
	}

	cfg := &provider.Config{ProviderType: pt}
	output := ListModelsOutput{Models: cfg.DefaultModels()}

	res, err := jsonResult(output)
	if err != nil {
		return errorResult("Failed to serialize models: %v", err), ListModelsOutput{}, nil
	}
	return res, output, nil
}

// TestConnectionInput represents the input arguments for the test_connection tool.
type TestConnectionInput struct {
	ProviderType string `json:"provider_type" jsonschema:"one of openai, anthropic, google, openrouter"`
	APIKey       string `json:"api_key,omitempty" jsonschema:"API key; defaults to the gateway's configured key"`
	BaseURL      string `json:"base_url,omitempty" jsonschema:"API base URL; defaults to the gateway's configured URL"`
}

// TestConnectionOutput represents the output of the test_connection tool.
type TestConnectionOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleTestConnection(ctx context.Context, _ *mcp.CallToolRequest, input TestConnectionInput) (*mcp.CallToolResult, TestConnectionOutput, error) {
	pt, err := provider.ParseType(input.ProviderType)
	if err != nil {
		return errorResult("Invalid provider: %v", err), TestConnectionOutput{}, nil
	}

	cfg := &provider.Config{ProviderType: pt, APIKey: input.APIKey, BaseURL: input.BaseURL}
	var output TestConnectionOutput
	if s.config.Resolver != nil {
		if err := s.config.Resolver.Resolve(cfg); err != nil {
			output.Error = err.Error()
			return s.testConnectionResult(output)
		}
	}

	s.config.Logger.Debug("MCP test_connection request", "provider", pt)

	if err := cfg.Validate(); err != nil {
		output.Error = err.Error()
	} else {
		output.Success, err = cfg.TestConnection(ctx)
		if err != nil {
			output.Error = err.Error()
		}
	}
	return s.testConnectionResult(output)
}

func (s *Server) testConnectionResult(output TestConnectionOutput) (*mcp.CallToolResult, TestConnectionOutput, error) {
	res, err := jsonResult(output)
	if err != nil {
		return errorResult("Failed to serialize result: %v", err), TestConnectionOutput{}, nil
	}
	return res, output, nil
}

// ListTranscriptsInput represents the input arguments for the list_transcripts tool.
type ListTranscriptsInput struct {
	ProviderType string `json:"provider_type,omitempty" jsonschema:"only list transcripts from this provider"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum number of transcripts (default: 20)"`
}

// TranscriptSummary is one entry of the list_transcripts output.
type TranscriptSummary struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	StopReason  string `json:"stop_reason,omitempty"`
	TotalTokens int    `json:"total_tokens"`
	Preview     string `json:"preview"`
	StartedAt   string `json:"started_at"`

	// CostUSD is the list-price estimate, absent for models without pricing.
	CostUSD *float64 `json:"cost_usd,omitempty"`
}

// ListTranscriptsOutput represents the output of the list_transcripts tool.
type ListTranscriptsOutput struct {
	Transcripts []TranscriptSummary `json:"transcripts"`
	Count       int                 `json:"count"`
}

const (
	defaultTranscriptLimit = 20
	previewLength          = 120
)

func (s *Server) handleListTranscripts(ctx context.Context, _ *mcp.CallToolRequest, input ListTranscriptsInput) (*mcp.CallToolResult, ListTranscriptsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultTranscriptLimit
	}

	transcripts, err := s.config.Driver.List(ctx, storage.ListOptions{
		Provider: input.ProviderType,
		Limit:    limit,
	})
	if err != nil {
		s.config.Logger.Error("failed to list transcripts", "error", err)
		return errorResult("Failed to list transcripts: %v", err), ListTranscriptsOutput{}, nil
	}

	output := ListTranscriptsOutput{
		Transcripts: make([]TranscriptSummary, 0, len(transcripts)),
	}
	for _, t := range transcripts {
		summary := TranscriptSummary{
			ID:          t.ID,
			Provider:    t.Provider,
			Model:       t.Model,
			StopReason:  t.StopReason,
			TotalTokens: t.Usage.TotalTokens,
			Preview:     utils.Truncate(t.Text(), previewLength),
			StartedAt:   t.StartedAt.UTC().Format(time.RFC3339),
		}
		if cost, ok := provider.EstimateCost(t.Model, t.Usage); ok {
			summary.CostUSD = &cost
		}
		output.Transcripts = append(output.Transcripts, summary)
	}
	output.Count = len(output.Transcripts)

	res, err := jsonResult(output)
	if err != nil {
		return errorResult("Failed to serialize transcripts: %v", err), ListTranscriptsOutput{}, nil
	}
	return res, output, nil
}
