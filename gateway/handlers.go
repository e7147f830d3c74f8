package gateway

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/relay/pkg/llm"
	"github.com/papercomputeco/relay/pkg/llm/provider"
	"github.com/papercomputeco/relay/pkg/storage"
)

// ProviderRequest is the body of the provider test and models routes.
type ProviderRequest struct {
	ProviderConfig provider.Config `json:"provider_config"`
}

// TestConnectionResponse reports whether the provider accepted the key.
// Error is null on success.
type TestConnectionResponse struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

// ModelsResponse lists the models of a provider.
type ModelsResponse struct {
	Models []provider.ModelInfo `json:"models"`
	Error  *string              `json:"error"`
}

// TranscriptListResponse is returned by GET /transcripts.
type TranscriptListResponse struct {
	Transcripts []*llm.Transcript `json:"transcripts"`
	Count       int               `json:"count"`
}

// handlePing returns a simple health check response.
func (g *Gateway) handlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// parseProviderRequest decodes a ProviderRequest body and fills endpoint
// defaults.
func (g *Gateway) parseProviderRequest(c *fiber.Ctx) (*provider.Config, error) {
	var req ProviderRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return nil, err
	}
	if req.ProviderConfig.ProviderType == "" {
		return nil, errors.New("provider_config.provider_type is required")
	}

	if err := g.endpoints.Resolve(&req.ProviderConfig); err != nil {
		return nil, err
	}
	return &req.ProviderConfig, nil
}

// handleTestConnection checks the credentials of a provider configuration.
// Provider failures are reported in the body with a 200 status.
func (g *Gateway) handleTestConnection(c *fiber.Ctx) error {
	cfg, err := g.parseProviderRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	if err := cfg.Validate(); err != nil {
		return c.JSON(TestConnectionResponse{Error: errorString(err)})
	}

	ok, err := cfg.TestConnection(c.UserContext())
	if err != nil {
		g.logger.Warn("provider connection test failed",
			"provider", cfg.ProviderType,
			"error", err,
		)
		return c.JSON(TestConnectionResponse{Error: errorString(err)})
	}

	g.logger.Debug("provider connection tested",
		"provider", cfg.ProviderType,
		"success", ok,
	)
	return c.JSON(TestConnectionResponse{Success: ok})
}

// handleListModels returns the built-in model catalog of a provider.
func (g *Gateway) handleListModels(c *fiber.Ctx) error {
	cfg, err := g.parseProviderRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(ModelsResponse{Models: cfg.DefaultModels()})
}

// handleListTranscripts lists recorded transcripts, most recent first.
func (g *Gateway) handleListTranscripts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "limit must not be negative"})
	}

	transcripts, err := g.driver.List(c.UserContext(), storage.ListOptions{
		Provider: c.Query("provider"),
		Limit:    limit,
	})
	if err != nil {
		g.logger.Error("failed to list transcripts", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list transcripts"})
	}
	if transcripts == nil {
		transcripts = []*llm.Transcript{}
	}

	return c.JSON(TranscriptListResponse{
		Transcripts: transcripts,
		Count:       len(transcripts),
	})
}

// handleGetTranscript returns a single transcript by id.
func (g *Gateway) handleGetTranscript(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "id parameter required"})
	}

	t, err := g.driver.Get(c.UserContext(), id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "transcript not found"})
		}
		g.logger.Error("failed to get transcript", "transcript_id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get transcript"})
	}

	return c.JSON(t)
}

func errorString(err error) *string {
	s := err.Error()
	return &s
}
