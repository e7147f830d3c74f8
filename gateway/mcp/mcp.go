// Package mcp provides an MCP (Model Context Protocol) server exposing the
// relay gateway's provider and transcript operations as tools.
package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/relay/pkg/llm/provider"
	"github.com/papercomputeco/relay/pkg/storage"
	"github.com/papercomputeco/relay/pkg/utils"
)

// Resolver fills endpoint defaults (base URL, API key) into a provider
// configuration supplied by a tool caller, and rejects configurations the
// defaults must not be applied to.
type Resolver interface {
	Resolve(c *provider.Config) error
}

type Config struct {
	// Driver reads recorded transcripts for the list_transcripts tool
	Driver storage.Driver

	// Resolver is optional
	Resolver Resolver

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the provider and transcript tools.
func NewServer(c Config) (*Server, error) {
	if c.Driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "relay",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listModelsToolName,
		Description: listModelsDescription,
	}, s.handleListModels)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        testConnectionToolName,
		Description: testConnectionDescription,
	}, s.handleTestConnection)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        listTranscriptsToolName,
		Description: listTranscriptsDescription,
	}, s.handleListTranscripts)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// MCPServer returns the underlying server, for connecting in-process
// transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// errorResult reports a tool failure to the caller.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// jsonResult returns output serialized as JSON text alongside the structured
// content, for clients that only read text.
func jsonResult(output any) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, nil
}
