// Package gateway provides the relay HTTP gateway: provider connectivity and
// model routes, streamed generation relayed to clients as server-sent events,
// and read access to the transcripts recorded from those streams.
package gateway

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"

	"github.com/papercomputeco/relay/gateway/header"
	"github.com/papercomputeco/relay/gateway/mcp"
	"github.com/papercomputeco/relay/gateway/worker"
	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/eventstream"
	"github.com/papercomputeco/relay/pkg/storage"
)

// Gateway serves the relay HTTP API. Streams are relayed to the client as
// they arrive and their transcripts are enqueued for async storage via the
// worker pool.
type Gateway struct {
	config        Config
	driver        storage.Driver
	workerPool    *worker.Pool
	logger        *slog.Logger
	server        *fiber.App
	endpoints     *endpoints
	headerHandler *header.Handler
}

// New creates a new Gateway. The driver records transcripts; publisher may
// be nil when no lifecycle events are wanted.
func New(c Config, driver storage.Driver, publisher eventstream.Publisher, logger *slog.Logger) (*Gateway, error) {
	if driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	wp, err := worker.NewPool(&worker.Config{
		Driver:      driver,
		Publisher:   publisher,
		GatewayName: c.Name,
		NumWorkers:  c.Workers,
		QueueSize:   c.QueueSize,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}

	g := &Gateway{
		config:        c,
		driver:        driver,
		workerPool:    wp,
		logger:        logger,
		endpoints:     newEndpoints(c.Providers),
		headerHandler: header.NewHandler(),
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Driver:   driver,
		Resolver: g.endpoints,
		Logger:   logger,
	})
	if err != nil {
		wp.Close()
		return nil, fmt.Errorf("could not create MCP server: %w", err)
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})
	app.Use(g.headerHandler.RequestID)

	app.Get("/ping", g.handlePing)

	providers := app.Group("/provider")
	providers.Post("/test", g.handleTestConnection)
	providers.Post("/models", g.handleListModels)
	providers.Post("/stream", g.handleStream)

	// Transcript reads are plain JSON and safe to compress; streamed routes
	// are not.
	transcripts := app.Group("/transcripts", compress.New())
	transcripts.Get("/", g.handleListTranscripts)
	transcripts.Get("/:id", g.handleGetTranscript)

	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	g.server = app
	return g, nil
}

// SetProviders replaces the configured provider endpoints. Streams already
// in flight keep the endpoint they were opened with.
func (g *Gateway) SetProviders(c config.ProvidersConfig) {
	g.endpoints.set(c)
	g.logger.Info("provider endpoints reloaded")
}

// Run starts the gateway server on the configured listening address.
func (g *Gateway) Run() error {
	g.logger.Info("starting gateway server",
		"listen", g.config.ListenAddr,
		"name", g.config.Name,
	)

	return g.server.Listen(g.config.ListenAddr)
}

// RunWithListener starts the gateway server using the provided listener.
func (g *Gateway) RunWithListener(listener net.Listener) error {
	g.logger.Info("starting gateway server",
		"listen", listener.Addr().String(),
		"name", g.config.Name,
	)

	return g.server.Listener(listener)
}

// Close stops accepting requests, then waits for the worker pool to drain.
func (g *Gateway) Close() error {
	err := g.server.Shutdown()
	g.workerPool.Close()
	return err
}
