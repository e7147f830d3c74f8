// Package servecmder provides the serve command that runs the relay gateway.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/relay/gateway"
	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/dotdir"
	"github.com/papercomputeco/relay/pkg/eventstream"
	"github.com/papercomputeco/relay/pkg/eventstream/kafka"
	"github.com/papercomputeco/relay/pkg/eventstream/nop"
	"github.com/papercomputeco/relay/pkg/logger"
	"github.com/papercomputeco/relay/pkg/storage"
	"github.com/papercomputeco/relay/pkg/storage/inmemory"
	"github.com/papercomputeco/relay/pkg/storage/postgres"
	"github.com/papercomputeco/relay/pkg/storage/sqlite"
)

// sqliteFile is the database file created in the .relay/ directory when the
// sqlite driver is selected without a path.
const sqliteFile = "relay.db"

type serveCommander struct {
	configDir string
	debug     bool
	cfg       *config.Config

	// flag targets; the merged values are read back from cfg
	listen, name, storageDriver, sqlitePath, postgresDSN string
	eventsDriver, brokers, topic                         string
	workers, queueSize                                   uint

	// logFile additionally receives JSON records when set
	logFile string

	logger *slog.Logger
}

var serveFlags = []string{
	config.FlagListen,
	config.FlagGatewayName,
	config.FlagWorkers,
	config.FlagQueueSize,
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagEvents,
	config.FlagBrokers,
	config.FlagTopic,
}

const serveLongDesc string = `Run the relay gateway.

The gateway exposes provider connectivity checks, model listings and streamed
generation relayed as server-sent events. Every stream's transcript is
recorded in the configured storage and, optionally, announced on Kafka.

Settings are read from flags, RELAY_* environment variables and
.relay/config.toml, in that order of precedence. Provider endpoints in
config.toml are reloaded while the gateway runs.

Routes:
  GET  /ping                 Health check
  POST /provider/test        Check provider credentials
  POST /provider/models      List a provider's models
  POST /provider/stream      Stream a generation as server-sent events
  GET  /transcripts          List recorded transcripts
  GET  /transcripts/:id      Get one transcript
  *    /mcp                  MCP streamable HTTP endpoint`

const serveShortDesc string = "Run the relay gateway"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)

			cmder.cfg, err = config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagGatewayName, &cmder.name)
	config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &cmder.workers)
	config.AddUintFlag(cmd, config.Flags, config.FlagQueueSize, &cmder.queueSize)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorage, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagEvents, &cmder.eventsDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagBrokers, &cmder.brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagTopic, &cmder.topic)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	driver, err := c.newStorageDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	g, err := gateway.New(gateway.Config{
		ListenAddr: c.cfg.Gateway.Listen,
		Name:       c.cfg.Gateway.Name,
		Workers:    c.cfg.Gateway.Workers,
		QueueSize:  c.cfg.Gateway.QueueSize,
		Providers:  c.cfg.Providers,
	}, driver, publisher, c.logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}
	defer g.Close()

	go c.watchConfig(ctx, g)

	errChan := make(chan error, 1)
	go func() {
		if err := g.Run(); err != nil {
			errChan <- fmt.Errorf("gateway error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
		return nil
	}
}

// setupLogger logs to stderr, pretty on a terminal, and mirrors records as
// JSON to --log-file when given.
func (c *serveCommander) setupLogger() (func(), error) {
	console := logger.New(
		logger.WithWriter(os.Stderr),
		logger.WithDebug(c.debug),
		logger.WithPretty(term.IsTerminal(int(os.Stderr.Fd()))),
		logger.WithComponent("gateway"),
	)
	if c.logFile == "" {
		c.logger = console
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	c.logger = logger.Multi(console, logger.New(
		logger.WithWriter(f),
		logger.WithJSON(true),
		logger.WithDebug(c.debug),
		logger.WithComponent("gateway"),
	))
	return func() { _ = f.Close() }, nil
}

// watchConfig reloads provider endpoints whenever config.toml changes.
func (c *serveCommander) watchConfig(ctx context.Context, g *gateway.Gateway) {
	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		c.logger.Warn("config reload disabled", "error", err)
		return
	}

	err = cfger.Watch(ctx,
		func(cfg *config.Config) {
			g.SetProviders(cfg.Providers)
		},
		func(err error) {
			c.logger.Warn("config reload failed", "error", err)
		},
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("config watcher stopped", "error", err)
	}
}

func (c *serveCommander) newStorageDriver(ctx context.Context) (storage.Driver, error) {
	switch c.cfg.Storage.Driver {
	case config.StorageSQLite:
		path := c.cfg.Storage.SQLitePath
		if path == "" {
			var err error
			path, err = dotdir.NewManager().Path(c.configDir, sqliteFile)
			if err != nil {
				return nil, fmt.Errorf("resolving sqlite path: %w", err)
			}
		}

		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		c.logger.Info("using SQLite storage", "path", path)
		return driver, nil

	case config.StoragePostgres:
		if c.cfg.Storage.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires --postgres or storage.postgres_dsn")
		}

		driver, err := postgres.NewDriver(ctx, c.cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		c.logger.Info("using PostgreSQL storage")
		return driver, nil

	default:
		c.logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil
	}
}

func (c *serveCommander) newPublisher() (eventstream.Publisher, error) {
	if c.cfg.Events.Driver != config.EventsKafka {
		return nop.NewPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: c.cfg.Events.BrokerList(),
		Topic:   c.cfg.Events.Topic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	c.logger.Info("publishing stream events to kafka",
		"brokers", c.cfg.Events.Brokers,
		"topic", c.cfg.Events.Topic,
	)
	return publisher, nil
}
