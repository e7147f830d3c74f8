package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/papercomputeco/relay/pkg/llm/provider"
)

// Config represents the persistent relay configuration stored as config.toml
// in the .relay/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Gateway   GatewayConfig   `toml:"gateway"`
	Storage   StorageConfig   `toml:"storage"`
	Events    EventsConfig    `toml:"events"`
	Providers ProvidersConfig `toml:"providers"`
	Stream    StreamConfig    `toml:"stream"`
}

// GatewayConfig holds settings for the HTTP gateway.
type GatewayConfig struct {
	Listen    string `toml:"listen,omitempty"`
	Name      string `toml:"name,omitempty"`
	Workers   uint   `toml:"workers,omitempty"`
	QueueSize uint   `toml:"queue_size,omitempty"`
}

// StorageConfig selects where transcripts are recorded.
type StorageConfig struct {
	// Driver is one of "memory", "sqlite" or "postgres".
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventsConfig selects where stream lifecycle events are published.
type EventsConfig struct {
	// Driver is "none" or "kafka".
	Driver string `toml:"driver,omitempty"`

	// Brokers is a comma separated list of host:port pairs.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// ProvidersConfig holds per-provider endpoint overrides.
type ProvidersConfig struct {
	OpenAI     ProviderEndpoint `toml:"openai"`
	Anthropic  ProviderEndpoint `toml:"anthropic"`
	Google     ProviderEndpoint `toml:"google"`
	OpenRouter ProviderEndpoint `toml:"openrouter"`
}

// ProviderEndpoint overrides the base URL and supplies a default API key for
// one provider. Requests that carry their own values take precedence.
type ProviderEndpoint struct {
	BaseURL string `toml:"base_url,omitempty"`
	APIKey  string `toml:"api_key,omitempty"`
}

// Endpoint returns the endpoint for the named provider. Unknown names
// return the zero endpoint.
func (p ProvidersConfig) Endpoint(name string) ProviderEndpoint {
	switch name {
	case "openai":
		return p.OpenAI
	case "anthropic":
		return p.Anthropic
	case "google":
		return p.Google
	case "openrouter":
		return p.OpenRouter
	default:
		return ProviderEndpoint{}
	}
}

// ErrUnconfiguredBaseURL is returned by Resolve when a request without an
// API key names a base URL other than the configured one.
var ErrUnconfiguredBaseURL = errors.New("an api_key is required when base_url differs from the configured endpoint")

// Resolve fills an empty base URL or API key of pc from the endpoint
// configured for its provider. The configured key only goes to the
// configured base URL: a caller that names another base URL must bring its
// own key.
func (p ProvidersConfig) Resolve(pc *provider.Config) error {
	ep := p.Endpoint(string(pc.ProviderType))
	if pc.APIKey == "" && ep.APIKey != "" && pc.BaseURL != "" && !sameBaseURL(pc.BaseURL, ep.BaseURL) {
		return ErrUnconfiguredBaseURL
	}
	if pc.BaseURL == "" {
		pc.BaseURL = ep.BaseURL
	}
	if pc.APIKey == "" {
		pc.APIKey = ep.APIKey
	}
	return nil
}

func sameBaseURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}

// StreamConfig holds defaults for the "relay stream" command.
type StreamConfig struct {
	Provider  string `toml:"provider,omitempty"`
	Model     string `toml:"model,omitempty"`
	MaxTokens uint   `toml:"max_tokens,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// orderedKeys lists every supported key in TOML section order.
var orderedKeys = []string{
	"gateway.listen",
	"gateway.name",
	"gateway.workers",
	"gateway.queue_size",
	"storage.driver",
	"storage.sqlite_path",
	"storage.postgres_dsn",
	"events.driver",
	"events.brokers",
	"events.topic",
	"providers.openai.base_url",
	"providers.openai.api_key",
	"providers.anthropic.base_url",
	"providers.anthropic.api_key",
	"providers.google.base_url",
	"providers.google.api_key",
	"providers.openrouter.base_url",
	"providers.openrouter.api_key",
	"stream.provider",
	"stream.model",
	"stream.max_tokens",
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"gateway.listen": {
		get: func(c *Config) string { return c.Gateway.Listen },
		set: func(c *Config, v string) error { c.Gateway.Listen = v; return nil },
	},
	"gateway.name": {
		get: func(c *Config) string { return c.Gateway.Name },
		set: func(c *Config, v string) error { c.Gateway.Name = v; return nil },
	},
	"gateway.workers":    uintKey("gateway.workers", func(c *Config) *uint { return &c.Gateway.Workers }),
	"gateway.queue_size": uintKey("gateway.queue_size", func(c *Config) *uint { return &c.Gateway.QueueSize }),
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			switch v {
			case StorageMemory, StorageSQLite, StoragePostgres:
				c.Storage.Driver = v
				return nil
			default:
				return fmt.Errorf("invalid value for storage.driver: %q (expected %s, %s or %s)",
					v, StorageMemory, StorageSQLite, StoragePostgres)
			}
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"events.driver": {
		get: func(c *Config) string { return c.Events.Driver },
		set: func(c *Config, v string) error {
			switch v {
			case EventsNone, EventsKafka:
				c.Events.Driver = v
				return nil
			default:
				return fmt.Errorf("invalid value for events.driver: %q (expected %s or %s)", v, EventsNone, EventsKafka)
			}
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"providers.openai.base_url":     endpointKey(func(c *Config) *string { return &c.Providers.OpenAI.BaseURL }),
	"providers.openai.api_key":      endpointKey(func(c *Config) *string { return &c.Providers.OpenAI.APIKey }),
	"providers.anthropic.base_url":  endpointKey(func(c *Config) *string { return &c.Providers.Anthropic.BaseURL }),
	"providers.anthropic.api_key":   endpointKey(func(c *Config) *string { return &c.Providers.Anthropic.APIKey }),
	"providers.google.base_url":     endpointKey(func(c *Config) *string { return &c.Providers.Google.BaseURL }),
	"providers.google.api_key":      endpointKey(func(c *Config) *string { return &c.Providers.Google.APIKey }),
	"providers.openrouter.base_url": endpointKey(func(c *Config) *string { return &c.Providers.OpenRouter.BaseURL }),
	"providers.openrouter.api_key":  endpointKey(func(c *Config) *string { return &c.Providers.OpenRouter.APIKey }),
	"stream.provider": {
		get: func(c *Config) string { return c.Stream.Provider },
		set: func(c *Config, v string) error { c.Stream.Provider = v; return nil },
	},
	"stream.model": {
		get: func(c *Config) string { return c.Stream.Model },
		set: func(c *Config, v string) error { c.Stream.Model = v; return nil },
	},
	"stream.max_tokens": uintKey("stream.max_tokens", func(c *Config) *uint { return &c.Stream.MaxTokens }),
}

func endpointKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}
