package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/relay/pkg/dotdir"
)

// EnvPrefix is prepended to every environment variable viper reads.
const EnvPrefix = "RELAY"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the RELAY_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (RELAY_GATEWAY_LISTEN, RELAY_PROVIDERS_OPENAI_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	v.AddConfigPath(target)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: RELAY_GATEWAY_LISTEN, RELAY_STORAGE_DRIVER, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
// Every key is registered, including empty ones, so AutomaticEnv can see it.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)
	for _, key := range orderedKeys {
		switch key {
		case "gateway.workers":
			v.SetDefault(key, d.Gateway.Workers)
		case "gateway.queue_size":
			v.SetDefault(key, d.Gateway.QueueSize)
		case "stream.max_tokens":
			v.SetDefault(key, d.Stream.MaxTokens)
		default:
			v.SetDefault(key, configKeys[key].get(d))
		}
	}
}

// FromViper builds a Config from the merged viper view.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{Version: v.GetInt("version")}
	for _, key := range orderedKeys {
		switch key {
		case "gateway.workers":
			cfg.Gateway.Workers = v.GetUint(key)
		case "gateway.queue_size":
			cfg.Gateway.QueueSize = v.GetUint(key)
		case "stream.max_tokens":
			cfg.Stream.MaxTokens = v.GetUint(key)
		default:
			val := v.GetString(key)
			if val == "" {
				continue
			}
			if err := configKeys[key].set(cfg, val); err != nil {
				return nil, err
			}
		}
	}
	applyDefaults(cfg)
	return cfg, nil
}
