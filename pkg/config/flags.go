package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --provider
// on "relay stream" and "relay models").
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "gateway.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen      = "listen"
	FlagGatewayName = "name"
	FlagWorkers     = "workers"
	FlagQueueSize   = "queue-size"
	FlagStorage     = "storage"
	FlagSQLite      = "sqlite"
	FlagPostgres    = "postgres"
	FlagEvents      = "events"
	FlagBrokers     = "kafka-brokers"
	FlagTopic       = "kafka-topic"
	FlagProvider    = "provider"
	FlagModel       = "model"
	FlagMaxTokens   = "max-tokens"
)

// Flags is the registry shared by every relay command.
var Flags = FlagSet{
	FlagListen:      {Name: "listen", Shorthand: "l", ViperKey: "gateway.listen", Description: "Address for the gateway to listen on"},
	FlagGatewayName: {Name: "name", ViperKey: "gateway.name", Description: "Gateway name reported in stream events"},
	FlagWorkers:     {Name: "workers", ViperKey: "gateway.workers", Description: "Number of transcript persistence workers"},
	FlagQueueSize:   {Name: "queue-size", ViperKey: "gateway.queue_size", Description: "Capacity of the transcript persistence queue"},
	FlagStorage:     {Name: "storage", ViperKey: "storage.driver", Description: "Transcript storage driver (memory, sqlite, postgres)"},
	FlagSQLite:      {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite database (default: .relay/relay.db)"},
	FlagPostgres:    {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagEvents:      {Name: "events", ViperKey: "events.driver", Description: "Stream event publisher (none, kafka)"},
	FlagBrokers:     {Name: "kafka-brokers", ViperKey: "events.brokers", Description: "Comma separated Kafka broker addresses"},
	FlagTopic:       {Name: "kafka-topic", ViperKey: "events.topic", Description: "Kafka topic for stream events"},
	FlagProvider:    {Name: "provider", Shorthand: "p", ViperKey: "stream.provider", Description: "Provider type (openai, anthropic, google, openrouter)"},
	FlagModel:       {Name: "model", Shorthand: "m", ViperKey: "stream.model", Description: "Model to use"},
	FlagMaxTokens:   {Name: "max-tokens", ViperKey: "stream.max_tokens", Description: "Maximum tokens to generate"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
