package config

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Event publisher drivers.
const (
	EventsNone  = "none"
	EventsKafka = "kafka"
)

const (
	defaultGatewayListen = ":8080"
	defaultGatewayName   = "relay"
	defaultWorkers       = 3
	defaultQueueSize     = 256

	defaultStorageDriver = StorageMemory
	defaultEventsDriver  = EventsNone
	defaultEventsTopic   = "relay.events"

	defaultStreamProvider  = "openai"
	defaultStreamModel     = "gpt-4o-mini"
	defaultStreamMaxTokens = 1024
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Gateway: GatewayConfig{
			Listen:    defaultGatewayListen,
			Name:      defaultGatewayName,
			Workers:   defaultWorkers,
			QueueSize: defaultQueueSize,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		Events: EventsConfig{
			Driver: defaultEventsDriver,
			Topic:  defaultEventsTopic,
		},
		Stream: StreamConfig{
			Provider:  defaultStreamProvider,
			Model:     defaultStreamModel,
			MaxTokens: defaultStreamMaxTokens,
		},
	}
}
