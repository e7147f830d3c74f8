package gateway

import "github.com/papercomputeco/relay/pkg/config"

// Config is the gateway server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// Name identifies this gateway as the source of published events.
	Name string

	// Workers is the number of transcript persistence workers.
	Workers uint

	// QueueSize bounds the transcript persistence queue.
	QueueSize uint

	// Providers supplies base URLs and API keys for requests that omit them.
	// It can be replaced at runtime with Gateway.SetProviders.
	Providers config.ProvidersConfig
}
