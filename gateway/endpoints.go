package gateway

import (
	"sync/atomic"

	"github.com/papercomputeco/relay/pkg/config"
	"github.com/papercomputeco/relay/pkg/llm/provider"
)

// endpoints holds the configured provider endpoints. Reads never block a
// concurrent reload.
type endpoints struct {
	current atomic.Pointer[config.ProvidersConfig]
}

func newEndpoints(c config.ProvidersConfig) *endpoints {
	e := &endpoints{}
	e.set(c)
	return e
}

func (e *endpoints) set(c config.ProvidersConfig) {
	e.current.Store(&c)
}

// Resolve fills an empty base URL or API key of pc from the configured
// endpoint of its provider.
func (e *endpoints) Resolve(pc *provider.Config) error {
	return e.current.Load().Resolve(pc)
}
