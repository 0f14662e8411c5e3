package engine

import (
	"fmt"
	"sort"
	"sync"

	"ocrsvc/internal/config"
	"ocrsvc/internal/port"
)

// ProviderFactory creates an EngineProvider from the engine config.
type ProviderFactory func(cfg *config.EngineConfig) (port.EngineProvider, error)

// registry of engine provider factories, populated explicitly via RegisterProvider
// by the binaries that link the backends in.
var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers an engine provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// NewProvider creates the EngineProvider selected by cfg.Provider using the registered factory.
func NewProvider(cfg *config.EngineConfig) (port.EngineProvider, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown engine provider: %s (registered: %v)", cfg.Provider, Providers())
	}
	return factory(cfg)
}

// Providers returns the sorted names of all registered providers.
func Providers() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
