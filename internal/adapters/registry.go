package adapters

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jpp0ca/MusicBooster-API/internal/domain"
	"github.com/jpp0ca/MusicBooster-API/internal/ports"
)

// CatalogRegistry maps provider names to their CatalogProvider implementations.
// It is safe for concurrent use.
type CatalogRegistry struct {
	mu        sync.RWMutex
	providers map[string]ports.CatalogProvider
}

// NewCatalogRegistry creates an empty registry.
func NewCatalogRegistry() *CatalogRegistry {
	return &CatalogRegistry{
		providers: make(map[string]ports.CatalogProvider),
	}
}

// Register adds a provider to the registry, keyed by its Name().
func (r *CatalogRegistry) Register(provider ports.CatalogProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// Get returns the provider for the given name. Unknown names yield an error
// wrapping domain.ErrUnknownProvider.
func (r *CatalogRegistry) Get(name string) (ports.CatalogProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return provider, nil
}

// Available returns the names of all registered providers, sorted.
func (r *CatalogRegistry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
