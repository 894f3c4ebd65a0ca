package rewrite

import (
	"fmt"

	domainrewrite "redraft/internal/domain/services/rewrite"
)

// Registry routes model names to the provider that serves them. Providers
// are registered once at startup; lookups are read-only afterwards.
type Registry struct {
	providers []domainrewrite.Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider. Registration order is the routing order.
func (r *Registry) Register(p domainrewrite.Provider) {
	r.providers = append(r.providers, p)
}

// ForModel returns the first registered provider that supports the model.
func (r *Registry) ForModel(model string) (domainrewrite.Provider, error) {
	if model == "" {
		return nil, fmt.Errorf("model cannot be empty")
	}
	for _, p := range r.providers {
		if p.SupportsModel(model) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no provider available for model %q", model)
}

// Names returns the registered provider names in routing order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}
