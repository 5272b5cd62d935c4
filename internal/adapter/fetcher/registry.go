// Package fetcher contains one backend adapter per media source.
package fetcher

import "github.com/meryload/loadbot/internal/domain"

// Registry holds registered fetch backends keyed by source.
type Registry struct {
	fetchers []domain.Fetcher
}

// NewRegistry creates a new fetcher registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a fetcher to the registry. A later registration for the
// same source wins over an earlier one.
func (r *Registry) Register(f domain.Fetcher) {
	r.fetchers = append(r.fetchers, f)
}

// For returns the fetcher handling the given source, or nil.
func (r *Registry) For(source domain.Source) domain.Fetcher {
	for i := len(r.fetchers) - 1; i >= 0; i-- {
		if r.fetchers[i].Source() == source {
			return r.fetchers[i]
		}
	}
	return nil
}

// Fetchers returns all registered fetchers.
func (r *Registry) Fetchers() []domain.Fetcher {
	return r.fetchers
}
