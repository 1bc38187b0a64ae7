package source

import (
	"DealPull/internal/domain/models"
	"DealPull/internal/domain/repository"
)

// Registry maps correlation keys onto the fetcher that can serve them.
// One fetcher handles the feed, one fetcher per catalog store, and a
// single fetcher serves every category key.
type Registry struct {
	feed     repository.SourceFetcher
	category repository.SourceFetcher
	stores   map[string]repository.SourceFetcher
}

func NewRegistry(feed, category repository.SourceFetcher, stores map[string]repository.SourceFetcher) *Registry {
	return &Registry{
		feed:     feed,
		category: category,
		stores:   stores,
	}
}

// Resolve returns the fetcher responsible for key.
func (r *Registry) Resolve(key models.CorrelationKey) (repository.SourceFetcher, bool) {
	switch key.Kind {
	case models.KindFeed:
		if r.feed == nil {
			return nil, false
		}
		return r.feed, true
	case models.KindStore:
		f, ok := r.stores[key.ID]
		return f, ok
	case models.KindCategory:
		if r.category == nil {
			return nil, false
		}
		return r.category, true
	}
	return nil, false
}

// Stores lists the catalog store names the registry can serve.
func (r *Registry) Stores() []string {
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	return names
}
