package newsletter

import "strings"

// Registry maps feed slugs to their content adapters. It is populated once
// at startup and read-only afterwards, so concurrent lookups need no
// locking.
type Registry struct {
	adapters map[string]SourceAdapter
	fallback SourceAdapter
}

// NewRegistry copies the adapter map into an immutable registry.
func NewRegistry(adapters map[string]SourceAdapter) *Registry {
	m := make(map[string]SourceAdapter, len(adapters))
	for slug, adapter := range adapters {
		m[strings.ToLower(strings.TrimSpace(slug))] = adapter
	}
	return &Registry{adapters: m, fallback: DefaultAdapter{}}
}

// Lookup returns the adapter for a feed slug. Unknown and empty slugs get
// the default adapter; lookup never fails.
func (r *Registry) Lookup(slug string) SourceAdapter {
	if a, ok := r.adapters[strings.ToLower(strings.TrimSpace(slug))]; ok {
		return a
	}
	return r.fallback
}

// BuiltinAdapters returns the adapter set for the known brands, keyed by
// feed slug.
func BuiltinAdapters(resolve Resolver) map[string]SourceAdapter {
	return map[string]SourceAdapter{
		"levine":   NewMoneyStuffAdapter(resolve),
		"yglesias": NewSubstackAdapter("Slow Boring", "slowboring.com", resolve),
		"silver":   NewSubstackAdapter("Silver Bulletin", "natesilver.net", resolve),
	}
}
