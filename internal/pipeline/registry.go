package pipeline

import (
	"cmp"
	"iter"
	"slices"
	"sync"

	"github.com/tjfontaine/ethics-pipeline/internal/core/domain"
	"github.com/tjfontaine/ethics-pipeline/internal/core/ports"
	"github.com/tjfontaine/ethics-pipeline/internal/plugin/registry"
)

// Entry is a registered plugin together with its placement.
type Entry struct {
	ID       string
	Type     string
	Priority int
	Weight   float64
	Enabled  bool
	Plugin   ports.Plugin
}

// PluginInfo describes a registered plugin for listing.
type PluginInfo struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Priority int     `json:"priority"`
	Weight   float64 `json:"weight"`
	Enabled  bool    `json:"enabled"`
}

// Registry holds the plugins of one load in evaluation order: ascending
// priority, registration order on ties.
type Registry struct {
	mu      sync.RWMutex
	entries []*Entry
	byID    map[string]*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Entry)}
}

// Register adds a plugin under the descriptor's identifier. It returns a
// *domain.DuplicateIdentifierError if the identifier is taken.
func (r *Registry) Register(desc domain.Descriptor, plugin ports.Plugin) error {
	id := desc.Identifier()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; exists {
		return &domain.DuplicateIdentifierError{PluginID: id}
	}

	e := &Entry{
		ID:       id,
		Type:     desc.Type,
		Priority: desc.Priority,
		Weight:   desc.EffectiveWeight(),
		Enabled:  desc.IsEnabled(),
		Plugin:   plugin,
	}
	r.byID[id] = e
	r.entries = append(r.entries, e)
	// Entries are appended in registration order, so a stable sort keeps
	// that order among equal priorities.
	slices.SortStableFunc(r.entries, func(a, b *Entry) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return nil
}

func (r *Registry) snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = *e
	}
	return out
}

// Ordered yields every registered plugin by identifier in evaluation order.
// Each iteration works on a fresh snapshot, so the sequence can be ranged
// over any number of times.
func (r *Registry) Ordered() iter.Seq2[string, ports.Plugin] {
	return func(yield func(string, ports.Plugin) bool) {
		for _, e := range r.snapshot() {
			if !yield(e.ID, e.Plugin) {
				return
			}
		}
	}
}

// Active yields the enabled entries in evaluation order.
func (r *Registry) Active() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range r.snapshot() {
			if !e.Enabled {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// SetEnabled toggles a plugin. It reports false if id is not registered.
func (r *Registry) SetEnabled(id string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[id]
	if !ok {
		return false
	}
	e.Enabled = enabled
	return true
}

// Infos lists the registered plugins in evaluation order.
func (r *Registry) Infos() []PluginInfo {
	entries := r.snapshot()
	infos := make([]PluginInfo, len(entries))
	for i, e := range entries {
		infos[i] = PluginInfo{
			ID:       e.ID,
			Type:     e.Type,
			Priority: e.Priority,
			Weight:   e.Weight,
			Enabled:  e.Enabled,
		}
	}
	return infos
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// LoadRegistry builds a registry from descriptors, instantiating each one
// through the catalog. Any failure aborts the whole load with a
// *domain.ConfigurationError and no registry.
func LoadRegistry(catalog *registry.Catalog, descriptors []domain.Descriptor) (*Registry, error) {
	r := NewRegistry()
	for _, desc := range descriptors {
		id := desc.Identifier()
		if _, exists := r.byID[id]; exists {
			return nil, domain.NewConfigurationError(domain.ConfigErrorDuplicateID, id,
				&domain.DuplicateIdentifierError{PluginID: id})
		}

		plugin, err := catalog.Create(desc)
		if err != nil {
			return nil, err
		}

		if err := r.Register(desc, plugin); err != nil {
			return nil, domain.NewConfigurationError(domain.ConfigErrorDuplicateID, id, err)
		}
	}
	return r, nil
}
