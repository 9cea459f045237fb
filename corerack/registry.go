package corerack

/*------------------------------------------------------------------
 *
 * Purpose:	Module registry: maps a type-id string to a
 *		factory closure plus catalog metadata.
 *
 *------------------------------------------------------------------*/

import (
	"sync"
)

// Factory builds a fresh module instance at the given sample rate.
type Factory func(sampleRate float64) Module

// PortSummary is precomputed catalog metadata about a module type's port
// counts and whether it touches audio at all.
type PortSummary struct {
	Inputs       int
	Outputs      int
	HasAudioIn   bool
	HasAudioOut  bool
}

// CatalogEntry is the display metadata the catalog exposes for one
// registered module type.
type CatalogEntry struct {
	TypeID      string
	Name        string
	Category    string
	Description string
	Keywords    []string
	Ports       PortSummary
	Tags        []string
}

// Registry maps type-id strings to factories and catalog metadata. It is
// safe for concurrent use; in practice it is built once at startup and
// read thereafter, but Register is guarded in case an embedder adds
// module types after construction.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	entries   map[string]CatalogEntry
	order     []string // insertion order, for stable catalog listing
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		entries:   make(map[string]CatalogEntry),
	}
}

// Register adds a module type under entry.TypeID. It fails if the type-id
// is already registered.
func (r *Registry) Register(entry CatalogEntry, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[entry.TypeID]; dup {
		return &ErrNameInUse{Name: entry.TypeID}
	}
	r.factories[entry.TypeID] = factory
	r.entries[entry.TypeID] = entry
	r.order = append(r.order, entry.TypeID)
	return nil
}

// Create instantiates a fresh module of the given type at sampleRate.
func (r *Registry) Create(typeID string, sampleRate float64) (Module, error) {
	r.mu.RLock()
	factory, ok := r.factories[typeID]
	r.mu.RUnlock()
	if !ok {
		return nil, &ErrUnknownType{TypeID: typeID}
	}
	return factory(sampleRate), nil
}

// Entry returns the catalog metadata for a registered type-id.
func (r *Registry) Entry(typeID string) (CatalogEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[typeID]
	return e, ok
}

// Has reports whether typeID is registered.
func (r *Registry) Has(typeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[typeID]
	return ok
}

// entriesInOrder returns a snapshot of all entries in registration order.
func (r *Registry) entriesInOrder() []CatalogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CatalogEntry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// describePorts builds the PortSummary half of a CatalogEntry from a
// module's declared port spec - convenience for Register callers.
func describePorts(spec *PortSpec) PortSummary {
	return PortSummary{
		Inputs:      len(spec.Inputs),
		Outputs:     len(spec.Outputs),
		HasAudioIn:  spec.HasAudioIn(),
		HasAudioOut: spec.HasAudioOut(),
	}
}
