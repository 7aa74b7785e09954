package venue

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe registry of known venues.
type Registry struct {
	byID map[string]*Venue
	mu   sync.RWMutex
}

// NewRegistry creates a new empty venue registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Venue)}
}

// Register adds a venue to the registry.
// Panics if a venue with the same ID is already registered.
func (r *Registry) Register(v *Venue) {
	if v == nil {
		panic("venue: cannot register nil venue")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[v.ID()]; exists {
		panic(fmt.Sprintf("venue: %s already registered", v.ID()))
	}
	r.byID[v.ID()] = v
}

// Get retrieves a venue by platform id.
func (r *Registry) Get(id string) (*Venue, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byID[NormalizeID(id)]
	return v, ok
}

// IsOnChain reports whether the platform settles on a chain. Unknown
// platforms are treated as off-chain.
func (r *Registry) IsOnChain(id string) bool {
	v, ok := r.Get(id)
	return ok && v.OnChain()
}

// IsKnownSafe reports whether the platform is in the known-safe set.
// Unknown platforms never are.
func (r *Registry) IsKnownSafe(id string) bool {
	v, ok := r.Get(id)
	return ok && v.KnownSafe()
}

// All returns all registered venues sorted by id.
func (r *Registry) All() []*Venue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Venue, 0, len(r.byID))
	for _, v := range r.byID {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// Count returns the number of registered venues.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
