package ai

import (
	"fmt"
	"sort"
)

// ProfileRegistry indexes Profiles by ID.
//
// Invariant: each profile ID is registered at most once.
type ProfileRegistry struct {
	profiles map[string]*Profile
}

// NewProfileRegistry returns an empty ProfileRegistry.
func NewProfileRegistry() *ProfileRegistry {
	return &ProfileRegistry{profiles: make(map[string]*Profile)}
}

// Register stores p.
//
// Precondition: p must not be nil.
// Postcondition: returns error on profile ID collision.
func (r *ProfileRegistry) Register(p *Profile) error {
	if _, exists := r.profiles[p.ID]; exists {
		return fmt.Errorf("ai.ProfileRegistry: profile %q already registered", p.ID)
	}
	r.profiles[p.ID] = p
	return nil
}

// RegisterAll stores every profile, stopping at the first collision.
func (r *ProfileRegistry) RegisterAll(ps []*Profile) error {
	for _, p := range ps {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the profile for id, or false if not registered.
func (r *ProfileRegistry) Get(id string) (*Profile, bool) {
	p, ok := r.profiles[id]
	return p, ok
}

// IDs returns the registered IDs in sorted order.
func (r *ProfileRegistry) IDs() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered profiles.
func (r *ProfileRegistry) Len() int { return len(r.profiles) }
