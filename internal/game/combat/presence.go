// Package combat tracks which combatants are currently engaged in a fight.
package combat

import (
	"sync"

	"github.com/google/uuid"
)

// Presence counts the combatants currently engaged in combat so ambient
// systems can ask whether any fight is in progress.
//
// Presence is safe for concurrent use.
type Presence struct {
	mu      sync.RWMutex
	members map[uuid.UUID]struct{}
}

// NewPresence creates an empty Presence registry.
//
// Postcondition: Returns a non-nil Presence with Count() == 0.
func NewPresence() *Presence {
	return &Presence{members: make(map[uuid.UUID]struct{})}
}

// Register marks id as in combat.
//
// Postcondition: Returns true if id was not already registered. Registering
// twice does not change Count.
func (p *Presence) Register(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.members[id]; ok {
		return false
	}
	p.members[id] = struct{}{}
	return true
}

// Unregister clears id's membership.
//
// Postcondition: Returns true if id was registered. Unregistering an absent
// id does not change Count.
func (p *Presence) Unregister(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.members[id]; !ok {
		return false
	}
	delete(p.members, id)
	return true
}

// Has reports whether id is registered.
func (p *Presence) Has(id uuid.UUID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.members[id]
	return ok
}

// Count returns the number of registered combatants.
func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}

// Any reports whether at least one combatant is registered.
func (p *Presence) Any() bool {
	return p.Count() > 0
}
