package ai

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/duelist/internal/game/geom"
)

// Target is the read-only view of an opposing combatant.
type Target interface {
	ID() uuid.UUID
	Position() geom.Vec2
	IsAttacking() bool
	IsGuardBroken() bool
	IsDead() bool
}

// TargetSnapshot caches one tick's reading of the current target. It holds a
// reference to the target, never ownership.
type TargetSnapshot struct {
	target      Target
	ID          uuid.UUID
	Position    geom.Vec2
	Attacking   bool
	GuardBroken bool
	Dead        bool
}

// Valid reports whether the snapshot refers to a live target.
func (s TargetSnapshot) Valid() bool {
	return s.target != nil && !s.Dead
}

// bind points the snapshot at t and refreshes it.
func (s *TargetSnapshot) bind(t Target) {
	*s = TargetSnapshot{target: t}
	if t != nil {
		s.ID = t.ID()
	}
	s.refresh()
}

// refresh re-reads the target's flags.
func (s *TargetSnapshot) refresh() {
	if s.target == nil {
		return
	}
	s.Position = s.target.Position()
	s.Attacking = s.target.IsAttacking()
	s.GuardBroken = s.target.IsGuardBroken()
	s.Dead = s.target.IsDead()
}

func (s *TargetSnapshot) clear() {
	*s = TargetSnapshot{}
}
