// Package spatial answers the ground, obstruction, and proximity questions the
// decision engine asks about the arena.
package spatial

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/duelist/internal/game/geom"
)

// Candidate is an actor found by a proximity search.
type Candidate struct {
	ID       uuid.UUID
	Position geom.Vec2
	Distance float64
}

// Query is the spatial service injected into agents and posture probes.
type Query interface {
	// SampleGround reports whether p lies on walkable ground.
	SampleGround(p geom.Vec2) bool
	// ProbeClear reports whether a body can travel in a straight line from one point to another.
	ProbeClear(from, to geom.Vec2) bool
	// FindCandidatesInRadius returns the actors within radius of center that
	// pass filter, nearest first. A nil filter accepts every actor.
	FindCandidatesInRadius(center geom.Vec2, radius float64, filter func(Candidate) bool) []Candidate
}
