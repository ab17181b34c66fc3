// Package posture chooses the passive stance an agent holds between offensive
// actions: standing still, or walking back, sideways, or forward relative to
// its opponent.
package posture

import (
	"time"

	"github.com/cory-johannsen/duelist/internal/game/geom"
)

// Posture is a cooldown stance.
type Posture int

const (
	// Idle holds position and only rotates toward the target.
	Idle Posture = iota
	Back
	Left
	Right
	Forward
)

// Directional lists every posture that moves, in probe order.
var Directional = []Posture{Back, Left, Right, Forward}

// String returns the posture name.
func (p Posture) String() string {
	switch p {
	case Idle:
		return "idle"
	case Back:
		return "back"
	case Left:
		return "left"
	case Right:
		return "right"
	case Forward:
		return "forward"
	default:
		return "unknown"
	}
}

// Weights are the relative selection weights per posture. Negative weights count as zero.
type Weights struct {
	Idle    float64 `yaml:"idle"`
	Back    float64 `yaml:"back"`
	Left    float64 `yaml:"left"`
	Right   float64 `yaml:"right"`
	Forward float64 `yaml:"forward"`
}

// Of returns the weight for p.
func (w Weights) Of(p Posture) float64 {
	var v float64
	switch p {
	case Idle:
		v = w.Idle
	case Back:
		v = w.Back
	case Left:
		v = w.Left
	case Right:
		v = w.Right
	case Forward:
		v = w.Forward
	}
	if v < 0 {
		return 0
	}
	return v
}

// DurationRange is the closed range a posture hold time is drawn from.
type DurationRange struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Basis is the movement frame for postures, built from the agent-to-target axis.
//
// Invariant: Forward and Right are unit vectors and orthogonal.
type Basis struct {
	Forward geom.Vec2
	Right   geom.Vec2
}

// NewBasis builds a basis whose Forward points from self toward target. When
// the two coincide, fallback is used, and when that is zero too, +X.
func NewBasis(self, target, fallback geom.Vec2) Basis {
	f := target.Sub(self).Normalize()
	if f.IsZero() {
		f = fallback.Normalize()
	}
	if f.IsZero() {
		f = geom.Vec2{X: 1}
	}
	return Basis{Forward: f, Right: f.Right()}
}

// Direction returns the unit movement vector for p, or Zero for Idle.
func (b Basis) Direction(p Posture) geom.Vec2 {
	switch p {
	case Forward:
		return b.Forward
	case Back:
		return b.Forward.Scale(-1)
	case Right:
		return b.Right
	case Left:
		return b.Right.Scale(-1)
	default:
		return geom.Zero
	}
}
