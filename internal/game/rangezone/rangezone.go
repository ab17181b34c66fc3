// Package rangezone classifies a scalar distance into ordered range zones with a
// hysteresis band, so that distance jitter at a boundary cannot re-trigger a
// zone change every frame.
package rangezone

import "fmt"

// Zone is an ordinal distance bucket. Zone 0 is the innermost zone.
type Zone int

// Canonical zones used by the decision engine.
const (
	Melee Zone = iota
	Buffer
	Shoot
	Approach
)

// String returns the canonical zone name, or "zone<N>" for other ordinals.
func (z Zone) String() string {
	switch z {
	case Melee:
		return "melee"
	case Buffer:
		return "buffer"
	case Shoot:
		return "shoot"
	case Approach:
		return "approach"
	default:
		return fmt.Sprintf("zone%d", int(z))
	}
}

// Classifier maps distances to zones.
//
// Invariant: thresholds are the upper bounds of zones 0..n-1; zone n is unbounded.
type Classifier struct {
	thresholds []float64
	margin     float64
	ascending  bool
}

// NewClassifier returns a Classifier for the given ascending thresholds and
// hysteresis margin.
//
// A negative margin is treated as zero. Non-ascending thresholds do not fail:
// the resulting Classifier reports the outermost zone for every distance.
func NewClassifier(thresholds []float64, margin float64) *Classifier {
	if margin < 0 {
		margin = 0
	}
	ts := make([]float64, len(thresholds))
	copy(ts, thresholds)
	asc := true
	for i := 1; i < len(ts); i++ {
		if ts[i] <= ts[i-1] {
			asc = false
			break
		}
	}
	return &Classifier{thresholds: ts, margin: margin, ascending: asc}
}

// Outermost returns the unbounded outer zone.
func (c *Classifier) Outermost() Zone {
	return Zone(len(c.thresholds))
}

// Margin returns the hysteresis margin.
func (c *Classifier) Margin() float64 {
	return c.margin
}

// Valid reports whether the thresholds are strictly ascending.
func (c *Classifier) Valid() bool {
	return c.ascending
}

// Raw returns the zone for distance from the thresholds alone.
//
// Postcondition: 0 <= result <= Outermost().
func (c *Classifier) Raw(distance float64) Zone {
	if !c.ascending {
		return c.Outermost()
	}
	for i, t := range c.thresholds {
		if distance <= t {
			return Zone(i)
		}
	}
	return c.Outermost()
}

// Classify returns the zone the caller should move to from current at distance.
//
// A move only commits once distance has crossed the boundary adjacent to current
// by more than the margin, and never moves more than one zone per call.
//
// Postcondition: |result - current| <= 1 whenever current is a valid zone.
func (c *Classifier) Classify(current Zone, distance float64) Zone {
	if !c.ascending {
		return c.Outermost()
	}
	if current < 0 || current > c.Outermost() {
		return c.Raw(distance)
	}
	raw := c.Raw(distance)
	switch {
	case raw == current:
		return current
	case raw > current:
		if distance > c.thresholds[current]+c.margin {
			return current + 1
		}
	default:
		if distance < c.thresholds[current-1]-c.margin {
			return current - 1
		}
	}
	return current
}
