package posture

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duelist/internal/game/dice"
	"github.com/cory-johannsen/duelist/internal/game/geom"
)

// Selector draws weighted-random postures.
type Selector struct {
	roller *dice.Roller
	logger *zap.Logger
}

// NewSelector returns a Selector drawing from roller.
//
// Precondition: roller and logger must not be nil.
func NewSelector(roller *dice.Roller, logger *zap.Logger) *Selector {
	if roller == nil {
		panic("posture.NewSelector: roller must not be nil")
	}
	if logger == nil {
		panic("posture.NewSelector: logger must not be nil")
	}
	return &Selector{roller: roller, logger: logger}
}

// Pick chooses a posture and the time it ends.
//
// Every directional posture with positive weight is probed from origin along
// its basis direction; a failed probe zeroes that weight for this pick only.
// A nil probe treats every direction as clear.
//
// Postcondition: returns Idle when no posture keeps a positive weight.
// Postcondition: end is in [now+dur.Min, now+dur.Max]; a Max below Min yields now+Min.
func (s *Selector) Pick(now time.Duration, w Weights, dur DurationRange, basis Basis, origin geom.Vec2, probe Probe) (Posture, time.Duration) {
	var (
		weights [Forward + 1]float64
		total   float64
	)
	weights[Idle] = w.Of(Idle)
	for _, p := range Directional {
		v := w.Of(p)
		if v > 0 && probe != nil && !probe.Clear(origin, basis.Direction(p)) {
			s.logger.Debug("posture blocked", zap.Stringer("posture", p))
			v = 0
		}
		weights[p] = v
	}
	for _, v := range weights {
		total += v
	}

	chosen := Idle
	if total > 0 {
		u := s.roller.Uniform("posture.pick", 0, total)
		var cum float64
		for p, v := range weights {
			if v <= 0 {
				continue
			}
			chosen = Posture(p)
			cum += v
			if u < cum {
				break
			}
		}
	}

	lo := dur.Min
	if lo < 0 {
		lo = 0
	}
	hold := s.roller.Duration("posture.duration", lo, dur.Max)
	return chosen, now + hold
}
