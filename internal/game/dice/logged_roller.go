package dice

import (
	"time"

	"go.uber.org/zap"
)

// Roller wraps a Source and logger to provide logged decision rolls.
// All rolls are logged at debug level with a label, the drawn value, and the outcome.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil {
		panic("dice.NewLoggedRoller: src must not be nil")
	}
	if logger == nil {
		panic("dice.NewLoggedRoller: logger must not be nil")
	}
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness provider.
func (r *Roller) Source() Source {
	return r.src
}

// Chance draws once and reports whether the draw fell below p.
// A chance of 0 never succeeds and a chance of 1 always succeeds.
//
// Postcondition: exactly one value is consumed from the Source.
func (r *Roller) Chance(label string, p float64) bool {
	draw := r.src.Float64()
	ok := draw < p
	r.logger.Debug("chance roll",
		zap.String("label", label),
		zap.Float64("chance", p),
		zap.Float64("draw", draw),
		zap.Bool("success", ok),
	)
	return ok
}

// Uniform returns a value drawn uniformly from [lo, hi).
//
// Postcondition: returns lo without consuming a draw when hi <= lo.
func (r *Roller) Uniform(label string, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	v := lo + r.src.Float64()*(hi-lo)
	r.logger.Debug("uniform roll",
		zap.String("label", label),
		zap.Float64("min", lo),
		zap.Float64("max", hi),
		zap.Float64("value", v),
	)
	return v
}

// Duration returns a duration drawn uniformly from [lo, hi).
//
// Postcondition: returns lo without consuming a draw when hi <= lo.
func (r *Roller) Duration(label string, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return time.Duration(r.Uniform(label, float64(lo), float64(hi)))
}

// IntRange returns an int drawn uniformly from the closed range [lo, hi].
//
// Postcondition: returns lo without consuming a draw when hi <= lo.
func (r *Roller) IntRange(label string, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	v := lo + r.src.Intn(hi-lo+1)
	r.logger.Debug("int roll",
		zap.String("label", label),
		zap.Int("min", lo),
		zap.Int("max", hi),
		zap.Int("value", v),
	)
	return v
}
