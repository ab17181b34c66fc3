// Package dice provides the randomness abstraction used by every probability-gated
// decision in the combat decision engine.
package dice

// Source is the randomness provider for decision rolls.
//
// Implementations used by a single agent are only called from that agent's tick;
// shared implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}
