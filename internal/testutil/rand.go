package testutil

import "sync"

// ScriptedSource is a dice.Source that replays a fixed sequence of draws.
// Once the script is exhausted the last value repeats. An empty script
// always draws 0.
type ScriptedSource struct {
	mu    sync.Mutex
	draws []float64
	next  int
}

// NewScriptedSource returns a source replaying draws in order.
//
// Precondition: every draw is in [0, 1).
func NewScriptedSource(draws ...float64) *ScriptedSource {
	return &ScriptedSource{draws: draws}
}

// Float64 returns the next scripted draw.
func (s *ScriptedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draws) == 0 {
		return 0
	}
	i := s.next
	if i >= len(s.draws) {
		i = len(s.draws) - 1
	} else {
		s.next++
	}
	return s.draws[i]
}

// Intn maps the next scripted draw onto [0, n).
//
// Precondition: n > 0.
func (s *ScriptedSource) Intn(n int) int {
	if n <= 0 {
		panic("testutil: Intn called with n <= 0")
	}
	v := int(s.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Consumed returns how many scripted draws have been taken.
func (s *ScriptedSource) Consumed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
