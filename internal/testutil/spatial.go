package testutil

import (
	"github.com/cory-johannsen/duelist/internal/game/geom"
	"github.com/cory-johannsen/duelist/internal/game/spatial"
)

// FakeSpatial is a spatial.Query with switchable answers.
type FakeSpatial struct {
	// NoGround makes every SampleGround call fail.
	NoGround bool
	// Blocked makes every ProbeClear call fail.
	Blocked bool
	// Candidates is returned, filtered, by FindCandidatesInRadius.
	Candidates []spatial.Candidate
	// Searches counts FindCandidatesInRadius calls.
	Searches int
}

// SampleGround implements spatial.Query.
func (f *FakeSpatial) SampleGround(geom.Vec2) bool { return !f.NoGround }

// ProbeClear implements spatial.Query.
func (f *FakeSpatial) ProbeClear(_, _ geom.Vec2) bool { return !f.Blocked }

// FindCandidatesInRadius implements spatial.Query. Radius is ignored.
func (f *FakeSpatial) FindCandidatesInRadius(_ geom.Vec2, _ float64, filter func(spatial.Candidate) bool) []spatial.Candidate {
	f.Searches++
	var out []spatial.Candidate
	for _, c := range f.Candidates {
		if filter == nil || filter(c) {
			out = append(out, c)
		}
	}
	return out
}
