package posture

import (
	"github.com/cory-johannsen/duelist/internal/game/geom"
	"github.com/cory-johannsen/duelist/internal/game/spatial"
)

// Probe reports whether walking from origin along dir is safe.
type Probe interface {
	Clear(origin, dir geom.Vec2) bool
}

// GroundProbe casts a short segment of length Distance along the direction and
// requires ground at both ends and an unobstructed line between them.
type GroundProbe struct {
	Query    spatial.Query
	Distance float64
}

// Clear implements Probe.
//
// Postcondition: returns true when Query is nil, Distance <= 0, or dir is zero.
func (g GroundProbe) Clear(origin, dir geom.Vec2) bool {
	if g.Query == nil || g.Distance <= 0 || dir.IsZero() {
		return true
	}
	end := origin.Add(dir.Normalize().Scale(g.Distance))
	return g.Query.SampleGround(origin) && g.Query.SampleGround(end) && g.Query.ProbeClear(origin, end)
}
