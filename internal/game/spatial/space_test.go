package spatial_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duelist/internal/game/geom"
	"github.com/cory-johannsen/duelist/internal/game/spatial"
)

func newArena(t *testing.T) *spatial.Space {
	t.Helper()
	s, err := spatial.NewSpace(40, 40, 2, 0.4)
	require.NoError(t, err)
	return s
}

func TestNewSpace_RejectsBadArguments(t *testing.T) {
	_, err := spatial.NewSpace(0, 10, 1, 0.5)
	assert.Error(t, err)
	_, err = spatial.NewSpace(10, 10, 0, 0.5)
	assert.Error(t, err)
	_, err = spatial.NewSpace(10, 10, 1, -1)
	assert.Error(t, err)
}

func TestSpace_SampleGround_BoundsAndPits(t *testing.T) {
	s := newArena(t)
	s.AddPit(10, 10, 4, 4)

	assert.True(t, s.SampleGround(geom.Vec2{X: 5, Y: 5}))
	assert.False(t, s.SampleGround(geom.Vec2{X: 12, Y: 12}), "pit has no ground")
	assert.True(t, s.SampleGround(geom.Vec2{X: 14.5, Y: 12}), "just outside the pit")
	assert.False(t, s.SampleGround(geom.Vec2{X: -1, Y: 5}), "outside the arena")
	assert.False(t, s.SampleGround(geom.Vec2{X: 40, Y: 5}))
}

func TestSpace_ProbeClear_Walls(t *testing.T) {
	s := newArena(t)
	s.AddWall(20, 0, 1, 30)

	assert.False(t, s.ProbeClear(geom.Vec2{X: 15, Y: 10}, geom.Vec2{X: 25, Y: 10}), "wall between points")
	assert.True(t, s.ProbeClear(geom.Vec2{X: 15, Y: 35}, geom.Vec2{X: 25, Y: 35}), "path passes below the wall")
	assert.True(t, s.ProbeClear(geom.Vec2{X: 5, Y: 5}, geom.Vec2{X: 5, Y: 5}), "zero-length probe in open space")
	assert.False(t, s.ProbeClear(geom.Vec2{X: 5, Y: 5}, geom.Vec2{X: -2, Y: 5}), "leaves the arena")
}

func TestSpace_ProbeClear_WallNarrowerThanACell(t *testing.T) {
	s, err := spatial.NewSpace(20, 20, 2, 0.4)
	require.NoError(t, err)
	s.AddWall(8, 5, 0.5, 10)

	assert.False(t, s.ProbeClear(geom.Vec2{X: 5, Y: 10}, geom.Vec2{X: 12, Y: 10}), "thin wall between points")
	assert.False(t, s.ProbeClear(geom.Vec2{X: 12, Y: 10}, geom.Vec2{X: 5, Y: 10}), "thin wall from the other side")
	assert.True(t, s.ProbeClear(geom.Vec2{X: 5, Y: 17}, geom.Vec2{X: 12, Y: 17}), "path passes below the thin wall")
}

func TestSpace_ProbeClear_BodyTouchesAdjacentWall(t *testing.T) {
	s, err := spatial.NewSpace(20, 20, 2, 0.4)
	require.NoError(t, err)
	s.AddWall(6, 0, 1, 20)

	assert.False(t, s.ProbeClear(geom.Vec2{X: 5.6, Y: 10}, geom.Vec2{X: 5.7, Y: 10}), "body edge crosses the wall face")
	assert.True(t, s.ProbeClear(geom.Vec2{X: 5.2, Y: 10}, geom.Vec2{X: 5.5, Y: 10}), "body stays clear of the wall face")
}

func TestSpace_SampleGround_PitNarrowerThanACell(t *testing.T) {
	s := newArena(t)
	s.AddPit(10.2, 10.2, 0.3, 0.3)

	assert.False(t, s.SampleGround(geom.Vec2{X: 10.35, Y: 10.35}))
	assert.True(t, s.SampleGround(geom.Vec2{X: 10.6, Y: 10.35}))
}

func TestSpace_FindCandidatesInRadius_NearestFirst(t *testing.T) {
	s := newArena(t)
	near, far, out := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, s.AddActor(far, geom.Vec2{X: 16, Y: 10}, 0.5))
	require.NoError(t, s.AddActor(near, geom.Vec2{X: 12, Y: 10}, 0.5))
	require.NoError(t, s.AddActor(out, geom.Vec2{X: 30, Y: 30}, 0.5))

	got := s.FindCandidatesInRadius(geom.Vec2{X: 10, Y: 10}, 8, nil)
	require.Len(t, got, 2)
	assert.Equal(t, near, got[0].ID)
	assert.InDelta(t, 2.0, got[0].Distance, 1e-9)
	assert.Equal(t, far, got[1].ID)
}

func TestSpace_FindCandidatesInRadius_SmallRadius(t *testing.T) {
	s := newArena(t)
	id := uuid.New()
	require.NoError(t, s.AddActor(id, geom.Vec2{X: 10.6, Y: 10.5}, 0.3))

	got := s.FindCandidatesInRadius(geom.Vec2{X: 10.5, Y: 10.5}, 0.4, nil)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.InDelta(t, 0.1, got[0].Distance, 1e-9)
}

func TestSpace_FindCandidatesInRadius_ActorAtSearchEdge(t *testing.T) {
	s := newArena(t)
	edge, past := uuid.New(), uuid.New()
	require.NoError(t, s.AddActor(edge, geom.Vec2{X: 13.9, Y: 10}, 0.1))
	require.NoError(t, s.AddActor(past, geom.Vec2{X: 10, Y: 14.2}, 0.1))

	got := s.FindCandidatesInRadius(geom.Vec2{X: 10, Y: 10}, 4, nil)
	require.Len(t, got, 1)
	assert.Equal(t, edge, got[0].ID)
	assert.InDelta(t, 3.9, got[0].Distance, 1e-9)
}

func TestSpace_FindCandidatesInRadius_Filter(t *testing.T) {
	s := newArena(t)
	self, other := uuid.New(), uuid.New()
	require.NoError(t, s.AddActor(self, geom.Vec2{X: 10, Y: 10}, 0.5))
	require.NoError(t, s.AddActor(other, geom.Vec2{X: 13, Y: 10}, 0.5))

	got := s.FindCandidatesInRadius(geom.Vec2{X: 10, Y: 10}, 5, func(c spatial.Candidate) bool {
		return c.ID != self
	})
	require.Len(t, got, 1)
	assert.Equal(t, other, got[0].ID)
}

func TestSpace_MoveAndRemoveActor(t *testing.T) {
	s := newArena(t)
	id := uuid.New()
	require.NoError(t, s.AddActor(id, geom.Vec2{X: 5, Y: 5}, 0.5))
	assert.Error(t, s.AddActor(id, geom.Vec2{X: 5, Y: 5}, 0.5), "duplicate registration")

	s.MoveActor(id, geom.Vec2{X: 30, Y: 30})
	pos, ok := s.ActorPosition(id)
	require.True(t, ok)
	assert.InDelta(t, 30, pos.X, 1e-9)
	assert.Empty(t, s.FindCandidatesInRadius(geom.Vec2{X: 5, Y: 5}, 3, nil))
	assert.Len(t, s.FindCandidatesInRadius(geom.Vec2{X: 30, Y: 30}, 3, nil), 1)

	s.RemoveActor(id)
	assert.Empty(t, s.FindCandidatesInRadius(geom.Vec2{X: 30, Y: 30}, 3, nil))
	_, ok = s.ActorPosition(id)
	assert.False(t, ok)
}

// TestProperty_Space_CandidatesWithinRadius verifies that every returned
// candidate lies within the search radius and the list is sorted.
func TestProperty_Space_CandidatesWithinRadius(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s, err := spatial.NewSpace(40, 40, 2, 0.4)
		if err != nil {
			rt.Fatal(err)
		}
		n := rapid.IntRange(0, 8).Draw(rt, "n")
		for i := 0; i < n; i++ {
			p := geom.Vec2{
				X: rapid.Float64Range(1, 39).Draw(rt, "x"),
				Y: rapid.Float64Range(1, 39).Draw(rt, "y"),
			}
			if err := s.AddActor(uuid.New(), p, 0.5); err != nil {
				rt.Fatal(err)
			}
		}
		center := geom.Vec2{X: rapid.Float64Range(0, 40).Draw(rt, "cx"), Y: rapid.Float64Range(0, 40).Draw(rt, "cy")}
		radius := rapid.Float64Range(0.1, 20).Draw(rt, "radius")
		got := s.FindCandidatesInRadius(center, radius, nil)
		for i, c := range got {
			if c.Distance > radius {
				rt.Fatalf("candidate %d at %v outside radius %v", i, c.Distance, radius)
			}
			if i > 0 && got[i-1].Distance > c.Distance {
				rt.Fatalf("candidates not sorted at %d", i)
			}
		}
	})
}
