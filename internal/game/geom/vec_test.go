package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duelist/internal/game/geom"
)

func TestVec2_Basics(t *testing.T) {
	a := geom.Vec2{X: 3, Y: 4}
	assert.Equal(t, 5.0, a.Len())
	assert.Equal(t, geom.Vec2{X: 4, Y: 6}, a.Add(geom.Vec2{X: 1, Y: 2}))
	assert.Equal(t, geom.Vec2{X: 2, Y: 2}, a.Sub(geom.Vec2{X: 1, Y: 2}))
	assert.Equal(t, 11.0, a.Dot(geom.Vec2{X: 1, Y: 2}))
	assert.Equal(t, 5.0, geom.Zero.Dist(a))
	assert.True(t, geom.Zero.Normalize().IsZero())
	assert.Equal(t, geom.Vec2{X: 0, Y: -1}, geom.Vec2{X: 1}.Right())
}

func TestVec2_AngleTo(t *testing.T) {
	x := geom.Vec2{X: 1}
	assert.InDelta(t, 90, x.AngleTo(geom.Vec2{Y: 2}), 1e-9)
	assert.InDelta(t, 180, x.AngleTo(geom.Vec2{X: -1}), 1e-9)
	assert.Equal(t, 0.0, x.AngleTo(geom.Zero))
}

func TestVec2_RotateMatchesRight(t *testing.T) {
	r := geom.Vec2{X: 1}.Rotate(-90)
	assert.InDelta(t, 0, r.X, 1e-9)
	assert.InDelta(t, -1, r.Y, 1e-9)
}

func TestProperty_Vec2_RotatePreservesLengthAndAngle(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := geom.Vec2{
			X: rapid.Float64Range(-100, 100).Draw(t, "x"),
			Y: rapid.Float64Range(-100, 100).Draw(t, "y"),
		}
		deg := rapid.Float64Range(-180, 180).Draw(t, "deg")
		r := v.Rotate(deg)
		if math.Abs(r.Len()-v.Len()) > 1e-9*(1+v.Len()) {
			t.Fatalf("length changed: %v -> %v", v.Len(), r.Len())
		}
		if v.Len() > 1e-6 && math.Abs(v.AngleTo(r)-math.Abs(deg)) > 1e-4 {
			t.Fatalf("angle %v, want %v", v.AngleTo(r), math.Abs(deg))
		}
	})
}
