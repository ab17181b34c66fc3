package rangezone_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duelist/internal/game/rangezone"
)

func canonical() *rangezone.Classifier {
	return rangezone.NewClassifier([]float64{1.0, 3.0, 8.0}, 0.2)
}

func TestClassifier_Raw(t *testing.T) {
	c := canonical()
	assert.Equal(t, rangezone.Melee, c.Raw(0.5))
	assert.Equal(t, rangezone.Melee, c.Raw(1.0))
	assert.Equal(t, rangezone.Buffer, c.Raw(1.01))
	assert.Equal(t, rangezone.Shoot, c.Raw(8.0))
	assert.Equal(t, rangezone.Approach, c.Raw(50))
}

// TestClassifier_Classify_BufferToMeleeNeedsMargin covers the 0.8 / 0.75 scenario:
// with a melee threshold of 1.0 and a 0.2 margin, 0.8 has not crossed yet.
func TestClassifier_Classify_BufferToMeleeNeedsMargin(t *testing.T) {
	c := canonical()
	assert.Equal(t, rangezone.Buffer, c.Classify(rangezone.Buffer, 0.8))
	assert.Equal(t, rangezone.Melee, c.Classify(rangezone.Buffer, 0.75))
}

func TestClassifier_Classify_OutwardNeedsMargin(t *testing.T) {
	c := canonical()
	assert.Equal(t, rangezone.Melee, c.Classify(rangezone.Melee, 1.1))
	assert.Equal(t, rangezone.Melee, c.Classify(rangezone.Melee, 1.2))
	assert.Equal(t, rangezone.Buffer, c.Classify(rangezone.Melee, 1.25))
}

func TestClassifier_Classify_TeleportWalksOneZone(t *testing.T) {
	c := canonical()
	z := rangezone.Melee
	var seen []rangezone.Zone
	for i := 0; i < 5; i++ {
		z = c.Classify(z, 100)
		seen = append(seen, z)
	}
	assert.Equal(t, []rangezone.Zone{rangezone.Buffer, rangezone.Shoot, rangezone.Approach, rangezone.Approach, rangezone.Approach}, seen)

	assert.Equal(t, rangezone.Shoot, c.Classify(rangezone.Approach, 0))
}

func TestClassifier_NonAscendingFallsBackToOutermost(t *testing.T) {
	c := rangezone.NewClassifier([]float64{3, 1, 8}, 0.2)
	assert.False(t, c.Valid())
	assert.Equal(t, rangezone.Approach, c.Raw(0.1))
	assert.Equal(t, rangezone.Approach, c.Classify(rangezone.Melee, 0.1))
}

func TestClassifier_NegativeMarginClamped(t *testing.T) {
	c := rangezone.NewClassifier([]float64{1}, -5)
	assert.Equal(t, 0.0, c.Margin())
	assert.Equal(t, rangezone.Zone(1), c.Classify(rangezone.Melee, 1.01))
}

func TestClassifier_InvalidCurrentUsesRaw(t *testing.T) {
	c := canonical()
	assert.Equal(t, rangezone.Shoot, c.Classify(rangezone.Zone(-1), 5))
	assert.Equal(t, rangezone.Melee, c.Classify(rangezone.Zone(99), 0.2))
}

func TestZone_String(t *testing.T) {
	assert.Equal(t, "melee", rangezone.Melee.String())
	assert.Equal(t, "approach", rangezone.Approach.String())
	assert.Equal(t, "zone7", rangezone.Zone(7).String())
}

// TestProperty_Classifier_JitterInsideBandNeverChanges verifies that distances
// confined to [t-h, t+h] never move the zone away from either side of t.
func TestProperty_Classifier_JitterInsideBandNeverChanges(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		threshold := rapid.Float64Range(0.5, 10).Draw(rt, "threshold")
		h := rapid.Float64Range(0, 0.5).Draw(rt, "margin")
		c := rangezone.NewClassifier([]float64{threshold}, h)
		start := rangezone.Zone(rapid.IntRange(0, 1).Draw(rt, "start"))
		jitter := rapid.SliceOfN(rapid.Float64Range(-1, 1), 1, 100).Draw(rt, "jitter")

		z := start
		for _, j := range jitter {
			z = c.Classify(z, threshold+j*h)
			if z != start {
				rt.Fatalf("zone changed from %v to %v on jitter within the band", start, z)
			}
		}
	})
}

// TestProperty_Classifier_ChangesBoundedByGenuineCrossings verifies that along any
// distance walk the zone changes no more often than the distance genuinely crosses
// the hysteresis band.
func TestProperty_Classifier_ChangesBoundedByGenuineCrossings(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		const threshold = 2.0
		h := rapid.Float64Range(0.05, 0.5).Draw(rt, "margin")
		c := rangezone.NewClassifier([]float64{threshold}, h)
		walk := rapid.SliceOfN(rapid.Float64Range(0, 4), 2, 200).Draw(rt, "walk")

		z := c.Raw(walk[0])
		changes, crossings := 0, 0
		side := 0 // -1 below band, +1 above band, 0 undecided
		if walk[0] < threshold-h {
			side = -1
		} else if walk[0] > threshold+h {
			side = 1
		}
		for _, d := range walk[1:] {
			next := c.Classify(z, d)
			if next != z {
				changes++
			}
			z = next
			switch {
			case d < threshold-h && side != -1:
				if side == 1 {
					crossings++
				}
				side = -1
			case d > threshold+h && side != 1:
				if side == -1 {
					crossings++
				}
				side = 1
			}
		}
		// The first decisive excursion from an undecided start may commit once.
		if changes > crossings+1 {
			rt.Fatalf("zone changed %d times for %d genuine crossings", changes, crossings)
		}
	})
}

// TestProperty_Classifier_NeverSkipsZones verifies the single-step postcondition.
func TestProperty_Classifier_NeverSkipsZones(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := canonical()
		current := rangezone.Zone(rapid.IntRange(0, 3).Draw(rt, "current"))
		d := rapid.Float64Range(0, 100).Draw(rt, "distance")
		next := c.Classify(current, d)
		delta := int(next) - int(current)
		if delta < -1 || delta > 1 {
			rt.Fatalf("Classify(%v, %v) = %v skipped zones", current, d, next)
		}
	})
}
