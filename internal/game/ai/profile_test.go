package ai_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duelist/internal/game/ability"
	"github.com/cory-johannsen/duelist/internal/game/ai"
	"github.com/cory-johannsen/duelist/internal/game/combo"
)

const bruteYAML = `profile:
  id: brute
  description: slow heavy hitter
  kind: melee
  zones:
    thresholds: [1.5, 3, 9]
    hysteresis: 0.25
  engage:
    attack_distance: 1.4
    decision_interval: 400ms
  combo:
    prefer_a_chance: 0.7
    guard_broken_prefer_a_chance: 1
    max_a: 3
    max_b: 2
    continue_chances: [0.8, 0.4]
    cooldown_chance: 0.5
  heavy:
    enabled: true
    chance: 0.1
    guard_broken_chance: 0.6
  block:
    enabled: true
    chance: 0.3
    min_duration: 500ms
    max_duration: 1s
  cooldown:
    near:
      min: 1s
      max: 2s
      weights: {idle: 1, back: 2, left: 1, right: 1}
      posture: {min: 300ms, max: 800ms}
  ability:
    enabled: true
    min_interval: 1s
    max_interval: 3s
    candidates:
      - name: slam
        chance: 0.5
        cooldown: 8s
        max_range: 2
        condition: slam_ready
`

func writeProfile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadProfiles_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "brute.yaml", bruteYAML)
	writeProfile(t, dir, "README.md", "not a profile")

	profiles, err := ai.LoadProfiles(dir)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	p := profiles[0]

	assert.Equal(t, "brute", p.ID)
	assert.Equal(t, ai.KindMelee, p.Kind)
	assert.Equal(t, []float64{1.5, 3, 9}, p.Zones.Thresholds)
	assert.Equal(t, 400*time.Millisecond, p.Engage.DecisionInterval)
	require.NotNil(t, p.Combo.GuardBrokenPreferAChance)
	assert.Equal(t, 1.0, *p.Combo.GuardBrokenPreferAChance)
	assert.Equal(t, []float64{0.8, 0.4}, p.Combo.ContinueChances)
	assert.Equal(t, 0.6, p.Heavy.GuardBrokenChance)
	assert.Equal(t, 2.0, p.Cooldown.Near.Weights.Back)
	assert.Equal(t, 800*time.Millisecond, p.Cooldown.Near.Posture.Max)
	require.Len(t, p.Ability.Candidates, 1)
	assert.Equal(t, ability.Candidate{
		Name: "slam", Chance: 0.5, Cooldown: 8 * time.Second, MaxRange: 2, Condition: "slam_ready",
	}, p.Ability.Candidates[0])

	// Sanitize has filled the fallbacks.
	assert.Equal(t, 1.4, p.Block.Range)
	assert.Equal(t, combo.DefaultRerollBudget, p.Combo.RerollBudget)
	assert.Positive(t, p.Combo.StartTimeout)
	assert.Positive(t, p.Target.AcquireRadius)
}

func TestLoadProfiles_Errors(t *testing.T) {
	_, err := ai.LoadProfiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	cases := map[string]string{
		"no top-level key": "id: x\n",
		"bad yaml":         "profile: [\n",
		"no id":            "profile:\n  zones: {thresholds: [1, 2, 3]}\n",
		"bad kind":         "profile:\n  id: x\n  kind: wizard\n  zones: {thresholds: [1, 2, 3]}\n",
		"two thresholds":   "profile:\n  id: x\n  zones: {thresholds: [1, 2]}\n",
		"descending":       "profile:\n  id: x\n  zones: {thresholds: [3, 2, 1]}\n",
		"duplicate ability": "profile:\n  id: x\n  zones: {thresholds: [1, 2, 3]}\n" +
			"  ability:\n    candidates: [{name: a}, {name: a}]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeProfile(t, dir, "p.yaml", body)
			_, err := ai.LoadProfiles(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadProfiles_EmptyDir(t *testing.T) {
	profiles, err := ai.LoadProfiles(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestProfile_ValidateAcceptsMinimal(t *testing.T) {
	p := &ai.Profile{ID: "x", Kind: ai.KindRanged, Zones: ai.ZoneTuning{Thresholds: []float64{1, 2, 3}}}
	assert.NoError(t, p.Validate())
}

func TestProfile_SanitizeClamps(t *testing.T) {
	p := &ai.Profile{
		ID:    "x",
		Zones: ai.ZoneTuning{Thresholds: []float64{1, 2, 3}, Hysteresis: -1},
		Combo: ai.ComboTuning{PreferAChance: 2, MaxA: 0, MaxB: -3, ContinueChances: []float64{-0.5, 1.5}},
		Block: ai.BlockTuning{Chance: -1, MinDuration: 2 * time.Second, MaxDuration: time.Second},
		Heavy: ai.HeavyTuning{Chance: 7},
		Cooldown: ai.CooldownTuning{Far: ai.CooldownContext{Min: -time.Second, Max: -2 * time.Second}},
	}
	p.Sanitize()

	assert.Equal(t, ai.KindMelee, p.Kind)
	assert.Equal(t, 0.0, p.Zones.Hysteresis)
	assert.Equal(t, 1.0, p.Combo.PreferAChance)
	assert.Equal(t, 1, p.Combo.MaxA)
	assert.Equal(t, 1, p.Combo.MaxB)
	assert.Equal(t, []float64{0, 1}, p.Combo.ContinueChances)
	assert.Equal(t, 0.0, p.Block.Chance)
	assert.Equal(t, 2*time.Second, p.Block.MaxDuration)
	assert.Equal(t, 1.0, p.Heavy.Chance)
	assert.Equal(t, time.Duration(0), p.Cooldown.Far.Min)
	assert.Equal(t, time.Duration(0), p.Cooldown.Far.Max)
	assert.Equal(t, 1.0, p.Engage.AttackDistance)
}

func TestProfile_CloneIsDeep(t *testing.T) {
	gb := 0.5
	p := meleeProfile()
	p.Combo.GuardBrokenPreferAChance = &gb
	p.Ability.Candidates = []ability.Candidate{{Name: "a"}}

	c := p.Clone()
	c.Zones.Thresholds[0] = 42
	c.Combo.ContinueChances[0] = 0
	*c.Combo.GuardBrokenPreferAChance = 1
	c.Ability.Candidates[0].Name = "b"

	assert.Equal(t, 1.0, p.Zones.Thresholds[0])
	assert.Equal(t, 1.0, p.Combo.ContinueChances[0])
	assert.Equal(t, 0.5, gb)
	assert.Equal(t, "a", p.Ability.Candidates[0].Name)
}

func TestProperty_Profile_SanitizeIsIdempotentAndBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := rapid.Float64Range(-5, 5)
		d := rapid.Int64Range(-int64(time.Minute), int64(time.Minute))
		p := &ai.Profile{
			ID:    "x",
			Zones: ai.ZoneTuning{Thresholds: []float64{1, 2, 3}, Hysteresis: f.Draw(rt, "hyst")},
			Combo: ai.ComboTuning{
				PreferAChance:   f.Draw(rt, "prefer"),
				MaxA:            rapid.IntRange(-3, 6).Draw(rt, "maxA"),
				ContinueChances: rapid.SliceOfN(f, 0, 4).Draw(rt, "continue"),
				CooldownChance:  f.Draw(rt, "cooldown"),
			},
			Block: ai.BlockTuning{
				Chance:      f.Draw(rt, "block"),
				MinDuration: time.Duration(d.Draw(rt, "blockMin")),
				MaxDuration: time.Duration(d.Draw(rt, "blockMax")),
			},
			Sprint: ai.SprintTuning{MinDistance: f.Draw(rt, "sprintMin"), MaxDistance: f.Draw(rt, "sprintMax")},
		}
		p.Sanitize()
		twice := p.Clone()
		twice.Sanitize()
		assert.Equal(rt, p.Clone(), twice)

		for _, v := range append([]float64{p.Combo.PreferAChance, p.Combo.CooldownChance, p.Block.Chance}, p.Combo.ContinueChances...) {
			if v < 0 || v > 1 {
				rt.Fatalf("probability %v out of range", v)
			}
		}
		if p.Block.MinDuration < 0 || p.Block.MaxDuration < p.Block.MinDuration {
			rt.Fatalf("bad block durations %v..%v", p.Block.MinDuration, p.Block.MaxDuration)
		}
		if p.Sprint.MaxDistance < p.Sprint.MinDistance {
			rt.Fatalf("bad sprint band %v..%v", p.Sprint.MinDistance, p.Sprint.MaxDistance)
		}
		if p.Combo.MaxA < 1 {
			rt.Fatalf("MaxA = %d", p.Combo.MaxA)
		}
	})
}
