package ai

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/duelist/internal/game/ability"
	"github.com/cory-johannsen/duelist/internal/game/combo"
	"github.com/cory-johannsen/duelist/internal/game/posture"
)

// Kind selects the melee or ranged state set.
type Kind string

const (
	KindMelee  Kind = "melee"
	KindRanged Kind = "ranged"
)

// Fallbacks used by Sanitize for unset or degenerate tunables.
const (
	defaultStartTimeout     = 1500 * time.Millisecond
	defaultAcquireRadius    = 30.0
	defaultBreakMultiplier  = 1.5
	defaultAbilityLockGrace = 200 * time.Millisecond
	defaultRangedTimeout    = 2 * time.Second
)

// ZoneTuning holds the three ascending zone thresholds (Melee/Buffer,
// Buffer/Shoot, Shoot/Approach) and the hysteresis margin.
type ZoneTuning struct {
	Thresholds []float64 `yaml:"thresholds"`
	Hysteresis float64   `yaml:"hysteresis"`
}

// RunBurstTuning randomizes short runs while closing distance in Engage.
type RunBurstTuning struct {
	Chance   float64       `yaml:"chance"`
	Interval time.Duration `yaml:"interval"`
	Min      time.Duration `yaml:"min"`
	Max      time.Duration `yaml:"max"`
}

// EngageTuning controls the Engage state.
type EngageTuning struct {
	// AttackDistance is the distance inside which offensive decisions are made.
	AttackDistance   float64        `yaml:"attack_distance"`
	DecisionInterval time.Duration  `yaml:"decision_interval"`
	RunBurst         RunBurstTuning `yaml:"run_burst"`
}

// ComboTuning feeds the combo planner.
type ComboTuning struct {
	PreferAChance float64 `yaml:"prefer_a_chance"`
	// GuardBrokenPreferAChance replaces PreferAChance against a guard-broken
	// opponent; nil keeps PreferAChance.
	GuardBrokenPreferAChance *float64  `yaml:"guard_broken_prefer_a_chance"`
	MaxA                     int       `yaml:"max_a"`
	MaxB                     int       `yaml:"max_b"`
	ContinueChances          []float64 `yaml:"continue_chances"`
	RandomOpening            bool      `yaml:"random_opening"`
	RerollBudget             int       `yaml:"reroll_budget"`
	// StartTimeout abandons a plan that could not start or finish in time.
	StartTimeout time.Duration `yaml:"start_timeout"`
	// CooldownChance is the chance a finished plan goes to Cooldown rather than Engage.
	CooldownChance float64 `yaml:"cooldown_chance"`
}

// HeavyTuning controls the heavy-attack decision.
type HeavyTuning struct {
	Enabled           bool    `yaml:"enabled"`
	Chance            float64 `yaml:"chance"`
	GuardBrokenChance float64 `yaml:"guard_broken_chance"`
}

// BlockTuning controls the block decision and hold.
type BlockTuning struct {
	Enabled          bool          `yaml:"enabled"`
	Range            float64       `yaml:"range"`
	Chance           float64       `yaml:"chance"`
	DecisionInterval time.Duration `yaml:"decision_interval"`
	MinDuration      time.Duration `yaml:"min_duration"`
	MaxDuration      time.Duration `yaml:"max_duration"`
	// ReleaseGrace ends the block once the opponent has stopped attacking for this long.
	ReleaseGrace time.Duration `yaml:"release_grace"`
	// BreakDistanceMultiplier ends the block beyond this multiple of Range.
	BreakDistanceMultiplier float64       `yaml:"break_distance_multiplier"`
	Cooldown                time.Duration `yaml:"cooldown"`
}

// SprintTuning controls the sprint-attack window armed during Chase.
type SprintTuning struct {
	Enabled          bool          `yaml:"enabled"`
	Chance           float64       `yaml:"chance"`
	MinDistance      float64       `yaml:"min_distance"`
	MaxDistance      float64       `yaml:"max_distance"`
	DecisionInterval time.Duration `yaml:"decision_interval"`
	Window           time.Duration `yaml:"window"`
}

// CooldownContext is the duration and posture table for one cooldown context.
type CooldownContext struct {
	Min     time.Duration         `yaml:"min"`
	Max     time.Duration         `yaml:"max"`
	Weights posture.Weights       `yaml:"weights"`
	Posture posture.DurationRange `yaml:"posture"`
}

// CooldownTuning holds the per-context cooldown tables.
type CooldownTuning struct {
	Melee CooldownContext `yaml:"melee"`
	Near  CooldownContext `yaml:"near"`
	Far   CooldownContext `yaml:"far"`
	// ProbeDistance is how far ahead each posture direction is probed.
	ProbeDistance float64 `yaml:"probe_distance"`
}

// RetreatTuning controls the guard-broken retreat.
type RetreatTuning struct {
	FreezeRotation bool `yaml:"freeze_rotation"`
}

// AbilityTuning extends the ability gate configuration.
type AbilityTuning struct {
	ability.Config `yaml:",inline"`
	// LockGrace is how long the Ability state waits for the cast lock to appear.
	LockGrace time.Duration `yaml:"lock_grace"`
}

// RangedTuning controls the ranged states.
type RangedTuning struct {
	FireInterval   time.Duration `yaml:"fire_interval"`
	FireChance     float64       `yaml:"fire_chance"`
	AttackTimeout  time.Duration `yaml:"attack_timeout"`
	CooldownChance float64       `yaml:"cooldown_chance"`
}

// TargetTuning controls target re-acquisition.
type TargetTuning struct {
	AcquireRadius float64 `yaml:"acquire_radius"`
}

// Profile is the full tuning of one combatant archetype.
type Profile struct {
	ID          string         `yaml:"id"`
	Description string         `yaml:"description"`
	Kind        Kind           `yaml:"kind"`
	Zones       ZoneTuning     `yaml:"zones"`
	Engage      EngageTuning   `yaml:"engage"`
	Combo       ComboTuning    `yaml:"combo"`
	Heavy       HeavyTuning    `yaml:"heavy"`
	Block       BlockTuning    `yaml:"block"`
	Sprint      SprintTuning   `yaml:"sprint"`
	Cooldown    CooldownTuning `yaml:"cooldown"`
	Retreat     RetreatTuning  `yaml:"retreat"`
	Ability     AbilityTuning  `yaml:"ability"`
	Ranged      RangedTuning   `yaml:"ranged"`
	Target      TargetTuning   `yaml:"target"`
	// ScriptDir holds the Lua files backing ability conditions, relative to the content root.
	ScriptDir string `yaml:"script_dir"`
}

// Validate checks the fields Sanitize cannot repair.
//
// Postcondition: nil return guarantees a non-empty ID, an empty or known Kind, exactly
// three strictly ascending positive zone thresholds, and named ability candidates.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return errors.New("ai.Profile: ID must not be empty")
	}
	if p.Kind != "" && p.Kind != KindMelee && p.Kind != KindRanged {
		return fmt.Errorf("ai.Profile %q: kind %q must be %q or %q", p.ID, p.Kind, KindMelee, KindRanged)
	}
	if len(p.Zones.Thresholds) != 3 {
		return fmt.Errorf("ai.Profile %q: zones.thresholds must have 3 entries, got %d", p.ID, len(p.Zones.Thresholds))
	}
	prev := 0.0
	for i, t := range p.Zones.Thresholds {
		if t <= prev {
			return fmt.Errorf("ai.Profile %q: zones.thresholds[%d]=%v must be positive and ascending", p.ID, i, t)
		}
		prev = t
	}
	names := make(map[string]struct{}, len(p.Ability.Candidates))
	for i, c := range p.Ability.Candidates {
		if c.Name == "" {
			return fmt.Errorf("ai.Profile %q: ability.candidates[%d] has empty name", p.ID, i)
		}
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("ai.Profile %q: duplicate ability candidate %q", p.ID, c.Name)
		}
		names[c.Name] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Zones.Thresholds = append([]float64(nil), p.Zones.Thresholds...)
	c.Combo.ContinueChances = append([]float64(nil), p.Combo.ContinueChances...)
	if p.Combo.GuardBrokenPreferAChance != nil {
		v := *p.Combo.GuardBrokenPreferAChance
		c.Combo.GuardBrokenPreferAChance = &v
	}
	c.Ability.Candidates = append([]ability.Candidate(nil), p.Ability.Candidates...)
	return &c
}

// Sanitize clamps degenerate tunables to safe values: probabilities into
// [0, 1], negative durations and distances to zero, inverted ranges to their
// minimum, combo caps to at least 1, and unset fallbacks to their defaults.
//
// Postcondition: Sanitize is idempotent.
func (p *Profile) Sanitize() {
	if p.Kind == "" {
		p.Kind = KindMelee
	}
	p.Zones.Hysteresis = nonNeg(p.Zones.Hysteresis)

	e := &p.Engage
	if e.AttackDistance <= 0 && len(p.Zones.Thresholds) > 0 {
		e.AttackDistance = p.Zones.Thresholds[0]
	}
	e.AttackDistance = nonNeg(e.AttackDistance)
	e.DecisionInterval = nonNegDur(e.DecisionInterval)
	e.RunBurst.Chance = prob(e.RunBurst.Chance)
	e.RunBurst.Interval = nonNegDur(e.RunBurst.Interval)
	e.RunBurst.Min, e.RunBurst.Max = durRange(e.RunBurst.Min, e.RunBurst.Max)

	c := &p.Combo
	c.PreferAChance = prob(c.PreferAChance)
	if c.GuardBrokenPreferAChance != nil {
		v := prob(*c.GuardBrokenPreferAChance)
		c.GuardBrokenPreferAChance = &v
	}
	c.MaxA = combo.MaxForSide(c.MaxA, 0)
	c.MaxB = combo.MaxForSide(c.MaxB, 0)
	for i := range c.ContinueChances {
		c.ContinueChances[i] = prob(c.ContinueChances[i])
	}
	if c.RerollBudget <= 0 {
		c.RerollBudget = combo.DefaultRerollBudget
	}
	if c.StartTimeout <= 0 {
		c.StartTimeout = defaultStartTimeout
	}
	c.CooldownChance = prob(c.CooldownChance)

	p.Heavy.Chance = prob(p.Heavy.Chance)
	p.Heavy.GuardBrokenChance = prob(p.Heavy.GuardBrokenChance)

	b := &p.Block
	if b.Range <= 0 {
		b.Range = e.AttackDistance
	}
	b.Chance = prob(b.Chance)
	b.DecisionInterval = nonNegDur(b.DecisionInterval)
	b.MinDuration, b.MaxDuration = durRange(b.MinDuration, b.MaxDuration)
	b.ReleaseGrace = nonNegDur(b.ReleaseGrace)
	if b.BreakDistanceMultiplier < 1 {
		b.BreakDistanceMultiplier = defaultBreakMultiplier
	}
	b.Cooldown = nonNegDur(b.Cooldown)

	s := &p.Sprint
	s.Chance = prob(s.Chance)
	s.MinDistance = nonNeg(s.MinDistance)
	if s.MaxDistance < s.MinDistance {
		s.MaxDistance = s.MinDistance
	}
	s.DecisionInterval = nonNegDur(s.DecisionInterval)
	s.Window = nonNegDur(s.Window)

	for _, cc := range []*CooldownContext{&p.Cooldown.Melee, &p.Cooldown.Near, &p.Cooldown.Far} {
		cc.Min, cc.Max = durRange(cc.Min, cc.Max)
		cc.Posture.Min, cc.Posture.Max = durRange(cc.Posture.Min, cc.Posture.Max)
	}
	p.Cooldown.ProbeDistance = nonNeg(p.Cooldown.ProbeDistance)

	a := &p.Ability
	a.MinInterval, a.MaxInterval = durRange(a.MinInterval, a.MaxInterval)
	a.MaxRange = nonNeg(a.MaxRange)
	for i := range a.Candidates {
		cand := &a.Candidates[i]
		cand.Chance = prob(cand.Chance)
		cand.Cooldown = nonNegDur(cand.Cooldown)
		cand.MinRange = nonNeg(cand.MinRange)
		cand.FacingCone = nonNeg(cand.FacingCone)
	}
	if a.LockGrace <= 0 {
		a.LockGrace = defaultAbilityLockGrace
	}

	r := &p.Ranged
	r.FireInterval = nonNegDur(r.FireInterval)
	r.FireChance = prob(r.FireChance)
	if r.AttackTimeout <= 0 {
		r.AttackTimeout = defaultRangedTimeout
	}
	r.CooldownChance = prob(r.CooldownChance)

	if p.Target.AcquireRadius <= 0 {
		p.Target.AcquireRadius = defaultAcquireRadius
	}
}

func prob(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nonNeg(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	return v
}

func nonNegDur(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func durRange(lo, hi time.Duration) (time.Duration, time.Duration) {
	lo = nonNegDur(lo)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// yamlProfileFile wraps the YAML top-level key.
type yamlProfileFile struct {
	Profile *Profile `yaml:"profile"`
}

// LoadProfiles reads all *.yaml files from dir and returns validated, sanitized Profiles.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
// Postcondition: returns (nil, nil) if dir contains no .yaml files.
func LoadProfiles(dir string) ([]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadProfiles: reading %q: %w", dir, err)
	}
	var profiles []*Profile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: reading %s: %w", e.Name(), err)
		}
		var f yamlProfileFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: parsing %s: %w", e.Name(), err)
		}
		if f.Profile == nil {
			return nil, fmt.Errorf("ai.LoadProfiles: %s missing top-level 'profile' key", e.Name())
		}
		if err := f.Profile.Validate(); err != nil {
			return nil, fmt.Errorf("ai.LoadProfiles: %s: %w", e.Name(), err)
		}
		f.Profile.Sanitize()
		profiles = append(profiles, f.Profile)
	}
	return profiles, nil
}
