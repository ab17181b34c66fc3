// Package sim runs headless duels: reference implementations of every agent
// collaborator backed by a spatial.Space, an arena that steps two agents and
// their bodies on one clock, and a runner for many arenas at once.
package sim

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Stats is the physical tuning of a simulated combatant.
type Stats struct {
	MaxHP    float64 `yaml:"max_hp"`
	MaxGuard float64 `yaml:"max_guard"`
	Radius   float64 `yaml:"radius"`

	WalkSpeed   float64 `yaml:"walk_speed"`
	RunSpeed    float64 `yaml:"run_speed"`
	SprintSpeed float64 `yaml:"sprint_speed"`

	// Reach is the melee hit distance measured between body edges.
	Reach float64 `yaml:"reach"`
	// HitCone is the full angle in degrees in front of the body that melee hits cover.
	HitCone     float64 `yaml:"hit_cone"`
	Damage      float64 `yaml:"damage"`
	HeavyDamage float64 `yaml:"heavy_damage"`
	// GuardDamage is taken from a blocking defender's guard per blocked hit; heavies double it.
	GuardDamage   float64       `yaml:"guard_damage"`
	Windup        time.Duration `yaml:"windup"`
	Recovery      time.Duration `yaml:"recovery"`
	HeavyWindup   time.Duration `yaml:"heavy_windup"`
	HeavyRecovery time.Duration `yaml:"heavy_recovery"`
	MaxComboA     int           `yaml:"max_combo_a"`
	MaxComboB     int           `yaml:"max_combo_b"`

	HitStun    time.Duration `yaml:"hit_stun"`
	GuardBreak time.Duration `yaml:"guard_break"`
	// StandUp is the transition lock after a guard break wears off.
	StandUp time.Duration `yaml:"stand_up"`
	// GuardRegen is the guard regained per second while not blocking.
	GuardRegen float64 `yaml:"guard_regen"`

	AbilityLock     time.Duration `yaml:"ability_lock"`
	AbilityCooldown time.Duration `yaml:"ability_cooldown"`
	AbilityDamage   float64       `yaml:"ability_damage"`
	AbilityRange    float64       `yaml:"ability_range"`

	ShotWindup   time.Duration `yaml:"shot_windup"`
	ShotRecovery time.Duration `yaml:"shot_recovery"`
	ShotDamage   float64       `yaml:"shot_damage"`
	ShotRange    float64       `yaml:"shot_range"`
}

// DefaultStats returns a middleweight body.
func DefaultStats() Stats {
	return Stats{
		MaxHP:           100,
		MaxGuard:        40,
		Radius:          0.4,
		WalkSpeed:       2,
		RunSpeed:        4.5,
		SprintSpeed:     7,
		Reach:           1,
		HitCone:         120,
		Damage:          8,
		HeavyDamage:     20,
		GuardDamage:     10,
		Windup:          250 * time.Millisecond,
		Recovery:        350 * time.Millisecond,
		HeavyWindup:     600 * time.Millisecond,
		HeavyRecovery:   700 * time.Millisecond,
		MaxComboA:       4,
		MaxComboB:       3,
		HitStun:         400 * time.Millisecond,
		GuardBreak:      1500 * time.Millisecond,
		StandUp:         300 * time.Millisecond,
		GuardRegen:      8,
		AbilityLock:     800 * time.Millisecond,
		AbilityCooldown: 6 * time.Second,
		AbilityDamage:   15,
		AbilityRange:    3,
		ShotWindup:      300 * time.Millisecond,
		ShotRecovery:    500 * time.Millisecond,
		ShotDamage:      6,
		ShotRange:       15,
	}
}

// Validate checks the stats a combatant cannot run without.
//
// Postcondition: Returns nil if the stats are usable, or an error describing all violations.
func (s Stats) Validate() error {
	var errs []string
	if s.MaxHP <= 0 {
		errs = append(errs, "max_hp must be positive")
	}
	if s.MaxGuard < 0 {
		errs = append(errs, "max_guard must not be negative")
	}
	if s.Radius <= 0 {
		errs = append(errs, "radius must be positive")
	}
	if s.WalkSpeed < 0 || s.RunSpeed < s.WalkSpeed || s.SprintSpeed < s.RunSpeed {
		errs = append(errs, "speeds must satisfy 0 <= walk <= run <= sprint")
	}
	if s.Windup < 0 || s.Recovery < 0 || s.HeavyWindup < 0 || s.HeavyRecovery < 0 {
		errs = append(errs, "attack timings must not be negative")
	}
	if s.MaxComboA < 1 || s.MaxComboB < 1 {
		errs = append(errs, fmt.Sprintf("max combos must be >= 1, got %d/%d", s.MaxComboA, s.MaxComboB))
	}
	if len(errs) > 0 {
		return errors.New("sim.Stats: " + strings.Join(errs, "; "))
	}
	return nil
}
