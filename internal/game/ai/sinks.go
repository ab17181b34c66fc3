package ai

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/duelist/internal/game/geom"
	"github.com/cory-johannsen/duelist/internal/game/spatial"
)

// SpeedLevel is a discrete locomotion speed.
type SpeedLevel int

const (
	SpeedIdle SpeedLevel = iota
	SpeedWalk
	SpeedRun
	SpeedSprint
)

// String returns the speed name.
func (s SpeedLevel) String() string {
	switch s {
	case SpeedIdle:
		return "idle"
	case SpeedWalk:
		return "walk"
	case SpeedRun:
		return "run"
	case SpeedSprint:
		return "sprint"
	default:
		return "unknown"
	}
}

// Side selects one of the fighter's two normal-attack strings.
type Side int

const (
	SideA Side = iota
	SideB
)

func sideOf(isA bool) Side {
	if isA {
		return SideA
	}
	return SideB
}

// AttackMove qualifies how a normal attack is started.
type AttackMove int

const (
	MoveStanding AttackMove = iota
	MoveSprint
)

// Body exposes the agent's own transform.
type Body interface {
	Position() geom.Vec2
	Facing() geom.Vec2
}

// Movement turns a direction and speed level into locomotion.
type Movement interface {
	SetMoveDirection(dir geom.Vec2)
	SetMoveSpeedLevel(level SpeedLevel)
}

// Rotation turns the body.
type Rotation interface {
	FaceToward(p geom.Vec2)
	FreezeRotation(frozen bool)
}

// Navigation turns a world goal into a next-step direction.
type Navigation interface {
	SetTarget(p geom.Vec2)
	SteeringDirection() geom.Vec2
	Stop()
}

// Fighter owns normal and heavy attacks, hit boxes, and combo bookkeeping.
type Fighter interface {
	RequestNormalAttack(side Side, move AttackMove) bool
	RequestAttackAt(side Side, comboIndex int) bool
	RequestHeavyAttack(side Side) bool
	IsInAttackLock() bool
	IsInComboWindow() bool
	CurrentComboIndex() int
	CurrentSide() Side
	// MaxCombo returns the longest string the fighter can execute on side; 0 if unknown.
	MaxCombo(side Side) int
}

// RangedFighter fires ranged shots.
type RangedFighter interface {
	RequestShot(at geom.Vec2) bool
	IsInRangedLock() bool
}

// Blocker raises and lowers the agent's guard.
type Blocker interface {
	RequestBlock(on bool)
	IsBlocking() bool
}

// Caster casts special abilities.
type Caster interface {
	CanTryCast(name string) bool
	TryCast(name string, target geom.Vec2) bool
	IsInAbilityLock() bool
}

// Locks exposes the externally owned lock signals.
type Locks interface {
	HitLocked() bool
	TransitionLocked() bool
	AbilityLocked() bool
	GuardBroken() bool
	CanBlock() bool
	Dead() bool
}

// TargetResolver looks up a combatant by ID for re-acquisition.
type TargetResolver interface {
	Resolve(id uuid.UUID) (Target, bool)
}

// Sinks bundles the agent's collaborators. Every field is optional; a nil
// collaborator turns the decisions that depend on it into no-ops.
type Sinks struct {
	Body       Body
	Movement   Movement
	Rotation   Rotation
	Navigation Navigation
	Fighter    Fighter
	Ranged     RangedFighter
	Blocker    Blocker
	Caster     Caster
	Locks      Locks
	Spatial    spatial.Query
	Targets    TargetResolver
}

// lockState is one tick's reading of the lock sources.
type lockState struct {
	hit         bool
	transition  bool
	ability     bool
	guardBroken bool
	canBlock    bool
	dead        bool
}

func (s *Sinks) readLocks() lockState {
	ls := lockState{canBlock: true}
	if s.Locks != nil {
		ls.hit = s.Locks.HitLocked()
		ls.transition = s.Locks.TransitionLocked()
		ls.ability = s.Locks.AbilityLocked()
		ls.guardBroken = s.Locks.GuardBroken()
		ls.canBlock = s.Locks.CanBlock()
		ls.dead = s.Locks.Dead()
	}
	if s.Caster != nil && s.Caster.IsInAbilityLock() {
		ls.ability = true
	}
	return ls
}

func (ls lockState) suspended() bool {
	return ls.hit || ls.transition || ls.ability
}
