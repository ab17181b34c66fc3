package ai

import (
	"time"

	"github.com/google/uuid"
)

// State is a decision state of an Agent.
type State int

const (
	// Chase closes distance through the navigation component.
	Chase State = iota
	// Engage holds attack range and chooses the next offensive action.
	Engage
	// Block holds a block against an attacking opponent.
	Block
	// Attack executes the current attack plan.
	Attack
	// Retreat holds still while the agent's own guard is broken.
	Retreat
	// Ability waits for a committed ability to finish.
	Ability
	// Cooldown holds a passive posture between offensive actions.
	Cooldown
	// Approach is the ranged counterpart of Chase.
	Approach
	// Shoot holds firing range and decides when to fire.
	Shoot
	// RangedAttack waits for a shot to finish.
	RangedAttack
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Chase:
		return "chase"
	case Engage:
		return "engage"
	case Block:
		return "block"
	case Attack:
		return "attack"
	case Retreat:
		return "retreat"
	case Ability:
		return "ability"
	case Cooldown:
		return "cooldown"
	case Approach:
		return "approach"
	case Shoot:
		return "shoot"
	case RangedAttack:
		return "ranged_attack"
	default:
		return "unknown"
	}
}

// AllStates lists every state in declaration order.
var AllStates = []State{Chase, Engage, Block, Attack, Retreat, Ability, Cooldown, Approach, Shoot, RangedAttack}

// Reason explains why a transition happened.
type Reason string

const (
	ReasonEnterCombat    Reason = "enter_combat"
	ReasonExitCombat     Reason = "exit_combat"
	ReasonZoneChanged    Reason = "zone_changed"
	ReasonGuardBroken    Reason = "guard_broken"
	ReasonGuardRecovered Reason = "guard_recovered"
	ReasonHitInterrupted Reason = "hit_interrupted"
	ReasonNoTarget       Reason = "no_target"
	ReasonAbility        Reason = "ability"
	ReasonAbilityDone    Reason = "ability_done"
	ReasonBlockStart     Reason = "block_start"
	ReasonBlockEnd       Reason = "block_end"
	ReasonAttackPlanned  Reason = "attack_planned"
	ReasonHeavyPlanned   Reason = "heavy_planned"
	ReasonSprintAttack   Reason = "sprint_attack"
	ReasonAttackDone     Reason = "attack_done"
	ReasonStartTimeout   Reason = "start_timeout"
	ReasonCooldownOver   Reason = "cooldown_over"
	ReasonOpening        Reason = "opening"
	ReasonShot           Reason = "shot"
	ReasonShotDone       Reason = "shot_done"
	ReasonExternal       Reason = "external"
)

// Transition records one state change.
type Transition struct {
	From   State
	To     State
	Reason Reason
	At     time.Duration
}

// Observer is notified of every transition an Agent makes.
type Observer interface {
	OnTransition(agent uuid.UUID, t Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(agent uuid.UUID, t Transition)

// OnTransition implements Observer.
func (f ObserverFunc) OnTransition(agent uuid.UUID, t Transition) { f(agent, t) }
