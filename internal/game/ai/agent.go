// Package ai implements the per-agent combat decision engine: a frame-stepped
// state machine that decides when a combatant chases, engages, blocks,
// attacks, retreats, casts abilities, or holds a cooldown posture.
//
// An Agent never moves or hits anything itself. It reads its collaborators
// through the Sinks interfaces and issues commands back through them.
package ai

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duelist/internal/game/ability"
	"github.com/cory-johannsen/duelist/internal/game/combat"
	"github.com/cory-johannsen/duelist/internal/game/combo"
	"github.com/cory-johannsen/duelist/internal/game/dice"
	"github.com/cory-johannsen/duelist/internal/game/geom"
	"github.com/cory-johannsen/duelist/internal/game/posture"
	"github.com/cory-johannsen/duelist/internal/game/rangezone"
)

// Options configures NewAgent.
type Options struct {
	// ID identifies the agent; uuid.Nil generates one.
	ID      uuid.UUID
	Profile *Profile
	Sinks   Sinks
	Roller  *dice.Roller
	// Scripts backs scripted ability conditions; may be nil.
	Scripts ability.ScriptCaller
	// Presence, when set, tracks this agent while it is in combat.
	Presence *combat.Presence
	Observer Observer
	Logger   *zap.Logger
}

type cooldownKind int

const (
	cooldownMelee cooldownKind = iota
	cooldownNear
	cooldownFar
)

func (k cooldownKind) String() string {
	switch k {
	case cooldownMelee:
		return "melee"
	case cooldownNear:
		return "near"
	default:
		return "far"
	}
}

// cooldownState is the active cooldown. Times are absolute on the agent clock.
type cooldownState struct {
	kind       cooldownKind
	endTime    time.Duration
	posture    posture.Posture
	postureEnd time.Duration
}

// blockState is the active block. saved holds an interrupted cooldown with
// times relative to the moment the block began.
type blockState struct {
	until      time.Duration
	returnTo   State
	quiet      bool
	quietSince time.Duration
	saved      *cooldownState
}

// Agent is the decision state machine of one combatant.
//
// Invariant: whenever State() != Attack, the attack plan is neutral.
// Agent is not safe for concurrent use; its driver ticks it from one goroutine.
type Agent struct {
	id       uuid.UUID
	profile  *Profile
	sinks    Sinks
	roller   *dice.Roller
	logger   *zap.Logger
	presence *combat.Presence
	observer Observer

	classifier *rangezone.Classifier
	planner    *combo.Planner
	postures   *posture.Selector
	abilities  *ability.Gate

	inCombat     bool
	now          time.Duration
	state        State
	stateElapsed time.Duration
	zone         rangezone.Zone
	target       TargetSnapshot
	locks        lockState
	wasHitLocked bool

	plan          combo.AttackPlan
	lastOpener    *combo.Signature
	attackSawLock bool

	nextEngageDecision time.Duration
	nextBlockDecision  time.Duration
	blockReadyAt       time.Duration
	block              blockState
	cooldown           cooldownState
	restore            *cooldownState
	abilitySawLock     bool

	nextBurstDecision  time.Duration
	burstUntil         time.Duration
	nextSprintDecision time.Duration
	sprintUntil        time.Duration

	nextFire     time.Duration
	shotSawLock  bool
	speed        SpeedLevel
	moveDir      geom.Vec2
	rotationHeld bool

	pending []Transition
}

// NewAgent builds an Agent out of combat. The profile is copied and sanitized.
//
// Precondition: opts.Profile, opts.Roller, and opts.Logger must not be nil.
// Postcondition: State() == Chase for melee profiles and Approach for ranged; InCombat() == false.
func NewAgent(opts Options) *Agent {
	if opts.Profile == nil {
		panic("ai.NewAgent: profile must not be nil")
	}
	if opts.Roller == nil {
		panic("ai.NewAgent: roller must not be nil")
	}
	if opts.Logger == nil {
		panic("ai.NewAgent: logger must not be nil")
	}
	prof := opts.Profile.Clone()
	prof.Sanitize()

	id := opts.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	logger := opts.Logger.With(zap.String("agent", id.String()), zap.String("profile", prof.ID))

	a := &Agent{
		id:         id,
		profile:    prof,
		sinks:      opts.Sinks,
		roller:     opts.Roller,
		logger:     logger,
		presence:   opts.Presence,
		observer:   opts.Observer,
		classifier: rangezone.NewClassifier(prof.Zones.Thresholds, prof.Zones.Hysteresis),
		planner:    combo.NewPlanner(opts.Roller, prof.Combo.RerollBudget, logger),
		postures:   posture.NewSelector(opts.Roller, logger),
		abilities:  ability.NewGate(prof.Ability.Config, opts.Roller, opts.Scripts, prof.ID, logger),
		plan:       combo.NeutralPlan(),
	}
	a.zone = a.classifier.Outermost()
	a.state = a.idleState()
	return a
}

// ID returns the agent's identifier.
func (a *Agent) ID() uuid.UUID { return a.id }

// Profile returns the sanitized profile the agent runs.
func (a *Agent) Profile() *Profile { return a.profile }

// State returns the current decision state.
func (a *Agent) State() State { return a.state }

// Zone returns the current range zone.
func (a *Agent) Zone() rangezone.Zone { return a.zone }

// InCombat reports whether the agent is between EnterCombat and ExitCombat.
func (a *Agent) InCombat() bool { return a.inCombat }

// Now returns the agent clock.
func (a *Agent) Now() time.Duration { return a.now }

// TimeInState returns how long the agent has been active in the current
// state. Suspended ticks do not count.
func (a *Agent) TimeInState() time.Duration { return a.stateElapsed }

// Plan returns a copy of the current attack plan.
func (a *Agent) Plan() combo.AttackPlan { return a.plan }

// Target returns the current target snapshot.
func (a *Agent) Target() TargetSnapshot { return a.target }

// Posture returns the current cooldown posture; Idle outside Cooldown.
func (a *Agent) Posture() posture.Posture {
	if a.state != Cooldown {
		return posture.Idle
	}
	return a.cooldown.posture
}

// Speed returns the last commanded speed level.
func (a *Agent) Speed() SpeedLevel { return a.speed }

// EnterCombat starts combat against target. Calling it while in combat only
// rebinds the target.
//
// Postcondition: InCombat() == true; the agent is registered with Presence.
func (a *Agent) EnterCombat(target Target) Transition {
	a.target.bind(target)
	if a.inCombat {
		return Transition{From: a.state, To: a.state, Reason: ReasonEnterCombat, At: a.now}
	}
	a.inCombat = true
	if a.presence != nil {
		a.presence.Register(a.id)
	}

	a.plan.Reset()
	a.lastOpener = nil
	a.wasHitLocked = false
	a.nextEngageDecision = a.now
	a.nextBlockDecision = a.now
	a.blockReadyAt = a.now
	a.nextBurstDecision = a.now
	a.burstUntil = a.now
	a.nextSprintDecision = a.now
	a.sprintUntil = a.now
	a.nextFire = a.now
	a.restore = nil
	a.abilities.Start(a.now)

	a.zone = a.classifier.Outermost()
	if a.target.Valid() {
		a.zone = a.classifier.Raw(a.distance())
	}
	t := a.EnterState(a.baseline(), ReasonEnterCombat)
	a.pending = nil
	return t
}

// ExitCombat leaves combat, releasing every held command.
//
// Postcondition: InCombat() == false; the plan is neutral; the agent is
// unregistered from Presence.
func (a *Agent) ExitCombat() Transition {
	if !a.inCombat {
		return Transition{From: a.state, To: a.state, Reason: ReasonExitCombat, At: a.now}
	}
	t := a.EnterState(a.idleState(), ReasonExitCombat)
	a.pending = nil
	a.stopMoving()
	if a.sinks.Blocker != nil && a.sinks.Blocker.IsBlocking() {
		a.sinks.Blocker.RequestBlock(false)
	}
	a.target.clear()
	a.inCombat = false
	if a.presence != nil {
		a.presence.Unregister(a.id)
	}
	return t
}

// NotifyHitLanded records that the fighter's hit at comboIndex connected.
func (a *Agent) NotifyHitLanded(comboIndex int) {
	if a.state != Attack || !a.plan.Started {
		return
	}
	a.plan.ConfirmHit(comboIndex)
}

// EnterState moves the agent to state to, running the exit actions of the
// current state and the entry actions of the new one, and notifies the observer.
//
// Postcondition: State() == to; TimeInState() == 0.
func (a *Agent) EnterState(to State, reason Reason) Transition {
	from := a.state
	a.exitState(from, to)
	a.state = to
	a.stateElapsed = 0
	a.enterActions(to)

	t := Transition{From: from, To: to, Reason: reason, At: a.now}
	a.pending = append(a.pending, t)
	a.logger.Debug("state transition",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.String("reason", string(reason)),
		zap.Duration("at", a.now),
	)
	if a.observer != nil {
		a.observer.OnTransition(a.id, t)
	}
	return t
}

func (a *Agent) exitState(from, to State) {
	switch from {
	case Attack:
		a.plan.Reset()
		a.attackSawLock = false
	case Block:
		if a.sinks.Blocker != nil {
			a.sinks.Blocker.RequestBlock(false)
		}
		a.blockReadyAt = a.now + a.profile.Block.Cooldown
		if to != Cooldown {
			a.restore = nil
		}
	case Retreat:
		if a.rotationHeld && a.sinks.Rotation != nil {
			a.sinks.Rotation.FreezeRotation(false)
		}
		a.rotationHeld = false
	case Chase:
		a.sprintUntil = a.now
	case RangedAttack:
		a.shotSawLock = false
	}
}

func (a *Agent) enterActions(to State) {
	switch to {
	case Engage:
		a.nextEngageDecision = a.now + a.profile.Engage.DecisionInterval
	case Attack:
		a.attackSawLock = false
	case Cooldown:
		a.beginCooldown()
	case Retreat:
		a.plan.Reset()
		a.stopMoving()
		if a.profile.Retreat.FreezeRotation && a.sinks.Rotation != nil {
			a.sinks.Rotation.FreezeRotation(true)
			a.rotationHeld = true
		}
	case Ability:
		a.abilitySawLock = false
		a.stopMoving()
	case Shoot:
		if a.nextFire < a.now {
			a.nextFire = a.now
		}
	}
}

// Tick advances the agent clock by dt and runs one decision step. It returns
// the transitions made during the step, in order.
func (a *Agent) Tick(dt time.Duration) []Transition {
	if dt < 0 {
		dt = 0
	}
	a.now += dt
	a.pending = nil
	if !a.inCombat {
		return nil
	}

	a.locks = a.sinks.readLocks()
	if a.locks.dead {
		a.stopMoving()
		return a.flush()
	}

	if a.locks.guardBroken {
		if a.state != Retreat {
			a.EnterState(Retreat, ReasonGuardBroken)
		}
		a.stateElapsed += dt
		a.updateRetreat()
		return a.flush()
	}
	if a.state == Retreat {
		a.EnterState(a.baseline(), ReasonGuardRecovered)
	}

	if a.locks.suspended() {
		a.suspend()
		return a.flush()
	}
	a.wasHitLocked = false
	a.stateElapsed += dt

	if !a.refreshTarget() {
		a.stopMoving()
		if idle := a.idleState(); a.state != idle {
			a.EnterState(idle, ReasonNoTarget)
		}
		return a.flush()
	}

	dist := a.distance()
	a.zone = a.classifier.Classify(a.zone, dist)
	if a.interruptible() {
		if base := a.baseline(); base != a.state {
			a.EnterState(base, ReasonZoneChanged)
		}
	}

	switch a.state {
	case Chase:
		a.updateChase(dist)
	case Engage:
		a.updateEngage(dist)
	case Block:
		a.updateBlock(dist)
	case Attack:
		a.updateAttack()
	case Ability:
		a.updateAbility()
	case Cooldown:
		a.updateCooldown(dist)
	case Approach:
		a.updateApproach()
	case Shoot:
		a.updateShoot(dist)
	case RangedAttack:
		a.updateRangedAttack()
	}
	return a.flush()
}

func (a *Agent) flush() []Transition {
	out := a.pending
	a.pending = nil
	return out
}

// suspend freezes output while a lock is held. The first tick of a hit
// reaction discards an attack plan or block in progress.
func (a *Agent) suspend() {
	if a.locks.hit && !a.wasHitLocked {
		switch a.state {
		case Attack, Block:
			a.EnterState(Engage, ReasonHitInterrupted)
		case Cooldown:
			a.cooldown.postureEnd = a.now
		}
	}
	a.wasHitLocked = a.locks.hit
	if a.state == Ability && a.locks.ability {
		a.abilitySawLock = true
	}
	a.stopMoving()
}

// refreshTarget re-reads the target, re-acquiring one when it is stale.
func (a *Agent) refreshTarget() bool {
	a.target.refresh()
	if a.target.Valid() {
		return true
	}
	if t, ok := a.reacquire(); ok {
		a.target.bind(t)
		a.logger.Debug("target reacquired", zap.String("target", a.target.ID.String()))
		return true
	}
	a.target.clear()
	return false
}

func (a *Agent) reacquire() (Target, bool) {
	if a.sinks.Spatial == nil || a.sinks.Targets == nil {
		return nil, false
	}
	cands := a.sinks.Spatial.FindCandidatesInRadius(a.selfPos(), a.profile.Target.AcquireRadius, nil)
	for _, c := range cands {
		if c.ID == a.id {
			continue
		}
		t, ok := a.sinks.Targets.Resolve(c.ID)
		if ok && t != nil && !t.IsDead() {
			return t, true
		}
	}
	return nil, false
}

// baseline returns the default state for the current zone.
func (a *Agent) baseline() State {
	if a.profile.Kind == KindRanged {
		switch a.zone {
		case rangezone.Melee:
			return Engage
		case rangezone.Buffer, rangezone.Shoot:
			return Shoot
		default:
			return Approach
		}
	}
	switch a.zone {
	case rangezone.Melee, rangezone.Buffer:
		return Engage
	default:
		return Chase
	}
}

// idleState is where an agent without a target waits.
func (a *Agent) idleState() State {
	if a.profile.Kind == KindRanged {
		return Approach
	}
	return Chase
}

// interruptible reports whether zone changes may force the current state.
// A Chase with an armed sprint window is committed to its sprint attack.
func (a *Agent) interruptible() bool {
	switch a.state {
	case Chase:
		return !a.sprintArmed()
	case Engage, Approach, Shoot:
		return true
	default:
		return false
	}
}

func (a *Agent) selfPos() geom.Vec2 {
	if a.sinks.Body == nil {
		return geom.Zero
	}
	return a.sinks.Body.Position()
}

func (a *Agent) facing() geom.Vec2 {
	if a.sinks.Body == nil {
		return a.target.Position.Sub(a.selfPos()).Normalize()
	}
	return a.sinks.Body.Facing()
}

func (a *Agent) distance() float64 {
	return a.selfPos().Dist(a.target.Position)
}

func (a *Agent) setMove(dir geom.Vec2, speed SpeedLevel) {
	a.moveDir, a.speed = dir, speed
	if m := a.sinks.Movement; m != nil {
		m.SetMoveDirection(dir)
		m.SetMoveSpeedLevel(speed)
	}
}

func (a *Agent) stopMoving() {
	if n := a.sinks.Navigation; n != nil {
		n.Stop()
	}
	a.setMove(geom.Zero, SpeedIdle)
}

func (a *Agent) faceTarget() {
	if a.rotationHeld || a.sinks.Rotation == nil {
		return
	}
	a.sinks.Rotation.FaceToward(a.target.Position)
}

func (a *Agent) moveTowardTarget(speed SpeedLevel) {
	goal := a.target.Position
	var dir geom.Vec2
	if n := a.sinks.Navigation; n != nil {
		n.SetTarget(goal)
		dir = n.SteeringDirection()
	}
	if dir.IsZero() {
		dir = goal.Sub(a.selfPos()).Normalize()
	}
	a.setMove(dir, speed)
	a.faceTarget()
}
