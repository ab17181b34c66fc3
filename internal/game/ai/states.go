package ai

import (
	"github.com/cory-johannsen/duelist/internal/game/geom"
	"github.com/cory-johannsen/duelist/internal/game/posture"
	"github.com/cory-johannsen/duelist/internal/game/rangezone"
)

func (a *Agent) updateChase(dist float64) {
	a.updateSprintWindow(dist)
	if a.sprintArmed() && dist <= a.profile.Engage.AttackDistance && a.trySprintAttack() {
		return
	}
	speed := SpeedRun
	if a.sprintArmed() {
		speed = SpeedSprint
	}
	a.moveTowardTarget(speed)
}

// updateEngage approaches to attack distance, then weighs ability, block,
// heavy, and combo in that order.
func (a *Agent) updateEngage(dist float64) {
	e := &a.profile.Engage
	if dist > e.AttackDistance {
		speed := SpeedWalk
		if a.runBurstActive() {
			speed = SpeedRun
		}
		a.moveTowardTarget(speed)
		return
	}

	a.stopMoving()
	a.faceTarget()
	if a.tryAbility(dist) {
		return
	}
	if a.shouldStartBlock(dist) {
		a.beginBlock(Engage)
		return
	}
	if a.now < a.nextEngageDecision {
		return
	}
	a.nextEngageDecision = a.now + e.DecisionInterval
	if a.shouldStartHeavy() {
		a.planHeavy()
		return
	}
	a.planCombo()
}

func (a *Agent) updateBlock(dist float64) {
	b := &a.profile.Block
	a.stopMoving()
	a.faceTarget()

	if a.target.Attacking {
		a.block.quiet = false
	} else if !a.block.quiet {
		a.block.quiet = true
		a.block.quietSince = a.now
	}

	switch {
	case a.now >= a.block.until,
		!a.locks.canBlock,
		dist > b.Range*b.BreakDistanceMultiplier,
		a.block.quiet && a.now-a.block.quietSince > b.ReleaseGrace:
		a.endBlock()
	}
}

// updateAttack starts the plan once the fighter is free, queues each follow-up
// only after the previous hit landed, and rolls Cooldown or Engage when done.
func (a *Agent) updateAttack() {
	f := a.sinks.Fighter
	if f == nil {
		a.EnterState(Engage, ReasonAttackDone)
		return
	}
	a.stopMoving()
	a.faceTarget()

	if !a.plan.Started {
		if a.stateElapsed >= a.profile.Combo.StartTimeout {
			a.EnterState(Engage, ReasonStartTimeout)
			return
		}
		if f.IsInAttackLock() {
			a.plan.PendingStart = true
			return
		}
		a.startPlan()
		return
	}

	if f.IsInAttackLock() {
		a.attackSawLock = true
		if !a.plan.Heavy && f.IsInComboWindow() {
			cur := f.CurrentComboIndex()
			if a.plan.CanQueue(f.CurrentSide() == SideA, cur) && f.RequestAttackAt(sideOf(a.plan.SideA), cur+1) {
				a.plan.MarkQueued(cur)
			}
		}
		return
	}
	if !a.attackSawLock && a.stateElapsed < a.profile.Combo.StartTimeout {
		return
	}
	if a.roller.Chance("attack.cooldown", a.profile.Combo.CooldownChance) {
		a.EnterState(Cooldown, ReasonAttackDone)
		return
	}
	a.EnterState(Engage, ReasonAttackDone)
}

func (a *Agent) updateRetreat() {
	a.stopMoving()
}

// updateAbility waits for the cast lock to come and go. Ticks under the lock
// never reach here, so an observed lock means the cast finished.
func (a *Agent) updateAbility() {
	a.stopMoving()
	if a.abilitySawLock || a.stateElapsed >= a.profile.Ability.LockGrace {
		a.EnterState(a.baseline(), ReasonAbilityDone)
	}
}

func (a *Agent) updateCooldown(dist float64) {
	if a.shouldStartBlock(dist) {
		a.beginBlock(Cooldown)
		return
	}
	if a.target.GuardBroken && a.sinks.Fighter != nil {
		a.EnterState(a.baseline(), ReasonOpening)
		return
	}
	if a.now >= a.cooldown.endTime {
		a.EnterState(a.baseline(), ReasonCooldownOver)
		return
	}
	if a.now >= a.cooldown.postureEnd {
		a.rollPosture()
	}
	a.applyPosture()
}

func (a *Agent) updateApproach() {
	a.moveTowardTarget(SpeedRun)
}

func (a *Agent) updateShoot(dist float64) {
	a.stopMoving()
	a.faceTarget()
	if a.tryAbility(dist) {
		return
	}
	if a.shouldStartBlock(dist) {
		a.beginBlock(Shoot)
		return
	}
	r := a.sinks.Ranged
	if r == nil || r.IsInRangedLock() || a.now < a.nextFire {
		return
	}
	a.nextFire = a.now + a.profile.Ranged.FireInterval
	if !a.roller.Chance("ranged.fire", a.profile.Ranged.FireChance) {
		return
	}
	if r.RequestShot(a.target.Position) {
		a.EnterState(RangedAttack, ReasonShot)
		a.shotSawLock = r.IsInRangedLock()
	}
}

func (a *Agent) updateRangedAttack() {
	a.stopMoving()
	a.faceTarget()
	r := a.sinks.Ranged
	if r == nil {
		a.EnterState(a.baseline(), ReasonShotDone)
		return
	}
	if r.IsInRangedLock() {
		a.shotSawLock = true
		return
	}
	if !a.shotSawLock && a.stateElapsed < a.profile.Ranged.AttackTimeout {
		return
	}
	if a.roller.Chance("ranged.cooldown", a.profile.Ranged.CooldownChance) {
		a.EnterState(Cooldown, ReasonShotDone)
		return
	}
	a.EnterState(a.baseline(), ReasonShotDone)
}

// cooldownKindFor maps the range zone to the cooldown table it selects.
func cooldownKindFor(z rangezone.Zone) cooldownKind {
	switch z {
	case rangezone.Melee:
		return cooldownMelee
	case rangezone.Buffer:
		return cooldownNear
	default:
		return cooldownFar
	}
}

func (a *Agent) cooldownTable(k cooldownKind) *CooldownContext {
	switch k {
	case cooldownMelee:
		return &a.profile.Cooldown.Melee
	case cooldownNear:
		return &a.profile.Cooldown.Near
	default:
		return &a.profile.Cooldown.Far
	}
}

func (a *Agent) beginCooldown() {
	if a.restore != nil {
		a.cooldown = *a.restore
		a.restore = nil
		return
	}
	kind := cooldownKindFor(a.zone)
	table := a.cooldownTable(kind)
	a.cooldown = cooldownState{
		kind:    kind,
		endTime: a.now + a.roller.Duration("cooldown.duration", table.Min, table.Max),
	}
	a.rollPosture()
}

func (a *Agent) rollPosture() {
	table := a.cooldownTable(a.cooldown.kind)
	var probe posture.Probe
	if a.sinks.Spatial != nil {
		probe = posture.GroundProbe{Query: a.sinks.Spatial, Distance: a.profile.Cooldown.ProbeDistance}
	}
	p, end := a.postures.Pick(a.now, table.Weights, table.Posture, a.basis(), a.selfPos(), probe)
	a.cooldown.posture, a.cooldown.postureEnd = p, end
	if p == posture.Idle {
		a.setMove(geom.Zero, SpeedIdle)
	}
}

func (a *Agent) basis() posture.Basis {
	return posture.NewBasis(a.selfPos(), a.target.Position, a.facing())
}

// applyPosture walks along the posture direction, recomputed from the current
// agent-to-target axis each tick, or holds still for Idle.
func (a *Agent) applyPosture() {
	if a.cooldown.posture == posture.Idle {
		if n := a.sinks.Navigation; n != nil {
			n.Stop()
		}
		a.setMove(geom.Zero, SpeedIdle)
		a.faceTarget()
		return
	}
	a.setMove(a.basis().Direction(a.cooldown.posture), SpeedWalk)
	a.faceTarget()
}
