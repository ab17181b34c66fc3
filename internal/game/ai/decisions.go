package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/duelist/internal/game/ability"
	"github.com/cory-johannsen/duelist/internal/game/combo"
)

// tryAbility asks the ability gate for a commit and, when it gives one, casts
// it, drops any block, freezes movement, and enters Ability.
func (a *Agent) tryAbility(dist float64) bool {
	c := a.sinks.Caster
	if c == nil {
		return false
	}
	choice, ok := a.abilities.TryDecide(a.now, ability.Situation{
		Distance: dist,
		Facing:   a.facing(),
		ToTarget: a.target.Position.Sub(a.selfPos()),
		Caster:   c,
	})
	if !ok {
		return false
	}
	if !c.TryCast(choice.Name, a.target.Position) {
		a.logger.Debug("ability cast refused", zap.String("ability", choice.Name))
		return false
	}
	if b := a.sinks.Blocker; b != nil && b.IsBlocking() {
		b.RequestBlock(false)
	}
	a.stopMoving()
	a.EnterState(Ability, ReasonAbility)
	return true
}

// shouldStartBlock checks the block preconditions and, on the block decision
// interval, rolls the block chance. Blocking is never started at run or
// sprint speed.
func (a *Agent) shouldStartBlock(dist float64) bool {
	b := &a.profile.Block
	switch {
	case !b.Enabled, a.sinks.Blocker == nil:
		return false
	case dist > b.Range:
		return false
	case a.locks.guardBroken, !a.locks.canBlock:
		return false
	case a.now < a.blockReadyAt:
		return false
	case a.speed == SpeedRun || a.speed == SpeedSprint:
		return false
	case !a.target.Attacking:
		return false
	case a.now < a.nextBlockDecision:
		return false
	}
	a.nextBlockDecision = a.now + b.DecisionInterval
	return a.roller.Chance("block.start", b.Chance)
}

// beginBlock raises the guard and remembers where to return. An interrupted
// cooldown is saved with its remaining time so it can resume afterwards.
func (a *Agent) beginBlock(returnTo State) {
	b := &a.profile.Block
	a.block = blockState{
		returnTo: returnTo,
		until:    a.now + a.roller.Duration("block.duration", b.MinDuration, b.MaxDuration),
	}
	if returnTo == Cooldown {
		saved := a.cooldown
		saved.endTime -= a.now
		saved.postureEnd -= a.now
		a.block.saved = &saved
	}
	a.EnterState(Block, ReasonBlockStart)
	a.stopMoving()
	a.sinks.Blocker.RequestBlock(true)
}

func (a *Agent) endBlock() {
	to := a.block.returnTo
	if to == Cooldown && a.block.saved != nil {
		r := *a.block.saved
		r.endTime += a.now
		r.postureEnd += a.now
		a.restore = &r
	}
	a.block.saved = nil
	a.EnterState(to, ReasonBlockEnd)
}

// shouldStartHeavy rolls the heavy chance, using the guard-broken chance
// against a guard-broken opponent.
func (a *Agent) shouldStartHeavy() bool {
	h := &a.profile.Heavy
	f := a.sinks.Fighter
	if !h.Enabled || f == nil || f.IsInAttackLock() {
		return false
	}
	chance := h.Chance
	if a.target.GuardBroken {
		chance = h.GuardBrokenChance
	}
	return a.roller.Chance("heavy.start", chance)
}

func (a *Agent) preferAChance() float64 {
	c := &a.profile.Combo
	if a.target.GuardBroken && c.GuardBrokenPreferAChance != nil {
		return *c.GuardBrokenPreferAChance
	}
	return c.PreferAChance
}

func (a *Agent) planHeavy() {
	plan := combo.NeutralPlan()
	plan.Heavy = true
	plan.SideA = a.roller.Chance("heavy.side", a.preferAChance())
	a.plan = plan
	a.EnterState(Attack, ReasonHeavyPlanned)
	a.startPlan()
}

// planCombo builds a normal-attack plan and enters Attack, starting the first
// hit immediately when the fighter is idle.
func (a *Agent) planCombo() {
	f := a.sinks.Fighter
	if f == nil {
		return
	}
	c := &a.profile.Combo
	gbPrefer := -1.0
	if c.GuardBrokenPreferAChance != nil {
		gbPrefer = *c.GuardBrokenPreferAChance
	}
	plan := a.planner.Plan(combo.Request{
		PreferAChance:            c.PreferAChance,
		GuardBrokenPreferAChance: gbPrefer,
		MaxComboA:                c.MaxA,
		MaxComboB:                c.MaxB,
		FighterMaxA:              f.MaxCombo(SideA),
		FighterMaxB:              f.MaxCombo(SideB),
		ContinueChances:          c.ContinueChances,
		RandomOpening:            c.RandomOpening,
		GuardBroken:              a.target.GuardBroken,
		Last:                     a.lastOpener,
		FighterIdle:              !f.IsInAttackLock(),
	})
	sig := plan.Signature()
	a.lastOpener = &sig
	a.plan = plan
	a.EnterState(Attack, ReasonAttackPlanned)
	if !plan.PendingStart {
		a.startPlan()
	}
}

// startPlan requests the plan's opening hit.
func (a *Agent) startPlan() {
	f := a.sinks.Fighter
	if f == nil {
		return
	}
	side := sideOf(a.plan.SideA)
	var ok bool
	switch {
	case a.plan.Heavy:
		ok = f.RequestHeavyAttack(side)
	case a.plan.StartIndex <= 1:
		ok = f.RequestNormalAttack(side, MoveStanding)
	default:
		ok = f.RequestAttackAt(side, a.plan.StartIndex)
	}
	if !ok {
		a.plan.PendingStart = true
		return
	}
	a.plan.Started = true
	a.plan.PendingStart = false
	a.attackSawLock = f.IsInAttackLock()
}

func (a *Agent) sprintArmed() bool {
	return a.now < a.sprintUntil
}

// updateSprintWindow may arm a sprint-attack window while the target is in
// the sprint distance band.
func (a *Agent) updateSprintWindow(dist float64) {
	s := &a.profile.Sprint
	if !s.Enabled || a.sinks.Fighter == nil || a.sprintArmed() {
		return
	}
	if dist < s.MinDistance || dist > s.MaxDistance || a.now < a.nextSprintDecision {
		return
	}
	a.nextSprintDecision = a.now + s.DecisionInterval
	if a.roller.Chance("sprint.arm", s.Chance) {
		a.sprintUntil = a.now + s.Window
	}
}

// trySprintAttack opens a single-hit plan with a sprinting normal attack.
func (a *Agent) trySprintAttack() bool {
	f := a.sinks.Fighter
	if f == nil || f.IsInAttackLock() {
		return false
	}
	sideA := a.roller.Chance("sprint.side", a.preferAChance())
	if !f.RequestNormalAttack(sideOf(sideA), MoveSprint) {
		return false
	}
	plan := combo.NeutralPlan()
	plan.SideA = sideA
	plan.Started = true
	a.plan = plan
	a.EnterState(Attack, ReasonSprintAttack)
	a.attackSawLock = f.IsInAttackLock()
	return true
}

// runBurstActive reports whether a run burst is in progress, rolling for a new
// one on the burst interval.
func (a *Agent) runBurstActive() bool {
	rb := &a.profile.Engage.RunBurst
	if a.now < a.burstUntil {
		return true
	}
	if rb.Chance <= 0 || a.now < a.nextBurstDecision {
		return false
	}
	a.nextBurstDecision = a.now + rb.Interval
	if !a.roller.Chance("engage.run_burst", rb.Chance) {
		return false
	}
	a.burstUntil = a.now + a.roller.Duration("engage.run_burst.duration", rb.Min, rb.Max)
	return a.now < a.burstUntil
}
