package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duelist/internal/game/ai"
	"github.com/cory-johannsen/duelist/internal/game/geom"
	"github.com/cory-johannsen/duelist/internal/game/spatial"
)

// steerAngles are the detours tried, in order, when the straight line to the
// navigation goal is obstructed.
var steerAngles = []float64{0, 45, -45, 90, -90}

var (
	_ ai.Body          = (*Combatant)(nil)
	_ ai.Movement      = (*Combatant)(nil)
	_ ai.Rotation      = (*Combatant)(nil)
	_ ai.Navigation    = (*Combatant)(nil)
	_ ai.Fighter       = (*Combatant)(nil)
	_ ai.RangedFighter = (*Combatant)(nil)
	_ ai.Blocker       = (*Combatant)(nil)
	_ ai.Caster        = (*Combatant)(nil)
	_ ai.Locks         = (*Combatant)(nil)
	_ ai.Target        = (*Combatant)(nil)
)

type swing struct {
	side   ai.Side
	index  int
	heavy  bool
	sprint bool
	hitAt  time.Duration
	end    time.Duration
	struck bool
	queued int
}

type shot struct {
	aim    geom.Vec2
	fireAt time.Duration
	end    time.Duration
	fired  bool
}

type cast struct {
	name     string
	effectAt time.Duration
	applied  bool
}

// Combatant is the simulated body of one duelist. It implements every
// collaborator an ai.Agent drives, and the ai.Target view its opponent reads.
//
// Combatant is not safe for concurrent use.
type Combatant struct {
	id     uuid.UUID
	name   string
	stats  Stats
	space  *spatial.Space
	logger *zap.Logger

	now            time.Duration
	pos            geom.Vec2
	facing         geom.Vec2
	moveDir        geom.Vec2
	speed          ai.SpeedLevel
	rotationFrozen bool
	navGoal        geom.Vec2
	navActive      bool

	hp       float64
	guard    float64
	blocking bool
	swing    *swing
	shot     *shot
	cast     *cast

	abilityReady     map[string]time.Duration
	hitLockUntil     time.Duration
	guardBrokenUntil time.Duration
	standUntil       time.Duration
	abilityLockUntil time.Duration

	opponent    *Combatant
	onHitLanded func(comboIndex int)
	hitsLanded  int
	hitsBlocked int
}

// NewCombatant places a combatant in space at pos, facing facing.
//
// Precondition: space and logger must not be nil.
// Postcondition: Returns a Combatant registered with space, or an error if the
// stats are invalid or pos is not on open ground.
func NewCombatant(name string, stats Stats, space *spatial.Space, pos, facing geom.Vec2, logger *zap.Logger) (*Combatant, error) {
	if space == nil {
		panic("sim.NewCombatant: space must not be nil")
	}
	if logger == nil {
		panic("sim.NewCombatant: logger must not be nil")
	}
	if err := stats.Validate(); err != nil {
		return nil, err
	}
	if !space.SampleGround(pos) {
		return nil, fmt.Errorf("sim.NewCombatant: %s at (%.2f, %.2f) is not on open ground", name, pos.X, pos.Y)
	}
	c := &Combatant{
		id:           uuid.New(),
		name:         name,
		stats:        stats,
		space:        space,
		pos:          pos,
		facing:       facing.Normalize(),
		hp:           stats.MaxHP,
		guard:        stats.MaxGuard,
		abilityReady: make(map[string]time.Duration),
	}
	if c.facing.IsZero() {
		c.facing = geom.Vec2{X: 1}
	}
	c.logger = logger.With(zap.String("combatant", name), zap.String("id", c.id.String()))
	if err := space.AddActor(c.id, pos, stats.Radius); err != nil {
		return nil, err
	}
	return c, nil
}

// Name returns the combatant's display name.
func (c *Combatant) Name() string { return c.name }

// HP returns the remaining hit points.
func (c *Combatant) HP() float64 { return c.hp }

// GuardPoints returns the remaining guard.
func (c *Combatant) GuardPoints() float64 { return c.guard }

// HitsLanded returns how many of this combatant's hits connected.
func (c *Combatant) HitsLanded() int { return c.hitsLanded }

// HitsBlocked returns how many of this combatant's hits were blocked.
func (c *Combatant) HitsBlocked() int { return c.hitsBlocked }

// Speed returns the commanded speed level.
func (c *Combatant) Speed() ai.SpeedLevel { return c.speed }

// SetOpponent sets the combatant that melee hits, shots, and abilities land on.
func (c *Combatant) SetOpponent(o *Combatant) { c.opponent = o }

// OnHitLanded registers fn to be told the combo index of every landed hit.
func (c *Combatant) OnHitLanded(fn func(comboIndex int)) { c.onHitLanded = fn }

// SetClock moves the combatant's clock to now without advancing its timelines.
func (c *Combatant) SetClock(now time.Duration) { c.now = now }

// Advance moves the clock to now and integrates the last dt of movement,
// guard regeneration, and attack, shot, and cast timelines.
func (c *Combatant) Advance(now, dt time.Duration) {
	c.now = now
	if c.Dead() {
		return
	}
	c.regenGuard(dt)
	c.integrate(dt)
	c.updateSwing()
	c.updateShot()
	c.updateCast()
}

// ID implements ai.Target.
func (c *Combatant) ID() uuid.UUID { return c.id }

// Position implements ai.Body and ai.Target.
func (c *Combatant) Position() geom.Vec2 { return c.pos }

// Facing implements ai.Body.
func (c *Combatant) Facing() geom.Vec2 { return c.facing }

// IsAttacking reports whether a hit, shot, or cast is on its way.
func (c *Combatant) IsAttacking() bool {
	switch {
	case c.swing != nil && !c.swing.struck:
		return true
	case c.shot != nil && !c.shot.fired:
		return true
	case c.cast != nil && !c.cast.applied:
		return true
	}
	return false
}

// IsGuardBroken implements ai.Target.
func (c *Combatant) IsGuardBroken() bool { return c.GuardBroken() }

// IsDead implements ai.Target.
func (c *Combatant) IsDead() bool { return c.Dead() }

// SetMoveDirection implements ai.Movement.
func (c *Combatant) SetMoveDirection(dir geom.Vec2) { c.moveDir = dir }

// SetMoveSpeedLevel implements ai.Movement.
func (c *Combatant) SetMoveSpeedLevel(level ai.SpeedLevel) { c.speed = level }

// FaceToward turns instantly toward p unless rotation is frozen.
func (c *Combatant) FaceToward(p geom.Vec2) {
	if c.rotationFrozen || c.Dead() {
		return
	}
	if d := p.Sub(c.pos).Normalize(); !d.IsZero() {
		c.facing = d
	}
}

// FreezeRotation implements ai.Rotation.
func (c *Combatant) FreezeRotation(frozen bool) { c.rotationFrozen = frozen }

// SetTarget implements ai.Navigation.
func (c *Combatant) SetTarget(p geom.Vec2) {
	c.navGoal = p
	c.navActive = true
}

// Stop implements ai.Navigation.
func (c *Combatant) Stop() { c.navActive = false }

// SteeringDirection points at the navigation goal, detouring around walls.
//
// Postcondition: returns Zero with no goal, at the goal, or when every detour is blocked.
func (c *Combatant) SteeringDirection() geom.Vec2 {
	if !c.navActive {
		return geom.Zero
	}
	to := c.navGoal.Sub(c.pos)
	dist := to.Len()
	if dist < 1e-6 {
		return geom.Zero
	}
	look := math.Min(dist, c.stats.Radius*4)
	dir := to.Normalize()
	for _, deg := range steerAngles {
		d := dir.Rotate(deg)
		if c.space.ProbeClear(c.pos, c.pos.Add(d.Scale(look))) {
			return d
		}
	}
	return geom.Zero
}

// busy reports whether the body is committed to something it cannot cancel.
func (c *Combatant) busy() bool {
	return c.Dead() || c.HitLocked() || c.GuardBroken() || c.TransitionLocked() ||
		c.AbilityLocked() || c.swing != nil || c.shot != nil
}

// RequestNormalAttack starts the first hit of a string on side.
func (c *Combatant) RequestNormalAttack(side ai.Side, move ai.AttackMove) bool {
	if c.busy() {
		return false
	}
	c.startSwing(side, 1, false, move == ai.MoveSprint)
	return true
}

// RequestAttackAt queues comboIndex after the current hit, or opens a string
// on comboIndex when idle.
func (c *Combatant) RequestAttackAt(side ai.Side, comboIndex int) bool {
	if comboIndex < 1 || comboIndex > c.MaxCombo(side) {
		return false
	}
	if s := c.swing; s != nil {
		if s.heavy || s.side != side || !c.IsInComboWindow() || comboIndex != s.index+1 || s.queued != 0 {
			return false
		}
		s.queued = comboIndex
		return true
	}
	if c.busy() {
		return false
	}
	c.startSwing(side, comboIndex, false, false)
	return true
}

// RequestHeavyAttack starts a heavy attack on side.
func (c *Combatant) RequestHeavyAttack(side ai.Side) bool {
	if c.busy() {
		return false
	}
	c.startSwing(side, 1, true, false)
	return true
}

// IsInAttackLock implements ai.Fighter.
func (c *Combatant) IsInAttackLock() bool { return c.swing != nil }

// IsInComboWindow reports whether a landed-or-missed normal hit is recovering
// and can take a follow-up.
func (c *Combatant) IsInComboWindow() bool {
	s := c.swing
	return s != nil && !s.heavy && s.struck && c.now < s.end
}

// CurrentComboIndex implements ai.Fighter; 0 when idle.
func (c *Combatant) CurrentComboIndex() int {
	if c.swing == nil {
		return 0
	}
	return c.swing.index
}

// CurrentSide implements ai.Fighter.
func (c *Combatant) CurrentSide() ai.Side {
	if c.swing == nil {
		return ai.SideA
	}
	return c.swing.side
}

// MaxCombo implements ai.Fighter.
func (c *Combatant) MaxCombo(side ai.Side) int {
	if side == ai.SideA {
		return c.stats.MaxComboA
	}
	return c.stats.MaxComboB
}

// RequestShot starts a shot aimed at the given point.
func (c *Combatant) RequestShot(at geom.Vec2) bool {
	if c.busy() {
		return false
	}
	c.blocking = false
	fireAt := c.now + c.stats.ShotWindup
	c.shot = &shot{aim: at, fireAt: fireAt, end: fireAt + c.stats.ShotRecovery}
	return true
}

// IsInRangedLock implements ai.RangedFighter.
func (c *Combatant) IsInRangedLock() bool { return c.shot != nil }

// RequestBlock raises or lowers the guard. Raising is refused while the body
// cannot block or is mid-attack.
func (c *Combatant) RequestBlock(on bool) {
	if !on {
		c.blocking = false
		return
	}
	if !c.CanBlock() || c.swing != nil || c.shot != nil || c.AbilityLocked() {
		return
	}
	c.blocking = true
}

// IsBlocking implements ai.Blocker.
func (c *Combatant) IsBlocking() bool { return c.blocking }

// CanTryCast reports whether name is off cooldown and the body is free.
func (c *Combatant) CanTryCast(name string) bool {
	return !c.busy() && c.now >= c.abilityReady[name]
}

// TryCast casts name. The effect lands halfway through the ability lock.
func (c *Combatant) TryCast(name string, _ geom.Vec2) bool {
	if !c.CanTryCast(name) {
		return false
	}
	c.blocking = false
	c.abilityLockUntil = c.now + c.stats.AbilityLock
	c.abilityReady[name] = c.now + c.stats.AbilityCooldown
	c.cast = &cast{name: name, effectAt: c.now + c.stats.AbilityLock/2}
	c.logger.Debug("ability cast", zap.String("ability", name))
	return true
}

// IsInAbilityLock implements ai.Caster.
func (c *Combatant) IsInAbilityLock() bool { return c.AbilityLocked() }

// HitLocked implements ai.Locks.
func (c *Combatant) HitLocked() bool { return c.now < c.hitLockUntil }

// TransitionLocked is true while standing back up after a guard break.
func (c *Combatant) TransitionLocked() bool { return c.now < c.standUntil }

// AbilityLocked implements ai.Locks.
func (c *Combatant) AbilityLocked() bool { return c.now < c.abilityLockUntil }

// GuardBroken implements ai.Locks.
func (c *Combatant) GuardBroken() bool { return c.now < c.guardBrokenUntil }

// CanBlock implements ai.Locks.
func (c *Combatant) CanBlock() bool { return !c.Dead() && !c.GuardBroken() && c.guard > 0 }

// Dead implements ai.Locks.
func (c *Combatant) Dead() bool { return c.hp <= 0 }

func (c *Combatant) regenGuard(dt time.Duration) {
	if c.blocking || c.GuardBroken() {
		return
	}
	c.guard = math.Min(c.stats.MaxGuard, c.guard+c.stats.GuardRegen*dt.Seconds())
}

func (c *Combatant) speedFor(level ai.SpeedLevel) float64 {
	switch level {
	case ai.SpeedWalk:
		return c.stats.WalkSpeed
	case ai.SpeedRun:
		return c.stats.RunSpeed
	case ai.SpeedSprint:
		return c.stats.SprintSpeed
	default:
		return 0
	}
}

// integrate moves the body along the commanded direction. Steps that would
// leave the ground, cross a wall, or overlap the opponent are dropped.
func (c *Combatant) integrate(dt time.Duration) {
	if c.HitLocked() || c.GuardBroken() || c.AbilityLocked() {
		return
	}
	dir := c.moveDir.Normalize()
	speed := c.speedFor(c.speed)
	if dir.IsZero() || speed <= 0 || dt <= 0 {
		return
	}
	next := c.pos.Add(dir.Scale(speed * dt.Seconds()))
	if o := c.opponent; o != nil && next.Dist(o.pos) < c.stats.Radius+o.stats.Radius {
		return
	}
	if !c.space.SampleGround(next) || !c.space.ProbeClear(c.pos, next) {
		return
	}
	c.pos = next
	c.space.MoveActor(c.id, next)
}

func (c *Combatant) startSwing(side ai.Side, index int, heavy, sprint bool) {
	c.blocking = false
	windup, recovery := c.stats.Windup, c.stats.Recovery
	if heavy {
		windup, recovery = c.stats.HeavyWindup, c.stats.HeavyRecovery
	}
	hitAt := c.now + windup
	c.swing = &swing{side: side, index: index, heavy: heavy, sprint: sprint, hitAt: hitAt, end: hitAt + recovery}
}

func (c *Combatant) updateSwing() {
	s := c.swing
	if s == nil {
		return
	}
	if !s.struck && c.now >= s.hitAt {
		s.struck = true
		c.strike(s)
	}
	if c.swing != s || c.now < s.end {
		return
	}
	c.swing = nil
	if s.queued > 0 {
		c.startSwing(s.side, s.queued, false, false)
	}
}

// strike resolves a melee hit against the opponent.
func (c *Combatant) strike(s *swing) {
	o := c.opponent
	if o == nil || o.Dead() {
		return
	}
	to := o.pos.Sub(c.pos)
	reach := c.stats.Reach + c.stats.Radius + o.stats.Radius
	if s.sprint {
		reach += c.stats.Radius
	}
	if to.Len() > reach || c.facing.AngleTo(to) > c.stats.HitCone/2 {
		c.logger.Debug("swing missed", zap.Int("index", s.index), zap.Bool("heavy", s.heavy))
		return
	}
	damage, guardDamage := c.stats.Damage, c.stats.GuardDamage
	if s.heavy {
		damage, guardDamage = c.stats.HeavyDamage, 2*c.stats.GuardDamage
	}
	c.land(o, damage, guardDamage, s.index)
}

// land applies a hit to o and reports a landed combo index back to the attacker's listener.
func (c *Combatant) land(o *Combatant, damage, guardDamage float64, comboIndex int) {
	if !o.receive(c, damage, guardDamage) {
		c.hitsBlocked++
		return
	}
	c.hitsLanded++
	if comboIndex > 0 && c.onHitLanded != nil {
		c.onHitLanded(comboIndex)
	}
}

// receive takes a hit from attacker and reports whether it got through.
// A raised guard facing the attacker absorbs the hit into guard points.
func (c *Combatant) receive(attacker *Combatant, damage, guardDamage float64) bool {
	now := attacker.now
	if c.blocking && c.facing.AngleTo(attacker.pos.Sub(c.pos)) <= 90 {
		c.guard -= guardDamage
		if c.guard <= 0 {
			c.breakGuard(now)
		}
		return false
	}
	c.hp -= damage
	c.hitLockUntil = now + c.stats.HitStun
	c.interrupt()
	if c.hp <= 0 {
		c.hp = 0
		c.logger.Info("combatant down", zap.String("by", attacker.name))
	}
	return true
}

func (c *Combatant) breakGuard(now time.Duration) {
	c.guard = 0
	c.guardBrokenUntil = now + c.stats.GuardBreak
	c.standUntil = c.guardBrokenUntil + c.stats.StandUp
	c.interrupt()
	c.logger.Debug("guard broken", zap.Duration("until", c.guardBrokenUntil))
}

func (c *Combatant) interrupt() {
	c.blocking = false
	c.swing = nil
	c.shot = nil
	c.cast = nil
}

func (c *Combatant) updateShot() {
	s := c.shot
	if s == nil {
		return
	}
	if !s.fired && c.now >= s.fireAt {
		s.fired = true
		if o := c.opponent; o != nil && !o.Dead() && c.shotConnects(o, s.aim) {
			c.land(o, c.stats.ShotDamage, c.stats.GuardDamage/2, 0)
		}
	}
	if c.shot == s && c.now >= s.end {
		c.shot = nil
	}
}

// shotConnects reports whether o is within range, still near the aim point,
// and visible along a wall-free line.
func (c *Combatant) shotConnects(o *Combatant, aim geom.Vec2) bool {
	if c.pos.Dist(o.pos) > c.stats.ShotRange {
		return false
	}
	if o.pos.Dist(aim) > o.stats.Radius*2 {
		return false
	}
	return c.space.ProbeClear(c.pos, o.pos)
}

func (c *Combatant) updateCast() {
	k := c.cast
	if k == nil {
		return
	}
	if !k.applied && c.now >= k.effectAt {
		k.applied = true
		if o := c.opponent; o != nil && !o.Dead() && c.pos.Dist(o.pos) <= c.stats.AbilityRange+c.stats.Radius+o.stats.Radius {
			c.land(o, c.stats.AbilityDamage, c.stats.GuardDamage, 0)
		}
	}
	if c.cast == k && !c.AbilityLocked() {
		c.cast = nil
	}
}
