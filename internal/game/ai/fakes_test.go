package ai_test

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duelist/internal/game/ability"
	"github.com/cory-johannsen/duelist/internal/game/ai"
	"github.com/cory-johannsen/duelist/internal/game/combat"
	"github.com/cory-johannsen/duelist/internal/game/dice"
	"github.com/cory-johannsen/duelist/internal/game/geom"
	"github.com/cory-johannsen/duelist/internal/game/posture"
)

const step = 100 * time.Millisecond

type fakeBody struct{ pos, facing geom.Vec2 }

func (b *fakeBody) Position() geom.Vec2 { return b.pos }
func (b *fakeBody) Facing() geom.Vec2   { return b.facing }

type fakeMovement struct {
	dir   geom.Vec2
	speed ai.SpeedLevel
}

func (m *fakeMovement) SetMoveDirection(dir geom.Vec2)        { m.dir = dir }
func (m *fakeMovement) SetMoveSpeedLevel(level ai.SpeedLevel) { m.speed = level }

type fakeRotation struct {
	faced   geom.Vec2
	frozen  bool
	freezes []bool
}

func (r *fakeRotation) FaceToward(p geom.Vec2) { r.faced = p }
func (r *fakeRotation) FreezeRotation(f bool) {
	r.frozen = f
	r.freezes = append(r.freezes, f)
}

type fakeNav struct {
	goal  geom.Vec2
	steer geom.Vec2
	stops int
}

func (n *fakeNav) SetTarget(p geom.Vec2)        { n.goal = p }
func (n *fakeNav) SteeringDirection() geom.Vec2 { return n.steer }
func (n *fakeNav) Stop()                        { n.stops++ }

type fakeFighter struct {
	locked   bool
	window   bool
	index    int
	side     ai.Side
	maxCombo int
	refuse   bool
	normals  []ai.AttackMove
	ats      []int
	heavies  int
}

func (f *fakeFighter) RequestNormalAttack(side ai.Side, move ai.AttackMove) bool {
	if f.refuse {
		return false
	}
	f.normals = append(f.normals, move)
	f.locked, f.index, f.side = true, 1, side
	return true
}

func (f *fakeFighter) RequestAttackAt(side ai.Side, comboIndex int) bool {
	if f.refuse {
		return false
	}
	f.ats = append(f.ats, comboIndex)
	if !f.locked {
		f.locked, f.index, f.side = true, comboIndex, side
	}
	return true
}

func (f *fakeFighter) RequestHeavyAttack(side ai.Side) bool {
	if f.refuse {
		return false
	}
	f.heavies++
	f.locked, f.side = true, side
	return true
}

func (f *fakeFighter) IsInAttackLock() bool   { return f.locked }
func (f *fakeFighter) IsInComboWindow() bool  { return f.window }
func (f *fakeFighter) CurrentComboIndex() int { return f.index }
func (f *fakeFighter) CurrentSide() ai.Side   { return f.side }
func (f *fakeFighter) MaxCombo(ai.Side) int   { return f.maxCombo }

func (f *fakeFighter) requests() int { return len(f.normals) + len(f.ats) + f.heavies }

type fakeRanged struct {
	locked bool
	shots  int
}

func (r *fakeRanged) RequestShot(geom.Vec2) bool {
	r.shots++
	r.locked = true
	return true
}
func (r *fakeRanged) IsInRangedLock() bool { return r.locked }

type fakeBlocker struct {
	blocking bool
	requests []bool
}

func (b *fakeBlocker) RequestBlock(on bool) {
	b.blocking = on
	b.requests = append(b.requests, on)
}
func (b *fakeBlocker) IsBlocking() bool { return b.blocking }

func (b *fakeBlocker) raises() int {
	n := 0
	for _, on := range b.requests {
		if on {
			n++
		}
	}
	return n
}

type fakeCaster struct {
	refuse bool
	locked bool
	casts  []string
}

func (c *fakeCaster) CanTryCast(string) bool { return !c.refuse }
func (c *fakeCaster) TryCast(name string, _ geom.Vec2) bool {
	c.casts = append(c.casts, name)
	return true
}
func (c *fakeCaster) IsInAbilityLock() bool { return c.locked }

type fakeLocks struct {
	hit, transition, ability, guardBroken, dead, cannotBlock bool
}

func (l *fakeLocks) HitLocked() bool        { return l.hit }
func (l *fakeLocks) TransitionLocked() bool { return l.transition }
func (l *fakeLocks) AbilityLocked() bool    { return l.ability }
func (l *fakeLocks) GuardBroken() bool      { return l.guardBroken }
func (l *fakeLocks) CanBlock() bool         { return !l.cannotBlock }
func (l *fakeLocks) Dead() bool             { return l.dead }

type fakeTarget struct {
	id          uuid.UUID
	pos         geom.Vec2
	attacking   bool
	guardBroken bool
	dead        bool
}

func (t *fakeTarget) ID() uuid.UUID         { return t.id }
func (t *fakeTarget) Position() geom.Vec2   { return t.pos }
func (t *fakeTarget) IsAttacking() bool     { return t.attacking }
func (t *fakeTarget) IsGuardBroken() bool   { return t.guardBroken }
func (t *fakeTarget) IsDead() bool          { return t.dead }

type fakeResolver map[uuid.UUID]ai.Target

func (r fakeResolver) Resolve(id uuid.UUID) (ai.Target, bool) {
	t, ok := r[id]
	return t, ok
}

// rig is an agent wired to a full set of fakes.
type rig struct {
	agent       *ai.Agent
	body        *fakeBody
	move        *fakeMovement
	rot         *fakeRotation
	nav         *fakeNav
	fighter     *fakeFighter
	ranged      *fakeRanged
	blocker     *fakeBlocker
	caster      *fakeCaster
	locks       *fakeLocks
	target      *fakeTarget
	presence    *combat.Presence
	transitions []ai.Transition
}

func newRig(prof *ai.Profile, src dice.Source) *rig {
	return newRigWith(prof, src, nil)
}

// newRigWith lets mutate rewire the sinks before the agent is built.
func newRigWith(prof *ai.Profile, src dice.Source, mutate func(*ai.Sinks)) *rig {
	r := &rig{
		body:     &fakeBody{facing: geom.Vec2{X: 1}},
		move:     &fakeMovement{},
		rot:      &fakeRotation{},
		nav:      &fakeNav{},
		fighter:  &fakeFighter{},
		ranged:   &fakeRanged{},
		blocker:  &fakeBlocker{},
		caster:   &fakeCaster{},
		locks:    &fakeLocks{},
		target:   &fakeTarget{id: uuid.New(), pos: geom.Vec2{X: 1.2}},
		presence: combat.NewPresence(),
	}
	sinks := ai.Sinks{
		Body:       r.body,
		Movement:   r.move,
		Rotation:   r.rot,
		Navigation: r.nav,
		Fighter:    r.fighter,
		Ranged:     r.ranged,
		Blocker:    r.blocker,
		Caster:     r.caster,
		Locks:      r.locks,
	}
	if mutate != nil {
		mutate(&sinks)
	}
	r.agent = ai.NewAgent(ai.Options{
		Profile: prof,
		Sinks:   sinks,
		Roller:   dice.NewLoggedRoller(src, zap.NewNop()),
		Presence: r.presence,
		Observer: ai.ObserverFunc(func(_ uuid.UUID, tr ai.Transition) {
			r.transitions = append(r.transitions, tr)
		}),
		Logger: zap.NewNop(),
	})
	return r
}

func (r *rig) tick(n int) {
	for i := 0; i < n; i++ {
		r.agent.Tick(step)
	}
}

func (r *rig) lastTransitionTo(s ai.State) (ai.Transition, bool) {
	for i := len(r.transitions) - 1; i >= 0; i-- {
		if r.transitions[i].To == s {
			return r.transitions[i], true
		}
	}
	return ai.Transition{}, false
}

// meleeProfile is a deterministic melee profile: side A always, combos run to
// 3, finished plans go back to Engage, and every optional decision is off.
func meleeProfile() *ai.Profile {
	idle := ai.CooldownContext{
		Min:     2 * time.Second,
		Max:     2 * time.Second,
		Weights: posture.Weights{Idle: 1},
		Posture: posture.DurationRange{Min: time.Second, Max: time.Second},
	}
	return &ai.Profile{
		ID:     "test",
		Kind:   ai.KindMelee,
		Zones:  ai.ZoneTuning{Thresholds: []float64{1, 2.5, 8}, Hysteresis: 0.2},
		Engage: ai.EngageTuning{AttackDistance: 1.5},
		Combo: ai.ComboTuning{
			PreferAChance:   1,
			MaxA:            3,
			MaxB:            3,
			ContinueChances: []float64{1, 1},
			StartTimeout:    time.Second,
		},
		Cooldown: ai.CooldownTuning{Melee: idle, Near: idle, Far: idle},
	}
}

// aggressiveProfile turns on block, heavy, and ability decisions at certainty.
func aggressiveProfile() *ai.Profile {
	p := meleeProfile()
	p.Block = ai.BlockTuning{Enabled: true, Range: 2, Chance: 1, MinDuration: time.Second, MaxDuration: time.Second, ReleaseGrace: time.Second}
	p.Heavy = ai.HeavyTuning{Enabled: true, Chance: 1, GuardBrokenChance: 1}
	p.Ability = ai.AbilityTuning{Config: ability.Config{
		Enabled:    true,
		MaxRange:   10,
		Candidates: []ability.Candidate{{Name: "cleave", Chance: 1}},
	}}
	return p
}
