// Package ability decides, on a randomized interval, whether an agent should
// commit to one of its special abilities.
package ability

import (
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duelist/internal/game/dice"
	"github.com/cory-johannsen/duelist/internal/game/geom"
)

// Candidate is one ability an agent may try, in priority order.
type Candidate struct {
	// Name identifies the ability to the caster.
	Name string `yaml:"name"`
	// Chance is the probability the candidate is attempted when its turn comes.
	Chance float64 `yaml:"chance"`
	// Cooldown is how long after a commit the candidate stays unavailable.
	Cooldown time.Duration `yaml:"cooldown"`
	// MinRange and MaxRange bound the distance to the target. MaxRange <= 0 means unbounded.
	MinRange float64 `yaml:"min_range"`
	MaxRange float64 `yaml:"max_range"`
	// FacingCone is the full cone angle in degrees the target must be inside.
	// Zero disables the facing test.
	FacingCone float64 `yaml:"facing_cone"`
	// Condition names an optional Lua hook called with (distance, facing_angle);
	// a falsy result rejects the candidate.
	Condition string `yaml:"condition"`
}

// Config tunes a Gate.
type Config struct {
	Enabled     bool          `yaml:"enabled"`
	MinInterval time.Duration `yaml:"min_interval"`
	MaxInterval time.Duration `yaml:"max_interval"`
	// MaxRange is the outer distance beyond which no candidate is considered.
	MaxRange   float64     `yaml:"max_range"`
	Candidates []Candidate `yaml:"candidates"`
}

// Caster reports whether the casting component will accept an ability right now.
type Caster interface {
	CanTryCast(name string) bool
}

// ScriptCaller invokes Lua hooks by scope.
type ScriptCaller interface {
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// Situation is the targeting input for one evaluation.
type Situation struct {
	// Distance to the target.
	Distance float64
	// Facing is the agent's facing direction; ToTarget points at the target.
	Facing   geom.Vec2
	ToTarget geom.Vec2
	// Caster, when non-nil, must accept the candidate.
	Caster Caster
}

// Choice is the candidate a Gate committed to.
type Choice struct {
	Index int
	Name  string
}

// Gate holds the decision timer and per-candidate cooldowns.
//
// Invariant: nextDecision only moves forward between Start calls.
type Gate struct {
	cfg          Config
	roller       *dice.Roller
	logger       *zap.Logger
	scripts      ScriptCaller
	scope        string
	nextDecision time.Duration
	readyAt      []time.Duration
}

// NewGate returns a Gate for cfg. scripts may be nil, in which case candidates
// with a Condition are never chosen.
//
// Precondition: roller and logger must not be nil.
func NewGate(cfg Config, roller *dice.Roller, scripts ScriptCaller, scope string, logger *zap.Logger) *Gate {
	if roller == nil {
		panic("ability.NewGate: roller must not be nil")
	}
	if logger == nil {
		panic("ability.NewGate: logger must not be nil")
	}
	return &Gate{
		cfg:     cfg,
		roller:  roller,
		logger:  logger,
		scripts: scripts,
		scope:   scope,
		readyAt: make([]time.Duration, len(cfg.Candidates)),
	}
}

// Start schedules the first evaluation a random interval after now and clears cooldowns.
func (g *Gate) Start(now time.Duration) {
	for i := range g.readyAt {
		g.readyAt[i] = 0
	}
	g.reschedule(now)
}

// NextDecision returns the absolute time of the next evaluation.
func (g *Gate) NextDecision() time.Duration { return g.nextDecision }

// ReadyAt returns when the candidate at index leaves cooldown.
func (g *Gate) ReadyAt(index int) time.Duration {
	if index < 0 || index >= len(g.readyAt) {
		return 0
	}
	return g.readyAt[index]
}

func (g *Gate) reschedule(now time.Duration) {
	g.nextDecision = now + g.roller.Duration("ability.interval", g.cfg.MinInterval, g.cfg.MaxInterval)
}

// TryDecide evaluates candidates when the decision time has come.
//
// Precondition: now is on the same clock passed to Start.
// Postcondition: before NextDecision, returns (Choice{}, false) without drawing.
// Postcondition: otherwise NextDecision is rescheduled whatever the outcome, and
// a returned candidate has its cooldown started at now.
func (g *Gate) TryDecide(now time.Duration, sit Situation) (Choice, bool) {
	if now < g.nextDecision {
		return Choice{}, false
	}
	g.reschedule(now)

	if !g.cfg.Enabled || len(g.cfg.Candidates) == 0 {
		return Choice{}, false
	}
	if g.cfg.MaxRange > 0 && sit.Distance > g.cfg.MaxRange {
		return Choice{}, false
	}

	for i, c := range g.cfg.Candidates {
		if now < g.readyAt[i] {
			continue
		}
		if !g.roller.Chance("ability."+c.Name, c.Chance) {
			continue
		}
		if sit.Caster != nil && !sit.Caster.CanTryCast(c.Name) {
			continue
		}
		if !g.targetable(c, sit) {
			continue
		}
		g.readyAt[i] = now + c.Cooldown
		g.logger.Debug("ability chosen",
			zap.String("ability", c.Name),
			zap.Float64("distance", sit.Distance),
			zap.Duration("ready_at", g.readyAt[i]),
		)
		return Choice{Index: i, Name: c.Name}, true
	}
	return Choice{}, false
}

func (g *Gate) targetable(c Candidate, sit Situation) bool {
	if sit.Distance < c.MinRange {
		return false
	}
	if c.MaxRange > 0 && sit.Distance > c.MaxRange {
		return false
	}
	angle := sit.Facing.AngleTo(sit.ToTarget)
	if c.FacingCone > 0 && angle > c.FacingCone/2 {
		return false
	}
	if c.Condition == "" {
		return true
	}
	if g.scripts == nil {
		return false
	}
	ret, err := g.scripts.CallHook(g.scope, c.Condition, lua.LNumber(sit.Distance), lua.LNumber(angle))
	if err != nil {
		g.logger.Debug("ability condition failed", zap.String("ability", c.Name), zap.Error(err))
		return false
	}
	return lua.LVAsBool(ret)
}
