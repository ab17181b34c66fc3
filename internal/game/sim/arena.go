package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duelist/internal/game/ability"
	"github.com/cory-johannsen/duelist/internal/game/ai"
	"github.com/cory-johannsen/duelist/internal/game/combat"
	"github.com/cory-johannsen/duelist/internal/game/dice"
	"github.com/cory-johannsen/duelist/internal/game/geom"
	"github.com/cory-johannsen/duelist/internal/game/spatial"
)

// Options configures NewArena.
type Options struct {
	Name     string
	Width    int
	Height   int
	CellSize int
	// Spacing is the starting distance between the two duelists.
	Spacing     float64
	Step        time.Duration
	MaxDuration time.Duration
	Profiles    [2]*ai.Profile
	// Stats tunes each body; a zero value uses DefaultStats.
	Stats [2]Stats
	// Layout adds walls and pits before the duelists are placed; may be nil.
	Layout   func(*spatial.Space)
	Roller   *dice.Roller
	Scripts  ability.ScriptCaller
	Presence *combat.Presence
	Observer ai.Observer
	Logger   *zap.Logger
}

// Duelist pairs an agent with the body it drives.
type Duelist struct {
	Agent *ai.Agent
	Body  *Combatant
}

// Result summarizes a finished or interrupted duel.
type Result struct {
	Arena string
	// Winner is the winning profile ID; empty on a draw.
	Winner string
	// WinnerIndex is 0 or 1, or -1 on a draw.
	WinnerIndex int
	Duration    time.Duration
	HP          [2]float64
	HitsLanded  [2]int
	Transitions int
}

// Arena steps two agents and their bodies on one simulated clock until one
// falls or time runs out.
//
// Arena is not safe for concurrent use.
type Arena struct {
	name        string
	step        time.Duration
	maxDuration time.Duration
	space       *spatial.Space
	duelists    [2]Duelist
	logger      *zap.Logger

	now         time.Duration
	started     bool
	done        bool
	winner      int
	transitions int
}

// NewArena builds an arena with two duelists facing each other across its middle.
//
// Precondition: opts.Roller and opts.Logger must not be nil.
// Postcondition: Returns an Arena that has not started, or an error if any
// option, profile, or stat block is invalid.
func NewArena(opts Options) (*Arena, error) {
	if opts.Roller == nil {
		panic("sim.NewArena: roller must not be nil")
	}
	if opts.Logger == nil {
		panic("sim.NewArena: logger must not be nil")
	}
	if opts.Step <= 0 {
		return nil, fmt.Errorf("sim.NewArena %q: step must be positive", opts.Name)
	}
	if opts.MaxDuration < opts.Step {
		return nil, fmt.Errorf("sim.NewArena %q: max duration must be at least one step", opts.Name)
	}
	if opts.Spacing <= 0 || opts.Spacing >= float64(opts.Width) {
		return nil, fmt.Errorf("sim.NewArena %q: spacing %v must be in (0, %d)", opts.Name, opts.Spacing, opts.Width)
	}
	stats := opts.Stats
	for i := range stats {
		if opts.Profiles[i] == nil {
			return nil, fmt.Errorf("sim.NewArena %q: profile %d must not be nil", opts.Name, i)
		}
		if err := opts.Profiles[i].Validate(); err != nil {
			return nil, fmt.Errorf("sim.NewArena %q: %w", opts.Name, err)
		}
		if stats[i] == (Stats{}) {
			stats[i] = DefaultStats()
		}
	}

	space, err := spatial.NewSpace(opts.Width, opts.Height, opts.CellSize, math.Max(stats[0].Radius, stats[1].Radius))
	if err != nil {
		return nil, fmt.Errorf("sim.NewArena %q: %w", opts.Name, err)
	}
	if opts.Layout != nil {
		opts.Layout(space)
	}

	logger := opts.Logger.With(zap.String("arena", opts.Name))
	a := &Arena{
		name:        opts.Name,
		step:        opts.Step,
		maxDuration: opts.MaxDuration,
		space:       space,
		logger:      logger,
		winner:      -1,
	}

	mid := geom.Vec2{X: float64(opts.Width) / 2, Y: float64(opts.Height) / 2}
	starts := [2]geom.Vec2{
		mid.Add(geom.Vec2{X: -opts.Spacing / 2}),
		mid.Add(geom.Vec2{X: opts.Spacing / 2}),
	}
	for i := range a.duelists {
		other := starts[1-i]
		body, err := NewCombatant(opts.Profiles[i].ID, stats[i], space, starts[i], other.Sub(starts[i]), logger)
		if err != nil {
			return nil, fmt.Errorf("sim.NewArena %q: %w", opts.Name, err)
		}
		agent := ai.NewAgent(ai.Options{
			ID:      body.ID(),
			Profile: opts.Profiles[i],
			Sinks: ai.Sinks{
				Body:       body,
				Movement:   body,
				Rotation:   body,
				Navigation: body,
				Fighter:    body,
				Ranged:     body,
				Blocker:    body,
				Caster:     body,
				Locks:      body,
				Spatial:    space,
				Targets:    a,
			},
			Roller:   opts.Roller,
			Scripts:  opts.Scripts,
			Presence: opts.Presence,
			Observer: opts.Observer,
			Logger:   logger,
		})
		body.OnHitLanded(agent.NotifyHitLanded)
		a.duelists[i] = Duelist{Agent: agent, Body: body}
	}
	a.duelists[0].Body.SetOpponent(a.duelists[1].Body)
	a.duelists[1].Body.SetOpponent(a.duelists[0].Body)
	return a, nil
}

// Name returns the arena name.
func (a *Arena) Name() string { return a.name }

// Space returns the arena's spatial index.
func (a *Arena) Space() *spatial.Space { return a.space }

// Duelist returns duelist i.
//
// Precondition: i must be 0 or 1.
func (a *Arena) Duelist(i int) Duelist { return a.duelists[i] }

// Now returns the simulated time elapsed.
func (a *Arena) Now() time.Duration { return a.now }

// Done reports whether the duel is over.
func (a *Arena) Done() bool { return a.done }

// Resolve implements ai.TargetResolver over the two duelists.
func (a *Arena) Resolve(id uuid.UUID) (ai.Target, bool) {
	for _, d := range a.duelists {
		if d.Body.ID() == id {
			return d.Body, true
		}
	}
	return nil, false
}

// Step advances the duel by one step. The first call puts both agents into
// combat against each other.
//
// Postcondition: Returns false once the duel is over.
func (a *Arena) Step() bool {
	if a.done {
		return false
	}
	if !a.started {
		a.started = true
		for i, d := range a.duelists {
			d.Agent.EnterCombat(a.duelists[1-i].Body)
		}
		a.logger.Debug("duel started")
	}

	a.now += a.step
	for _, d := range a.duelists {
		d.Body.SetClock(a.now)
	}
	for _, d := range a.duelists {
		d.Body.Advance(a.now, a.step)
	}
	for _, d := range a.duelists {
		a.transitions += len(d.Agent.Tick(a.step))
	}
	a.checkEnd()
	return !a.done
}

func (a *Arena) checkEnd() {
	dead0, dead1 := a.duelists[0].Body.Dead(), a.duelists[1].Body.Dead()
	switch {
	case dead0 && !dead1:
		a.winner = 1
	case dead1 && !dead0:
		a.winner = 0
	case dead0 && dead1:
		a.winner = -1
	case a.now >= a.maxDuration:
		a.winner = -1
	default:
		return
	}
	a.done = true
	for _, d := range a.duelists {
		d.Agent.ExitCombat()
	}
	r := a.Result()
	a.logger.Info("duel finished",
		zap.String("winner", r.Winner),
		zap.Duration("duration", r.Duration),
		zap.Float64("hp_0", r.HP[0]),
		zap.Float64("hp_1", r.HP[1]),
		zap.Int("transitions", r.Transitions),
	)
}

// Result reports the duel so far. WinnerIndex is -1 until the duel is over.
func (a *Arena) Result() Result {
	r := Result{
		Arena:       a.name,
		WinnerIndex: -1,
		Duration:    a.now,
		Transitions: a.transitions,
	}
	if a.done && a.winner >= 0 {
		r.WinnerIndex = a.winner
		r.Winner = a.duelists[a.winner].Agent.Profile().ID
	}
	for i, d := range a.duelists {
		r.HP[i] = d.Body.HP()
		r.HitsLanded[i] = d.Body.HitsLanded()
	}
	return r
}

// Run steps the duel to completion.
//
// Postcondition: Returns the final Result, or the Result so far and the
// context error if ctx ends first.
func (a *Arena) Run(ctx context.Context) (Result, error) {
	for a.Step() {
		if err := ctx.Err(); err != nil {
			return a.Result(), fmt.Errorf("sim.Arena.Run %q: %w", a.name, err)
		}
	}
	return a.Result(), nil
}
