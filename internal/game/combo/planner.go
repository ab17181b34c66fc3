package combo

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/duelist/internal/game/dice"
)

// DefaultRerollBudget is the number of rerolls spent avoiding a repeated opener.
const DefaultRerollBudget = 10

// Request carries everything one planning decision depends on.
type Request struct {
	// PreferAChance is the probability of choosing side A.
	PreferAChance float64
	// GuardBrokenPreferAChance replaces PreferAChance when the opponent is
	// guard-broken. Negative means no override.
	GuardBrokenPreferAChance float64
	// MaxComboA and MaxComboB are the configured caps per side.
	MaxComboA int
	MaxComboB int
	// FighterMaxA and FighterMaxB are the longest strings the fighter can execute;
	// zero means unknown and does not cap.
	FighterMaxA int
	FighterMaxB int
	// ContinueChances[i] is the chance of extending from combo index i+1 to i+2.
	ContinueChances []float64
	// RandomOpening draws the opening index uniformly from [1, max] instead of 1.
	RandomOpening bool
	// GuardBroken is true when the opponent's guard is broken.
	GuardBroken bool
	// Last is the previous plan's opener, nil when there was none.
	Last *Signature
	// FighterIdle is true when the fighter can start a hit right now.
	FighterIdle bool
}

// Planner builds AttackPlans.
type Planner struct {
	roller       *dice.Roller
	rerollBudget int
	logger       *zap.Logger
}

// NewPlanner returns a Planner drawing from roller.
//
// Precondition: roller and logger must not be nil.
// Postcondition: a rerollBudget below zero is treated as zero.
func NewPlanner(roller *dice.Roller, rerollBudget int, logger *zap.Logger) *Planner {
	if roller == nil {
		panic("combo.NewPlanner: roller must not be nil")
	}
	if logger == nil {
		panic("combo.NewPlanner: logger must not be nil")
	}
	if rerollBudget < 0 {
		rerollBudget = 0
	}
	return &Planner{roller: roller, rerollBudget: rerollBudget, logger: logger}
}

// MaxForSide returns the longest reachable combo for a side: the configured cap
// further limited by the fighter's reported maximum, never below 1.
func MaxForSide(configCap, fighterMax int) int {
	m := configCap
	if fighterMax > 0 && fighterMax < m {
		m = fighterMax
	}
	if m < 1 {
		m = 1
	}
	return m
}

// Plan chooses a side, an opening index, and a target index.
//
// Postcondition: 1 <= StartIndex <= TargetIndex <= MaxForSide(side).
// Postcondition: the opener differs from req.Last unless every reroll matched it.
// Postcondition: PendingStart == !req.FighterIdle; Started is false.
func (p *Planner) Plan(req Request) AttackPlan {
	sideA, start, maxSide := p.pickOpener(req)
	for i := 0; i < p.rerollBudget && req.Last != nil && (Signature{SideA: sideA, Start: start}) == *req.Last; i++ {
		sideA, start, maxSide = p.pickOpener(req)
	}

	target := start
	if req.GuardBroken {
		target = maxSide
	} else {
		for target < maxSide && p.roller.Chance("combo.continue", continueChance(req.ContinueChances, target)) {
			target++
		}
	}

	plan := NeutralPlan()
	plan.SideA = sideA
	plan.StartIndex = start
	plan.TargetIndex = target
	plan.PendingStart = !req.FighterIdle

	p.logger.Debug("combo planned",
		zap.Bool("side_a", sideA),
		zap.Int("start", start),
		zap.Int("target", target),
		zap.Bool("guard_broken", req.GuardBroken),
		zap.Bool("pending_start", plan.PendingStart),
	)
	return plan
}

func (p *Planner) pickOpener(req Request) (sideA bool, start, maxSide int) {
	chance := req.PreferAChance
	if req.GuardBroken && req.GuardBrokenPreferAChance >= 0 {
		chance = req.GuardBrokenPreferAChance
	}
	sideA = p.roller.Chance("combo.side", chance)
	if sideA {
		maxSide = MaxForSide(req.MaxComboA, req.FighterMaxA)
	} else {
		maxSide = MaxForSide(req.MaxComboB, req.FighterMaxB)
	}
	start = 1
	if req.RandomOpening {
		start = p.roller.IntRange("combo.opening", 1, maxSide)
	}
	return sideA, start, maxSide
}

// continueChance returns the chance of extending past comboIndex. Indices past
// the end of the table reuse its last entry; an empty table never continues.
func continueChance(table []float64, comboIndex int) float64 {
	if len(table) == 0 {
		return 0
	}
	i := comboIndex - 1
	if i >= len(table) {
		i = len(table) - 1
	}
	if i < 0 {
		i = 0
	}
	return table[i]
}
