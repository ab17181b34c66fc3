// Package combo plans normal-attack strings ("combo plans") and gates queuing
// of each follow-up hit on confirmation that the previous hit landed.
package combo

// Signature identifies the opener of a plan: which side and which combo index it starts on.
type Signature struct {
	SideA bool
	Start int
}

// AttackPlan is the attack string an agent has committed to.
//
// Invariant: once built by a Planner, 1 <= StartIndex <= TargetIndex.
type AttackPlan struct {
	SideA        bool
	Heavy        bool
	StartIndex   int
	TargetIndex  int
	QueuedAt     int
	Started      bool
	PendingStart bool
	confirmed    map[int]struct{}
}

// NeutralPlan returns a plan in its neutral, reset state.
func NeutralPlan() AttackPlan {
	var p AttackPlan
	p.Reset()
	return p
}

// Reset returns the plan to its neutral values.
//
// Postcondition: Heavy == false, StartIndex == 1, Started == false, no confirmed hits.
func (p *AttackPlan) Reset() {
	p.SideA = false
	p.Heavy = false
	p.StartIndex = 1
	p.TargetIndex = 1
	p.QueuedAt = 0
	p.Started = false
	p.PendingStart = false
	p.confirmed = nil
}

// IsNeutral reports whether the plan holds its reset values.
func (p *AttackPlan) IsNeutral() bool {
	return !p.Heavy && p.StartIndex == 1 && !p.Started && !p.PendingStart && len(p.confirmed) == 0
}

// Signature returns the plan's opener signature.
func (p *AttackPlan) Signature() Signature {
	return Signature{SideA: p.SideA, Start: p.StartIndex}
}

// ConfirmHit records that the hit at comboIndex landed.
func (p *AttackPlan) ConfirmHit(comboIndex int) {
	if p.confirmed == nil {
		p.confirmed = make(map[int]struct{})
	}
	p.confirmed[comboIndex] = struct{}{}
}

// IsConfirmed reports whether the hit at comboIndex has landed.
func (p *AttackPlan) IsConfirmed(comboIndex int) bool {
	_, ok := p.confirmed[comboIndex]
	return ok
}

// ConfirmedCount returns the number of confirmed hits.
func (p *AttackPlan) ConfirmedCount() int {
	return len(p.confirmed)
}

// CanQueue reports whether the hit after currentIndex may be queued.
//
// The fighter must be playing this plan's side, the current index must be below
// the target, must not already have queued a follow-up, and must have landed.
func (p *AttackPlan) CanQueue(currentSideA bool, currentIndex int) bool {
	if !p.Started || p.Heavy {
		return false
	}
	if currentSideA != p.SideA {
		return false
	}
	if currentIndex < 1 || currentIndex >= p.TargetIndex {
		return false
	}
	if currentIndex == p.QueuedAt {
		return false
	}
	return p.IsConfirmed(currentIndex)
}

// MarkQueued records that the follow-up to currentIndex was queued.
func (p *AttackPlan) MarkQueued(currentIndex int) {
	p.QueuedAt = currentIndex
}
