package observability

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duelist/internal/game/ai"
)

// TransitionLogger is an ai.Observer that logs every transition at info
// level and keeps per-state entry counts.
type TransitionLogger struct {
	logger *zap.Logger

	mu      sync.Mutex
	entries map[ai.State]int
}

// NewTransitionLogger creates a TransitionLogger writing to logger.
//
// Precondition: logger must not be nil.
func NewTransitionLogger(logger *zap.Logger) *TransitionLogger {
	if logger == nil {
		panic("observability.NewTransitionLogger: logger must not be nil")
	}
	return &TransitionLogger{logger: logger, entries: make(map[ai.State]int)}
}

// OnTransition implements ai.Observer.
func (l *TransitionLogger) OnTransition(agent uuid.UUID, t ai.Transition) {
	l.mu.Lock()
	l.entries[t.To]++
	l.mu.Unlock()
	l.logger.Info("agent transition",
		zap.String("agent", agent.String()),
		zap.Stringer("from", t.From),
		zap.Stringer("to", t.To),
		zap.String("reason", string(t.Reason)),
		zap.Duration("at", t.At),
	)
}

// Entries returns how many times state has been entered.
func (l *TransitionLogger) Entries(state ai.State) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[state]
}
