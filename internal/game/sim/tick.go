package sim

import (
	"context"
	"sort"
	"sync"
	"time"
)

// TickManager runs a periodic tick for each registered arena. A callback that
// returns false is unregistered.
//
// Invariant: all callbacks are invoked at most once per tick interval, in key order.
type TickManager struct {
	interval time.Duration
	mu       sync.Mutex
	ticks    map[string]func() bool
}

// NewTickManager returns a manager that fires ticks every interval.
//
// Precondition: interval must be > 0.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		panic("sim.NewTickManager: interval must be > 0")
	}
	return &TickManager{
		interval: interval,
		ticks:    make(map[string]func() bool),
	}
}

// RegisterTick registers a callback for key. Replaces any existing callback.
func (m *TickManager) RegisterTick(key string, fn func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks[key] = fn
}

// Unregister removes the tick callback for key.
func (m *TickManager) Unregister(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ticks, key)
}

// Len returns the number of registered callbacks.
func (m *TickManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ticks)
}

// Start begins the tick loop. It runs until ctx is cancelled or no callbacks remain.
//
// Postcondition: the returned channel is closed when the loop exits.
func (m *TickManager) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for m.Len() > 0 {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.tick()
			}
		}
	}()
	return done
}

func (m *TickManager) tick() {
	m.mu.Lock()
	keys := make([]string, 0, len(m.ticks))
	callbacks := make(map[string]func() bool, len(m.ticks))
	for k, v := range m.ticks {
		keys = append(keys, k)
		callbacks[k] = v
	}
	m.mu.Unlock()
	sort.Strings(keys)
	for _, k := range keys {
		if !callbacks[k]() {
			m.Unregister(k)
		}
	}
}
