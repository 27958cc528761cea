package driver

import "time"

// Scheduler abstracts the recurring tick source. Production hosts bind it
// to their animation-frame callback; tests step a Manual scheduler by hand.
type Scheduler interface {
	// Start begins invoking tick on every frame until Stop.
	Start(tick func(now time.Time))
	// Stop ends ticking. Safe to call more than once.
	Stop()
}

// Manual is a hand-stepped scheduler for tests and headless runs.
type Manual struct {
	tick    func(time.Time)
	running bool
}

// Start records the tick callback.
func (m *Manual) Start(tick func(now time.Time)) {
	m.tick = tick
	m.running = true
}

// Stop discards the callback.
func (m *Manual) Stop() {
	m.running = false
}

// Step invokes one tick at the given instant. No-op when stopped.
func (m *Manual) Step(now time.Time) {
	if m == nil || !m.running || m.tick == nil {
		return
	}
	m.tick(now)
}
