package nav

import "time"

// HandleWheel accumulates wheel deltas toward the snap threshold and fires
// a one-step navigation when crossed. Positive delta scrolls forward.
//
// Before accumulating, the machine asks the scroll probe whether the
// active section's own content can still scroll in the requested
// direction; while it can, the event passes through untouched with no
// accumulation, and the caller should not consume it either. The returned
// consumed flag tells the host whether it may treat the event as handled.
func (m *Machine) HandleWheel(deltaY float64, now time.Time) (fired, consumed bool) {
	if deltaY == 0 {
		return false, false
	}
	dir := DirForward
	if deltaY < 0 {
		dir = DirBackward
	}

	if m.probe != nil && m.probe.CanScroll(m.active, dir) {
		return false, false
	}

	// A direction reversal restarts accumulation.
	if (m.wheelAccum > 0 && deltaY < 0) || (m.wheelAccum < 0 && deltaY > 0) {
		m.wheelAccum = 0
	}
	m.wheelAccum += deltaY

	if m.wheelAccum >= m.cfg.SnapThreshold {
		m.wheelAccum = 0
		return m.request(m.active+1, InputWheel, now), true
	}
	if m.wheelAccum <= -m.cfg.SnapThreshold {
		m.wheelAccum = 0
		return m.request(m.active-1, InputWheel, now), true
	}
	return false, true
}

// WheelAccumulated exposes the current accumulator, for tests and debug
// overlays.
func (m *Machine) WheelAccumulated() float64 { return m.wheelAccum }

// HandleKey maps qualifying keys onto navigation requests. Unrecognized
// keys are ignored.
func (m *Machine) HandleKey(key string, now time.Time) bool {
	switch key {
	case "ArrowDown", "PageDown", "Space":
		return m.request(m.active+1, InputKeyboard, now)
	case "ArrowUp", "PageUp":
		return m.request(m.active-1, InputKeyboard, now)
	case "Home":
		return m.request(0, InputKeyboard, now)
	case "End":
		return m.request(m.cfg.Sections-1, InputKeyboard, now)
	default:
		return false
	}
}

// Swipe is a completed touch gesture.
type Swipe struct {
	DeltaX, DeltaY float64
	Duration       time.Duration
}

// HandleSwipe fires a navigation for gestures meeting the
// distance-and-max-duration criteria. A swipe up (negative DeltaY) moves
// forward, mirroring content dragged toward the previous viewport edge.
func (m *Machine) HandleSwipe(s Swipe, now time.Time) bool {
	dist := s.DeltaY
	if dist < 0 {
		dist = -dist
	}
	if dist < m.cfg.SwipeMinDistance {
		return false
	}
	if s.Duration > m.cfg.SwipeMaxDuration {
		return false
	}
	if s.DeltaY < 0 {
		return m.request(m.active+1, InputSwipe, now)
	}
	return m.request(m.active-1, InputSwipe, now)
}
