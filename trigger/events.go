// Package trigger translates environment events into runtime state writes.
// Triggers are one-way: they never return values to the dispatcher and
// never touch presentation state.
package trigger

import "time"

// Event is one observed environment signal. Hosts construct these from
// whatever primitives their platform offers and feed them to Set.Dispatch.
type Event interface {
	When() time.Time
}

// WheelEvent is a mouse-wheel or trackpad delta.
type WheelEvent struct {
	DeltaX, DeltaY float64
	Time           time.Time
}

func (e WheelEvent) When() time.Time { return e.Time }

// ScrollEvent reports the current scroll offset within a scrollable extent.
type ScrollEvent struct {
	Offset, Max float64
	Time        time.Time
}

func (e ScrollEvent) When() time.Time { return e.Time }

// PointerMoveEvent reports the pointer position in viewport coordinates.
type PointerMoveEvent struct {
	X, Y float64
	Time time.Time
}

func (e PointerMoveEvent) When() time.Time { return e.Time }

// ResizeEvent reports the viewport size.
type ResizeEvent struct {
	W, H float64
	Time time.Time
}

func (e ResizeEvent) When() time.Time { return e.Time }

// KeyEvent reports a key press or release.
type KeyEvent struct {
	Key     string
	Pressed bool
	Time    time.Time
}

func (e KeyEvent) When() time.Time { return e.Time }

// TouchPhase distinguishes touch lifecycle events.
type TouchPhase int

const (
	TouchStart TouchPhase = iota
	TouchMove
	TouchEnd
)

// TouchEvent reports one touch point.
type TouchEvent struct {
	Phase TouchPhase
	ID    int
	X, Y  float64
	Time  time.Time
}

func (e TouchEvent) When() time.Time { return e.Time }

// VisibilityEvent reports how much of a section is visible, 0..1.
type VisibilityEvent struct {
	Section int
	Ratio   float64
	Time    time.Time
}

func (e VisibilityEvent) When() time.Time { return e.Time }

// MotionPreferenceEvent reports the reduced-motion media preference.
type MotionPreferenceEvent struct {
	Reduced bool
	Time    time.Time
}

func (e MotionPreferenceEvent) When() time.Time { return e.Time }
