package trigger

import (
	"time"

	"scrollstage/state"
)

// pointer feeds the pointer position, throttled by timestamp delta since
// pointer-move is the noisiest source a host produces.
type pointer struct {
	throttle time.Duration
	last     time.Time
}

func newPointer(opts Options) *pointer {
	return &pointer{
		throttle: time.Duration(opts.Float("throttleMs", 16)) * time.Millisecond,
	}
}

func (t *pointer) Type() string { return TypePointer }

func (t *pointer) Fields() []string { return []string{"pointer"} }

func (t *pointer) Handle(ev Event, st *state.Store) {
	e, ok := ev.(PointerMoveEvent)
	if !ok {
		return
	}
	if t.throttle > 0 && !t.last.IsZero() && e.Time.Sub(t.last) < t.throttle {
		return
	}
	t.last = e.Time
	write(st, state.Partial{"pointer": state.Point{X: e.X, Y: e.Y}})
}

func (t *pointer) Teardown() {}
