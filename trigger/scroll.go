package trigger

import (
	"time"

	"scrollstage/state"
)

// scroll feeds scrollProgress and scrollVelocity from scroll offset events.
type scroll struct {
	throttle   time.Duration
	last       time.Time
	lastOffset float64
	lastAt     time.Time
	seen       bool
}

func newScroll(opts Options) *scroll {
	return &scroll{
		throttle: time.Duration(opts.Float("throttleMs", 0)) * time.Millisecond,
	}
}

func (t *scroll) Type() string { return TypeScroll }

func (t *scroll) Fields() []string {
	return []string{"scrollProgress", "scrollVelocity"}
}

func (t *scroll) Handle(ev Event, st *state.Store) {
	e, ok := ev.(ScrollEvent)
	if !ok {
		return
	}
	if t.throttle > 0 && !t.last.IsZero() && e.Time.Sub(t.last) < t.throttle {
		return
	}
	t.last = e.Time

	progress := 0.0
	if e.Max > 0 {
		progress = e.Offset / e.Max
		if progress < 0 {
			progress = 0
		} else if progress > 1 {
			progress = 1
		}
	}

	velocity := 0.0
	if t.seen {
		if dt := e.Time.Sub(t.lastAt).Seconds(); dt > 0 {
			velocity = (e.Offset - t.lastOffset) / dt
		}
	}
	t.lastOffset = e.Offset
	t.lastAt = e.Time
	t.seen = true

	write(st, state.Partial{
		"scrollProgress": progress,
		"scrollVelocity": velocity,
	})
}

func (t *scroll) Teardown() {
	t.seen = false
}
