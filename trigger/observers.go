package trigger

import "scrollstage/state"

// viewport feeds the viewport size from resize events.
type viewport struct{}

func (t *viewport) Type() string { return TypeViewport }

func (t *viewport) Fields() []string { return []string{"viewport"} }

func (t *viewport) Handle(ev Event, st *state.Store) {
	e, ok := ev.(ResizeEvent)
	if !ok {
		return
	}
	write(st, state.Partial{"viewport": state.Size{W: e.W, H: e.H}})
}

func (t *viewport) Teardown() {}

// visibility tracks per-section visibility ratios and writes the whole
// vector on every change. The ratios slice is the trigger's observer
// state, released on teardown.
type visibility struct {
	ratios []float64
}

func newVisibility(opts Options) *visibility {
	n := opts.Int("sections", 0)
	if n < 0 {
		n = 0
	}
	return &visibility{ratios: make([]float64, n)}
}

func (t *visibility) Type() string { return TypeVisibility }

func (t *visibility) Fields() []string { return []string{"sectionVisibility"} }

func (t *visibility) Handle(ev Event, st *state.Store) {
	e, ok := ev.(VisibilityEvent)
	if !ok || e.Section < 0 {
		return
	}
	for e.Section >= len(t.ratios) {
		t.ratios = append(t.ratios, 0)
	}
	r := e.Ratio
	if r < 0 {
		r = 0
	} else if r > 1 {
		r = 1
	}
	t.ratios[e.Section] = r

	vec := make([]float64, len(t.ratios))
	copy(vec, t.ratios)
	write(st, state.Partial{"sectionVisibility": vec})
}

func (t *visibility) Teardown() {
	t.ratios = nil
}

// keyboard records the most recent pressed key.
type keyboard struct{}

func (t *keyboard) Type() string { return TypeKeyboard }

func (t *keyboard) Fields() []string { return []string{"lastKey"} }

func (t *keyboard) Handle(ev Event, st *state.Store) {
	e, ok := ev.(KeyEvent)
	if !ok || !e.Pressed {
		return
	}
	write(st, state.Partial{"lastKey": e.Key})
}

func (t *keyboard) Teardown() {}

// touch tracks whether any touch is down and mirrors the primary touch
// position into the pointer field.
type touch struct {
	active map[int]struct{}
}

func (t *touch) Type() string { return TypeTouch }

func (t *touch) Fields() []string { return []string{"touchActive", "pointer"} }

func (t *touch) Handle(ev Event, st *state.Store) {
	e, ok := ev.(TouchEvent)
	if !ok {
		return
	}
	if t.active == nil {
		t.active = map[int]struct{}{}
	}
	switch e.Phase {
	case TouchStart, TouchMove:
		t.active[e.ID] = struct{}{}
		write(st, state.Partial{
			"touchActive": true,
			"pointer":     state.Point{X: e.X, Y: e.Y},
		})
	case TouchEnd:
		delete(t.active, e.ID)
		write(st, state.Partial{"touchActive": len(t.active) > 0})
	}
}

func (t *touch) Teardown() {
	t.active = nil
}

// motionPreference mirrors the reduced-motion media preference.
type motionPreference struct{}

func (t *motionPreference) Type() string { return TypeReducedMotion }

func (t *motionPreference) Fields() []string { return []string{"reducedMotion"} }

func (t *motionPreference) Handle(ev Event, st *state.Store) {
	e, ok := ev.(MotionPreferenceEvent)
	if !ok {
		return
	}
	write(st, state.Partial{"reducedMotion": e.Reduced})
}

func (t *motionPreference) Teardown() {}
