package nav

import (
	"testing"
	"time"

	"scrollstage/state"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newMachine(t *testing.T, cfg Config, opts ...Option) (*Machine, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Unix(1000, 0)}
	m, err := New(cfg, append([]Option{WithClock(clock.Now)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m, clock
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		opts []Option
	}{
		{"zero_sections", Config{Sections: 0}, nil},
		{"negative_debounce", Config{Sections: 3, Debounce: -time.Second}, nil},
		{"initial_out_of_range", Config{Sections: 3}, []Option{WithInitialSection(7)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := New(c.cfg, c.opts...); err == nil {
				t.Fatalf("expected config error")
			}
		})
	}
}

func TestBounds(t *testing.T) {
	cases := []struct {
		name   string
		loop   bool
		from   int
		target int
		want   int // -1 = rejected
	}{
		{"clamp_above", false, 2, 10, 4},
		{"clamp_below", false, 2, -3, 0},
		{"clamp_to_same_rejected", false, 4, 9, -1},
		{"loop_wraps_forward", true, 2, 10, 0},
		{"loop_wraps_negative", true, 2, -1, 4},
		{"loop_exact_multiple_rejected", true, 2, 7, -1},
		{"in_range", false, 2, 3, 3},
		{"same_index_rejected", false, 2, 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, _ := newMachine(t, Config{Sections: 5, Loop: c.loop, AllowSkip: true}, WithInitialSection(c.from))
			ok := m.GoTo(c.target)
			if c.want < 0 {
				if ok {
					t.Fatalf("expected rejection, landed on %d", m.Active())
				}
				if m.Active() != c.from {
					t.Fatalf("rejected request moved index to %d", m.Active())
				}
				return
			}
			if !ok {
				t.Fatalf("expected acceptance")
			}
			if m.Active() != c.want {
				t.Fatalf("active = %d, want %d", m.Active(), c.want)
			}
		})
	}
}

func TestAllowSkipClampsToAdjacent(t *testing.T) {
	m, _ := newMachine(t, Config{Sections: 5, AllowSkip: false}, WithInitialSection(2))

	if !m.GoTo(10) {
		t.Fatalf("clamped jump should still be accepted")
	}
	if m.Active() != 3 {
		t.Fatalf("active = %d, want adjacent 3", m.Active())
	}

	m.CompleteTransition()
	if !m.GoTo(0) {
		t.Fatalf("backward clamped jump should be accepted")
	}
	if m.Active() != 2 {
		t.Fatalf("active = %d, want adjacent 2", m.Active())
	}
}

func TestDebounceWindow(t *testing.T) {
	m, clock := newMachine(t, Config{Sections: 5, Debounce: 500 * time.Millisecond})

	if !m.Next() {
		t.Fatalf("first request should be accepted")
	}
	m.CompleteTransition()

	clock.Advance(100 * time.Millisecond)
	if m.Next() {
		t.Fatalf("request inside debounce window should be rejected")
	}
	if m.Active() != 1 {
		t.Fatalf("active = %d after debounced request, want 1", m.Active())
	}

	clock.Advance(500 * time.Millisecond)
	if !m.Next() {
		t.Fatalf("request after debounce window should be accepted")
	}
	if m.Active() != 2 {
		t.Fatalf("active = %d, want 2", m.Active())
	}
}

func TestLock(t *testing.T) {
	m, _ := newMachine(t, Config{Sections: 5})

	m.SetLock(true)
	if m.GoTo(3) || m.Next() || m.Prev() || m.HandleKey("ArrowDown", m.clock()) {
		t.Fatalf("locked machine accepted a transition")
	}
	if m.Active() != 0 {
		t.Fatalf("active changed while locked: %d", m.Active())
	}

	m.SetLock(false)
	if !m.GoTo(3) {
		t.Fatalf("unlock did not restore navigation")
	}
}

func TestLockDuringTransition(t *testing.T) {
	m, _ := newMachine(t, Config{Sections: 5, LockDuringTransition: true})

	if !m.Next() {
		t.Fatalf("first request should be accepted")
	}
	if m.CurrentState() != StateTransitioning {
		t.Fatalf("state = %v, want transitioning", m.CurrentState())
	}
	if m.Next() {
		t.Fatalf("request during transition should be rejected")
	}

	m.CompleteTransition()
	m.CompleteTransition() // idempotent
	if !m.Next() {
		t.Fatalf("request after completion should be accepted")
	}
}

func TestTransitionRecord(t *testing.T) {
	var got Transition
	m, _ := newMachine(t, Config{Sections: 5, AllowSkip: true},
		WithInitialSection(2),
		WithOnAccept(func(tr Transition) { got = tr }))

	if !m.GoTo(4) {
		t.Fatalf("expected acceptance")
	}
	if got.From != 2 || got.To != 4 || got.Direction != DirForward || got.Input != InputProgrammatic {
		t.Fatalf("transition record = %+v", got)
	}
	if m.Previous() != 2 || m.LastDirection() != DirForward {
		t.Fatalf("prev=%d dir=%v", m.Previous(), m.LastDirection())
	}

	m.CompleteTransition()
	if !m.Prev() {
		t.Fatalf("expected acceptance")
	}
	if got.Direction != DirBackward {
		t.Fatalf("direction = %v, want backward", got.Direction)
	}
}

func TestWheelAccumulation(t *testing.T) {
	m, clock := newMachine(t, Config{Sections: 5, SnapThreshold: 50})

	fired, consumed := m.HandleWheel(30, clock.Now())
	if fired || !consumed {
		t.Fatalf("first delta: fired=%v consumed=%v", fired, consumed)
	}
	fired, _ = m.HandleWheel(25, clock.Now())
	if !fired {
		t.Fatalf("second delta should cross the threshold")
	}
	if m.Active() != 1 {
		t.Fatalf("active = %d, want 1", m.Active())
	}
	if m.WheelAccumulated() != 0 {
		t.Fatalf("accumulator = %v after firing, want 0", m.WheelAccumulated())
	}
}

func TestWheelDirectionReversalResetsAccumulator(t *testing.T) {
	m, clock := newMachine(t, Config{Sections: 5, SnapThreshold: 50}, WithInitialSection(2))

	m.HandleWheel(40, clock.Now())
	m.HandleWheel(-10, clock.Now())
	if got := m.WheelAccumulated(); got != -10 {
		t.Fatalf("accumulator = %v after reversal, want -10", got)
	}
	fired, _ := m.HandleWheel(-45, clock.Now())
	if !fired {
		t.Fatalf("backward threshold crossing should fire")
	}
	if m.Active() != 1 {
		t.Fatalf("active = %d, want 1", m.Active())
	}
}

type fakeProbe struct {
	canForward, canBackward bool
}

func (p *fakeProbe) CanScroll(section int, dir Direction) bool {
	if dir == DirForward {
		return p.canForward
	}
	return p.canBackward
}

func TestWheelPassThroughWhileContentScrolls(t *testing.T) {
	probe := &fakeProbe{canForward: true}
	m, clock := newMachine(t, Config{Sections: 5, SnapThreshold: 50}, WithProbe(probe))

	for i := 0; i < 5; i++ {
		fired, consumed := m.HandleWheel(40, clock.Now())
		if fired || consumed {
			t.Fatalf("event %d: fired=%v consumed=%v while content scrolls", i, fired, consumed)
		}
	}
	if m.WheelAccumulated() != 0 {
		t.Fatalf("accumulator = %v during pass-through, want 0", m.WheelAccumulated())
	}

	// Section exhausted: accumulation begins.
	probe.canForward = false
	m.HandleWheel(30, clock.Now())
	fired, _ := m.HandleWheel(25, clock.Now())
	if !fired || m.Active() != 1 {
		t.Fatalf("post-exhaustion navigation did not fire (active=%d)", m.Active())
	}
}

func TestSwipeCriteria(t *testing.T) {
	cases := []struct {
		name  string
		swipe Swipe
		want  int // -1 = no transition
	}{
		{"up_fires_forward", Swipe{DeltaY: -120, Duration: 200 * time.Millisecond}, 3},
		{"down_fires_backward", Swipe{DeltaY: 120, Duration: 200 * time.Millisecond}, 1},
		{"too_short", Swipe{DeltaY: -20, Duration: 100 * time.Millisecond}, -1},
		{"too_slow", Swipe{DeltaY: -200, Duration: 2 * time.Second}, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, clock := newMachine(t, Config{
				Sections:         5,
				SwipeMinDistance: 60,
				SwipeMaxDuration: 400 * time.Millisecond,
			}, WithInitialSection(2))

			fired := m.HandleSwipe(c.swipe, clock.Now())
			if c.want < 0 {
				if fired {
					t.Fatalf("unqualified swipe fired")
				}
				return
			}
			if !fired || m.Active() != c.want {
				t.Fatalf("active = %d, want %d", m.Active(), c.want)
			}
		})
	}
}

func TestKeyMapping(t *testing.T) {
	m, clock := newMachine(t, Config{Sections: 5, AllowSkip: true}, WithInitialSection(2))

	if !m.HandleKey("ArrowDown", clock.Now()) || m.Active() != 3 {
		t.Fatalf("ArrowDown: active = %d", m.Active())
	}
	m.CompleteTransition()
	if !m.HandleKey("End", clock.Now()) || m.Active() != 4 {
		t.Fatalf("End: active = %d", m.Active())
	}
	m.CompleteTransition()
	if !m.HandleKey("Home", clock.Now()) || m.Active() != 0 {
		t.Fatalf("Home: active = %d", m.Active())
	}
	m.CompleteTransition()
	if m.HandleKey("KeyQ", clock.Now()) {
		t.Fatalf("unrecognized key fired")
	}
}

func TestHistoryBack(t *testing.T) {
	m, _ := newMachine(t, Config{Sections: 5, AllowSkip: true, HistoryDepth: 8})

	m.GoTo(2)
	m.CompleteTransition()
	m.GoTo(4)
	m.CompleteTransition()

	if !m.Back() || m.Active() != 2 {
		t.Fatalf("Back: active = %d, want 2", m.Active())
	}
	m.CompleteTransition()
	if !m.Back() || m.Active() != 0 {
		t.Fatalf("second Back: active = %d, want 0", m.Active())
	}
	m.CompleteTransition()
	if m.Back() {
		t.Fatalf("exhausted history should not fire")
	}
}

func TestStoreMirroring(t *testing.T) {
	st, err := state.NewStore([]state.Field{
		{Name: "activeSection", Kind: state.KindInt},
		{Name: "previousSection", Kind: state.KindInt},
		{Name: "isTransitioning", Kind: state.KindBool},
		{Name: "navDirection", Kind: state.KindString},
	}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	m, _ := newMachine(t, Config{Sections: 5, AllowSkip: true}, WithStore(st), WithInitialSection(1))

	if got := st.Get().Int("activeSection"); got != 1 {
		t.Fatalf("initial activeSection = %d, want 1", got)
	}

	m.GoTo(3)
	snap := st.Get()
	if snap.Int("activeSection") != 3 || snap.Int("previousSection") != 1 {
		t.Fatalf("mirrored indices = %d/%d", snap.Int("activeSection"), snap.Int("previousSection"))
	}
	if !snap.Bool("isTransitioning") {
		t.Fatalf("isTransitioning not mirrored")
	}
	if snap.String("navDirection") != "forward" {
		t.Fatalf("navDirection = %q", snap.String("navDirection"))
	}

	m.CompleteTransition()
	if st.Get().Bool("isTransitioning") {
		t.Fatalf("isTransitioning still set after completion")
	}
}
