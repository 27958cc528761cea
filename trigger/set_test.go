package trigger

import (
	"testing"
	"time"

	"scrollstage/state"
)

func fullStore(t *testing.T) *state.Store {
	t.Helper()
	st, err := state.NewStore([]state.Field{
		{Name: "scrollProgress", Kind: state.KindFloat},
		{Name: "scrollVelocity", Kind: state.KindFloat},
		{Name: "pointer", Kind: state.KindPoint},
		{Name: "viewport", Kind: state.KindSize},
		{Name: "sectionVisibility", Kind: state.KindVector},
		{Name: "lastKey", Kind: state.KindString},
		{Name: "touchActive", Kind: state.KindBool},
		{Name: "reducedMotion", Kind: state.KindBool},
	}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return st
}

func allConfigs() []Config {
	return []Config{
		{Type: TypeScroll},
		{Type: TypePointer, Options: Options{"throttleMs": 16.0}},
		{Type: TypeViewport},
		{Type: TypeVisibility, Options: Options{"sections": 3}},
		{Type: TypeKeyboard},
		{Type: TypeTouch},
		{Type: TypeReducedMotion},
	}
}

func TestNewSetUnknownType(t *testing.T) {
	st := fullStore(t)
	if _, err := NewSet([]Config{{Type: "telepathy"}}, st, nil); err == nil {
		t.Fatalf("expected unknown trigger type error")
	}
}

func TestSetDispatchWritesDeclaredFields(t *testing.T) {
	st := fullStore(t)
	set, err := NewSet(allConfigs(), st, nil)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	defer set.Close()

	base := time.Now()
	set.Dispatch(ScrollEvent{Offset: 250, Max: 1000, Time: base})
	set.Dispatch(ResizeEvent{W: 1920, H: 1080, Time: base})
	set.Dispatch(KeyEvent{Key: "ArrowDown", Pressed: true, Time: base})
	set.Dispatch(MotionPreferenceEvent{Reduced: true, Time: base})
	set.Dispatch(VisibilityEvent{Section: 1, Ratio: 0.75, Time: base})

	snap := st.Get()
	if got := snap.Float("scrollProgress"); got != 0.25 {
		t.Fatalf("scrollProgress = %v, want 0.25", got)
	}
	if got := snap.Size("viewport"); got.W != 1920 || got.H != 1080 {
		t.Fatalf("viewport = %+v", got)
	}
	if got := snap.String("lastKey"); got != "ArrowDown" {
		t.Fatalf("lastKey = %q", got)
	}
	if !snap.Bool("reducedMotion") {
		t.Fatalf("reducedMotion not set")
	}
	if got := snap.FloatAt("sectionVisibility", 1); got != 0.75 {
		t.Fatalf("sectionVisibility[1] = %v", got)
	}
}

func TestScrollProgressAndVelocity(t *testing.T) {
	st := fullStore(t)
	tr := newScroll(Options{})
	base := time.Now()

	tr.Handle(ScrollEvent{Offset: 0, Max: 1000, Time: base}, st)
	if got := st.Get().Float("scrollVelocity"); got != 0 {
		t.Fatalf("first event velocity = %v, want 0", got)
	}

	tr.Handle(ScrollEvent{Offset: 100, Max: 1000, Time: base.Add(100 * time.Millisecond)}, st)
	snap := st.Get()
	if got := snap.Float("scrollProgress"); got != 0.1 {
		t.Fatalf("scrollProgress = %v, want 0.1", got)
	}
	if got := snap.Float("scrollVelocity"); got != 1000 {
		t.Fatalf("scrollVelocity = %v, want 1000 px/s", got)
	}

	// Over-scrolled offsets clamp into the unit range.
	tr.Handle(ScrollEvent{Offset: 2000, Max: 1000, Time: base.Add(200 * time.Millisecond)}, st)
	if got := st.Get().Float("scrollProgress"); got != 1 {
		t.Fatalf("clamped scrollProgress = %v, want 1", got)
	}
	// Degenerate extent reads as zero progress.
	tr.Handle(ScrollEvent{Offset: 50, Max: 0, Time: base.Add(300 * time.Millisecond)}, st)
	if got := st.Get().Float("scrollProgress"); got != 0 {
		t.Fatalf("zero-extent scrollProgress = %v, want 0", got)
	}
}

func TestPointerThrottleByTimestampDelta(t *testing.T) {
	st := fullStore(t)
	tr := newPointer(Options{"throttleMs": 16.0})
	base := time.Now()

	tr.Handle(PointerMoveEvent{X: 10, Y: 10, Time: base}, st)
	tr.Handle(PointerMoveEvent{X: 20, Y: 20, Time: base.Add(5 * time.Millisecond)}, st)
	if got := st.Get().Point("pointer"); got.X != 10 {
		t.Fatalf("throttled event was written: %+v", got)
	}

	tr.Handle(PointerMoveEvent{X: 30, Y: 30, Time: base.Add(20 * time.Millisecond)}, st)
	if got := st.Get().Point("pointer"); got.X != 30 {
		t.Fatalf("post-interval event not written: %+v", got)
	}
}

func TestTouchTracking(t *testing.T) {
	st := fullStore(t)
	tr := &touch{}

	base := time.Now()
	tr.Handle(TouchEvent{Phase: TouchStart, ID: 1, X: 100, Y: 200, Time: base}, st)
	if !st.Get().Bool("touchActive") {
		t.Fatalf("touchActive not set on start")
	}
	tr.Handle(TouchEvent{Phase: TouchStart, ID: 2, X: 120, Y: 220, Time: base}, st)
	tr.Handle(TouchEvent{Phase: TouchEnd, ID: 1, Time: base}, st)
	if !st.Get().Bool("touchActive") {
		t.Fatalf("touchActive dropped while a touch remains down")
	}
	tr.Handle(TouchEvent{Phase: TouchEnd, ID: 2, Time: base}, st)
	if st.Get().Bool("touchActive") {
		t.Fatalf("touchActive still set after all touches ended")
	}
}

func TestMissingCapabilityDegradesToNoop(t *testing.T) {
	// A store without pointer or touch fields: those triggers must do
	// nothing rather than error.
	st, err := state.NewStore([]state.Field{
		{Name: "scrollProgress", Kind: state.KindFloat},
		{Name: "scrollVelocity", Kind: state.KindFloat},
	}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	set, err := NewSet(allConfigs(), st, nil)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	defer set.Close()

	base := time.Now()
	set.Dispatch(PointerMoveEvent{X: 5, Y: 5, Time: base})
	set.Dispatch(TouchEvent{Phase: TouchStart, ID: 1, Time: base})
	set.Dispatch(ScrollEvent{Offset: 500, Max: 1000, Time: base})

	if got := st.Get().Float("scrollProgress"); got != 0.5 {
		t.Fatalf("scroll trigger should still work: %v", got)
	}
}

func TestSetCloseIdempotent(t *testing.T) {
	st := fullStore(t)
	set, err := NewSet(allConfigs(), st, nil)
	if err != nil {
		t.Fatalf("NewSet: %v", err)
	}
	set.Close()
	set.Close()

	set.Dispatch(ScrollEvent{Offset: 100, Max: 1000, Time: time.Now()})
	if got := st.Get().Float("scrollProgress"); got != 0 {
		t.Fatalf("dispatch after close wrote state: %v", got)
	}
}
