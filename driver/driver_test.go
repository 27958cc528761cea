package driver

import (
	"testing"
	"time"

	"scrollstage/behavior"
	"scrollstage/state"
)

type recordingHandle struct {
	applied []behavior.Params
}

func (h *recordingHandle) Apply(p behavior.Params) {
	h.applied = append(h.applied, p)
}

func testStore(t *testing.T) *state.Store {
	t.Helper()
	st, err := state.NewStore([]state.Field{
		{Name: "scrollProgress", Kind: state.KindFloat},
		{Name: "reducedMotion", Kind: state.KindBool},
	}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return st
}

func progressBinding() behavior.Binding {
	return behavior.Binding{
		Descriptor: behavior.Descriptor{
			ID: "echo-progress",
			Compute: func(s state.Snapshot, _ behavior.Options) (behavior.Params, error) {
				return behavior.P(map[string]any{"p": s.Float("scrollProgress")}), nil
			},
		},
	}
}

func TestRegisterReplaceUnregister(t *testing.T) {
	d := New(testStore(t), nil)
	h1 := &recordingHandle{}
	h2 := &recordingHandle{}

	if err := d.Register("a", h1, progressBinding()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !d.Registered("a") || d.Len() != 1 {
		t.Fatalf("expected one live target")
	}

	// re-register replaces in place
	if err := d.Register("a", h2, progressBinding()); err != nil {
		t.Fatalf("re-Register: %v", err)
	}
	if d.Len() != 1 {
		t.Fatalf("replace grew the registry: %d", d.Len())
	}
	d.Tick(time.Now())
	if len(h1.applied) != 0 {
		t.Fatalf("replaced handle still receiving params")
	}
	if len(h2.applied) != 1 {
		t.Fatalf("replacement handle got %d applies", len(h2.applied))
	}

	d.Unregister("a")
	d.Unregister("a") // unknown id: no-op
	d.Unregister("never-existed")
	if d.Len() != 0 {
		t.Fatalf("expected empty registry")
	}

	invalid := []struct {
		name string
		err  error
	}{
		{"empty_id", d.Register("", h1, progressBinding())},
		{"nil_handle", d.Register("b", nil, progressBinding())},
		{"unbound", d.Register("c", h1, behavior.Binding{})},
	}
	for _, c := range invalid {
		if c.err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestSlotReuse(t *testing.T) {
	d := New(testStore(t), nil)
	h := &recordingHandle{}

	for i := 0; i < 100; i++ {
		if err := d.Register("churn", h, progressBinding()); err != nil {
			t.Fatalf("Register: %v", err)
		}
		d.Unregister("churn")
	}
	if got := len(d.slots); got != 1 {
		t.Fatalf("arena grew to %d slots under churn, want 1", got)
	}
}

func TestTickAppliesSnapshotValues(t *testing.T) {
	st := testStore(t)
	d := New(st, nil)
	h := &recordingHandle{}
	if err := d.Register("a", h, progressBinding()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := st.Set(state.Partial{"scrollProgress": 0.25}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	d.Tick(time.Now())
	if err := st.Set(state.Partial{"scrollProgress": 0.75}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	d.Tick(time.Now())

	if len(h.applied) != 2 {
		t.Fatalf("applied %d times, want 2", len(h.applied))
	}
	if got := h.applied[0].Float("p", -1); got != 0.25 {
		t.Fatalf("tick 1 p = %v", got)
	}
	if got := h.applied[1].Float("p", -1); got != 0.75 {
		t.Fatalf("tick 2 p = %v", got)
	}
}

func TestComputeFailureIsolation(t *testing.T) {
	st := testStore(t)
	d := New(st, nil)

	panicking := behavior.Binding{Descriptor: behavior.Descriptor{
		ID: "boom",
		Compute: func(state.Snapshot, behavior.Options) (behavior.Params, error) {
			panic("compute exploded")
		},
	}}
	failing := behavior.Binding{Descriptor: behavior.Descriptor{
		ID: "sad",
		Compute: func(state.Snapshot, behavior.Options) (behavior.Params, error) {
			return nil, errTest
		},
	}}

	hBefore := &recordingHandle{}
	hAfter := &recordingHandle{}
	if err := d.Register("ok-before", hBefore, progressBinding()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := d.Register("boom", &recordingHandle{}, panicking); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := d.Register("sad", &recordingHandle{}, failing); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := d.Register("ok-after", hAfter, progressBinding()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	d.Tick(time.Now())

	if len(hBefore.applied) != 1 || len(hAfter.applied) != 1 {
		t.Fatalf("healthy targets starved: before=%d after=%d", len(hBefore.applied), len(hAfter.applied))
	}
}

var errTest = errNoTick{}

type errNoTick struct{}

func (errNoTick) Error() string { return "compute declined" }

func TestManualScheduler(t *testing.T) {
	st := testStore(t)
	d := New(st, nil)
	h := &recordingHandle{}
	if err := d.Register("a", h, progressBinding()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	m := &Manual{}
	d.Run(m)
	m.Step(time.Now())
	m.Step(time.Now())
	d.Stop()
	m.Step(time.Now()) // stopped: no further ticks

	if len(h.applied) != 2 {
		t.Fatalf("applied %d times, want 2", len(h.applied))
	}
}
