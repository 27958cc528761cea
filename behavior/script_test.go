package behavior

import (
	"testing"

	"scrollstage/state"
)

const fadeScript = `
compute := func(state, options) {
	if state.reducedMotion {
		return {opacity: 1.0, y: 0.0}
	}
	v := state.sectionVisibility
	dist := 20.0
	if options.distance != undefined {
		dist = options.distance
	}
	return {opacity: v, y: (1.0 - v) * dist}
}
`

func TestScriptedFadeMatchesBuiltin(t *testing.T) {
	reg := builtinRegistry(t)
	if err := RegisterScript(reg, "fade-in-script", []byte(fadeScript), []string{FieldSectionVisibility}); err != nil {
		t.Fatalf("RegisterScript: %v", err)
	}

	cases := []struct {
		name string
		snap state.Snapshot
		opts Options
	}{
		{"hidden", state.NewSnapshot(map[string]any{FieldSectionVisibility: 0.0}), Options{}},
		{"visible", state.NewSnapshot(map[string]any{FieldSectionVisibility: 1.0}), Options{}},
		{"partial_custom_distance", state.NewSnapshot(map[string]any{FieldSectionVisibility: 0.25}), Options{"distance": 40.0}},
		{"reduced_motion", state.NewSnapshot(map[string]any{FieldSectionVisibility: 0.0, FieldReducedMotion: true}), Options{}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			want := mustCompute(t, reg, "fade-in", c.snap, c.opts)
			got := mustCompute(t, reg, "fade-in-script", c.snap, c.opts)
			if got.Float("opacity", -1) != want.Float("opacity", -2) {
				t.Fatalf("opacity: script %v, builtin %v", got.Float("opacity", -1), want.Float("opacity", -2))
			}
			if got.Float("y", -1) != want.Float("y", -2) {
				t.Fatalf("y: script %v, builtin %v", got.Float("y", -1), want.Float("y", -2))
			}
		})
	}
}

func TestScriptErrors(t *testing.T) {
	if _, err := CompileScript("bad", []byte(`compute := func(`), nil); err == nil {
		t.Fatalf("expected compile error")
	}
	if _, err := CompileScript("", []byte(fadeScript), nil); err == nil {
		t.Fatalf("expected empty id error")
	}

	d, err := CompileScript("not-a-map", []byte(`compute := func(state, options) { return 42 }`), nil)
	if err != nil {
		t.Fatalf("CompileScript: %v", err)
	}
	if _, err := d.Compute(state.NewSnapshot(nil), Options{}); err == nil {
		t.Fatalf("expected non-map return error")
	}
}
