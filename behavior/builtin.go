package behavior

import (
	"fmt"

	"scrollstage/state"
)

// Well-known state field names the built-in behaviours read.
const (
	FieldScrollProgress    = "scrollProgress"
	FieldScrollVelocity    = "scrollVelocity"
	FieldSectionVisibility = "sectionVisibility"
	FieldActiveSection     = "activeSection"
	FieldPointer           = "pointer"
	FieldViewport          = "viewport"
	FieldReducedMotion     = "reducedMotion"
)

// RegisterBuiltins installs the stock behaviour set into reg.
func RegisterBuiltins(reg *Registry) error {
	for _, d := range []Descriptor{
		fadeIn(),
		slideIn(),
		parallax(),
		scaleIn(),
		progressBar(),
		pointerTilt(),
	} {
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("behavior: builtins: %w", err)
		}
	}
	return nil
}

// visibilityOf reads the visibility ratio for the target's section. The
// field is a per-section vector in a full composition; tests and simple
// hosts may declare it as a plain ratio instead.
func visibilityOf(s state.Snapshot, opts Options) float64 {
	if vec, ok := s.Value(FieldSectionVisibility).([]float64); ok {
		idx := opts.Int("section", 0)
		if idx < 0 || idx >= len(vec) {
			return 0
		}
		return clamp01(vec[idx])
	}
	return clamp01(s.Float(FieldSectionVisibility))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func fadeIn() Descriptor {
	return Descriptor{
		ID:             "fade-in",
		RequiredFields: []string{FieldSectionVisibility, FieldReducedMotion},
		OptionSchema:   map[string]any{"distance": 20.0, "section": 0},
		Template:       map[string]any{Key("opacity"): 1.0, Key("y"): 0.0},
		Compute: func(s state.Snapshot, opts Options) (Params, error) {
			if s.Bool(FieldReducedMotion) {
				return P(map[string]any{"opacity": 1.0, "y": 0.0}), nil
			}
			v := visibilityOf(s, opts)
			dist := opts.Float("distance", 20)
			return P(map[string]any{
				"opacity": v,
				"y":       (1 - v) * dist,
			}), nil
		},
	}
}

func slideIn() Descriptor {
	return Descriptor{
		ID:             "slide-in",
		RequiredFields: []string{FieldSectionVisibility, FieldReducedMotion},
		OptionSchema:   map[string]any{"direction": "up", "distance": 40.0, "section": 0},
		Template:       map[string]any{Key("opacity"): 1.0, Key("x"): 0.0, Key("y"): 0.0},
		Compute: func(s state.Snapshot, opts Options) (Params, error) {
			if s.Bool(FieldReducedMotion) {
				return P(map[string]any{"opacity": 1.0, "x": 0.0, "y": 0.0}), nil
			}
			v := visibilityOf(s, opts)
			dist := opts.Float("distance", 40)
			off := (1 - v) * dist
			x, y := 0.0, 0.0
			switch opts.String("direction", "up") {
			case "up":
				y = off
			case "down":
				y = -off
			case "left":
				x = off
			case "right":
				x = -off
			}
			return P(map[string]any{"opacity": v, "x": x, "y": y}), nil
		},
	}
}

func parallax() Descriptor {
	return Descriptor{
		ID:             "parallax",
		RequiredFields: []string{FieldScrollProgress, FieldReducedMotion},
		OptionSchema:   map[string]any{"depth": 0.2, "travel": 120.0},
		Template:       map[string]any{Key("y"): 0.0},
		Compute: func(s state.Snapshot, opts Options) (Params, error) {
			if s.Bool(FieldReducedMotion) {
				return P(map[string]any{"y": 0.0}), nil
			}
			progress := clamp01(s.Float(FieldScrollProgress))
			depth := opts.Float("depth", 0.2)
			travel := opts.Float("travel", 120)
			return P(map[string]any{"y": -progress * depth * travel}), nil
		},
	}
}

func scaleIn() Descriptor {
	return Descriptor{
		ID:             "scale-in",
		RequiredFields: []string{FieldSectionVisibility, FieldReducedMotion},
		OptionSchema:   map[string]any{"from": 0.85, "section": 0},
		Template:       map[string]any{Key("opacity"): 1.0, Key("scale"): 1.0},
		Compute: func(s state.Snapshot, opts Options) (Params, error) {
			if s.Bool(FieldReducedMotion) {
				return P(map[string]any{"opacity": 1.0, "scale": 1.0}), nil
			}
			v := visibilityOf(s, opts)
			from := opts.Float("from", 0.85)
			return P(map[string]any{
				"opacity": v,
				"scale":   from + (1-from)*v,
			}), nil
		},
	}
}

func progressBar() Descriptor {
	return Descriptor{
		ID:             "progress-bar",
		RequiredFields: []string{FieldScrollProgress, FieldReducedMotion},
		OptionSchema:   map[string]any{},
		Template:       map[string]any{Key("scale-x"): 1.0},
		Compute: func(s state.Snapshot, opts Options) (Params, error) {
			if s.Bool(FieldReducedMotion) {
				return P(map[string]any{"scale-x": 1.0}), nil
			}
			return P(map[string]any{"scale-x": clamp01(s.Float(FieldScrollProgress))}), nil
		},
	}
}

func pointerTilt() Descriptor {
	return Descriptor{
		ID:             "pointer-tilt",
		RequiredFields: []string{FieldPointer, FieldViewport, FieldReducedMotion},
		OptionSchema:   map[string]any{"max": 8.0},
		Template:       map[string]any{Key("tilt-x"): 0.0, Key("tilt-y"): 0.0},
		Compute: func(s state.Snapshot, opts Options) (Params, error) {
			if s.Bool(FieldReducedMotion) {
				return P(map[string]any{"tilt-x": 0.0, "tilt-y": 0.0}), nil
			}
			p := s.Point(FieldPointer)
			vp := s.Size(FieldViewport)
			maxDeg := opts.Float("max", 8)
			var nx, ny float64
			if vp.W > 0 {
				nx = (p.X/vp.W)*2 - 1
			}
			if vp.H > 0 {
				ny = (p.Y/vp.H)*2 - 1
			}
			return P(map[string]any{
				"tilt-x": clampAbs(ny*maxDeg, maxDeg),
				"tilt-y": clampAbs(-nx*maxDeg, maxDeg),
			}), nil
		},
	}
}

func clampAbs(v, max float64) float64 {
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}
