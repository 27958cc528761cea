package behavior

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"scrollstage/state"
)

// Scripted behaviours let a composition ship compute functions as tengo
// source instead of Go. A script defines compute(state, options) returning
// a map of bare parameter names; the reserved prefix is applied on the way
// out. Scripts get the math and text stdlib modules only, keeping computes
// I/O-free.
const scriptDispatch = "\n__out = compute(__state, __options)\n"

var scriptModules = stdlib.GetModuleMap("math", "text")

// CompileScript compiles tengo source into a descriptor registered under
// id. Compile errors and a missing compute function fail at load time.
func CompileScript(id string, src []byte, requiredFields []string) (Descriptor, error) {
	if id == "" {
		return Descriptor{}, fmt.Errorf("behavior: script with empty id")
	}
	script := tengo.NewScript(append(append([]byte{}, src...), []byte(scriptDispatch)...))
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__options", map[string]any{})
	_ = script.Add("__out", map[string]any{})
	script.SetImports(scriptModules)

	compiled, err := script.Compile()
	if err != nil {
		return Descriptor{}, fmt.Errorf("behavior: compile script %q: %w", id, err)
	}

	return Descriptor{
		ID:             id,
		RequiredFields: requiredFields,
		Compute: func(s state.Snapshot, opts Options) (Params, error) {
			// Clone per call: the compiled unit is mutable, and a fresh
			// clone keeps evaluations independent of each other.
			run := compiled.Clone()
			if err := run.Set("__state", scriptState(s)); err != nil {
				return nil, fmt.Errorf("behavior: script %q: %w", id, err)
			}
			if err := run.Set("__options", scriptOptions(opts)); err != nil {
				return nil, fmt.Errorf("behavior: script %q: %w", id, err)
			}
			if err := run.Run(); err != nil {
				return nil, fmt.Errorf("behavior: script %q: %w", id, err)
			}
			out, ok := run.Get("__out").Value().(map[string]any)
			if !ok {
				return nil, fmt.Errorf("behavior: script %q: compute did not return a map", id)
			}
			p := make(Params, len(out))
			for name, v := range out {
				if !primitive(v) {
					return nil, fmt.Errorf("behavior: script %q: param %q has non-primitive value %T", id, name, v)
				}
				p[Key(name)] = v
			}
			return p, nil
		},
	}, nil
}

// RegisterScript compiles src and registers it into reg.
func RegisterScript(reg *Registry, id string, src []byte, requiredFields []string) error {
	d, err := CompileScript(id, src, requiredFields)
	if err != nil {
		return err
	}
	return reg.Register(d)
}

func scriptState(s state.Snapshot) map[string]any {
	fields := s.Fields()
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case state.Point:
			out[k] = map[string]any{"x": t.X, "y": t.Y}
		case state.Size:
			out[k] = map[string]any{"w": t.W, "h": t.H}
		case []float64:
			vec := make([]any, len(t))
			for i, f := range t {
				vec[i] = f
			}
			out[k] = vec
		default:
			out[k] = v
		}
	}
	return out
}

func scriptOptions(opts Options) map[string]any {
	out := make(map[string]any, len(opts))
	for k, v := range opts {
		out[k] = v
	}
	return out
}
