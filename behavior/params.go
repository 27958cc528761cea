// Package behavior holds the registry of pure compute functions mapping
// runtime state and per-target options onto parameter sets, and the
// resolution cascade that picks one per visual entity.
package behavior

import (
	"fmt"
	"sort"
	"strings"
)

// Prefix is the reserved key prefix every parameter must carry. The
// presentation layer only reads prefixed keys and must supply a fallback
// for each one it consumes.
const Prefix = "fx-"

// Key builds a prefixed parameter key from a bare name.
func Key(name string) string {
	return Prefix + name
}

// Params is a parameter set: reserved-prefix keys mapped to numeric or
// string values, consumed by the presentation layer each tick.
type Params map[string]any

// P builds a Params from bare names, applying the reserved prefix.
// Values must be numeric or string; anything else panics, since built-in
// computes are the only callers and a bad value is a programming error.
func P(kv map[string]any) Params {
	p := make(Params, len(kv))
	for name, v := range kv {
		if !primitive(v) {
			panic(fmt.Sprintf("behavior: param %q has non-primitive value %T", name, v))
		}
		p[Key(name)] = v
	}
	return p
}

// Float reads a parameter by bare name, or def when absent.
func (p Params) Float(name string, def float64) float64 {
	switch v := p[Key(name)].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// String reads a string parameter by bare name, or def when absent.
func (p Params) String(name, def string) string {
	if v, ok := p[Key(name)].(string); ok {
		return v
	}
	return def
}

// Validate checks the parameter-set invariants: every key carries the
// reserved prefix and every value is numeric or string.
func (p Params) Validate() error {
	for k, v := range p {
		if !strings.HasPrefix(k, Prefix) {
			return fmt.Errorf("behavior: param key %q missing %q prefix", k, Prefix)
		}
		if !primitive(v) {
			return fmt.Errorf("behavior: param %q has non-primitive value %T", k, v)
		}
	}
	return nil
}

// Keys returns the sorted key list, for stable logging and tests.
func (p Params) Keys() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func primitive(v any) bool {
	switch v.(type) {
	case float64, float32, int, int64, string:
		return true
	}
	return false
}

// Options are the per-target tuning knobs passed to a compute.
type Options map[string]any

// Float reads an option, or def when absent or mistyped.
func (o Options) Float(name string, def float64) float64 {
	switch v := o[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Int reads an int option, or def.
func (o Options) Int(name string, def int) int {
	switch v := o[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// String reads a string option, or def.
func (o Options) String(name, def string) string {
	if v, ok := o[name].(string); ok {
		return v
	}
	return def
}

// Bool reads a bool option, or def.
func (o Options) Bool(name string, def bool) bool {
	if v, ok := o[name].(bool); ok {
		return v
	}
	return def
}
