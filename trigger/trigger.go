package trigger

import (
	"fmt"

	"go.uber.org/zap"

	"scrollstage/state"
)

// Trigger is a one-way observer. Handle writes to exactly the state fields
// the trigger declares; it has no return value and no other side effects.
// Teardown releases any internal observer resources.
type Trigger interface {
	Type() string
	Fields() []string
	Handle(ev Event, st *state.Store)
	Teardown()
}

// Options are per-trigger tuning knobs from configuration.
type Options map[string]any

// Float reads an option, or def when absent or mistyped.
func (o Options) Float(name string, def float64) float64 {
	switch v := o[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// Int reads an int option, or def.
func (o Options) Int(name string, def int) int {
	switch v := o[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// Config declares which environment source feeds which state fields.
type Config struct {
	Type    string
	Options Options
}

// Known trigger type names.
const (
	TypeScroll        = "scroll"
	TypePointer       = "pointer"
	TypeViewport      = "viewport"
	TypeVisibility    = "visibility"
	TypeKeyboard      = "keyboard"
	TypeTouch         = "touch"
	TypeReducedMotion = "reduced-motion"
)

// KnownType reports whether t names a built-in trigger.
func KnownType(t string) bool {
	switch t {
	case TypeScroll, TypePointer, TypeViewport, TypeVisibility, TypeKeyboard, TypeTouch, TypeReducedMotion:
		return true
	}
	return false
}

// New builds a trigger from its config. Unknown types are a load-time
// configuration error.
func New(cfg Config) (Trigger, error) {
	switch cfg.Type {
	case TypeScroll:
		return newScroll(cfg.Options), nil
	case TypePointer:
		return newPointer(cfg.Options), nil
	case TypeViewport:
		return &viewport{}, nil
	case TypeVisibility:
		return newVisibility(cfg.Options), nil
	case TypeKeyboard:
		return &keyboard{}, nil
	case TypeTouch:
		return &touch{}, nil
	case TypeReducedMotion:
		return &motionPreference{}, nil
	default:
		return nil, fmt.Errorf("trigger: unknown trigger type %q", cfg.Type)
	}
}

// Set owns the triggers of one mode and fans dispatched events out to them.
type Set struct {
	triggers []Trigger
	store    *state.Store
	log      *zap.Logger
	closed   bool
}

// NewSet builds all configured triggers. Any unknown type fails the whole
// set, fast.
func NewSet(cfgs []Config, st *state.Store, log *zap.Logger) (*Set, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Set{store: st, log: log}
	for _, cfg := range cfgs {
		tr, err := New(cfg)
		if err != nil {
			for _, built := range s.triggers {
				built.Teardown()
			}
			return nil, err
		}
		s.triggers = append(s.triggers, tr)
	}
	return s, nil
}

// Dispatch hands an event to every trigger. Triggers ignore event types
// they do not observe.
func (s *Set) Dispatch(ev Event) {
	if s == nil || s.closed || ev == nil {
		return
	}
	for _, tr := range s.triggers {
		tr.Handle(ev, s.store)
	}
}

// Triggers returns the live trigger list.
func (s *Set) Triggers() []Trigger {
	return s.triggers
}

// Close tears down every trigger. Idempotent.
func (s *Set) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	for _, tr := range s.triggers {
		tr.Teardown()
	}
}

// write filters the partial down to fields the store declares, so a trigger
// configured for a capability the mode does not carry degrades to a no-op
// instead of erroring. Kind mismatches cannot occur here: compose validation
// pins the built-in field kinds at load time.
func write(st *state.Store, p state.Partial) {
	for name := range p {
		if !st.Has(name) {
			delete(p, name)
		}
	}
	if len(p) == 0 {
		return
	}
	_ = st.Set(p)
}
