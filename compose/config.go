// Package compose loads and validates mode/composition configuration: the
// state field list, trigger list, default-behaviour table, section list,
// and navigation setup for one experience.
package compose

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"scrollstage/behavior"
	"scrollstage/nav"
	"scrollstage/state"
	"scrollstage/trigger"
)

// Mode is one complete composition configuration.
type Mode struct {
	Name       string         `yaml:"name"`
	Fields     []FieldSpec    `yaml:"fields"`
	Triggers   []TriggerSpec  `yaml:"triggers"`
	Defaults   DefaultsSpec   `yaml:"defaults"`
	Sections   []SectionSpec  `yaml:"sections"`
	Navigation NavigationSpec `yaml:"navigation"`
	Transition TransitionSpec `yaml:"transition"`
}

// FieldSpec declares one runtime state field.
type FieldSpec struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	Default any    `yaml:"default"`
}

// TriggerSpec declares one environment trigger.
type TriggerSpec struct {
	Type    string         `yaml:"type"`
	Options map[string]any `yaml:"options"`
}

// BehaviorRef names a behaviour with options.
type BehaviorRef struct {
	Behavior string         `yaml:"behavior"`
	Options  map[string]any `yaml:"options"`
}

// DefaultsSpec is the mode's default-behaviour table.
type DefaultsSpec struct {
	General *BehaviorRef           `yaml:"general"`
	Types   map[string]BehaviorRef `yaml:"types"`
}

// SectionSpec declares one ordered section and its optional explicit
// behaviour declaration.
type SectionSpec struct {
	ID       string         `yaml:"id"`
	Type     string         `yaml:"type"`
	Behavior string         `yaml:"behavior"`
	Options  map[string]any `yaml:"options"`
}

// NavigationSpec configures the navigation machine.
type NavigationSpec struct {
	Inputs   []InputSpec     `yaml:"inputs"`
	Behavior NavBehaviorSpec `yaml:"behavior"`
	History  HistorySpec     `yaml:"history"`
}

// InputSpec enables one navigation input source.
type InputSpec struct {
	Type    string         `yaml:"type"`
	Enabled *bool          `yaml:"enabled"`
	Options map[string]any `yaml:"options"`
}

// On reports whether the input is enabled; inputs default to enabled.
func (i InputSpec) On() bool {
	return i.Enabled == nil || *i.Enabled
}

// NavBehaviorSpec tunes the guard sequence.
type NavBehaviorSpec struct {
	Loop                 bool `yaml:"loop"`
	DebounceMs           int  `yaml:"debounceMs"`
	LockDuringTransition bool `yaml:"lockDuringTransition"`
	AllowSkip            bool `yaml:"allowSkip"`
}

// HistorySpec configures navigation history.
type HistorySpec struct {
	Depth int `yaml:"depth"`
}

// TransitionSpec sets the task-stack timeout ceilings and the transition
// failsafe.
type TransitionSpec struct {
	ExitTimeoutMs  int `yaml:"exitTimeoutMs"`
	EntryTimeoutMs int `yaml:"entryTimeoutMs"`
	FailsafeMs     int `yaml:"failsafeMs"`
}

// Navigation input type names.
const (
	InputWheel    = "wheel"
	InputKeyboard = "keyboard"
	InputSwipe    = "swipe"
)

func knownInput(t string) bool {
	switch t {
	case InputWheel, InputKeyboard, InputSwipe:
		return true
	}
	return false
}

// Parse unmarshals a mode from YAML.
func Parse(data []byte) (Mode, error) {
	var m Mode
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Mode{}, fmt.Errorf("compose: unmarshal mode: %w", err)
	}
	return m, nil
}

// Load reads a mode from a YAML file.
func Load(path string) (Mode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Mode{}, fmt.Errorf("compose: load %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return Mode{}, fmt.Errorf("compose: %s: %w", path, err)
	}
	return m, nil
}

// StateFields converts the field list for the state store.
func (m Mode) StateFields() ([]state.Field, error) {
	out := make([]state.Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		kind, err := state.ParseKind(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("compose: field %q: %w", f.Name, err)
		}
		out = append(out, state.Field{Name: f.Name, Kind: kind, Default: normalizeDefault(kind, f.Default)})
	}
	return out, nil
}

// YAML decodes untyped numbers as int; lift them where the field wants a
// float so declared defaults round-trip.
func normalizeDefault(kind state.Kind, v any) any {
	if v == nil {
		return nil
	}
	if kind == state.KindFloat {
		if n, ok := v.(int); ok {
			return float64(n)
		}
	}
	return v
}

// TriggerConfigs converts the trigger list for the trigger set.
func (m Mode) TriggerConfigs() []trigger.Config {
	out := make([]trigger.Config, 0, len(m.Triggers))
	for _, t := range m.Triggers {
		out = append(out, trigger.Config{Type: t.Type, Options: trigger.Options(t.Options)})
	}
	return out
}

// BehaviorDefaults converts the defaults table for the resolver.
func (m Mode) BehaviorDefaults() behavior.Defaults {
	d := behavior.Defaults{}
	if m.Defaults.General != nil {
		d.General = m.Defaults.General.Behavior
		d.GeneralOptions = behavior.Options(m.Defaults.General.Options)
	}
	if len(m.Defaults.Types) > 0 {
		d.PerType = make(map[string]behavior.TypeDefault, len(m.Defaults.Types))
		for name, ref := range m.Defaults.Types {
			d.PerType[name] = behavior.TypeDefault{ID: ref.Behavior, Options: behavior.Options(ref.Options)}
		}
	}
	return d
}

// NavConfig converts the navigation spec for the machine.
func (m Mode) NavConfig() nav.Config {
	cfg := nav.Config{
		Sections:             len(m.Sections),
		Loop:                 m.Navigation.Behavior.Loop,
		Debounce:             time.Duration(m.Navigation.Behavior.DebounceMs) * time.Millisecond,
		LockDuringTransition: m.Navigation.Behavior.LockDuringTransition,
		AllowSkip:            m.Navigation.Behavior.AllowSkip,
		HistoryDepth:         m.Navigation.History.Depth,
	}
	for _, in := range m.Navigation.Inputs {
		if !in.On() {
			continue
		}
		opts := trigger.Options(in.Options)
		switch in.Type {
		case InputWheel:
			cfg.SnapThreshold = opts.Float("snapThreshold", 0)
		case InputSwipe:
			cfg.SwipeMinDistance = opts.Float("minDistance", 0)
			cfg.SwipeMaxDuration = time.Duration(opts.Float("maxDurationMs", 0)) * time.Millisecond
		}
	}
	return cfg
}

// InputEnabled reports whether a navigation input type is configured and
// enabled.
func (m Mode) InputEnabled(t string) bool {
	for _, in := range m.Navigation.Inputs {
		if in.Type == t {
			return in.On()
		}
	}
	return false
}

// ExitTimeout returns the exit-stack ceiling, with a default.
func (m Mode) ExitTimeout() time.Duration {
	return msOrDefault(m.Transition.ExitTimeoutMs, 800*time.Millisecond)
}

// EntryTimeout returns the entry-stack ceiling, with a default.
func (m Mode) EntryTimeout() time.Duration {
	return msOrDefault(m.Transition.EntryTimeoutMs, 800*time.Millisecond)
}

// Failsafe returns the transition-flag failsafe ceiling, with a default.
func (m Mode) Failsafe() time.Duration {
	return msOrDefault(m.Transition.FailsafeMs, 2*time.Second)
}

func msOrDefault(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
