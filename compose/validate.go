package compose

import (
	"fmt"

	"scrollstage/behavior"
	"scrollstage/state"
	"scrollstage/trigger"
)

// Validate fails fast on configuration errors: unknown trigger types,
// unknown behaviour ids in the defaults table or section declarations,
// duplicate or malformed fields, and malformed navigation settings. A
// mode that passes is safe to hand to the engine.
func Validate(m Mode, reg *behavior.Registry) error {
	if m.Name == "" {
		return fmt.Errorf("compose: mode has no name")
	}

	seen := map[string]bool{}
	for _, f := range m.Fields {
		if f.Name == "" {
			return fmt.Errorf("compose: mode %q: field with empty name", m.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("compose: mode %q: duplicate field %q", m.Name, f.Name)
		}
		seen[f.Name] = true
		if _, err := state.ParseKind(f.Kind); err != nil {
			return fmt.Errorf("compose: mode %q: field %q: %w", m.Name, f.Name, err)
		}
	}

	for _, t := range m.Triggers {
		if !trigger.KnownType(t.Type) {
			return fmt.Errorf("compose: mode %q: unknown trigger type %q", m.Name, t.Type)
		}
	}

	if err := checkRef(m.Name, "general default", m.Defaults.General, reg); err != nil {
		return err
	}
	for typ, ref := range m.Defaults.Types {
		r := ref
		if err := checkRef(m.Name, fmt.Sprintf("type default for %q", typ), &r, reg); err != nil {
			return err
		}
	}

	sectionIDs := map[string]bool{}
	for i, s := range m.Sections {
		if s.ID == "" {
			return fmt.Errorf("compose: mode %q: section %d has no id", m.Name, i)
		}
		if sectionIDs[s.ID] {
			return fmt.Errorf("compose: mode %q: duplicate section id %q", m.Name, s.ID)
		}
		sectionIDs[s.ID] = true
		if s.Behavior != "" && s.Behavior != behavior.NoneID && !reg.Has(s.Behavior) {
			return fmt.Errorf("compose: mode %q: section %q references unknown behaviour %q", m.Name, s.ID, s.Behavior)
		}
	}

	if m.Navigation.Behavior.DebounceMs < 0 {
		return fmt.Errorf("compose: mode %q: negative navigation debounce", m.Name)
	}
	for _, in := range m.Navigation.Inputs {
		if !knownInput(in.Type) {
			return fmt.Errorf("compose: mode %q: unknown navigation input %q", m.Name, in.Type)
		}
	}
	if len(m.Navigation.Inputs) > 0 && len(m.Sections) == 0 {
		return fmt.Errorf("compose: mode %q: navigation configured with no sections", m.Name)
	}

	return nil
}

func checkRef(mode, what string, ref *BehaviorRef, reg *behavior.Registry) error {
	if ref == nil || ref.Behavior == "" || ref.Behavior == behavior.NoneID {
		return nil
	}
	if !reg.Has(ref.Behavior) {
		return fmt.Errorf("compose: mode %q: %s references unknown behaviour %q", mode, what, ref.Behavior)
	}
	return nil
}
