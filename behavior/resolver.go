package behavior

import "fmt"

// NoneID is the explicit opt-out: an entity declaring it gets no behaviour
// attached regardless of any defaults.
const NoneID = "none"

// Declaration is what a visual entity says about itself when it mounts.
// A nil Declaration means "nothing declared" and falls through to defaults.
type Declaration struct {
	ID      string
	Options Options
}

// TypeDefault is the mode-level default behaviour for one entity type.
type TypeDefault struct {
	ID      string
	Options Options
}

// Defaults is the mode's default-behaviour table.
type Defaults struct {
	// General applies when neither the entity nor its type declares
	// anything. Empty means no general default.
	General        string
	GeneralOptions Options
	// PerType applies by entity type before the general default.
	PerType map[string]TypeDefault
}

// Binding is a resolved (descriptor, options) pair ready for the driver.
type Binding struct {
	Descriptor Descriptor
	Options    Options
}

// Resolve runs the resolution cascade for one entity, in fixed order:
// explicit "none", explicit id, type default, general default, nothing.
// A nil Binding with nil error means no behaviour applies. Referencing an
// unregistered id anywhere in the cascade is a configuration error.
func Resolve(decl *Declaration, entityType string, defaults Defaults, reg *Registry) (*Binding, error) {
	if decl != nil && decl.ID == NoneID {
		return nil, nil
	}
	if decl != nil && decl.ID != "" {
		d, ok := reg.Get(decl.ID)
		if !ok {
			return nil, fmt.Errorf("behavior: declared behaviour %q is not registered", decl.ID)
		}
		return &Binding{Descriptor: d, Options: decl.Options}, nil
	}
	if td, ok := defaults.PerType[entityType]; ok && td.ID != "" {
		if td.ID == NoneID {
			return nil, nil
		}
		d, ok := reg.Get(td.ID)
		if !ok {
			return nil, fmt.Errorf("behavior: type default %q for %q is not registered", td.ID, entityType)
		}
		return &Binding{Descriptor: d, Options: td.Options}, nil
	}
	if defaults.General != "" {
		if defaults.General == NoneID {
			return nil, nil
		}
		d, ok := reg.Get(defaults.General)
		if !ok {
			return nil, fmt.Errorf("behavior: general default %q is not registered", defaults.General)
		}
		return &Binding{Descriptor: d, Options: defaults.GeneralOptions}, nil
	}
	return nil, nil
}
