package behavior

import (
	"fmt"

	"scrollstage/state"
)

// Compute maps a state snapshot and options to a parameter set. It must be
// pure: no I/O, no randomness, no mutation of its inputs, and identical
// inputs produce identical outputs. When the snapshot's reducedMotion flag
// is set it must return a static baseline with no progress-dependent values.
type Compute func(s state.Snapshot, opts Options) (Params, error)

// Descriptor describes one registered behaviour. Immutable once registered.
type Descriptor struct {
	ID             string
	RequiredFields []string
	Compute        Compute
	// Template carries the presentation-side fallback for every prefixed
	// key the behaviour emits. The engine never reads it; hosts do.
	Template map[string]any
	// OptionSchema names the accepted options and their defaults, for
	// config validation and tooling.
	OptionSchema map[string]any
}

// Registry is an explicit behaviour table, populated at startup and passed
// by reference. There is no package-level registry.
type Registry struct {
	byID  map[string]Descriptor
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: map[string]Descriptor{}}
}

// Register adds a descriptor. Empty ids, nil computes, and duplicate ids
// are configuration errors.
func (r *Registry) Register(d Descriptor) error {
	if d.ID == "" {
		return fmt.Errorf("behavior: register with empty id")
	}
	if d.Compute == nil {
		return fmt.Errorf("behavior: register %q with nil compute", d.ID)
	}
	if _, ok := r.byID[d.ID]; ok {
		return fmt.Errorf("behavior: duplicate id %q", d.ID)
	}
	r.byID[d.ID] = d
	r.order = append(r.order, d.ID)
	return nil
}

// Get looks up a descriptor by id.
func (r *Registry) Get(id string) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
