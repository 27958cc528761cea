// Package state holds the shared runtime state written by triggers and
// navigation and read by behaviours each tick. Only raw observed or
// config-derived values live here, never computed animation output.
package state

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Partial is a shallow set of field writes merged into the store.
type Partial map[string]any

// Listener observes every committed mutation.
type Listener func(Snapshot)

// Store is the runtime state container. The set of valid field names is
// fixed at construction; writes to undeclared fields are rejected.
type Store struct {
	mu     sync.Mutex
	fields map[string]Kind
	values map[string]any

	subs    []subscription
	nextSub int

	notifying bool
	queue     []Partial

	log *zap.Logger
}

type subscription struct {
	id int
	fn Listener
}

// NewStore creates a store with the given field declarations. Duplicate
// field names are a configuration error.
func NewStore(fields []Field, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		fields: make(map[string]Kind, len(fields)),
		values: make(map[string]any, len(fields)),
		log:    log,
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("state: field with empty name")
		}
		if _, ok := s.fields[f.Name]; ok {
			return nil, fmt.Errorf("state: duplicate field %q", f.Name)
		}
		s.fields[f.Name] = f.Kind
		v := f.Default
		if v == nil {
			v = zeroFor(f.Kind)
		} else if !accepts(f.Kind, v) {
			return nil, fmt.Errorf("state: default for %q is not a %s", f.Name, f.Kind)
		}
		s.values[f.Name] = coerce(f.Kind, v)
	}
	return s, nil
}

// Has reports whether a field is declared.
func (s *Store) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.fields[name]
	return ok
}

// Get returns an immutable snapshot of the current state.
func (s *Store) Get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		if vec, ok := v.([]float64); ok {
			cp := make([]float64, len(vec))
			copy(cp, vec)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return Snapshot{values: out}
}

// Set shallow-merges the partial into the state and notifies subscribers
// synchronously, in subscription order. A Set issued from inside a listener
// is queued and applied after the current notification pass completes, so
// passes never interleave. Writes to undeclared fields reject the whole
// partial.
func (s *Store) Set(p Partial) error {
	if len(p) == 0 {
		return nil
	}
	s.mu.Lock()
	for name, v := range p {
		kind, ok := s.fields[name]
		if !ok {
			s.mu.Unlock()
			return fmt.Errorf("state: set undeclared field %q", name)
		}
		if !accepts(kind, v) {
			s.mu.Unlock()
			return fmt.Errorf("state: field %q expects %s, got %T", name, kind, v)
		}
	}
	if s.notifying {
		s.queue = append(s.queue, p)
		s.mu.Unlock()
		return nil
	}
	s.notifying = true
	s.applyLocked(p)
	for {
		snap := s.snapshotLocked()
		subs := make([]subscription, len(s.subs))
		copy(subs, s.subs)
		s.mu.Unlock()

		for _, sub := range subs {
			sub.fn(snap)
		}

		s.mu.Lock()
		if len(s.queue) == 0 {
			break
		}
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.applyLocked(next)
	}
	s.notifying = false
	s.mu.Unlock()
	return nil
}

func (s *Store) applyLocked(p Partial) {
	for name, v := range p {
		s.values[name] = coerce(s.fields[name], v)
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing twice is a no-op.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Snapshot is an immutable copy of the state at one instant.
type Snapshot struct {
	values map[string]any
}

// NewSnapshot builds a standalone snapshot, mainly for tests and for
// feeding behaviours directly.
func NewSnapshot(values map[string]any) Snapshot {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return Snapshot{values: out}
}

// Value returns the raw value for a field, or nil.
func (s Snapshot) Value(name string) any {
	return s.values[name]
}

// Float returns the field as a float64, or 0 when absent or mistyped.
func (s Snapshot) Float(name string) float64 {
	switch v := s.values[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Int returns the field as an int, or 0.
func (s Snapshot) Int(name string) int {
	switch v := s.values[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the field as a bool, or false.
func (s Snapshot) Bool(name string) bool {
	v, _ := s.values[name].(bool)
	return v
}

// String returns the field as a string, or "".
func (s Snapshot) String(name string) string {
	v, _ := s.values[name].(string)
	return v
}

// Point returns the field as a Point, or the zero Point.
func (s Snapshot) Point(name string) Point {
	v, _ := s.values[name].(Point)
	return v
}

// Size returns the field as a Size, or the zero Size.
func (s Snapshot) Size(name string) Size {
	v, _ := s.values[name].(Size)
	return v
}

// FloatAt indexes into a vector field, returning 0 out of range.
func (s Snapshot) FloatAt(name string, i int) float64 {
	vec, ok := s.values[name].([]float64)
	if !ok || i < 0 || i >= len(vec) {
		return 0
	}
	return vec[i]
}

// Fields returns the snapshot as a plain map copy.
func (s Snapshot) Fields() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// MarshalJSON renders the snapshot for debug surfaces.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.values)
}
