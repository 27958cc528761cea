// Package driver owns the per-tick dispatch loop: for every registered
// target it computes the bound behaviour against the current state snapshot
// and applies the resulting parameters onto the target's handle. The driver
// holds no animation state of its own.
package driver

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"scrollstage/behavior"
	"scrollstage/state"
)

// Handle is a stable reference to an already-materialized visual entity,
// supplied by the rendering layer.
type Handle interface {
	Apply(p behavior.Params)
}

// slot is one arena entry. Slots are recycled through a free list so the
// registry's memory footprint is bounded by the high-water mark of live
// targets, and register/unregister stay O(1).
type slot struct {
	live    bool
	id      string
	handle  Handle
	binding behavior.Binding
}

// Driver executes the tick loop over the target arena.
type Driver struct {
	store *state.Store
	log   *zap.Logger

	slots []slot
	free  []int
	index map[string]int

	sched Scheduler
}

// New creates a driver reading snapshots from st.
func New(st *state.Store, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		store: st,
		log:   log,
		index: map[string]int{},
	}
}

// Register binds a handle to a behaviour under id. Registering an id that
// already exists replaces its entry in place, so mount/update paths can
// call it unconditionally.
func (d *Driver) Register(id string, h Handle, b behavior.Binding) error {
	if id == "" {
		return fmt.Errorf("driver: register with empty id")
	}
	if h == nil {
		return fmt.Errorf("driver: register %q with nil handle", id)
	}
	if b.Descriptor.Compute == nil {
		return fmt.Errorf("driver: register %q with unbound behaviour", id)
	}
	if i, ok := d.index[id]; ok {
		d.slots[i] = slot{live: true, id: id, handle: h, binding: b}
		return nil
	}
	var i int
	if n := len(d.free); n > 0 {
		i = d.free[n-1]
		d.free = d.free[:n-1]
	} else {
		d.slots = append(d.slots, slot{})
		i = len(d.slots) - 1
	}
	d.slots[i] = slot{live: true, id: id, handle: h, binding: b}
	d.index[id] = i
	return nil
}

// Unregister removes a target. Unknown ids are a no-op, not an error.
func (d *Driver) Unregister(id string) {
	i, ok := d.index[id]
	if !ok {
		return
	}
	delete(d.index, id)
	d.slots[i] = slot{}
	d.free = append(d.free, i)
}

// Registered reports whether id is currently bound.
func (d *Driver) Registered(id string) bool {
	_, ok := d.index[id]
	return ok
}

// Len returns the live target count.
func (d *Driver) Len() int {
	return len(d.index)
}

// Tick runs one dispatch pass: a single state snapshot, then
// compute-and-apply for every live slot. A failing or panicking compute is
// isolated to its own entry; the rest of the pass continues.
func (d *Driver) Tick(now time.Time) {
	if d.store == nil {
		return
	}
	snap := d.store.Get()
	for i := range d.slots {
		s := &d.slots[i]
		if !s.live {
			continue
		}
		d.dispatch(snap, s)
	}
}

func (d *Driver) dispatch(snap state.Snapshot, s *slot) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("driver: compute panicked",
				zap.String("target", s.id),
				zap.String("behavior", s.binding.Descriptor.ID),
				zap.Any("panic", r))
		}
	}()
	params, err := s.binding.Descriptor.Compute(snap, s.binding.Options)
	if err != nil {
		d.log.Error("driver: compute failed",
			zap.String("target", s.id),
			zap.String("behavior", s.binding.Descriptor.ID),
			zap.Error(err))
		return
	}
	s.handle.Apply(params)
}

// Run attaches the driver to a scheduler and starts ticking.
func (d *Driver) Run(sched Scheduler) {
	d.sched = sched
	sched.Start(d.Tick)
}

// Stop detaches from the scheduler, if running.
func (d *Driver) Stop() {
	if d.sched != nil {
		d.sched.Stop()
		d.sched = nil
	}
}
