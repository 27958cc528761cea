// Package scrollstage is an experience runtime for composed, animated
// pages: environment triggers write runtime state, behaviours map state
// snapshots to animation parameters, a frame driver applies them to
// host-owned targets every tick, and a navigation machine moves between
// ordered sections with exit/entry task orchestration.
//
// The package root is the engine facade. A host builds an Engine from a
// compose.Mode, attaches a Handle per visual target, pumps environment
// events and navigation inputs in, and runs the engine on a Scheduler.
package scrollstage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"scrollstage/behavior"
	"scrollstage/compose"
	"scrollstage/driver"
	"scrollstage/nav"
	"scrollstage/state"
	"scrollstage/transition"
	"scrollstage/trigger"
)

// EventKind classifies lifecycle notifications.
type EventKind int

const (
	EventReady EventKind = iota
	EventTransitionStart
	EventTransitionEnd
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventTransitionStart:
		return "transition-start"
	case EventTransitionEnd:
		return "transition-end"
	default:
		return "error"
	}
}

// LifecycleEvent is a shape-only notification for observers; it carries
// no payload beyond what identifies the occurrence.
type LifecycleEvent struct {
	Kind    EventKind
	Section int
	Err     error
}

// Engine wires the runtime together: state store, trigger set, behaviour
// registry and resolver defaults, frame driver, navigation machine, and
// the exit/entry transition stacks. All collaborators are passed in or
// built at construction; there is no package-level state.
type Engine struct {
	log  *zap.Logger
	mode compose.Mode

	store    *state.Store
	triggers *trigger.Set
	registry *behavior.Registry
	defaults behavior.Defaults
	drv      *driver.Driver
	machine  *nav.Machine

	exit  *transition.Stack
	entry *transition.Stack

	onCommit func(nav.Transition)
	probe    nav.ScrollProbe
	clock    func() time.Time

	completeCh chan nav.Transition
	events     chan LifecycleEvent
	inflight   sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger, shared with every component.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithRegistry replaces the default registry (builtins pre-registered).
// Use it to add scripted or host-specific behaviours before construction
// validates the mode against the registry.
func WithRegistry(reg *behavior.Registry) Option {
	return func(e *Engine) { e.registry = reg }
}

// WithProbe installs the wheel pass-through probe on the navigation
// machine.
func WithProbe(p nav.ScrollProbe) Option {
	return func(e *Engine) { e.probe = p }
}

// WithOnCommit installs the host callback invoked at the commit point of
// every transition, after the exit stack drains and before the entry
// stack runs. The host swaps its visible section here.
func WithOnCommit(fn func(nav.Transition)) Option {
	return func(e *Engine) { e.onCommit = fn }
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// New validates the mode and builds a fully wired engine.
func New(mode compose.Mode, opts ...Option) (*Engine, error) {
	e := &Engine{
		log:        zap.NewNop(),
		mode:       mode,
		clock:      time.Now,
		completeCh: make(chan nav.Transition, 4),
		events:     make(chan LifecycleEvent, 16),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		e.registry = behavior.NewRegistry()
		if err := behavior.RegisterBuiltins(e.registry); err != nil {
			return nil, err
		}
	}
	if err := compose.Validate(mode, e.registry); err != nil {
		return nil, err
	}

	fields, err := mode.StateFields()
	if err != nil {
		return nil, err
	}
	e.store, err = state.NewStore(fields, e.log)
	if err != nil {
		return nil, err
	}

	e.triggers, err = trigger.NewSet(mode.TriggerConfigs(), e.store, e.log)
	if err != nil {
		return nil, err
	}

	e.defaults = mode.BehaviorDefaults()
	e.drv = driver.New(e.store, e.log)
	e.exit = transition.NewStack("exit", e.log)
	e.entry = transition.NewStack("entry", e.log)

	if len(mode.Sections) > 0 {
		mopts := []nav.Option{
			nav.WithStore(e.store),
			nav.WithLogger(e.log),
			nav.WithClock(e.clock),
			nav.WithOnAccept(e.beginTransition),
		}
		if e.probe != nil {
			mopts = append(mopts, nav.WithProbe(e.probe))
		}
		e.machine, err = nav.New(mode.NavConfig(), mopts...)
		if err != nil {
			e.triggers.Close()
			return nil, err
		}
	}

	e.emit(LifecycleEvent{Kind: EventReady})
	return e, nil
}

// Store exposes the runtime state store.
func (e *Engine) Store() *state.Store { return e.store }

// Registry exposes the behaviour registry.
func (e *Engine) Registry() *behavior.Registry { return e.registry }

// Mode returns the composition the engine was built from.
func (e *Engine) Mode() compose.Mode { return e.mode }

// Events delivers lifecycle notifications. The channel is buffered;
// events are dropped when no one drains it.
func (e *Engine) Events() <-chan LifecycleEvent { return e.events }

// Dispatch feeds one environment event to every trigger.
func (e *Engine) Dispatch(ev trigger.Event) {
	e.triggers.Dispatch(ev)
}

// AttachTarget resolves a behaviour for the target through the cascade
// (explicit declaration, type default, general default) and registers the
// handle with the frame driver. A resolution of "none" detaches any
// existing registration and attaches nothing.
func (e *Engine) AttachTarget(id, entityType string, h driver.Handle, decl *behavior.Declaration) error {
	binding, err := behavior.Resolve(decl, entityType, e.defaults, e.registry)
	if err != nil {
		return err
	}
	if binding == nil {
		e.drv.Unregister(id)
		return nil
	}
	return e.drv.Register(id, h, *binding)
}

// AttachSection attaches a handle for a configured section, using the
// section's declared behaviour and options from the mode.
func (e *Engine) AttachSection(sectionID string, h driver.Handle) error {
	for _, s := range e.mode.Sections {
		if s.ID != sectionID {
			continue
		}
		var decl *behavior.Declaration
		if s.Behavior != "" {
			decl = &behavior.Declaration{ID: s.Behavior, Options: behavior.Options(s.Options)}
		} else if len(s.Options) > 0 {
			decl = &behavior.Declaration{Options: behavior.Options(s.Options)}
		}
		return e.AttachTarget(sectionID, s.Type, h, decl)
	}
	return fmt.Errorf("scrollstage: unknown section %q", sectionID)
}

// DetachTarget removes a target from the driver. Unknown ids are a no-op.
func (e *Engine) DetachTarget(id string) {
	e.drv.Unregister(id)
}

// OnExit adds a task to the exit stack for the next transition. The
// returned closure removes it.
func (e *Engine) OnExit(task transition.Task) func() { return e.exit.Add(task) }

// OnEntry adds a task to the entry stack for the next transition.
func (e *Engine) OnEntry(task transition.Task) func() { return e.entry.Add(task) }

// Navigation input surface. Each delegates to the machine when the mode
// configures sections and the input is enabled; otherwise no-op.

func (e *Engine) GoTo(i int) bool {
	return e.machine != nil && e.machine.GoTo(i)
}

func (e *Engine) Next() bool {
	return e.machine != nil && e.machine.Next()
}

func (e *Engine) Prev() bool {
	return e.machine != nil && e.machine.Prev()
}

func (e *Engine) Back() bool {
	return e.machine != nil && e.machine.Back()
}

// ActiveSection returns the current section index, or 0 without sections.
func (e *Engine) ActiveSection() int {
	if e.machine == nil {
		return 0
	}
	return e.machine.Active()
}

// SetNavLock sets the navigation lock.
func (e *Engine) SetNavLock(locked bool) {
	if e.machine != nil {
		e.machine.SetLock(locked)
	}
}

// HandleWheel routes a wheel delta to navigation when the wheel input is
// enabled. It reports whether a transition fired and whether the delta
// was consumed; an unconsumed delta should scroll the host content.
func (e *Engine) HandleWheel(deltaY float64) (fired, consumed bool) {
	if e.machine == nil || !e.mode.InputEnabled(compose.InputWheel) {
		return false, false
	}
	return e.machine.HandleWheel(deltaY, e.clock())
}

// HandleKey routes a navigation key when the keyboard input is enabled.
func (e *Engine) HandleKey(key string) bool {
	if e.machine == nil || !e.mode.InputEnabled(compose.InputKeyboard) {
		return false
	}
	return e.machine.HandleKey(key, e.clock())
}

// HandleSwipe routes a completed swipe when the swipe input is enabled.
func (e *Engine) HandleSwipe(s nav.Swipe) bool {
	if e.machine == nil || !e.mode.InputEnabled(compose.InputSwipe) {
		return false
	}
	return e.machine.HandleSwipe(s, e.clock())
}

// Tick advances one frame: finished transitions are completed on the
// caller's loop, then the driver recomputes and applies every binding.
// The host calls this from its frame callback, or hands it to a
// Scheduler via Start.
func (e *Engine) Tick(now time.Time) {
	for {
		select {
		case t := <-e.completeCh:
			if e.machine != nil {
				e.machine.CompleteTransition()
			}
			e.emit(LifecycleEvent{Kind: EventTransitionEnd, Section: t.To})
		default:
			e.drv.Tick(now)
			return
		}
	}
}

// Start runs the engine on the scheduler.
func (e *Engine) Start(sched driver.Scheduler) {
	sched.Start(e.Tick)
}

// Stop halts ticking, waits for any in-flight transition orchestration,
// and tears down the triggers. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()

	e.drv.Stop()
	e.inflight.Wait()
	e.triggers.Close()
}

// beginTransition is the machine's accept hook. Orchestration runs off
// the frame loop: drain the exit stack, commit, drain the entry stack,
// then hand completion back to the loop through completeCh so the
// machine only ever mutates on the host's single loop.
func (e *Engine) beginTransition(t nav.Transition) {
	e.emit(LifecycleEvent{Kind: EventTransitionStart, Section: t.To})
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), e.mode.Failsafe())
		defer cancel()

		e.exit.Execute(ctx, e.mode.ExitTimeout())
		if e.onCommit != nil {
			e.onCommit(t)
		}
		e.entry.Execute(ctx, e.mode.EntryTimeout())

		select {
		case e.completeCh <- t:
		case <-ctx.Done():
			// Failsafe: nobody is ticking. Complete directly so the
			// machine never sticks in transitioning.
			if e.machine != nil {
				e.machine.CompleteTransition()
			}
			e.emit(LifecycleEvent{Kind: EventTransitionEnd, Section: t.To})
		}
	}()
}

func (e *Engine) emit(ev LifecycleEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	select {
	case e.events <- ev:
	default:
	}
}
