// Package nav arbitrates section navigation: discrete wheel, keyboard,
// swipe, and programmatic inputs are run through a fixed guard sequence
// and, when accepted, advance the active-section index.
package nav

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"scrollstage/state"
)

// State is the machine's coarse phase.
type State int

const (
	StateIdle State = iota
	StateTransitioning
)

func (s State) String() string {
	if s == StateTransitioning {
		return "transitioning"
	}
	return "idle"
}

// Direction of an accepted transition.
type Direction int

const (
	DirForward Direction = iota
	DirBackward
)

func (d Direction) String() string {
	if d == DirBackward {
		return "backward"
	}
	return "forward"
}

// InputKind records which source produced a transition.
type InputKind int

const (
	InputProgrammatic InputKind = iota
	InputWheel
	InputKeyboard
	InputSwipe
)

func (k InputKind) String() string {
	switch k {
	case InputWheel:
		return "wheel"
	case InputKeyboard:
		return "keyboard"
	case InputSwipe:
		return "swipe"
	default:
		return "programmatic"
	}
}

// Transition describes one accepted navigation.
type Transition struct {
	From      int
	To        int
	Direction Direction
	Input     InputKind
	At        time.Time
}

// ScrollProbe lets the machine ask whether the active section's own
// content can still scroll in a direction. While it can, wheel deltas pass
// through untouched and are never accumulated.
type ScrollProbe interface {
	CanScroll(section int, dir Direction) bool
}

// Config tunes the machine. Zero-valued thresholds fall back to defaults;
// Sections must be positive.
type Config struct {
	Sections             int
	Loop                 bool
	Debounce             time.Duration
	LockDuringTransition bool
	AllowSkip            bool
	SnapThreshold        float64
	SwipeMinDistance     float64
	SwipeMaxDuration     time.Duration
	HistoryDepth         int
}

const (
	defaultSnapThreshold    = 50.0
	defaultSwipeMinDistance = 60.0
	defaultSwipeMaxDuration = 400 * time.Millisecond
)

// Machine is the navigation state machine. It is not goroutine-safe; like
// the rest of the runtime it relies on the host's single event loop.
type Machine struct {
	cfg   Config
	log   *zap.Logger
	store *state.Store
	probe ScrollProbe

	onAccept func(Transition)
	clock    func() time.Time

	st           State
	active       int
	prev         int
	lastDir      Direction
	lastInput    InputKind
	locked       bool
	lastAccepted time.Time
	accepted     bool

	wheelAccum float64
	hist       *history
}

// Option configures a Machine.
type Option func(*Machine)

// WithStore mirrors accepted transitions into the runtime state store
// (activeSection, previousSection, isTransitioning, navDirection).
func WithStore(st *state.Store) Option {
	return func(m *Machine) { m.store = st }
}

// WithProbe installs the wheel pass-through probe.
func WithProbe(p ScrollProbe) Option {
	return func(m *Machine) { m.probe = p }
}

// WithLogger sets the machine's logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// WithOnAccept installs the commit hook invoked for every accepted
// transition.
func WithOnAccept(fn func(Transition)) Option {
	return func(m *Machine) { m.onAccept = fn }
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Machine) { m.clock = clock }
}

// WithInitialSection sets the starting active index.
func WithInitialSection(i int) Option {
	return func(m *Machine) { m.active = i }
}

// New validates the config and builds a machine.
func New(cfg Config, opts ...Option) (*Machine, error) {
	if cfg.Sections <= 0 {
		return nil, fmt.Errorf("nav: sections must be positive, got %d", cfg.Sections)
	}
	if cfg.Debounce < 0 {
		return nil, fmt.Errorf("nav: negative debounce %v", cfg.Debounce)
	}
	if cfg.SnapThreshold <= 0 {
		cfg.SnapThreshold = defaultSnapThreshold
	}
	if cfg.SwipeMinDistance <= 0 {
		cfg.SwipeMinDistance = defaultSwipeMinDistance
	}
	if cfg.SwipeMaxDuration <= 0 {
		cfg.SwipeMaxDuration = defaultSwipeMaxDuration
	}
	if cfg.HistoryDepth < 0 {
		cfg.HistoryDepth = 0
	}
	m := &Machine{
		cfg:   cfg,
		log:   zap.NewNop(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.active < 0 || m.active >= cfg.Sections {
		return nil, fmt.Errorf("nav: initial section %d out of range [0,%d)", m.active, cfg.Sections)
	}
	if cfg.HistoryDepth > 0 {
		m.hist = newHistory(cfg.HistoryDepth)
	}
	m.mirror(state.Partial{
		"activeSection":   m.active,
		"isTransitioning": false,
	})
	return m, nil
}

// Active returns the current active section index.
func (m *Machine) Active() int { return m.active }

// Previous returns the index active before the last accepted transition.
func (m *Machine) Previous() int { return m.prev }

// CurrentState returns idle or transitioning.
func (m *Machine) CurrentState() State { return m.st }

// LastDirection returns the direction of the last accepted transition.
func (m *Machine) LastDirection() Direction { return m.lastDir }

// LastInput returns the input kind of the last accepted transition.
func (m *Machine) LastInput() InputKind { return m.lastInput }

// Locked reports the navigation lock.
func (m *Machine) Locked() bool { return m.locked }

// SetLock sets the navigation lock. While locked, no input changes the
// active section.
func (m *Machine) SetLock(locked bool) {
	m.locked = locked
	m.mirror(state.Partial{"navLocked": locked})
}

// GoTo requests a direct transition to index i.
func (m *Machine) GoTo(i int) bool {
	return m.request(i, InputProgrammatic, m.clock())
}

// Next requests a one-step forward transition.
func (m *Machine) Next() bool {
	return m.request(m.active+1, InputProgrammatic, m.clock())
}

// Prev requests a one-step backward transition.
func (m *Machine) Prev() bool {
	return m.request(m.active-1, InputProgrammatic, m.clock())
}

// Back pops the navigation history and returns to the previous index. The
// return transition runs through the same guards as any other.
func (m *Machine) Back() bool {
	if m.hist == nil {
		return false
	}
	target, ok := m.hist.peek()
	if !ok {
		return false
	}
	if m.request(target, InputProgrammatic, m.clock()) {
		if m.active == target {
			// request pushed the index we just left; drop both entries
			// so Back chains walk further into the past instead of
			// ping-ponging.
			m.hist.pop()
			m.hist.pop()
		}
		return true
	}
	return false
}

// CompleteTransition signals that exit/entry animation work for the
// in-flight transition has finished (or timed out). It flips the machine
// back to idle; guarded inputs flow again.
func (m *Machine) CompleteTransition() {
	if m.st != StateTransitioning {
		return
	}
	m.st = StateIdle
	m.mirror(state.Partial{"isTransitioning": false})
}

// request runs the guard sequence for a candidate transition. Rejections
// are silent no-ops by design.
func (m *Machine) request(target int, input InputKind, now time.Time) bool {
	if m.locked {
		return false
	}
	if m.st == StateTransitioning && m.cfg.LockDuringTransition {
		return false
	}
	if m.accepted && m.cfg.Debounce > 0 && now.Sub(m.lastAccepted) < m.cfg.Debounce {
		return false
	}

	dir := DirForward
	if target < m.active {
		dir = DirBackward
	}

	bounded := target
	if m.cfg.Loop {
		n := m.cfg.Sections
		bounded = ((target % n) + n) % n
	} else {
		if bounded < 0 {
			bounded = 0
		} else if bounded >= m.cfg.Sections {
			bounded = m.cfg.Sections - 1
		}
	}

	if bounded == m.active {
		return false
	}

	if !m.cfg.AllowSkip && abs(bounded-m.active) > 1 {
		if dir == DirForward {
			bounded = m.active + 1
		} else {
			bounded = m.active - 1
		}
		if m.cfg.Loop {
			n := m.cfg.Sections
			bounded = ((bounded % n) + n) % n
		}
	}

	m.accept(Transition{From: m.active, To: bounded, Direction: dir, Input: input, At: now})
	return true
}

func (m *Machine) accept(t Transition) {
	m.prev = t.From
	m.active = t.To
	m.lastDir = t.Direction
	m.lastInput = t.Input
	m.lastAccepted = t.At
	m.accepted = true
	m.st = StateTransitioning
	if m.hist != nil {
		m.hist.push(t.From)
	}

	m.mirror(state.Partial{
		"activeSection":   m.active,
		"previousSection": m.prev,
		"isTransitioning": true,
		"navDirection":    t.Direction.String(),
	})

	m.log.Debug("nav: transition accepted",
		zap.Int("from", t.From),
		zap.Int("to", t.To),
		zap.String("direction", t.Direction.String()),
		zap.String("input", t.Input.String()))

	if m.onAccept != nil {
		m.onAccept(t)
	}
}

// mirror writes navigation facts into the state store, skipping fields the
// mode does not declare.
func (m *Machine) mirror(p state.Partial) {
	if m.store == nil {
		return
	}
	for name := range p {
		if !m.store.Has(name) {
			delete(p, name)
		}
	}
	if len(p) == 0 {
		return
	}
	_ = m.store.Set(p)
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
