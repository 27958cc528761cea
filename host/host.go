// Package host is the Ebiten reference host: it materializes one panel
// per configured section, pumps sampled input into the engine as
// environment events and navigation intents, ticks the engine once per
// frame, and renders whatever parameters the driver applied.
package host

import (
	"encoding/json"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"
	"golang.design/x/clipboard"

	"scrollstage"
	"scrollstage/behavior"
	"scrollstage/compose"
	"scrollstage/nav"
	"scrollstage/trigger"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// one wheel unit becomes this many pixels of scroll delta
	wheelStep = 40.0
)

var palette = []color.NRGBA{
	{R: 0x2b, G: 0x6c, B: 0xb0, A: 0xff},
	{R: 0xc2, G: 0x5b, B: 0x4e, A: 0xff},
	{R: 0x3f, G: 0x8e, B: 0x5a, A: 0xff},
	{R: 0x8e, G: 0x5c, B: 0xa8, A: 0xff},
	{R: 0xb8, G: 0x8a, B: 0x2e, A: 0xff},
}

type touchTrack struct {
	x0, y0 float64
	start  time.Time
}

// Host implements ebiten.Game and driver.Scheduler: Update is the frame
// pump and the engine tick runs inside it.
type Host struct {
	log  *zap.Logger
	eng  *scrollstage.Engine
	mode compose.Mode

	tick func(time.Time)

	panels []*Panel
	meter  *Panel

	overlay   *overlay
	particles *particleField

	// per-section inner-content scrolling, consulted by the wheel
	// pass-through probe. commit resets offsets off the frame loop, so
	// they are guarded.
	mu      sync.Mutex
	extents []float64
	offsets []float64

	touches map[ebiten.TouchID]touchTrack

	outsideW, outsideH float64
	sentW, sentH       float64

	clipTried, clipReady bool

	frames int
	debug  bool
}

// New builds the engine from the mode and wires a panel per section.
func New(mode compose.Mode, log *zap.Logger, debug bool) (*Host, error) {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Host{
		log:     log,
		mode:    mode,
		touches: make(map[ebiten.TouchID]touchTrack),
		debug:   debug,
	}

	eng, err := scrollstage.New(mode,
		scrollstage.WithLogger(log),
		scrollstage.WithProbe(h),
		scrollstage.WithOnCommit(h.commit),
	)
	if err != nil {
		return nil, err
	}
	h.eng = eng

	for i, s := range mode.Sections {
		p := NewPanel(s.ID, s.ID, palette[i%len(palette)])
		if err := eng.AttachSection(s.ID, p); err != nil {
			eng.Stop()
			return nil, err
		}
		h.panels = append(h.panels, p)
		h.extents = append(h.extents, trigger.Options(s.Options).Float("contentHeight", 0))
	}
	h.offsets = make([]float64, len(h.panels))

	h.meter = NewPanel("hud-progress", "progress", color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	if err := eng.AttachTarget("hud-progress", "meter", h.meter, &behavior.Declaration{ID: "progress-bar"}); err != nil {
		eng.Stop()
		return nil, err
	}

	h.overlay = newOverlay(mode.Name)
	h.particles = newParticleField(baseWidth, baseHeight)

	eng.Start(h)
	return h, nil
}

// Engine exposes the wired engine, mostly for the CLI and tests.
func (h *Host) Engine() *scrollstage.Engine { return h.eng }

// Start implements driver.Scheduler; Update invokes tick once per frame.
func (h *Host) Start(tick func(now time.Time)) { h.tick = tick }

// Stop implements driver.Scheduler.
func (h *Host) Stop() { h.tick = nil }

// CanScroll implements nav.ScrollProbe: wheel deltas pass through to the
// section's own content while it still has somewhere to go.
func (h *Host) CanScroll(section int, dir nav.Direction) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if section < 0 || section >= len(h.extents) {
		return false
	}
	if dir == nav.DirForward {
		return h.offsets[section] < h.extents[section]
	}
	return h.offsets[section] > 0
}

// commit runs at the transition commit point, off the frame loop. The
// freshly entered section starts at the top of its content.
func (h *Host) commit(t nav.Transition) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t.To >= 0 && t.To < len(h.offsets) {
		h.offsets[t.To] = 0
	}
}

var navKeys = []struct {
	key  ebiten.Key
	name string
}{
	{ebiten.KeyArrowDown, "ArrowDown"},
	{ebiten.KeyArrowUp, "ArrowUp"},
	{ebiten.KeyPageDown, "PageDown"},
	{ebiten.KeyPageUp, "PageUp"},
	{ebiten.KeyHome, "Home"},
	{ebiten.KeyEnd, "End"},
	{ebiten.KeySpace, "Space"},
}

func (h *Host) Update() error {
	h.frames++
	now := time.Now()

	if h.outsideW != h.sentW || h.outsideH != h.sentH {
		h.sentW, h.sentH = h.outsideW, h.outsideH
		h.eng.Dispatch(trigger.ResizeEvent{W: h.outsideW, H: h.outsideH, Time: now})
	}

	mx, my := ebiten.CursorPosition()
	h.eng.Dispatch(trigger.PointerMoveEvent{X: float64(mx), Y: float64(my), Time: now})

	if _, wy := ebiten.Wheel(); wy != 0 {
		delta := -wy * wheelStep
		h.eng.Dispatch(trigger.WheelEvent{DeltaY: delta, Time: now})
		if _, consumed := h.eng.HandleWheel(delta); !consumed {
			h.scrollContent(delta, now)
		}
	}

	for _, b := range navKeys {
		if inpututil.IsKeyJustPressed(b.key) {
			h.eng.Dispatch(trigger.KeyEvent{Key: b.name, Pressed: true, Time: now})
			h.eng.HandleKey(b.name)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		h.eng.Back()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		h.copySnapshot()
	}

	h.updateTouches(now)

	if h.tick != nil {
		h.tick(now)
	}

	snap := h.eng.Store().Get()
	h.particles.update(snap.Float("scrollVelocity"))

	active := h.eng.ActiveSection()
	label := ""
	if active < len(h.panels) {
		label = h.panels[active].Label
	}
	h.overlay.setStatus(active, label, snap.Bool("isTransitioning"))
	h.overlay.update()

	return nil
}

func (h *Host) scrollContent(delta float64, now time.Time) {
	active := h.eng.ActiveSection()
	h.mu.Lock()
	if active >= len(h.extents) || h.extents[active] <= 0 {
		h.mu.Unlock()
		return
	}
	max := h.extents[active]
	off := h.offsets[active] + delta
	if off < 0 {
		off = 0
	}
	if off > max {
		off = max
	}
	h.offsets[active] = off
	h.mu.Unlock()
	h.eng.Dispatch(trigger.ScrollEvent{Offset: off, Max: max, Time: now})
}

func (h *Host) updateTouches(now time.Time) {
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		h.touches[id] = touchTrack{x0: float64(x), y0: float64(y), start: now}
		h.eng.Dispatch(trigger.TouchEvent{Phase: trigger.TouchStart, ID: int(id), X: float64(x), Y: float64(y), Time: now})
	}
	for _, id := range ebiten.AppendTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		h.eng.Dispatch(trigger.TouchEvent{Phase: trigger.TouchMove, ID: int(id), X: float64(x), Y: float64(y), Time: now})
	}
	for id, tr := range h.touches {
		if !inpututil.IsTouchJustReleased(id) {
			continue
		}
		x, y := inpututil.TouchPositionInPreviousTick(id)
		h.eng.Dispatch(trigger.TouchEvent{Phase: trigger.TouchEnd, ID: int(id), X: float64(x), Y: float64(y), Time: now})
		h.eng.HandleSwipe(nav.Swipe{
			DeltaX:   float64(x) - tr.x0,
			DeltaY:   float64(y) - tr.y0,
			Duration: now.Sub(tr.start),
		})
		delete(h.touches, id)
	}
}

func (h *Host) copySnapshot() {
	if !h.clipTried {
		h.clipTried = true
		if err := clipboard.Init(); err != nil {
			h.log.Warn("clipboard unavailable", zap.Error(err))
		} else {
			h.clipReady = true
		}
	}
	if !h.clipReady {
		return
	}
	data, err := json.Marshal(h.eng.Store().Get())
	if err != nil {
		h.log.Warn("snapshot marshal failed", zap.Error(err))
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	h.log.Info("state snapshot copied to clipboard", zap.Int("bytes", len(data)))
}

func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(color.NRGBA{R: 0x12, G: 0x12, B: 0x16, A: 0xff})
	h.particles.draw(screen)

	snap := h.eng.Store().Get()
	active := h.eng.ActiveSection()

	const margin = 48.0
	pw := baseWidth - 2*margin
	ph := baseHeight - 2*margin

	if snap.Bool("isTransitioning") {
		if prev := snap.Int("previousSection"); prev >= 0 && prev < len(h.panels) && prev != active {
			h.panels[prev].Draw(screen, margin, margin, pw, ph)
		}
	}
	if active < len(h.panels) {
		h.panels[active].Draw(screen, margin, margin, pw, ph)
	}

	// progress meter, anchored left
	if width := h.meter.Params().Float("scale-x", 0) * baseWidth; width > 0 {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(width, 4)
		op.ColorScale.ScaleWithColor(h.meter.Color)
		screen.DrawImage(white(), op)
	}

	h.overlay.draw(screen)

	if h.debug {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("frames: %d    fps: %.2f", h.frames, ebiten.ActualFPS()), 4, baseHeight-18)
	}
}

func (h *Host) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	h.outsideW, h.outsideH = outsideWidth, outsideHeight
	return baseWidth, baseHeight
}

func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Run configures the window and runs the host until it exits.
func Run(h *Host) error {
	defer h.eng.Stop()
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("scrollstage: " + h.mode.Name)
	return ebiten.RunGame(h)
}
