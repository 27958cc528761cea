package host

import (
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"scrollstage/behavior"
)

// Panel is the host-side handle for one section: a colored card the
// driver animates through applied parameters. Apply runs on the frame
// loop but Draw may race a late transition task, so the params are
// guarded.
type Panel struct {
	ID    string
	Label string
	Color color.NRGBA

	mu     sync.Mutex
	params behavior.Params
}

func NewPanel(id, label string, c color.NRGBA) *Panel {
	return &Panel{ID: id, Label: label, Color: c}
}

// Apply stores the latest parameter set. Implements driver.Handle.
func (p *Panel) Apply(params behavior.Params) {
	p.mu.Lock()
	p.params = params
	p.mu.Unlock()
}

// Params returns the last applied parameter set, which may be nil before
// the first tick.
func (p *Panel) Params() behavior.Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

var whitePixel *ebiten.Image

// white returns the shared 1x1 fill image; allocated on first draw so
// tests that never render stay off the graphics driver.
func white() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

// Draw renders the panel into the given rectangle, applying the applied
// opacity, translation, and scale parameters. Every parameter read
// supplies a fallback; a panel with no behaviour draws at rest.
func (p *Panel) Draw(screen *ebiten.Image, x, y, w, h float64) {
	params := p.Params()

	opacity := params.Float("opacity", 1)
	if opacity <= 0 {
		return
	}
	scale := params.Float("scale", 1)
	scaleX := params.Float("scale-x", scale)
	scaleY := params.Float("scale-y", scale)
	dx := params.Float("x", 0)
	dy := params.Float("y", 0)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w*scaleX, h*scaleY)
	// keep the card centered while it scales
	op.GeoM.Translate(x+dx+(w-w*scaleX)/2, y+dy+(h-h*scaleY)/2)
	op.ColorScale.ScaleWithColor(p.Color)
	op.ColorScale.ScaleAlpha(float32(opacity))
	screen.DrawImage(white(), op)
}
