package host

import (
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
)

const particleCount = 48

// particleField is the ambient dust layer behind the panels. Particles
// drift in a chipmunk space and get nudged opposite the scroll velocity
// so fast scrolling visibly stirs them.
type particleField struct {
	space  *cp.Space
	bodies []*cp.Body
	w, h   float64
}

func newParticleField(w, h float64) *particleField {
	space := cp.NewSpace()
	space.Iterations = 4
	space.SetGravity(cp.Vector{X: 0, Y: 8})
	space.SetDamping(0.92)

	f := &particleField{space: space, w: w, h: h}
	for i := 0; i < particleCount; i++ {
		body := space.AddBody(cp.NewBody(1, cp.MomentForCircle(1, 0, 1.5, cp.Vector{})))
		body.SetPosition(cp.Vector{X: rand.Float64() * w, Y: rand.Float64() * h})
		shape := space.AddShape(cp.NewCircle(body, 1.5, cp.Vector{}))
		shape.SetSensor(true)
		f.bodies = append(f.bodies, body)
	}
	return f
}

func (f *particleField) resize(w, h float64) {
	f.w, f.h = w, h
}

func (f *particleField) update(scrollVelocity float64) {
	nudge := cp.Vector{Y: -scrollVelocity * 0.01}
	for _, b := range f.bodies {
		b.ApplyImpulseAtLocalPoint(nudge, cp.Vector{})
		pos := b.Position()
		// wrap instead of clamping so the field never empties
		if pos.Y > f.h+4 {
			b.SetPosition(cp.Vector{X: rand.Float64() * f.w, Y: -4})
		} else if pos.Y < -8 {
			b.SetPosition(cp.Vector{X: rand.Float64() * f.w, Y: f.h + 4})
		}
	}
	f.space.Step(1.0 / 60.0)
}

func (f *particleField) draw(screen *ebiten.Image) {
	for _, b := range f.bodies {
		pos := b.Position()
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(2, 2)
		op.GeoM.Translate(pos.X, pos.Y)
		op.ColorScale.ScaleAlpha(0.25)
		screen.DrawImage(white(), op)
	}
}
