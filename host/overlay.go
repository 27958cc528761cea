package host

import (
	"fmt"
	"image/color"

	"golang.org/x/image/font/basicfont"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
)

// overlay is the corner HUD: mode name, active section, navigation state.
// Built from colored nine-slices and the built-in basic font so it needs
// no theme assets.
type overlay struct {
	ui     *ebitenui.UI
	status *widget.Text
}

func newOverlay(modeName string) *overlay {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 160})

	goFace := ebtext.NewGoXFace(basicfont.Face7x13)
	var face ebtext.Face = goFace

	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	title := widget.NewText(
		widget.TextOpts.Text(modeName, &face, white),
	)
	status := widget.NewText(
		widget.TextOpts.Text("", &face, white),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(4),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 8, Bottom: 8, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionStart,
				VerticalPosition:   widget.AnchorLayoutPositionStart,
			}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(status)

	root := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &overlay{
		ui:     &ebitenui.UI{Container: root},
		status: status,
	}
}

func (o *overlay) setStatus(section int, label string, transitioning bool) {
	state := "idle"
	if transitioning {
		state = "transitioning"
	}
	o.status.Label = fmt.Sprintf("section %d (%s)  %s", section, label, state)
}

func (o *overlay) update() {
	o.ui.Update()
}

func (o *overlay) draw(screen *ebiten.Image) {
	o.ui.Draw(screen)
}
