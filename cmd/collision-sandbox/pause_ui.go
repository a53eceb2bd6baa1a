package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/collision/collision"
	"golang.org/x/image/font/basicfont"
)

// pausePanel is shown while the sandbox is paused. It has a resume button and
// one button per layer pair that flips the pair in the live layer matrix.
type pausePanel struct {
	ui      *ebitenui.UI
	toggles map[collision.LayerPair]*widget.Button
}

// allLayerPairs lists every unordered pair of layers, self pairs included.
func allLayerPairs() []collision.LayerPair {
	var out []collision.LayerPair
	for a := collision.Layer(0); a < collision.LayerCount; a++ {
		for b := a; b < collision.LayerCount; b++ {
			out = append(out, collision.LayerPair{A: a, B: b})
		}
	}
	return out
}

// toggleLayerPair returns m with p flipped. All other pairs are unchanged.
func toggleLayerPair(m collision.LayerMatrix, p collision.LayerPair) (collision.LayerMatrix, error) {
	on := !m.CanCollide(p.A, p.B)
	b := collision.NewLayerMatrixBuilder()
	for _, q := range m.Pairs() {
		if q == p || (q.A == p.B && q.B == p.A) {
			continue
		}
		b.Allow(q.A, q.B)
	}
	if on {
		b.Allow(p.A, p.B)
	}
	return b.Build()
}

func layerPairLabel(m collision.LayerMatrix, p collision.LayerPair) string {
	mark := "[ ] "
	if m.CanCollide(p.A, p.B) {
		mark = "[x] "
	}
	return mark + p.A.String() + " / " + p.B.String()
}

// toggleLayers flips p in the collision system's matrix. The next tick uses
// the new matrix.
func (g *Game) toggleLayers(p collision.LayerPair) {
	m, err := toggleLayerPair(g.sys.Layers(), p)
	if err != nil {
		g.logger.Error("layer toggle failed", "a", p.A, "b", p.B, "err", err)
		return
	}
	g.sys.SetLayers(m)
	if g.pause != nil {
		g.pause.refresh(m)
	}
}

func newPausePanel(g *Game) *pausePanel {
	panelImg := imageui.NewNineSliceColor(color.NRGBA{A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnPressed := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}
	center := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})

	title := widget.NewText(
		widget.TextOpts.Text("Paused", &face, white),
		widget.TextOpts.WidgetOpts(center),
	)
	resume := widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnPressed}),
		widget.ButtonOpts.Text("Resume", &face, btnTextColor),
		widget.ButtonOpts.WidgetOpts(center),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			g.paused = false
		}),
	)

	grid := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewGridLayout(
			widget.GridLayoutOpts.Columns(3),
			widget.GridLayoutOpts.Spacing(6, 6),
		)),
		widget.ContainerOpts.WidgetOpts(center),
	)

	p := &pausePanel{toggles: make(map[collision.LayerPair]*widget.Button)}
	layers := g.sys.Layers()
	for _, pair := range allLayerPairs() {
		btn := widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Pressed: btnPressed}),
			widget.ButtonOpts.Text(layerPairLabel(layers, pair), &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(200, 24)),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				g.toggleLayers(pair)
			}),
		)
		p.toggles[pair] = btn
		grid.AddChild(btn)
	}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(g.cfg.Sandbox.Width/2, g.cfg.Sandbox.Height/2),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(grid)
	panel.AddChild(resume)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)

	p.ui = &ebitenui.UI{Container: root}
	return p
}

// refresh relabels the toggles after the matrix changed, including reloads
// from disk.
func (p *pausePanel) refresh(m collision.LayerMatrix) {
	for pair, btn := range p.toggles {
		if text := btn.Text(); text != nil {
			text.Label = layerPairLabel(m, pair)
		}
	}
}
