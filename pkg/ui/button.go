package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const buttonHeight = 20.0

// Button is a clickable UI button
type Button struct {
	Label   string
	Bounds  Rect
	OnClick func()

	clicked bool
	hover   bool

	// Styling
	BGColor    color.RGBA
	HoverColor color.RGBA
}

func NewButton(label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		OnClick:    onClick,
		Bounds:     Rect{H: buttonHeight},
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

// Update fires OnClick once per press.
func (b *Button) Update(in Input) {
	b.hover = b.Bounds.Contains(in.X, in.Y)
	if b.hover && in.Pressed {
		if !b.clicked && b.OnClick != nil {
			b.OnClick()
		}
		b.clicked = true
		return
	}
	b.clicked = false
}

func (b *Button) Height() float64 { return buttonHeight + 6 }

func (b *Button) Place(x, y, w float64) {
	b.Bounds = Rect{X: x, Y: y, W: w, H: buttonHeight}
}

// Draw renders the button
func (b *Button) Draw(screen *ebiten.Image) {
	r := b.Bounds
	bg := b.BGColor
	if b.hover {
		bg = b.HoverColor
	}
	vector.FillRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), bg, true)
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 2,
		color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(r.X+6), int(r.Y+3))
}
