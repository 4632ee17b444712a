package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const checkboxSize = 16.0

// Checkbox is a simple UI widget for boolean values
type Checkbox struct {
	Label    string
	Value    bool
	Bounds   Rect
	OnChange func(v bool)

	clicked bool // Track if already clicked this press
}

func NewCheckbox(label string, value bool) *Checkbox {
	return &Checkbox{Label: label, Value: value, Bounds: Rect{W: checkboxSize, H: checkboxSize}}
}

// Update toggles once per press while the cursor is on the box.
func (c *Checkbox) Update(in Input) {
	if in.Pressed && c.Bounds.Contains(in.X, in.Y) {
		if !c.clicked {
			c.Value = !c.Value
			c.clicked = true
			if c.OnChange != nil {
				c.OnChange(c.Value)
			}
		}
		return
	}
	c.clicked = false
}

func (c *Checkbox) Height() float64 { return checkboxSize + 6 }

func (c *Checkbox) Place(x, y, _ float64) {
	c.Bounds = Rect{X: x, Y: y, W: checkboxSize, H: checkboxSize}
}

// Draw renders the checkbox
func (c *Checkbox) Draw(screen *ebiten.Image) {
	b := c.Bounds
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 2,
		color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	if c.Value {
		vector.FillRect(screen, float32(b.X+2), float32(b.Y+2), float32(b.W-4), float32(b.H-4),
			color.RGBA{R: 100, G: 200, B: 100, A: 255}, true)
	}
	ebitenutil.DebugPrintAt(screen, c.Label, int(b.X+b.W+8), int(b.Y))
}
