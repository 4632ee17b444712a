// Package ui is a small immediate-mode control panel drawn with ebiten.
package ui

import "github.com/hajimehoshi/ebiten/v2"

// Input is the mouse state for one frame. Widgets never query ebiten directly,
// so they can be driven from tests.
type Input struct {
	X, Y    float64
	Pressed bool    // left button held
	Wheel   float64 // vertical wheel delta
}

// PollInput reads the current mouse state from ebiten.
func PollInput() Input {
	mx, my := ebiten.CursorPosition()
	_, dy := ebiten.Wheel()
	return Input{
		X:       float64(mx),
		Y:       float64(my),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Wheel:   dy,
	}
}

// Rect is an axis aligned screen rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the point is inside, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}
