package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	sliderBarHeight = 12.0
	sliderLabelRoom = 15.0
)

// Slider edits a number between Min and Max by dragging.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64 // 0 means continuous
	Bounds   Rect    // the bar; the label sits above it

	OnChange func(v float64)
	// Note, when set, is printed after the value (e.g. the live population).
	Note func() string
}

func NewSlider(label string, min, max, step, value float64) *Slider {
	s := &Slider{Label: label, Min: min, Max: max, Step: step, Bounds: Rect{H: sliderBarHeight}}
	s.Value = s.quantize(value)
	return s
}

// SetValue moves the knob without firing OnChange.
func (s *Slider) SetValue(v float64) { s.Value = s.quantize(v) }

// Update checks for mouse interaction
func (s *Slider) Update(in Input) {
	if !in.Pressed || !s.Bounds.Contains(in.X, in.Y) || s.Bounds.W <= 0 {
		return
	}
	p := (in.X - s.Bounds.X) / s.Bounds.W
	v := s.quantize(s.Min + p*(s.Max-s.Min))
	if v != s.Value {
		s.Value = v
		if s.OnChange != nil {
			s.OnChange(v)
		}
	}
}

func (s *Slider) quantize(v float64) float64 {
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

// Text is the label line: name, value and the optional note.
func (s *Slider) Text() string {
	var txt string
	if s.Step >= 1 {
		txt = fmt.Sprintf("%s: %d", s.Label, int(math.Round(s.Value)))
	} else {
		txt = fmt.Sprintf("%s: %.2f", s.Label, s.Value)
	}
	if s.Note != nil {
		txt += "  " + s.Note()
	}
	return txt
}

func (s *Slider) Height() float64 { return sliderLabelRoom + sliderBarHeight + 8 }

func (s *Slider) Place(x, y, w float64) {
	s.Bounds = Rect{X: x, Y: y + sliderLabelRoom, W: w, H: sliderBarHeight}
}

// Draw renders the slider
func (s *Slider) Draw(screen *ebiten.Image) {
	b := s.Bounds
	ebitenutil.DebugPrintAt(screen, s.Text(), int(b.X), int(b.Y-sliderLabelRoom))
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.W*ratio), float32(b.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}
