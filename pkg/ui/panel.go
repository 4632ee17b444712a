package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	panelTitleRoom   = 30.0
	sectionRoom      = 25.0
	panelMargin      = 10.0
	scrollPerNotch   = 20.0
	panelBottomSlack = 40.0
)

// Widget is anything the panel can lay out.
type Widget interface {
	Update(in Input)
	Draw(screen *ebiten.Image)
	Height() float64
	// Place moves the widget's top-left corner and gives it a width.
	Place(x, y, w float64)
}

type section struct {
	title   string
	widgets []Widget
}

// Panel manages a collection of UI widgets in a scrollable panel
type Panel struct {
	Title        string
	Bounds       Rect
	ScrollOffset float64
	Hidden       bool

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []*section
	visible  []Widget // laid out inside the panel this frame
}

func NewPanel(title string, bounds Rect) *Panel {
	return &Panel{
		Title:       title,
		Bounds:      bounds,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new titled group; following Add calls go into it.
func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, &section{title: title})
}

// Add appends a widget to the current section and returns it.
func (p *Panel) Add(w Widget) Widget {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	s := p.sections[len(p.sections)-1]
	s.widgets = append(s.widgets, w)
	return w
}

func (p *Panel) AddSlider(label string, min, max, step, value float64, onChange func(float64)) *Slider {
	s := NewSlider(label, min, max, step, value)
	s.OnChange = onChange
	p.Add(s)
	return s
}

func (p *Panel) AddCheckbox(label string, value bool, onChange func(bool)) *Checkbox {
	c := NewCheckbox(label, value)
	c.OnChange = onChange
	p.Add(c)
	return c
}

func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(label, onClick)
	p.Add(b)
	return b
}

// Clear removes every section and widget.
func (p *Panel) Clear() {
	p.sections = nil
	p.visible = nil
	p.ScrollOffset = 0
}

// Contains reports whether the cursor is over the panel, so clicks are not
// also handled by the scene behind it.
func (p *Panel) Contains(in Input) bool {
	return !p.Hidden && p.Bounds.Contains(in.X, in.Y)
}

// ContentHeight is the height of everything in the panel, scrolled or not.
func (p *Panel) ContentHeight() float64 {
	h := panelTitleRoom
	for _, s := range p.sections {
		h += sectionRoom
		for _, w := range s.widgets {
			h += w.Height()
		}
	}
	return h
}

// Update handles scrolling, lays the widgets out and forwards input to the visible ones.
func (p *Panel) Update(in Input) {
	if p.Hidden {
		return
	}
	if in.Wheel != 0 && p.Bounds.Contains(in.X, in.Y) {
		p.ScrollOffset -= in.Wheel * scrollPerNotch
	}
	maxScroll := max(p.ContentHeight()-p.Bounds.H+panelBottomSlack, 0)
	p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)

	p.layout()
	for _, w := range p.visible {
		w.Update(in)
	}
}

func (p *Panel) layout() {
	p.visible = p.visible[:0]
	x := p.Bounds.X + panelMargin
	width := p.Bounds.W - 2*panelMargin
	y := p.Bounds.Y + panelTitleRoom - p.ScrollOffset
	top, bottom := p.Bounds.Y+panelTitleRoom, p.Bounds.Y+p.Bounds.H
	for _, s := range p.sections {
		y += sectionRoom
		for _, w := range s.widgets {
			w.Place(x, y, width)
			if y >= top && y+w.Height() <= bottom {
				p.visible = append(p.visible, w)
			}
			y += w.Height()
		}
	}
}

// Draw renders the panel and all widgets
func (p *Panel) Draw(screen *ebiten.Image) {
	if p.Hidden {
		return
	}
	b := p.Bounds
	vector.FillRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), p.BGColor, true)
	vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(b.X+panelMargin), int(b.Y+5))

	sectionBG := color.RGBA{R: 60, G: 60, B: 70, A: 255}
	y := b.Y + panelTitleRoom - p.ScrollOffset
	for _, s := range p.sections {
		if y >= b.Y+panelTitleRoom-sectionRoom && y+sectionRoom <= b.Y+b.H {
			vector.FillRect(screen, float32(b.X+5), float32(y), float32(b.W-10), 20, sectionBG, true)
			ebitenutil.DebugPrintAt(screen, s.title, int(b.X+panelMargin), int(y+3))
		}
		y += sectionRoom
		for _, w := range s.widgets {
			y += w.Height()
		}
	}
	for _, w := range p.visible {
		w.Draw(screen)
	}
}
