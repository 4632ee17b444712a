package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/shape"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/stream"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/ui"
	golog "github.com/tochemey/goakt/v3/log"
)

// DrawTriangles takes uint16 indices
const maxBatchVertices = math.MaxUint16 - 8

var (
	oceanColor    = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	sharkOutline  = color.RGBA{R: 169, G: 169, B: 169, A: 255}
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage *ebiten.Image
)

func init() {
	whiteImage.Fill(color.White)
	// sampling inside the border avoids bleeding at the texture edge
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}

type Game struct {
	ctx    context.Context
	sim    *simulation.Simulation
	hub    *stream.Hub // nil without viewers
	cfg    *simulation.Config
	logger golog.Logger

	frame  *simulation.Frame
	shapes []shape.Fish // per swarm, edited locally from the panel

	panel           *ui.Panel
	panelVersion    uint64
	panelSwarms     int
	refreshers      []func(flock.Snapshot)
	shapeRefreshers []func()

	vertices []ebiten.Vertex
	indices  []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64
}

func NewGame(ctx context.Context, sim *simulation.Simulation, hub *stream.Hub, logger golog.Logger) *Game {
	cfg := sim.Config()
	g := &Game{
		ctx:    ctx,
		sim:    sim,
		hub:    hub,
		cfg:    cfg,
		logger: logger,
		shapes: cfg.Shapes(),
		panel:  ui.NewPanel("Configuration (H hides)", ui.Rect{X: 10, Y: 10, W: 280, H: cfg.WorldHeight - 20}),
	}
	g.buildPanel()
	return g
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// exponential moving average
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.panel.Hidden = !g.panel.Hidden
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.sim.Control.TogglePredators()
	}

	g.syncPanel()
	g.panel.Update(ui.PollInput())

	if f := g.sim.Latest(g.frame); f != g.frame {
		g.frame = f
		if g.hub != nil {
			g.hub.Publish(f)
		}
	}
	return g.sim.Tick(g.ctx)
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(oceanColor)
	if g.frame != nil {
		g.drawEntities(screen)
	}
	g.panel.Draw(screen)
	g.drawStatsBar(screen)
	g.drawBanner(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\nTotal:  %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		g.updateAvg+g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.WorldWidth)-150, 10)
}

// drawEntities batches every fish and shark body into as few DrawTriangles calls as possible.
func (g *Game) drawEntities(screen *ebiten.Image) {
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	fishFan := shape.FanIndices(5)
	sharkFan := shape.FanIndices(3)

	for _, it := range g.frame.Items {
		switch it.Kind {
		case flock.KindShark:
			pts := shape.Shark(it.Position, it.Heading, shape.SharkSize)
			g.appendPolygon(screen, pts[:], sharkFan, it.Color)
		default:
			if shape.AtRest(it.Speed) {
				vector.FillCircle(screen, float32(it.Position.X), float32(it.Position.Y),
					float32(shape.FishSize*shape.RestRadiusFactor), it.Color, true)
				continue
			}
			body := shape.DefaultFish
			if it.Group >= 0 && it.Group < len(g.shapes) {
				body = g.shapes[it.Group]
			}
			pts := body.Outline(it.Position, it.Heading, shape.FishSize)
			g.appendPolygon(screen, pts[:], fishFan, it.Color)
		}
	}
	g.flush(screen)

	// outlines go on top of the filled bodies
	for _, it := range g.frame.Items {
		if it.Kind != flock.KindShark {
			continue
		}
		pts := shape.Shark(it.Position, it.Heading, shape.SharkSize)
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, sharkOutline, true)
		}
	}
}

func (g *Game) appendPolygon(screen *ebiten.Image, pts []geometry.Vector2D, fan []uint16, clr color.RGBA) {
	if len(g.vertices)+len(pts) > maxBatchVertices {
		g.flush(screen)
	}
	r, gr, b, a := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255, float32(clr.A)/255
	base := uint16(len(g.vertices))
	for _, p := range pts {
		g.vertices = append(g.vertices, ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: gr, ColorB: b, ColorA: a,
		})
	}
	for _, i := range fan {
		g.indices = append(g.indices, base+i)
	}
}

func (g *Game) flush(screen *ebiten.Image) {
	if len(g.indices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	screen.DrawTriangles(g.vertices, g.indices, whiteSubImage, op)
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
}

// drawStatsBar stacks the live share of every swarm in one bar, top right.
func (g *Game) drawStatsBar(screen *ebiten.Image) {
	f := g.frame
	if f == nil {
		return
	}
	total := 0
	for _, n := range f.Populations {
		total += n
	}

	barWidth := float32(200.0)
	barHeight := float32(20.0)
	screenW := float32(screen.Bounds().Dx())
	x := screenW - barWidth - 160
	y := float32(10.0)

	if total > 0 {
		offset := x
		for i, n := range f.Populations {
			w := barWidth * float32(n) / float32(total)
			vector.FillRect(screen, offset, y, w, barHeight, g.groupColor(i), true)
			offset += w
		}
	}
	vector.StrokeRect(screen, x, y, barWidth, barHeight, 1, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	line := int(y + barHeight + 5)
	for i, n := range f.Populations {
		name := fmt.Sprintf("swarm %d", i+1)
		if i < len(f.Names) && f.Names[i] != "" {
			name = f.Names[i]
		}
		target := 0
		if i < len(f.Targets) {
			target = f.Targets[i]
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %d/%d", name, n, target), int(x), line)
		line += 16
	}
	state := "off"
	if f.PredatorsEnabled {
		state = "on"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("sharks: %d/%d (%s)", f.Sharks, f.SharkTarget, state), int(x), line)
}

func (g *Game) drawBanner(screen *ebiten.Image) {
	f := g.frame
	if f == nil || !f.Empty() {
		return
	}
	msg := "All fish eaten!"
	if sum(f.Targets) == 0 {
		msg = "Empty ocean"
	}
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.WorldWidth/2)-len(msg)*3, int(g.cfg.WorldHeight/2))
}

func (g *Game) groupColor(group int) color.RGBA {
	snap, _ := g.sim.Control.Snapshot()
	if group < len(snap.Swarms) {
		return snap.Swarms[group].Color.RGBA()
	}
	return color.RGBA{R: 200, G: 200, B: 200, A: 255}
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight) }

func sum(xs []int) int {
	t := 0
	for _, x := range xs {
		t += x
	}
	return t
}
