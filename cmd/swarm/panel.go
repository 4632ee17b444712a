package main

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/shape"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/ui"
	golog "github.com/tochemey/goakt/v3/log"
)

// swarmSlider binds one numeric swarm parameter to a slider.
type swarmSlider struct {
	label          string
	min, max, step float64
	field          func(p *flock.SwarmParams) *float64
}

var swarmSliders = []swarmSlider{
	{"Separation", 0, 5, 0.1, func(p *flock.SwarmParams) *float64 { return &p.SeparationFactor }},
	{"Alignment", 0, 5, 0.1, func(p *flock.SwarmParams) *float64 { return &p.AlignmentFactor }},
	{"Cohesion", 0, 5, 0.1, func(p *flock.SwarmParams) *float64 { return &p.CohesionFactor }},
	{"Visual Range", 10, 200, 1, func(p *flock.SwarmParams) *float64 { return &p.VisualRange }},
	{"Min Distance", 5, 100, 1, func(p *flock.SwarmParams) *float64 { return &p.SeparationDistance }},
	{"Avoidance", 0, 10, 0.1, func(p *flock.SwarmParams) *float64 { return &p.AvoidanceFactor }},
	{"Avoid Range", 10, 250, 1, func(p *flock.SwarmParams) *float64 { return &p.AvoidanceRange }},
	{"Max Speed", 1, 10, 0.1, func(p *flock.SwarmParams) *float64 { return &p.MaxSpeed }},
	{"Max Force", 0.01, 1, 0.01, func(p *flock.SwarmParams) *float64 { return &p.MaxForce }},
}

type shapeSlider struct {
	label          string
	min, max, step float64
	field          func(f *shape.Fish) *float64
}

var shapeSliders = []shapeSlider{
	{"Tip Length", 0.5, 4, 0.1, func(f *shape.Fish) *float64 { return &f.TipFactor }},
	{"Width Pos", -0.5, 1, 0.05, func(f *shape.Fish) *float64 { return &f.MidOffsetFactor }},
	{"Max Width", 0.1, 1.5, 0.05, func(f *shape.Fish) *float64 { return &f.WidthFactor }},
	{"Tail Pos", 0.1, 2, 0.05, func(f *shape.Fish) *float64 { return &f.TailOffsetFactor }},
	{"Tail Width", 0, 1, 0.05, func(f *shape.Fish) *float64 { return &f.TailWidthFactor }},
}

// buildPanel fills the panel from the current Control snapshot. Every widget
// writes through the Control; refreshers pull values back when something else
// (a stream viewer, the keyboard) changed them.
func (g *Game) buildPanel() {
	snap, version := g.sim.Control.Snapshot()
	control := g.sim.Control
	p := g.panel
	p.Clear()
	g.refreshers = g.refreshers[:0]
	g.shapeRefreshers = g.shapeRefreshers[:0]
	g.panelSwarms = len(snap.Swarms)
	g.panelVersion = version
	for len(g.shapes) < len(snap.Swarms) {
		g.shapes = append(g.shapes, shape.DefaultFish)
	}

	p.AddSection("Sharks")
	enabled := p.AddCheckbox("Sharks enabled (P)", snap.Predators.Enabled, control.SetPredatorsEnabled)
	sharkCount := p.AddSlider("Sharks", 0, 10, 1, float64(snap.Predators.Count), func(v float64) {
		control.UpdatePredators(func(pp *flock.PredatorParams) { pp.Count = int(v) })
	})
	sharkCount.Note = func() string { return fmt.Sprintf("now %d", g.frameSharks()) }
	sharkSpeed := p.AddSlider("Shark Speed", 1, 15, 0.1, snap.Predators.MaxSpeed, func(v float64) {
		control.UpdatePredators(func(pp *flock.PredatorParams) { pp.MaxSpeed = v })
	})
	sharkForce := p.AddSlider("Shark Force", 0.01, 1.5, 0.01, snap.Predators.MaxForce, func(v float64) {
		control.UpdatePredators(func(pp *flock.PredatorParams) { pp.MaxForce = v })
	})
	perception := p.AddSlider("Shark Sight", 50, 400, 1, snap.Predators.PerceptionRadius, func(v float64) {
		control.UpdatePredators(func(pp *flock.PredatorParams) { pp.PerceptionRadius = v })
	})
	strike := p.AddSlider("Strike Radius", 5, 50, 0.5, snap.Predators.StrikeRadius, func(v float64) {
		control.UpdatePredators(func(pp *flock.PredatorParams) { pp.StrikeRadius = v })
	})
	g.refreshers = append(g.refreshers, func(s flock.Snapshot) {
		enabled.Value = s.Predators.Enabled
		sharkCount.SetValue(float64(s.Predators.Count))
		sharkSpeed.SetValue(s.Predators.MaxSpeed)
		sharkForce.SetValue(s.Predators.MaxForce)
		perception.SetValue(s.Predators.PerceptionRadius)
		strike.SetValue(s.Predators.StrikeRadius)
	})

	for i, sw := range snap.Swarms {
		g.addSwarmSection(i, sw)
	}

	p.AddSection("")
	p.AddButton("Restore startup config", func() {
		g.shapes = restoreStartup(control, g.sim.Config())
	})
}

func (g *Game) addSwarmSection(group int, sw flock.SwarmParams) {
	control := g.sim.Control
	p := g.panel
	p.AddSection(sw.Name)

	count := p.AddSlider("Count", 0, 250, 1, float64(sw.Count), bindCount(control, group, g.logger))
	count.Note = func() string { return fmt.Sprintf("now %d", g.framePopulation(group)) }

	sliders := make([]*ui.Slider, len(swarmSliders))
	for k, def := range swarmSliders {
		sliders[k] = p.AddSlider(def.label, def.min, def.max, def.step, *def.field(&sw),
			bindSwarmField(control, group, def.field, g.logger))
	}
	for _, def := range shapeSliders {
		s := p.AddSlider(def.label, def.min, def.max, def.step, *def.field(&g.shapes[group]), func(v float64) {
			*def.field(&g.shapes[group]) = v
		})
		g.shapeRefreshers = append(g.shapeRefreshers, func() { s.SetValue(*def.field(&g.shapes[group])) })
	}

	g.refreshers = append(g.refreshers, func(s flock.Snapshot) {
		if group >= len(s.Swarms) {
			return
		}
		cur := s.Swarms[group]
		count.SetValue(float64(cur.Count))
		for k, def := range swarmSliders {
			sliders[k].SetValue(*def.field(&cur))
		}
	})
}

// syncPanel rebuilds the panel when the number of swarms changed and otherwise
// pulls outside edits into the widgets.
func (g *Game) syncPanel() {
	snap, version := g.sim.Control.Snapshot()
	if version == g.panelVersion {
		return
	}
	if len(snap.Swarms) != g.panelSwarms {
		g.buildPanel()
		return
	}
	g.panelVersion = version
	for _, refresh := range g.refreshers {
		refresh(snap)
	}
	for _, refresh := range g.shapeRefreshers {
		refresh()
	}
}

// restoreStartup puts back the parameters the program was started with and
// returns the matching fish shapes.
func restoreStartup(control *simulation.Control, cfg *simulation.Config) []shape.Fish {
	control.Set(cfg.Snapshot())
	return cfg.Shapes()
}

// bindCount writes a count slider into its swarm. A swarm removed by a viewer
// while the panel still shows it only gets logged; the next sync rebuilds the panel.
func bindCount(control *simulation.Control, group int, logger golog.Logger) func(float64) {
	return func(v float64) {
		if err := control.SetCount(group, int(v)); err != nil {
			logger.Debugf("count slider: %v", err)
		}
	}
}

func bindSwarmField(control *simulation.Control, group int, field func(*flock.SwarmParams) *float64, logger golog.Logger) func(float64) {
	return func(v float64) {
		if err := control.UpdateSwarm(group, func(sp *flock.SwarmParams) { *field(sp) = v }); err != nil {
			logger.Debugf("swarm slider: %v", err)
		}
	}
}

func (g *Game) framePopulation(group int) int {
	if g.frame == nil || group >= len(g.frame.Populations) {
		return 0
	}
	return g.frame.Populations[group]
}

func (g *Game) frameSharks() int {
	if g.frame == nil {
		return 0
	}
	return g.frame.Sharks
}
