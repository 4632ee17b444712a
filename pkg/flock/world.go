package flock

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/geometry"
	"github.com/tochemey/goakt/v3/log"
)

// Kind tells renderers which shape to draw.
type Kind int

const (
	KindBoid Kind = iota
	KindShark
)

func (k Kind) String() string {
	if k == KindShark {
		return "shark"
	}
	return "boid"
}

// MarshalText makes stream viewers see "boid" or "shark".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "boid":
		*k = KindBoid
	case "shark":
		*k = KindShark
	default:
		return fmt.Errorf("unknown kind %q", b)
	}
	return nil
}

// SharkColor is the tint reported for predators.
var SharkColor = color.RGBA{R: 50, G: 50, B: 50, A: 255}

// idNamespace seeds the deterministic name-based ids of every entity.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("github.com/lao-tseu-is-alive/go-flock-predation"))

// Bounds is the size of the toroidal world in pixels.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Renderable is what the rendering layer receives for every entity after a tick.
type Renderable struct {
	ID       uuid.UUID         `json:"id"`
	Kind     Kind              `json:"kind"`
	Group    int               `json:"group"` // -1 for sharks
	Color    color.RGBA        `json:"color"`
	Position geometry.Vector2D `json:"position"`
	Heading  geometry.Vector2D `json:"heading"` // unit vector
	Speed    float64           `json:"speed"`
}

// RenderFunc receives the renderable set once per tick. The slice is owned by the callee.
type RenderFunc func(items []Renderable)

// TickStats summarizes what happened during one tick.
type TickStats struct {
	Tick        uint64
	Eaten       int
	Spawned     int
	Dropped     int
	Hunting     int // sharks that had a target
	Recovered   int // non-finite accumulators discarded
	Populations []int
	Sharks      int
}

// World is the tick driver. It owns every swarm and shark and is not safe for
// concurrent use: one goroutine (or one actor) drives it.
type World struct {
	bounds Bounds
	seed   uint64
	rng    *rand.Rand
	serial uint64
	tick   uint64

	swarms []*Swarm
	sharks []*Shark
	params Snapshot

	grid       *spatialGrid
	view       []entity
	positions  []geometry.Vector2D
	candidates []int

	render RenderFunc
	logger log.Logger
}

// Option configures a World.
type Option func(*World)

// WithSeed fixes the random source so runs are reproducible.
func WithSeed(seed uint64) Option {
	return func(w *World) { w.seed = seed }
}

// WithRenderer installs the per-tick render callback.
func WithRenderer(fn RenderFunc) Option {
	return func(w *World) { w.render = fn }
}

// WithLogger sets the logger used for recovery diagnostics.
func WithLogger(l log.Logger) Option {
	return func(w *World) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorld builds a world and populates it to the counts of the initial snapshot.
func NewWorld(bounds Bounds, initial Snapshot, opts ...Option) *World {
	w := &World{
		bounds: bounds,
		grid:   newSpatialGrid(),
		logger: log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.rng = rand.New(rand.NewPCG(w.seed, w.seed^0x9e3779b97f4a7c15))
	w.applyParams(initial.Sanitize())
	w.reconcile(&TickStats{})
	return w
}

// SetRenderer replaces the render callback.
func (w *World) SetRenderer(fn RenderFunc) { w.render = fn }

// SetLogger replaces the logger.
func (w *World) SetLogger(l log.Logger) {
	if l != nil {
		w.logger = l
	}
}

// Bounds returns the world size.
func (w *World) Bounds() Bounds { return w.bounds }

// SetBounds resizes the world. Entities are wrapped into the new area on the next tick.
func (w *World) SetBounds(b Bounds) { w.bounds = b }

// Params returns the sanitized snapshot applied by the last tick.
func (w *World) Params() Snapshot { return w.params.Clone() }

// TickCount is the number of ticks run so far.
func (w *World) TickCount() uint64 { return w.tick }

// Swarms returns the groups in id order.
func (w *World) Swarms() []*Swarm { return append([]*Swarm(nil), w.swarms...) }

// Sharks returns the predators.
func (w *World) Sharks() []*Shark { return append([]*Shark(nil), w.sharks...) }

// Population is the live count of one group, 0 for an unknown group.
func (w *World) Population(group int) int {
	if group < 0 || group >= len(w.swarms) {
		return 0
	}
	return w.swarms[group].Len()
}

// Populations returns the live count of every group in id order.
func (w *World) Populations() []int {
	out := make([]int, len(w.swarms))
	for i, s := range w.swarms {
		out[i] = s.Len()
	}
	return out
}

// Tick advances the simulation by one step using snap as the parameter set for the
// whole step. Phases run strictly in order and each works on the boid list captured
// at its start; nothing inserts or removes boids until the removal phase.
func (w *World) Tick(snap Snapshot) TickStats {
	w.tick++
	stats := TickStats{Tick: w.tick}
	w.applyParams(snap.Sanitize())

	boids := w.allBoids()
	w.captureView(boids)

	// strikes use the positions the tick started from
	pp := w.params.Predators
	eaten := make(map[*Boid]struct{})
	if pp.Enabled {
		for _, s := range w.sharks {
			s.strike(boids, pp.StrikeRadius, eaten)
		}
	}

	// forces read only the captured view; no boid moves before all have steered
	for i, b := range boids {
		p := w.swarms[b.Group].params
		r := math.Max(p.VisualRange, math.Max(p.SeparationDistance, p.AvoidanceRange))
		w.candidates = w.grid.query(b.Pos.X, b.Pos.Y, r, w.candidates)
		b.flock(i, w.view, w.candidates, p, w.rng)
	}
	for _, b := range boids {
		if !b.integrate(w.swarms[b.Group].params, w.rng) {
			stats.Recovered++
			w.logger.Debugf("tick %d: discarded non-finite force on boid %s", w.tick, b.ID)
		}
		b.wrap(w.bounds)
	}

	if pp.Enabled {
		for _, s := range w.sharks {
			if s.hunt(boids, pp, w.rng) {
				stats.Hunting++
			}
			s.steerFromEdges(w.bounds, pp)
			if !s.integrate(w.bounds, pp) {
				stats.Recovered++
				w.logger.Debugf("tick %d: discarded non-finite force on shark %s", w.tick, s.ID)
			}
		}

		for _, sw := range w.swarms {
			stats.Eaten += sw.removeEaten(eaten)
		}
	}

	w.reconcile(&stats)
	stats.Populations = w.Populations()
	stats.Sharks = len(w.sharks)

	if w.render != nil {
		w.render(w.Renderables())
	}
	return stats
}

// Renderables builds the render set: boids in group order, then visible sharks.
func (w *World) Renderables() []Renderable {
	n := len(w.sharks)
	for _, s := range w.swarms {
		n += s.Len()
	}
	out := make([]Renderable, 0, n)
	fallback := geometry.Vector2D{X: 1, Y: 0}
	for _, s := range w.swarms {
		c := s.params.Color.RGBA()
		for _, b := range s.boids {
			out = append(out, Renderable{
				ID:       b.ID,
				Kind:     KindBoid,
				Group:    s.ID,
				Color:    c,
				Position: b.Pos,
				Heading:  b.Vel.Heading(fallback),
				Speed:    b.Vel.Len(),
			})
		}
	}
	if w.params.Predators.Enabled {
		for _, s := range w.sharks {
			out = append(out, Renderable{
				ID:       s.ID,
				Kind:     KindShark,
				Group:    sharkGroup,
				Color:    SharkColor,
				Position: s.Pos,
				Heading:  s.Vel.Heading(fallback),
				Speed:    s.Vel.Len(),
			})
		}
	}
	return out
}

// applyParams installs a sanitized snapshot. Groups are matched by index: extra
// swarms create groups, missing ones drop theirs.
func (w *World) applyParams(snap Snapshot) {
	w.params = snap
	for i, p := range snap.Swarms {
		if i < len(w.swarms) {
			w.swarms[i].params = p
			continue
		}
		w.swarms = append(w.swarms, &Swarm{ID: i, params: p})
	}
	if len(w.swarms) > len(snap.Swarms) {
		clear(w.swarms[len(snap.Swarms):])
		w.swarms = w.swarms[:len(snap.Swarms)]
	}
}

func (w *World) allBoids() []*Boid {
	n := 0
	for _, s := range w.swarms {
		n += s.Len()
	}
	out := make([]*Boid, 0, n)
	for _, s := range w.swarms {
		out = append(out, s.boids...)
	}
	return out
}

// captureView freezes positions and velocities for the force pass and indexes them.
// Sharks are part of the view only when enabled.
func (w *World) captureView(boids []*Boid) {
	w.view = w.view[:0]
	w.positions = w.positions[:0]
	for _, b := range boids {
		w.view = append(w.view, entity{pos: b.Pos, vel: b.Vel, group: b.Group})
		w.positions = append(w.positions, b.Pos)
	}
	if w.params.Predators.Enabled {
		for _, s := range w.sharks {
			w.view = append(w.view, entity{pos: s.Pos, vel: s.Vel, group: sharkGroup})
			w.positions = append(w.positions, s.Pos)
		}
	}
	w.grid.rebuild(w.positions, w.params.maxRange())
}

// reconcile brings every group, then the shark list, to its target count.
func (w *World) reconcile(stats *TickStats) {
	for _, sw := range w.swarms {
		delta := sw.reconcile(sw.params.Count, func() *Boid {
			return newBoid(w.nextID("boid"), sw.ID, w.bounds, sw.params, w.rng)
		})
		w.countDelta(stats, delta)
	}

	target := w.params.Predators.Count
	delta := target - len(w.sharks)
	switch {
	case delta > 0:
		for range delta {
			w.sharks = append(w.sharks, newShark(w.nextID("shark"), w.bounds, w.rng))
		}
	case delta < 0:
		clear(w.sharks[target:])
		w.sharks = w.sharks[:target]
	}
}

func (w *World) countDelta(stats *TickStats, delta int) {
	if delta > 0 {
		stats.Spawned += delta
	} else {
		stats.Dropped -= delta
	}
}

// nextID derives a stable id from the seed and a running serial, so seeded runs
// also reproduce identities.
func (w *World) nextID(kind string) uuid.UUID {
	w.serial++
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], w.seed)
	binary.BigEndian.PutUint64(buf[8:], w.serial)
	return uuid.NewSHA1(idNamespace, append([]byte(kind+"/"), buf[:]...))
}
