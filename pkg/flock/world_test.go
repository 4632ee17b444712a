package flock

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/geometry"
)

var testBounds = Bounds{Width: 800, Height: 600}

func testSwarm(name string, count int) SwarmParams {
	return SwarmParams{
		Name:               name,
		Color:              Color{R: 50, G: 50, B: 255, A: 255},
		Count:              count,
		SeparationFactor:   1.8,
		AlignmentFactor:    1.0,
		CohesionFactor:     1.0,
		AvoidanceFactor:    3.0,
		VisualRange:        70,
		SeparationDistance: 25,
		AvoidanceRange:     80,
		MaxSpeed:           4,
		MaxForce:           0.2,
	}
}

func testPredators(enabled bool, count int) PredatorParams {
	return PredatorParams{
		Enabled:          enabled,
		Count:            count,
		MaxSpeed:         3.8,
		MaxForce:         0.35,
		PerceptionRadius: 170,
		StrikeRadius:     13,
	}
}

func testSnapshot() Snapshot {
	return Snapshot{
		Swarms:    []SwarmParams{testSwarm("blue", 60), testSwarm("red", 40)},
		Predators: testPredators(true, 2),
	}
}

// place replaces the membership of one group with boids at the given points, at rest.
func place(w *World, group int, pts ...geometry.Vector2D) []*Boid {
	sw := w.swarms[group]
	sw.boids = sw.boids[:0]
	for _, p := range pts {
		sw.boids = append(sw.boids, &Boid{ID: uuid.New(), Group: group, Pos: p})
	}
	sw.params.Count = len(pts)
	return sw.Boids()
}

func TestNewWorld_Populates(t *testing.T) {
	w := NewWorld(testBounds, testSnapshot(), WithSeed(1))

	if got := w.Populations(); len(got) != 2 || got[0] != 60 || got[1] != 40 {
		t.Errorf("Expected populations [60 40], got %v", got)
	}
	if got := len(w.Sharks()); got != 2 {
		t.Errorf("Expected 2 sharks, got %d", got)
	}
	for _, sw := range w.Swarms() {
		for _, b := range sw.Boids() {
			if b.Group != sw.ID {
				t.Fatalf("boid %s has group %d, lives in swarm %d", b.ID, b.Group, sw.ID)
			}
			if b.Vel.Len() > sw.Params().MaxSpeed+geometry.Epsilon {
				t.Fatalf("boid %s spawned faster than max speed: %v", b.ID, b.Vel.Len())
			}
		}
	}
}

func TestWorld_SpeedAndBoundsInvariants(t *testing.T) {
	snap := testSnapshot()
	w := NewWorld(testBounds, snap, WithSeed(7))

	for tick := 0; tick < 200; tick++ {
		w.Tick(snap)
		for _, sw := range w.swarms {
			for _, b := range sw.boids {
				if s := b.Vel.Len(); s > sw.params.MaxSpeed+1e-9 {
					t.Fatalf("tick %d: boid speed %v exceeds max %v", tick, s, sw.params.MaxSpeed)
				}
				if b.Pos.X < 0 || b.Pos.X >= testBounds.Width || b.Pos.Y < 0 || b.Pos.Y >= testBounds.Height {
					t.Fatalf("tick %d: boid left the torus at %v", tick, b.Pos)
				}
			}
		}
		for _, s := range w.sharks {
			if v := s.Vel.Len(); v > snap.Predators.MaxSpeed+1e-9 {
				t.Fatalf("tick %d: shark speed %v exceeds max", tick, v)
			}
		}
	}
}

func TestWorld_Determinism(t *testing.T) {
	snap := testSnapshot()
	a := NewWorld(testBounds, snap, WithSeed(42))
	b := NewWorld(testBounds, snap, WithSeed(42))

	for tick := 0; tick < 100; tick++ {
		sa, sb := a.Tick(snap), b.Tick(snap)
		if sa.Eaten != sb.Eaten {
			t.Fatalf("tick %d: eaten differs %d vs %d", tick, sa.Eaten, sb.Eaten)
		}
		ra, rb := a.Renderables(), b.Renderables()
		if len(ra) != len(rb) {
			t.Fatalf("tick %d: renderable count differs %d vs %d", tick, len(ra), len(rb))
		}
		for i := range ra {
			if ra[i] != rb[i] {
				t.Fatalf("tick %d: entity %d differs: %+v vs %+v", tick, i, ra[i], rb[i])
			}
		}
	}
}

func TestWorld_DifferentSeedsDiverge(t *testing.T) {
	snap := testSnapshot()
	a := NewWorld(testBounds, snap, WithSeed(1))
	b := NewWorld(testBounds, snap, WithSeed(2))
	if a.swarms[0].boids[0].Pos == b.swarms[0].boids[0].Pos {
		t.Error("Expected different seeds to place boids differently")
	}
}

func TestWorld_PopulationConvergence(t *testing.T) {
	snap := testSnapshot()
	snap.Predators.Enabled = false
	w := NewWorld(testBounds, snap, WithSeed(3))

	snap.Swarms[0].Count = 90
	stats := w.Tick(snap)
	if got := w.Population(0); got != 90 {
		t.Fatalf("Expected group 0 to grow to 90 in one tick, got %d", got)
	}
	if stats.Spawned != 30 {
		t.Errorf("Expected 30 spawned, got %d", stats.Spawned)
	}

	before := w.swarms[0].Boids()
	snap.Swarms[0].Count = 4
	stats = w.Tick(snap)
	after := w.swarms[0].Boids()
	if len(after) != 4 {
		t.Fatalf("Expected group 0 to shrink to 4 in one tick, got %d", len(after))
	}
	if stats.Dropped != 86 {
		t.Errorf("Expected 86 dropped, got %d", stats.Dropped)
	}
	// truncation from the end: the earliest boids survive, in order
	for i, b := range after {
		if b.ID != before[i].ID {
			t.Errorf("survivor %d is %s; want %s", i, b.ID, before[i].ID)
		}
	}

	snap.Swarms[0].Count = -5
	w.Tick(snap)
	if got := w.Population(0); got != 0 {
		t.Errorf("Expected negative target to clamp to 0, got %d", got)
	}
}

func TestWorld_SharkCountReconciles(t *testing.T) {
	snap := testSnapshot()
	w := NewWorld(testBounds, snap, WithSeed(5))
	first := w.Sharks()[0].ID

	snap.Predators.Count = 5
	if stats := w.Tick(snap); stats.Sharks != 5 {
		t.Fatalf("Expected 5 sharks, got %d", stats.Sharks)
	}
	snap.Predators.Count = 1
	w.Tick(snap)
	sharks := w.Sharks()
	if len(sharks) != 1 || sharks[0].ID != first {
		t.Errorf("Expected only the first shark to remain, got %d sharks", len(sharks))
	}
}

func TestWorld_Consumption(t *testing.T) {
	snap := Snapshot{
		Swarms:    []SwarmParams{testSwarm("blue", 1)},
		Predators: testPredators(true, 1),
	}
	w := NewWorld(testBounds, snap, WithSeed(9))
	victim := place(w, 0, geometry.Vector2D{X: 200, Y: 200})[0]
	shark := w.sharks[0]
	shark.Pos = geometry.Vector2D{X: 205, Y: 200}
	shark.Vel = geometry.Zero

	if w.swarms[0].boids[0] != victim {
		t.Fatal("victim should be present before the tick")
	}

	stats := w.Tick(snap)

	if stats.Eaten != 1 {
		t.Errorf("Expected 1 boid eaten, got %d", stats.Eaten)
	}
	for _, b := range w.swarms[0].boids {
		if b == victim || b.ID == victim.ID {
			t.Fatal("Expected the victim to be removed from its swarm")
		}
	}
	// reconciliation replaces it with a fresh boid
	if got := w.Population(0); got != 1 {
		t.Errorf("Expected population to be replenished to 1, got %d", got)
	}
}

func TestWorld_ConsumptionWhileMovingApart(t *testing.T) {
	snap := Snapshot{
		Swarms:    []SwarmParams{testSwarm("blue", 1)},
		Predators: testPredators(true, 1),
	}
	w := NewWorld(testBounds, snap, WithSeed(9))
	victim := place(w, 0, geometry.Vector2D{X: 200, Y: 200})[0]
	victim.Vel = geometry.Vector2D{X: -4}
	shark := w.sharks[0]
	shark.Pos = geometry.Vector2D{X: 210, Y: 200}
	shark.Vel = geometry.Vector2D{X: 3.8}

	stats := w.Tick(snap)

	if stats.Eaten != 1 {
		t.Errorf("Expected the boid inside the strike radius at tick start to be eaten, got %d eaten", stats.Eaten)
	}
	for _, b := range w.swarms[0].boids {
		if b.ID == victim.ID {
			t.Fatal("Expected the victim to be removed even though it moved out of reach")
		}
	}
}

func TestWorld_SharkEatsSeveralInOneTick(t *testing.T) {
	snap := Snapshot{
		Swarms:    []SwarmParams{testSwarm("blue", 3), testSwarm("red", 1)},
		Predators: testPredators(true, 1),
	}
	snap.Predators.StrikeRadius = 30
	w := NewWorld(testBounds, snap, WithSeed(11))
	place(w, 0,
		geometry.Vector2D{X: 300, Y: 300},
		geometry.Vector2D{X: 305, Y: 300},
		geometry.Vector2D{X: 500, Y: 500},
	)
	place(w, 1, geometry.Vector2D{X: 300, Y: 305})
	w.sharks[0].Pos = geometry.Vector2D{X: 302, Y: 302}
	w.sharks[0].Vel = geometry.Zero

	stats := w.Tick(snap)
	if stats.Eaten != 3 {
		t.Errorf("Expected 3 boids eaten across two swarms, got %d", stats.Eaten)
	}
}

func TestWorld_DisabledPredatorsAreInert(t *testing.T) {
	snap := Snapshot{
		Swarms:    []SwarmParams{testSwarm("blue", 1)},
		Predators: testPredators(false, 1),
	}
	w := NewWorld(testBounds, snap, WithSeed(13))
	victim := place(w, 0, geometry.Vector2D{X: 200, Y: 200})[0]
	victim.Vel = geometry.Vector2D{X: 1, Y: 0}
	shark := w.sharks[0]
	shark.Pos = geometry.Vector2D{X: 202, Y: 200}
	sharkPos := shark.Pos

	var rendered []Renderable
	w.SetRenderer(func(items []Renderable) { rendered = items })
	stats := w.Tick(snap)

	if stats.Eaten != 0 || w.swarms[0].boids[0] != victim {
		t.Error("Expected no consumption while predators are disabled")
	}
	if shark.Pos != sharkPos {
		t.Errorf("Expected a frozen shark, moved to %v", shark.Pos)
	}
	// no avoidance either: the boid keeps a straight line
	if !victim.Pos.Eq(geometry.Vector2D{X: 201, Y: 200}) {
		t.Errorf("Expected the boid to ignore the disabled shark, got %v", victim.Pos)
	}
	for _, r := range rendered {
		if r.Kind == KindShark {
			t.Error("Expected disabled sharks not to be rendered")
		}
	}
}

func TestWorld_NoNeighbourMovesStraight(t *testing.T) {
	snap := Snapshot{
		Swarms:    []SwarmParams{testSwarm("blue", 1), testSwarm("red", 1)},
		Predators: testPredators(false, 0),
	}
	w := NewWorld(testBounds, snap, WithSeed(17))
	lone := place(w, 0, geometry.Vector2D{X: 100, Y: 100})[0]
	lone.Vel = geometry.Vector2D{X: 1, Y: 0.5}
	place(w, 1, geometry.Vector2D{X: 600, Y: 400})

	for i := 1; i <= 3; i++ {
		w.Tick(snap)
		want := geometry.Vector2D{X: 100 + float64(i), Y: 100 + 0.5*float64(i)}
		if !lone.Pos.Eq(want) || !lone.Vel.Eq(geometry.Vector2D{X: 1, Y: 0.5}) {
			t.Fatalf("tick %d: pos %v vel %v; want straight line through %v", i, lone.Pos, lone.Vel, want)
		}
	}
}

func TestWorld_CoincidentBoidsSeparate(t *testing.T) {
	snap := Snapshot{
		Swarms:    []SwarmParams{testSwarm("blue", 3)},
		Predators: testPredators(false, 0),
	}
	w := NewWorld(testBounds, snap, WithSeed(19))
	same := geometry.Vector2D{X: 400, Y: 300}
	boids := place(w, 0, same, same, same)

	w.Tick(snap)

	for i := 0; i < len(boids); i++ {
		if !boids[i].Pos.IsFinite() {
			t.Fatalf("boid %d has non-finite position %v", i, boids[i].Pos)
		}
		for j := i + 1; j < len(boids); j++ {
			if boids[i].Pos == boids[j].Pos {
				t.Errorf("boids %d and %d still overlap at %v", i, j, boids[i].Pos)
			}
		}
	}
}

func TestWorld_RenderCallback(t *testing.T) {
	snap := testSnapshot()
	var calls int
	var last []Renderable
	w := NewWorld(testBounds, snap, WithSeed(23), WithRenderer(func(items []Renderable) {
		calls++
		last = items
	}))

	stats := w.Tick(snap)

	if calls != 1 {
		t.Fatalf("Expected one render call per tick, got %d", calls)
	}
	boids, sharks := 0, 0
	for _, r := range last {
		if math.Abs(r.Heading.Len()-1) > 1e-6 {
			t.Errorf("heading %v is not a unit vector", r.Heading)
		}
		switch r.Kind {
		case KindBoid:
			boids++
		case KindShark:
			sharks++
		}
	}
	if want := stats.Populations[0] + stats.Populations[1]; boids != want {
		t.Errorf("Expected %d boid renderables, got %d", want, boids)
	}
	if sharks != 2 {
		t.Errorf("Expected 2 shark renderables, got %d", sharks)
	}
}

func TestWorld_SnapshotChangesSwarmSet(t *testing.T) {
	snap := testSnapshot()
	w := NewWorld(testBounds, snap, WithSeed(29))

	snap.Swarms = append(snap.Swarms, testSwarm("green", 10))
	w.Tick(snap)
	if got := w.Populations(); len(got) != 3 || got[2] != 10 {
		t.Fatalf("Expected a third swarm of 10, got %v", got)
	}

	snap.Swarms = snap.Swarms[:1]
	w.Tick(snap)
	if got := w.Populations(); len(got) != 1 {
		t.Fatalf("Expected a single swarm, got %v", got)
	}
	if w.Population(5) != 0 {
		t.Error("Expected unknown group population to be 0")
	}
}

func TestWorld_ParamsAreReadOncePerTick(t *testing.T) {
	snap := testSnapshot()
	w := NewWorld(testBounds, snap, WithSeed(31))
	w.SetRenderer(func([]Renderable) {
		// a control layer mutating its copy mid tick must not leak in
		snap.Swarms[0].MaxSpeed = 100
	})
	w.Tick(snap)
	if got := w.Params().Swarms[0].MaxSpeed; got != 4 {
		t.Errorf("Expected applied max speed 4, got %v", got)
	}
}

func BenchmarkWorld_Tick(b *testing.B) {
	snap := Snapshot{
		Swarms:    []SwarmParams{testSwarm("blue", 250), testSwarm("red", 250)},
		Predators: testPredators(true, 3),
	}
	snap.Predators.StrikeRadius = 0
	w := NewWorld(Bounds{Width: 1280, Height: 720}, snap, WithSeed(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Tick(snap)
	}
}
