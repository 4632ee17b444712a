package simulation

import (
	"time"

	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/flock"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Frame is what the renderer and the stream viewers get after every tick.
type Frame struct {
	Tick             uint64             `json:"tick"`
	Items            []flock.Renderable `json:"items"`
	Names            []string           `json:"names"`
	Populations      []int              `json:"populations"`
	Targets          []int              `json:"targets"`
	Sharks           int                `json:"sharks"`
	SharkTarget      int                `json:"sharkTarget"`
	PredatorsEnabled bool               `json:"predatorsEnabled"`
	Eaten            int                `json:"eaten"`
}

// Empty reports whether every swarm has been wiped out.
func (f *Frame) Empty() bool {
	for _, n := range f.Populations {
		if n > 0 {
			return false
		}
	}
	return true
}

// WorldActor owns the flock.World. Ticks and parameter updates arrive as messages,
// so the world is only ever touched from the actor's own goroutine.
type WorldActor struct {
	world  *flock.World
	params flock.Snapshot
	bounds flock.Bounds
	seed   uint64
	// Communication with UI; the actor is the only sender
	frameCh chan *Frame

	// --- Benchmark Stats ---
	tickCount   int
	eatenCount  int
	lastLogTime time.Time
}

// NewWorldActor creates the world logic unit. frameCh may be nil when nobody renders.
// When the consumer lags, older frames are dropped in favour of the newest.
func NewWorldActor(frameCh chan *Frame, cfg *Config, seed uint64) *WorldActor {
	return &WorldActor{
		params:      cfg.Snapshot(),
		bounds:      cfg.Bounds(),
		seed:        seed,
		frameCh:     frameCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	logger := ctx.ActorSystem().Logger()
	w.world = flock.NewWorld(w.bounds, w.params, flock.WithSeed(w.seed), flock.WithLogger(logger))
	logger.Infof("World created: %.0fx%.0f, seed %d, %d swarms", w.bounds.Width, w.bounds.Height, w.seed, len(w.params.Swarms))
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("World started with populations %v and %d sharks", w.world.Populations(), len(w.world.Sharks()))
		w.pushFrame(flock.TickStats{Populations: w.world.Populations(), Sharks: len(w.world.Sharks())})

	// Live parameter edits, applied from the next tick on
	case *structpb.Struct:
		snap, err := DecodeParams(msg)
		if err != nil {
			ctx.Logger().Warnf("ignoring parameter update: %v", err)
			return
		}
		w.params = snap

	// The Main Simulation Step (Driven by Game Loop)
	case *durationpb.Duration:
		w.step(ctx)

	case *wrapperspb.UInt64Value:
		for range msg.GetValue() {
			w.step(ctx)
		}
		ctx.Response(wrapperspb.UInt64(w.world.TickCount()))

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World stopped after %d ticks", w.world.TickCount())
	return nil
}

func (w *WorldActor) step(ctx *actor.ReceiveContext) {
	stats := w.world.Tick(w.params)
	w.tickCount++
	w.eatenCount += stats.Eaten
	if stats.Recovered > 0 {
		ctx.Logger().Warnf("tick %d: recovered from %d non-finite forces", stats.Tick, stats.Recovered)
	}
	w.logBenchmarks(ctx, stats)
	w.pushFrame(stats)
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext, stats flock.TickStats) {
	if time.Since(w.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 TICK RATE: %d/sec | Eaten: %d | Populations: %v | Sharks: %d",
			w.tickCount, w.eatenCount, stats.Populations, stats.Sharks)
		w.tickCount = 0
		w.eatenCount = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushFrame(stats flock.TickStats) {
	if w.frameCh == nil {
		return
	}
	f := w.buildFrame(stats)
	for {
		select {
		case w.frameCh <- f:
			return
		default:
			// UI busy, drop the stalest frame
			select {
			case <-w.frameCh:
			default:
			}
		}
	}
}

func (w *WorldActor) buildFrame(stats flock.TickStats) *Frame {
	pp := w.world.Params().Predators
	f := &Frame{
		Tick:             stats.Tick,
		Items:            w.world.Renderables(),
		Populations:      stats.Populations,
		Sharks:           stats.Sharks,
		SharkTarget:      pp.Count,
		PredatorsEnabled: pp.Enabled,
		Eaten:            stats.Eaten,
	}
	for _, s := range w.world.Swarms() {
		f.Names = append(f.Names, s.Name())
		f.Targets = append(f.Targets, s.Params().Count)
	}
	return f
}
