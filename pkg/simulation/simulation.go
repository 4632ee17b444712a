package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// TicksPerSecond is the fixed simulation rate driven by the game loop.
const TicksPerSecond = 60

// Simulation wires a WorldActor into an actor system and feeds it ticks and
// parameter edits taken from a Control.
type Simulation struct {
	System  actor.ActorSystem
	Control *Control
	Frames  <-chan *Frame
	Seed    uint64

	cfg      *Config
	worldPID *actor.PID
	sent     uint64 // last Control version delivered to the world
}

// New spawns the world actor. A zero seed in cfg is replaced by a time based one.
func New(ctx context.Context, cfg *Config, system actor.ActorSystem) (*Simulation, error) {
	// 1. Create Channels for communication
	frameCh := make(chan *Frame, 10) // Buffer to avoid blocking

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	// 2. Spawn World Actor
	worldPID, err := system.Spawn(ctx, "world", NewWorldActor(frameCh, cfg, seed))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	control := NewControl(cfg.Snapshot())
	return &Simulation{
		System:   system,
		Control:  control,
		Frames:   frameCh,
		Seed:     seed,
		cfg:      cfg,
		worldPID: worldPID,
		sent:     control.Version(),
	}, nil
}

// Config is the configuration the simulation was started with.
func (s *Simulation) Config() *Config { return s.cfg }

// Tick delivers pending parameter edits, then asks for one step without waiting.
func (s *Simulation) Tick(ctx context.Context) error {
	if err := s.syncParams(ctx); err != nil {
		return err
	}
	if err := actor.Tell(ctx, s.worldPID, NewTick(time.Second/TicksPerSecond)); err != nil {
		return fmt.Errorf("failed to send tick: %w", err)
	}
	return nil
}

// Step runs n ticks and waits for them, returning the world's tick counter.
func (s *Simulation) Step(ctx context.Context, n uint64, timeout time.Duration) (uint64, error) {
	if err := s.syncParams(ctx); err != nil {
		return 0, err
	}
	resp, err := actor.Ask(ctx, s.worldPID, NewStep(n), timeout)
	if err != nil {
		return 0, fmt.Errorf("failed to step world: %w", err)
	}
	v, ok := resp.(*wrapperspb.UInt64Value)
	if !ok {
		return 0, fmt.Errorf("unexpected step reply %T", resp)
	}
	return v.GetValue(), nil
}

// Latest drains the frame channel and returns the newest frame, or prev if none arrived.
func (s *Simulation) Latest(prev *Frame) *Frame {
	for {
		select {
		case f := <-s.Frames:
			prev = f
		default:
			return prev
		}
	}
}

func (s *Simulation) syncParams(ctx context.Context) error {
	snap, version := s.Control.Snapshot()
	if version == s.sent {
		return nil
	}
	msg, err := EncodeParams(snap)
	if err != nil {
		return err
	}
	if err := actor.Tell(ctx, s.worldPID, msg); err != nil {
		return fmt.Errorf("failed to send params: %w", err)
	}
	s.sent = version
	return nil
}
