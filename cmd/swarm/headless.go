package main

import (
	"context"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/stream"
	golog "github.com/tochemey/goakt/v3/log"
)

const stepTimeout = 30 * time.Second

// runHeadless steps the world without a window. With viewers attached it keeps
// real time, otherwise it runs as fast as the world allows, one second of ticks
// per batch.
func runHeadless(ctx context.Context, sim *simulation.Simulation, hub *stream.Hub, budget uint64, logger golog.Logger) error {
	batch := uint64(simulation.TicksPerSecond)
	var pace <-chan time.Time
	if hub != nil {
		batch = 1
		t := time.NewTicker(time.Second / simulation.TicksPerSecond)
		defer t.Stop()
		pace = t.C
	}

	var done uint64
	for budget == 0 || done < budget {
		if pace != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-pace:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		n := batch
		if budget > 0 {
			n = min(n, budget-done)
		}
		tick, err := sim.Step(ctx, n, stepTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		done += n

		f := sim.Latest(nil)
		if f == nil {
			continue
		}
		if hub != nil {
			hub.Publish(f)
		}
		if tick%simulation.TicksPerSecond == 0 || (budget > 0 && done == budget) {
			logger.Infof("tick %d | populations %v / %v | sharks %d/%d | eaten this tick %d",
				tick, f.Populations, f.Targets, f.Sharks, f.SharkTarget, f.Eaten)
		}
	}
	return nil
}
