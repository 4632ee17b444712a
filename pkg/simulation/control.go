package simulation

import (
	"fmt"
	"sync"

	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/flock"
)

// Control is the mutable parameter store shared by every input surface (window keys,
// stream viewers). The simulation never reads it directly: the driver copies a
// snapshot once per tick and hands it to the world actor.
type Control struct {
	mu      sync.RWMutex
	snap    flock.Snapshot
	version uint64
}

func NewControl(initial flock.Snapshot) *Control {
	return &Control{snap: initial.Clone(), version: 1}
}

// Snapshot returns a private copy of the current parameters and their version.
func (c *Control) Snapshot() (flock.Snapshot, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Clone(), c.version
}

// Version changes every time a parameter is written.
func (c *Control) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Set replaces every parameter at once.
func (c *Control) Set(snap flock.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap.Clone()
	c.version++
}

// UpdateSwarm edits one swarm in place.
func (c *Control) UpdateSwarm(group int, fn func(*flock.SwarmParams)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if group < 0 || group >= len(c.snap.Swarms) {
		return fmt.Errorf("no swarm %d (have %d)", group, len(c.snap.Swarms))
	}
	fn(&c.snap.Swarms[group])
	c.version++
	return nil
}

// UpdatePredators edits the predator parameters in place.
func (c *Control) UpdatePredators(fn func(*flock.PredatorParams)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.snap.Predators)
	c.version++
}

// SetCount sets the target population of one swarm.
func (c *Control) SetCount(group, count int) error {
	return c.UpdateSwarm(group, func(p *flock.SwarmParams) { p.Count = count })
}

// SetPredatorsEnabled turns the sharks on or off.
func (c *Control) SetPredatorsEnabled(enabled bool) {
	c.UpdatePredators(func(p *flock.PredatorParams) { p.Enabled = enabled })
}

// TogglePredators flips the predator switch and returns the new state.
func (c *Control) TogglePredators() bool {
	var on bool
	c.UpdatePredators(func(p *flock.PredatorParams) {
		p.Enabled = !p.Enabled
		on = p.Enabled
	})
	return on
}
