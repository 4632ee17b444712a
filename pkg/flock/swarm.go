package flock

// Swarm is a named partition of the boid population sharing one color and one
// parameter set. Every member reads the same params, so a change applied at the start
// of a tick affects all of them without recreating anything.
type Swarm struct {
	ID     int
	boids  []*Boid
	params SwarmParams
}

// Name is the display name taken from the latest params.
func (s *Swarm) Name() string { return s.params.Name }

// Color is the tint taken from the latest params.
func (s *Swarm) Color() Color { return s.params.Color }

// Params returns the parameter set in effect for the current tick.
func (s *Swarm) Params() SwarmParams { return s.params }

// Len is the live population.
func (s *Swarm) Len() int { return len(s.boids) }

// Boids returns a copy of the membership; the pointers are shared.
func (s *Swarm) Boids() []*Boid {
	return append([]*Boid(nil), s.boids...)
}

// reconcile grows or shrinks the membership to exactly target in one call.
// Growth spawns new boids at the end; shrinking truncates from the end, so the
// earliest boids survive. It returns the signed change.
func (s *Swarm) reconcile(target int, spawn func() *Boid) int {
	if target < 0 {
		target = 0
	}
	delta := target - len(s.boids)
	switch {
	case delta > 0:
		for range delta {
			s.boids = append(s.boids, spawn())
		}
	case delta < 0:
		clear(s.boids[target:])
		s.boids = s.boids[:target]
	}
	return delta
}

// removeEaten filters out every boid present in eaten, keeping order.
// It returns how many were removed.
func (s *Swarm) removeEaten(eaten map[*Boid]struct{}) int {
	if len(eaten) == 0 {
		return 0
	}
	kept := s.boids[:0]
	for _, b := range s.boids {
		if _, gone := eaten[b]; !gone {
			kept = append(kept, b)
		}
	}
	removed := len(s.boids) - len(kept)
	clear(s.boids[len(kept):])
	s.boids = kept
	return removed
}
