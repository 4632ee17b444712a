package flock

import (
	"testing"

	"github.com/google/uuid"
)

func newTestSwarm(n int) *Swarm {
	s := &Swarm{params: testSwarm("blue", n)}
	for range n {
		s.boids = append(s.boids, &Boid{ID: uuid.New()})
	}
	return s
}

func TestSwarm_reconcile(t *testing.T) {
	spawned := 0
	spawn := func() *Boid {
		spawned++
		return &Boid{ID: uuid.New()}
	}

	t.Run("grow", func(t *testing.T) {
		s := newTestSwarm(3)
		if d := s.reconcile(10, spawn); d != 7 || s.Len() != 10 {
			t.Errorf("reconcile(10) delta=%d len=%d; want 7, 10", d, s.Len())
		}
	})

	t.Run("shrink keeps the earliest", func(t *testing.T) {
		s := newTestSwarm(5)
		first := s.Boids()
		if d := s.reconcile(2, spawn); d != -3 || s.Len() != 2 {
			t.Fatalf("reconcile(2) delta=%d len=%d; want -3, 2", d, s.Len())
		}
		for i, b := range s.Boids() {
			if b != first[i] {
				t.Errorf("position %d holds a different boid after shrink", i)
			}
		}
	})

	t.Run("unchanged", func(t *testing.T) {
		s := newTestSwarm(4)
		before := spawned
		if d := s.reconcile(4, spawn); d != 0 || spawned != before {
			t.Errorf("reconcile(4) delta=%d spawned=%d; want no change", d, spawned-before)
		}
	})

	t.Run("negative target empties", func(t *testing.T) {
		s := newTestSwarm(4)
		s.reconcile(-1, spawn)
		if s.Len() != 0 {
			t.Errorf("len = %d; want 0", s.Len())
		}
	})
}

func TestSwarm_removeEaten(t *testing.T) {
	s := newTestSwarm(5)
	all := s.Boids()
	eaten := map[*Boid]struct{}{all[1]: {}, all[3]: {}}

	if n := s.removeEaten(eaten); n != 2 {
		t.Errorf("removed %d; want 2", n)
	}
	got := s.Boids()
	want := []*Boid{all[0], all[2], all[4]}
	if len(got) != len(want) {
		t.Fatalf("len = %d; want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: order not preserved after removal", i)
		}
	}

	if n := s.removeEaten(nil); n != 0 || s.Len() != 3 {
		t.Errorf("empty removal changed the swarm: removed %d, len %d", n, s.Len())
	}
}

func TestSwarm_BoidsIsACopy(t *testing.T) {
	s := newTestSwarm(2)
	out := s.Boids()
	out[0] = nil
	if s.boids[0] == nil {
		t.Error("Boids() must return a copy of the membership")
	}
	if s.Name() != "blue" {
		t.Errorf("Name = %q; want blue", s.Name())
	}
}
