package flock

import (
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-flock-predation/pkg/geometry"
)

// minCellSize avoids tiny grids or a division by zero when every radius is small.
const minCellSize = 10.0

type gridKey struct {
	x, y int
}

// spatialGrid is a uniform hash grid over the entity view of one tick.
// It only narrows the candidate set: callers still test the exact distance, and
// candidates come back in ascending index order so results match a full scan.
type spatialGrid struct {
	cellSize float64
	cells    map[gridKey][]int
}

func newSpatialGrid() *spatialGrid {
	return &spatialGrid{cellSize: minCellSize, cells: make(map[gridKey][]int)}
}

// rebuild re-buckets every position. Slices are reset to length 0 but keep their
// capacity, so steady-state ticks allocate almost nothing.
func (g *spatialGrid) rebuild(positions []geometry.Vector2D, cellSize float64) {
	g.cellSize = math.Max(cellSize, minCellSize)
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for i, p := range positions {
		key := g.keyFor(p.X, p.Y)
		g.cells[key] = append(g.cells[key], i)
	}
}

func (g *spatialGrid) keyFor(x, y float64) gridKey {
	return gridKey{x: int(math.Floor(x / g.cellSize)), y: int(math.Floor(y / g.cellSize))}
}

// query appends to dst the indices of every entity whose cell intersects the square
// of half-side radius around (x, y), sorted ascending.
func (g *spatialGrid) query(x, y, radius float64, dst []int) []int {
	dst = dst[:0]
	minG := g.keyFor(x-radius, y-radius)
	maxG := g.keyFor(x+radius, y+radius)
	for gx := minG.x; gx <= maxG.x; gx++ {
		for gy := minG.y; gy <= maxG.y; gy++ {
			if ids, ok := g.cells[gridKey{x: gx, y: gy}]; ok {
				dst = append(dst, ids...)
			}
		}
	}
	slices.Sort(dst)
	return dst
}
