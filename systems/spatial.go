// Package systems provides the particle geometry, motion model and the
// per-tick phase systems.
package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/chemotaxis/components"
)

// Neighbor holds a nearby entity with precomputed spatial data.
// This avoids recomputing toroidal delta and distance in the phases.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float64 // Toroidal delta from query origin
	DistSq float64 // Squared distance (avoid sqrt in hot path)
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid over a
// toroidal world. It holds entity ids only; positions are read from the
// Position components, which stay authoritative.
// Cells tile the world exactly so wrapped neighbor cells line up.
type SpatialGrid struct {
	cellW  float64
	cellH  float64
	cols   int
	rows   int
	width  float64
	height float64
	cells  [][]ecs.Entity // flat grid of entity lists
}

// NewSpatialGrid creates a spatial grid covering the given world size.
// Cells are stretched so that a whole number of them spans each axis.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := max(1, int(width/cellSize))
	rows := max(1, int(height/cellSize))

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellW:  width / float64(cols),
		cellH:  height / float64(rows),
		cols:   cols,
		rows:   rows,
		width:  width,
		height: height,
		cells:  cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], e)
}

// QueryRadiusInto appends every entity within radius to dst and returns the
// updated slice. Results are never truncated: sensing and cohesion sum over
// all of them. Reuse dst across calls to avoid allocations.
// Each Neighbor includes precomputed DX, DY, DistSq.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float64, exclude ecs.Entity, posMap *ecs.Map[components.Position]) []Neighbor {
	// Determine cell range to check
	colFrom := int(math.Floor((x - radius) / g.cellW))
	colTo := int(math.Floor((x + radius) / g.cellW))
	rowFrom := int(math.Floor((y - radius) / g.cellH))
	rowTo := int(math.Floor((y + radius) / g.cellH))

	// A span wider than the grid would visit wrapped cells twice
	if colTo-colFrom+1 >= g.cols {
		colFrom, colTo = 0, g.cols-1
	}
	if rowTo-rowFrom+1 >= g.rows {
		rowFrom, rowTo = 0, g.rows-1
	}

	radiusSq := radius * radius

	for c := colFrom; c <= colTo; c++ {
		for r := rowFrom; r <= rowTo; r++ {
			// Toroidal wrap
			col := ((c % g.cols) + g.cols) % g.cols
			row := ((r % g.rows) + g.rows) % g.rows
			idx := row*g.cols + col

			for _, e := range g.cells[idx] {
				if e == exclude {
					continue
				}

				pos := posMap.Get(e)
				dx, dy := ToroidalDelta(x, y, pos.X, pos.Y, g.width, g.height)
				distSq := dx*dx + dy*dy

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq})
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := int(x / g.cellW)
	row := int(y / g.cellH)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
