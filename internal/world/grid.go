package world

import (
	"math"

	"github.com/zsurv/horde/internal/core/ecs"
)

// Grid is a cell-based broad phase over the XZ plane. Bodies are bucketed by
// the cell holding their position; OverlapSphere walks only the cells its
// query circle touches and does exact filtering afterwards.
// Accessed only from the game loop goroutine, no locks.
type Grid struct {
	cellSize float64
	cells    map[cellKey]map[ecs.EntityID]struct{}
}

type cellKey struct {
	cx int32
	cz int32
}

func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 4
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[ecs.EntityID]struct{}),
	}
}

func (g *Grid) coord(v float64) int32 {
	return int32(math.Floor(v / g.cellSize))
}

func (g *Grid) key(x, z float64) cellKey {
	return cellKey{cx: g.coord(x), cz: g.coord(z)}
}

// Add places a body into the grid.
func (g *Grid) Add(id ecs.EntityID, x, z float64) {
	k := g.key(x, z)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ecs.EntityID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove takes a body out of the grid.
func (g *Grid) Remove(id ecs.EntityID, x, z float64) {
	k := g.key(x, z)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates a body's cell when its position changes.
func (g *Grid) Move(id ecs.EntityID, oldX, oldZ, newX, newZ float64) {
	oldK := g.key(oldX, oldZ)
	newK := g.key(newX, newZ)
	if oldK == newK {
		return
	}
	g.Remove(id, oldX, oldZ)
	g.Add(id, newX, newZ)
}

// Nearby returns every body in the cells overlapping the square of half-size
// radius around (x, z). Caller does fine-grained distance filtering.
func (g *Grid) Nearby(x, z, radius float64) []ecs.EntityID {
	minX, maxX := g.coord(x-radius), g.coord(x+radius)
	minZ, maxZ := g.coord(z-radius), g.coord(z+radius)
	var result []ecs.EntityID
	for cx := minX; cx <= maxX; cx++ {
		for cz := minZ; cz <= maxZ; cz++ {
			for id := range g.cells[cellKey{cx: cx, cz: cz}] {
				result = append(result, id)
			}
		}
	}
	return result
}

// Len returns the number of non-empty cells.
func (g *Grid) Len() int { return len(g.cells) }
