package mosaic

import (
	"math/rand/v2"
	"slices"
)

// GridCell indexes one tile-sized slot of the output grid.
type GridCell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Plan records the outcome of one run: the order in which cells were
// visited and the library index of the tile chosen for every cell.
type Plan struct {
	Columns int        `json:"columns"`
	Rows    int        `json:"rows"`
	Order   []GridCell `json:"order"`

	// Tiles holds the chosen tile index per cell, row-major
	// (Tiles[y*Columns+x]). Unassigned cells hold -1.
	Tiles []int `json:"tiles"`
}

func newPlan(columns, rows int) *Plan {
	tiles := make([]int, columns*rows)
	for i := range tiles {
		tiles[i] = -1
	}
	return &Plan{
		Columns: columns,
		Rows:    rows,
		Order:   make([]GridCell, 0, columns*rows),
		Tiles:   tiles,
	}
}

func (p *Plan) assign(cell GridCell, tile int) {
	p.Order = append(p.Order, cell)
	p.Tiles[cell.Y*p.Columns+cell.X] = tile
}

// TileAt returns the tile index chosen for cell, or -1.
func (p *Plan) TileAt(cell GridCell) int {
	return p.Tiles[cell.Y*p.Columns+cell.X]
}

// Usage counts how many cells each tile index was assigned to.
func (p *Plan) Usage() map[int]int {
	usage := make(map[int]int)
	for _, t := range p.Tiles {
		if t >= 0 {
			usage[t]++
		}
	}
	return usage
}

// gridCells enumerates every cell, column by column.
func gridCells(columns, rows int) []GridCell {
	cells := make([]GridCell, 0, columns*rows)
	for x := 0; x < columns; x++ {
		for y := 0; y < rows; y++ {
			cells = append(cells, GridCell{X: x, Y: y})
		}
	}
	return cells
}

// visitationOrder draws cells one at a time, uniformly from those not yet
// drawn, and returns them in draw order.
func visitationOrder(cells []GridCell, rng *rand.Rand) []GridCell {
	remaining := slices.Clone(cells)
	order := make([]GridCell, 0, len(cells))
	for len(remaining) > 0 {
		i := rng.IntN(len(remaining))
		order = append(order, remaining[i])
		remaining = slices.Delete(remaining, i, i+1)
	}
	return order
}
