package world

import "math"

const DefaultCellSize = 128.0

// cellPos addresses one column of the grid; Z is not partitioned since
// levels are far wider than they are tall.
type cellPos struct {
	X int32
	Y int32
}

type grid struct {
	cellSize float64
	cells    map[cellPos]map[int32]struct{}
	indexed  map[int32]cellPos
}

func newGrid(cellSize float64) *grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &grid{
		cellSize: cellSize,
		cells:    make(map[cellPos]map[int32]struct{}),
		indexed:  make(map[int32]cellPos),
	}
}

func (g *grid) cellOf(x, y float64) cellPos {
	return cellPos{
		X: int32(math.Floor(x / g.cellSize)),
		Y: int32(math.Floor(y / g.cellSize)),
	}
}

func (g *grid) insert(id int32, x, y float64) {
	pos := g.cellOf(x, y)
	if prev, ok := g.indexed[id]; ok {
		if prev == pos {
			return
		}
		g.removeFrom(id, prev)
	}
	cell := g.cells[pos]
	if cell == nil {
		cell = make(map[int32]struct{})
		g.cells[pos] = cell
	}
	cell[id] = struct{}{}
	g.indexed[id] = pos
}

func (g *grid) remove(id int32) {
	pos, ok := g.indexed[id]
	if !ok {
		return
	}
	g.removeFrom(id, pos)
	delete(g.indexed, id)
}

func (g *grid) removeFrom(id int32, pos cellPos) {
	cell := g.cells[pos]
	if cell == nil {
		return
	}
	delete(cell, id)
	if len(cell) == 0 {
		delete(g.cells, pos)
	}
}

// candidates returns ids in every cell overlapping the XY rectangle.
func (g *grid) candidates(minX, minY, maxX, maxY float64) []int32 {
	lo := g.cellOf(minX, minY)
	hi := g.cellOf(maxX, maxY)
	var out []int32
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for id := range g.cells[cellPos{X: x, Y: y}] {
				out = append(out, id)
			}
		}
	}
	return out
}
