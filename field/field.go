package field

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fieldsim/config"
)

// Field is a depth x width grid where each cell holds at most one entity handle.
// The zero entity marks an empty cell.
type Field struct {
	depth, width int
	cells        []ecs.Entity
}

// New creates an empty field. Non-positive dimensions fall back to the
// default size.
func New(depth, width int) *Field {
	if depth <= 0 || width <= 0 {
		slog.Warn("invalid_field_dimensions",
			"depth", depth,
			"width", width,
			"using_depth", config.DefaultDepth,
			"using_width", config.DefaultWidth,
		)
		depth, width = config.DefaultDepth, config.DefaultWidth
	}
	return &Field{
		depth: depth,
		width: width,
		cells: make([]ecs.Entity, depth*width),
	}
}

// Depth returns the number of rows.
func (f *Field) Depth() int { return f.depth }

// Width returns the number of columns.
func (f *Field) Width() int { return f.width }

// InBounds reports whether c addresses a cell of the field.
func (f *Field) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < f.depth && c.Col >= 0 && c.Col < f.width
}

func (f *Field) index(c Coord) int {
	return c.Row*f.width + c.Col
}

// Place puts e at c, overwriting whatever was there.
func (f *Field) Place(e ecs.Entity, c Coord) {
	f.cells[f.index(c)] = e
}

// At returns the occupant at c and whether the cell is occupied.
func (f *Field) At(c Coord) (ecs.Entity, bool) {
	e := f.cells[f.index(c)]
	return e, !e.IsZero()
}

// IsFree reports whether c is empty.
func (f *Field) IsFree(c Coord) bool {
	return f.cells[f.index(c)].IsZero()
}

// Clear empties the cell at c.
func (f *Field) Clear(c Coord) {
	f.cells[f.index(c)] = ecs.Entity{}
}

// ClearAll empties every cell.
func (f *Field) ClearAll() {
	clear(f.cells)
}

// Occupied returns the number of non-empty cells.
func (f *Field) Occupied() int {
	n := 0
	for _, e := range f.cells {
		if !e.IsZero() {
			n++
		}
	}
	return n
}

// Each calls fn for every occupied cell in row-major order.
func (f *Field) Each(fn func(c Coord, e ecs.Entity)) {
	for i, e := range f.cells {
		if e.IsZero() {
			continue
		}
		fn(Coord{Row: i / f.width, Col: i % f.width}, e)
	}
}

// AdjacentCoords returns the in-bounds Moore neighbours of c in a fresh random order.
func (f *Field) AdjacentCoords(c Coord, rng *rand.Rand) []Coord {
	adj := make([]Coord, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Coord{Row: c.Row + dr, Col: c.Col + dc}
			if f.InBounds(n) {
				adj = append(adj, n)
			}
		}
	}
	rng.Shuffle(len(adj), func(i, j int) { adj[i], adj[j] = adj[j], adj[i] })
	return adj
}

// FreeAdjacentCoords returns the empty neighbours of c, keeping the shuffled order.
func (f *Field) FreeAdjacentCoords(c Coord, rng *rand.Rand) []Coord {
	adj := f.AdjacentCoords(c, rng)
	free := adj[:0]
	for _, n := range adj {
		if f.IsFree(n) {
			free = append(free, n)
		}
	}
	return free
}

// FreeAdjacentCoord returns a random empty neighbour of c.
// ok is false when every neighbour is occupied.
func (f *Field) FreeAdjacentCoord(c Coord, rng *rand.Rand) (Coord, bool) {
	free := f.FreeAdjacentCoords(c, rng)
	if len(free) == 0 {
		return Coord{}, false
	}
	return free[0], true
}

// RandomCoord returns a uniformly chosen cell address.
func (f *Field) RandomCoord(rng *rand.Rand) Coord {
	return Coord{Row: rng.Intn(f.depth), Col: rng.Intn(f.width)}
}
