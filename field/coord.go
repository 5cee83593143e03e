// Package field provides the rectangular cell grid the simulation runs on.
package field

import "fmt"

// Coord is a (row, column) cell address. It is a plain value type.
type Coord struct {
	Row int
	Col int
}

// Key packs both fields into a single hashable integer.
func (c Coord) Key() uint64 {
	return uint64(uint32(c.Row))<<32 | uint64(uint32(c.Col))
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}
