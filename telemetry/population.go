// Package telemetry provides population accounting, windowed event
// statistics, bookmarks and CSV output for simulation runs.
package telemetry

import (
	"fmt"
	"strings"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/field"
)

// Classifier maps an occupant handle to its species.
type Classifier interface {
	Kind(e ecs.Entity) components.Kind
}

// PopulationStats counts occupants per species. Counts are cached until
// Invalidate is called and recomputed on demand with a full grid scan.
type PopulationStats struct {
	counts [components.NumKinds]int
	valid  bool
}

// NewPopulationStats returns stats that will be computed on first use.
func NewPopulationStats() *PopulationStats {
	return &PopulationStats{}
}

// Invalidate marks the counts stale and zeroes them.
func (ps *PopulationStats) Invalidate() {
	ps.valid = false
	ps.counts = [components.NumKinds]int{}
}

// Recompute rebuilds the counts from grid.
func (ps *PopulationStats) Recompute(grid *field.Field, cls Classifier) {
	ps.counts = [components.NumKinds]int{}
	grid.Each(func(_ field.Coord, e ecs.Entity) {
		ps.counts[cls.Kind(e)]++
	})
	ps.valid = true
}

func (ps *PopulationStats) ensure(grid *field.Field, cls Classifier) {
	if !ps.valid {
		ps.Recompute(grid, cls)
	}
}

// IsViable reports whether more than one living species is present.
// Obstacles are not a species and never count toward viability.
func (ps *PopulationStats) IsViable(grid *field.Field, cls Classifier) bool {
	ps.ensure(grid, cls)
	nonZero := 0
	for k, n := range ps.counts {
		if components.Kind(k) == components.KindStone {
			continue
		}
		if n > 0 {
			nonZero++
		}
	}
	return nonZero > 1
}

// Counts returns the per-species counts, recomputing if stale.
func (ps *PopulationStats) Counts(grid *field.Field, cls Classifier) [components.NumKinds]int {
	ps.ensure(grid, cls)
	return ps.counts
}

// Summary is a species to count snapshot. Obstacles are included so the
// total matches the number of occupied cells.
type Summary map[components.Kind]int

// Summary returns the non-zero counts, recomputing if stale.
func (ps *PopulationStats) Summary(grid *field.Field, cls Classifier) Summary {
	ps.ensure(grid, cls)
	s := make(Summary)
	for k, n := range ps.counts {
		if n > 0 {
			s[components.Kind(k)] = n
		}
	}
	return s
}

// Total returns the number of counted occupants.
func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// String renders the summary in species order, e.g. "rabbit: 12 fox: 3".
func (s Summary) String() string {
	var b strings.Builder
	for k := components.Kind(0); k < components.NumKinds; k++ {
		n, ok := s[k]
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s: %d", k, n)
	}
	return b.String()
}
