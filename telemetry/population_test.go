package telemetry

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/field"
)

// fakeWorld hands out entities with a fixed species.
type fakeWorld struct {
	mapper *ecs.Map1[components.Species]
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{mapper: ecs.NewMap1[components.Species](ecs.NewWorld())}
}

func (fw *fakeWorld) spawn(k components.Kind) ecs.Entity {
	sp := components.Species{Kind: k}
	return fw.mapper.NewEntity(&sp)
}

func (fw *fakeWorld) Kind(e ecs.Entity) components.Kind {
	return fw.mapper.Get(e).Kind
}

func TestPopulationStats_ObstaclesAndOneSpeciesNotViable(t *testing.T) {
	fw := newFakeWorld()
	grid := field.New(4, 4)
	grid.Place(fw.spawn(components.KindStone), field.Coord{Row: 0, Col: 0})
	grid.Place(fw.spawn(components.KindStone), field.Coord{Row: 0, Col: 1})
	grid.Place(fw.spawn(components.KindRabbit), field.Coord{Row: 2, Col: 2})
	grid.Place(fw.spawn(components.KindRabbit), field.Coord{Row: 3, Col: 1})

	ps := NewPopulationStats()
	if ps.IsViable(grid, fw) {
		t.Error("stones plus rabbits should not be viable")
	}

	grid.Place(fw.spawn(components.KindFox), field.Coord{Row: 1, Col: 3})
	ps.Invalidate()
	if !ps.IsViable(grid, fw) {
		t.Error("adding a fox should make the field viable")
	}
}

func TestPopulationStats_CachedUntilInvalidated(t *testing.T) {
	fw := newFakeWorld()
	grid := field.New(3, 3)
	grid.Place(fw.spawn(components.KindRabbit), field.Coord{})

	ps := NewPopulationStats()
	if got := ps.Counts(grid, fw)[components.KindRabbit]; got != 1 {
		t.Fatalf("expected 1 rabbit, got %d", got)
	}

	grid.Place(fw.spawn(components.KindRabbit), field.Coord{Row: 1, Col: 1})
	if got := ps.Counts(grid, fw)[components.KindRabbit]; got != 1 {
		t.Errorf("expected cached count 1, got %d", got)
	}

	ps.Invalidate()
	if ps.valid {
		t.Error("expected stats to be stale after Invalidate")
	}
	if got := ps.Counts(grid, fw)[components.KindRabbit]; got != 2 {
		t.Errorf("expected recomputed count 2, got %d", got)
	}
}

func TestPopulationStats_SummaryMatchesOccupiedCells(t *testing.T) {
	fw := newFakeWorld()
	grid := field.New(5, 5)
	kinds := []components.Kind{
		components.KindRabbit, components.KindRabbit, components.KindFox,
		components.KindHunter, components.KindTree, components.KindStone,
	}
	for i, k := range kinds {
		grid.Place(fw.spawn(k), field.Coord{Row: i / 5, Col: i % 5})
	}

	ps := NewPopulationStats()
	s := ps.Summary(grid, fw)
	if s.Total() != grid.Occupied() {
		t.Errorf("expected summary total %d, got %d", grid.Occupied(), s.Total())
	}
	if s[components.KindRabbit] != 2 {
		t.Errorf("expected 2 rabbits, got %d", s[components.KindRabbit])
	}
	if got := s.String(); got != "rabbit: 2 fox: 1 hunter: 1 tree: 1 stone: 1" {
		t.Errorf("unexpected summary string %q", got)
	}
}

func TestPopulationStats_EmptyNotViable(t *testing.T) {
	fw := newFakeWorld()
	ps := NewPopulationStats()
	if ps.IsViable(field.New(2, 2), fw) {
		t.Error("empty field should not be viable")
	}
}
