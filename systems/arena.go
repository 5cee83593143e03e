package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/field"
)

// Arena owns every entity of a run. Grids hold entity handles; all entity
// state lives here, so there is no reference cycle between actors and fields.
type Arena struct {
	world *ecs.World

	rabbitMapper *ecs.Map3[components.Species, components.Position, components.Life]
	foxMapper    *ecs.Map4[components.Species, components.Position, components.Life, components.Energy]
	hunterMapper *ecs.Map5[components.Species, components.Position, components.Life, components.Energy, components.Tally]
	treeMapper   *ecs.Map4[components.Species, components.Position, components.Life, components.Fruit]
	stoneMapper  *ecs.Map2[components.Species, components.Position]

	speciesMap *ecs.Map1[components.Species]
	posMap     *ecs.Map1[components.Position]
	lifeMap    *ecs.Map1[components.Life]
	energyMap  *ecs.Map1[components.Energy]
	fruitMap   *ecs.Map1[components.Fruit]
	tallyMap   *ecs.Map1[components.Tally]

	allFilter *ecs.Filter1[components.Species]
}

// NewArena creates an empty arena backed by a fresh ECS world.
func NewArena() *Arena {
	world := ecs.NewWorld()
	return &Arena{
		world:        world,
		rabbitMapper: ecs.NewMap3[components.Species, components.Position, components.Life](world),
		foxMapper:    ecs.NewMap4[components.Species, components.Position, components.Life, components.Energy](world),
		hunterMapper: ecs.NewMap5[components.Species, components.Position, components.Life, components.Energy, components.Tally](world),
		treeMapper:   ecs.NewMap4[components.Species, components.Position, components.Life, components.Fruit](world),
		stoneMapper:  ecs.NewMap2[components.Species, components.Position](world),
		speciesMap:   ecs.NewMap1[components.Species](world),
		posMap:       ecs.NewMap1[components.Position](world),
		lifeMap:      ecs.NewMap1[components.Life](world),
		energyMap:    ecs.NewMap1[components.Energy](world),
		fruitMap:     ecs.NewMap1[components.Fruit](world),
		tallyMap:     ecs.NewMap1[components.Tally](world),
		allFilter:    ecs.NewFilter1[components.Species](world),
	}
}

// SpawnRabbit creates a rabbit at c.
func (a *Arena) SpawnRabbit(c field.Coord, age int) ecs.Entity {
	sp := components.Species{Kind: components.KindRabbit}
	pos := components.Position{Coord: c}
	life := components.Life{Age: age, Alive: true}
	return a.rabbitMapper.NewEntity(&sp, &pos, &life)
}

// SpawnFox creates a fox at c with the given hunger level.
func (a *Arena) SpawnFox(c field.Coord, age, level, max int) ecs.Entity {
	sp := components.Species{Kind: components.KindFox}
	pos := components.Position{Coord: c}
	life := components.Life{Age: age, Alive: true}
	energy := components.Energy{Level: level, Max: max}
	return a.foxMapper.NewEntity(&sp, &pos, &life, &energy)
}

// SpawnHunter creates a hunter at c with the given energy.
func (a *Arena) SpawnHunter(c field.Coord, age, level, max int) ecs.Entity {
	sp := components.Species{Kind: components.KindHunter}
	pos := components.Position{Coord: c}
	life := components.Life{Age: age, Alive: true}
	energy := components.Energy{Level: level, Max: max}
	tally := components.Tally{}
	return a.hunterMapper.NewEntity(&sp, &pos, &life, &energy, &tally)
}

// SpawnTree creates a tree at c carrying fruit.
func (a *Arena) SpawnTree(c field.Coord, age, fruit int) ecs.Entity {
	sp := components.Species{Kind: components.KindTree}
	pos := components.Position{Coord: c}
	life := components.Life{Age: age, Alive: true}
	f := components.Fruit{Count: fruit}
	return a.treeMapper.NewEntity(&sp, &pos, &life, &f)
}

// SpawnStone creates an obstacle at c.
func (a *Arena) SpawnStone(c field.Coord) ecs.Entity {
	sp := components.Species{Kind: components.KindStone}
	pos := components.Position{Coord: c}
	return a.stoneMapper.NewEntity(&sp, &pos)
}

// Kind returns the species of e.
func (a *Arena) Kind(e ecs.Entity) components.Kind {
	return a.speciesMap.Get(e).Kind
}

// Coord returns the recorded cell of e.
func (a *Arena) Coord(e ecs.Entity) field.Coord {
	return a.posMap.Get(e).Coord
}

// Life returns the life record of an acting entity.
func (a *Arena) Life(e ecs.Entity) *components.Life {
	return a.lifeMap.Get(e)
}

// Energy returns the hunger record of a fox or hunter.
func (a *Arena) Energy(e ecs.Entity) *components.Energy {
	return a.energyMap.Get(e)
}

// Fruit returns the fruit stock of a tree.
func (a *Arena) Fruit(e ecs.Entity) *components.Fruit {
	return a.fruitMap.Get(e)
}

// Tally returns the kill tally of a hunter.
func (a *Arena) Tally(e ecs.Entity) *components.Tally {
	return a.tallyMap.Get(e)
}

// Move records c as the new cell of e.
func (a *Arena) Move(e ecs.Entity, c field.Coord) {
	a.posMap.Get(e).Coord = c
}

// IsAlive reports whether e is a live acting entity. Stones are never alive.
// For consumers the hunger level doubles as a liveness signal.
func (a *Arena) IsAlive(e ecs.Entity) bool {
	if !a.world.Alive(e) {
		return false
	}
	kind := a.Kind(e)
	switch kind {
	case components.KindStone:
		return false
	case components.KindFox, components.KindHunter:
		return a.Life(e).Alive && a.Energy(e).Level > 0
	case components.KindRabbit, components.KindTree:
		return a.Life(e).Alive
	}
	return false
}

// Remove deletes e from the arena.
func (a *Arena) Remove(e ecs.Entity) {
	a.world.RemoveEntity(e)
}

// Count returns the number of entities held.
func (a *Arena) Count() int {
	n := 0
	query := a.allFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Clear removes every entity.
func (a *Arena) Clear() {
	// The world is locked while a query runs; collect first.
	var all []ecs.Entity
	query := a.allFilter.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}
	for _, e := range all {
		a.world.RemoveEntity(e)
	}
}
