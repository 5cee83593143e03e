package systems

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/field"
)

// Recorder receives lifecycle events as they happen.
type Recorder interface {
	RecordBirth(kind components.Kind, n int)
	RecordDeath(kind components.Kind, cause components.Cause)
	RecordKill(eater, prey components.Kind)
	RecordHarvest(eater components.Kind)
}

type nopRecorder struct{}

func (nopRecorder) RecordBirth(components.Kind, int)              {}
func (nopRecorder) RecordDeath(components.Kind, components.Cause) {}
func (nopRecorder) RecordKill(components.Kind, components.Kind)   {}
func (nopRecorder) RecordHarvest(components.Kind)                 {}

// Behavior applies the per-species rules to one entity at a time.
//
// Every read of other entities' placement goes against the current field and
// every write lands in the next field, so actors acting in the same step all
// see the same snapshot.
//
// Component pointers from the arena are invalidated when entities are spawned,
// so they are re-fetched after any birth.
type Behavior struct {
	arena    *Arena
	policies Policies
	diet     Diet
	hunter   HunterRules
	rng      *rand.Rand
	rec      Recorder
}

// NewBehavior creates a behaviour bound to arena. rec may be nil.
func NewBehavior(arena *Arena, policies Policies, diet Diet, hunter HunterRules, rng *rand.Rand, rec Recorder) *Behavior {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Behavior{
		arena:    arena,
		policies: policies,
		diet:     diet,
		hunter:   hunter,
		rng:      rng,
		rec:      rec,
	}
}

// Act runs one step for e and returns born with any newborns appended.
// Newborns are placed in next and do not act until the following step.
func (b *Behavior) Act(e ecs.Entity, cur, next *field.Field, born []ecs.Entity) []ecs.Entity {
	if !b.arena.IsAlive(e) {
		return born
	}
	kind := b.arena.Kind(e)
	switch kind {
	case components.KindRabbit:
		return b.actRabbit(e, next, born)
	case components.KindFox, components.KindHunter:
		return b.actConsumer(e, kind, cur, next, born)
	case components.KindTree:
		b.actTree(e, next)
	case components.KindStone:
		// carried over by the driver
	}
	return born
}

func (b *Behavior) actRabbit(e ecs.Entity, next *field.Field, born []ecs.Entity) []ecs.Entity {
	const kind = components.KindRabbit
	if !b.grow(e, kind) {
		return born
	}
	born, _ = b.breed(e, kind, next, born)
	b.settle(e, kind, field.Coord{}, false, next)
	return born
}

func (b *Behavior) actConsumer(e ecs.Entity, kind components.Kind, cur, next *field.Field, born []ecs.Entity) []ecs.Entity {
	if !b.grow(e, kind) || !b.starve(e, kind) {
		return born
	}

	if kind == components.KindHunter {
		if b.arena.Tally(e).Kills >= b.hunter.KillsToBreed {
			var n int
			born, n = b.breed(e, kind, next, born)
			if n > 0 {
				b.arena.Tally(e).Kills = 0
			}
		}
	} else {
		born, _ = b.breed(e, kind, next, born)
	}

	dest, ok := b.feed(e, kind, cur, next)
	if !b.arena.Life(e).Alive {
		return born
	}
	b.settle(e, kind, dest, ok, next)
	return born
}

func (b *Behavior) actTree(e ecs.Entity, next *field.Field) {
	const kind = components.KindTree
	if !b.grow(e, kind) {
		return
	}
	p := b.policies.For(kind)
	fruit := b.arena.Fruit(e)
	if fruit.Count < p.MaxFruit && b.rng.Float64() < p.GrowthProbability {
		fruit.Count++
	}

	pos := b.arena.Coord(e)
	if occ, taken := next.At(pos); taken && occ != e {
		slog.Debug("placement_conflict", "kind", kind.String(), "cell", pos.String(), "occupant", b.arena.Kind(occ).String())
		b.die(e, kind, components.CauseConflict)
		return
	}
	next.Place(e, pos)
}

// grow advances age and applies old-age death. Reports whether e survived.
func (b *Behavior) grow(e ecs.Entity, kind components.Kind) bool {
	p := b.policies.For(kind)
	life := b.arena.Life(e)
	life.Age++
	if !p.Ageless() && life.Age > p.MaxAge {
		b.die(e, kind, components.CauseOldAge)
		return false
	}
	return true
}

// starve applies the per-step hunger drain. Reports whether e survived.
func (b *Behavior) starve(e ecs.Entity, kind components.Kind) bool {
	energy := b.arena.Energy(e)
	energy.Level -= b.policies.For(kind).Drain
	if energy.Level <= 0 {
		b.die(e, kind, components.CauseStarvation)
		return false
	}
	return true
}

func (b *Behavior) die(e ecs.Entity, kind components.Kind, cause components.Cause) {
	b.arena.Life(e).Alive = false
	b.rec.RecordDeath(kind, cause)
}

// litterSize rolls for reproduction; zero means no litter this step.
func (b *Behavior) litterSize(kind components.Kind, age int) int {
	p := b.policies.For(kind)
	if p.MaxLitter <= 0 || age < p.BreedingAge {
		return 0
	}
	if b.rng.Float64() > p.BreedingProbability {
		return 0
	}
	return b.rng.Intn(p.MaxLitter) + 1
}

// breed places up to one litter into free neighbours of e in next.
// Offspring without a free cell are not created.
func (b *Behavior) breed(e ecs.Entity, kind components.Kind, next *field.Field, born []ecs.Entity) ([]ecs.Entity, int) {
	size := b.litterSize(kind, b.arena.Life(e).Age)
	if size == 0 {
		return born, 0
	}
	free := next.FreeAdjacentCoords(b.arena.Coord(e), b.rng)
	if len(free) > size {
		free = free[:size]
	}
	for _, c := range free {
		child := b.spawnNewborn(kind, c)
		next.Place(child, c)
		born = append(born, child)
	}
	if len(free) > 0 {
		b.rec.RecordBirth(kind, len(free))
	}
	return born, len(free)
}

func (b *Behavior) spawnNewborn(kind components.Kind, c field.Coord) ecs.Entity {
	p := b.policies.For(kind)
	switch kind {
	case components.KindRabbit:
		return b.arena.SpawnRabbit(c, 0)
	case components.KindFox:
		return b.arena.SpawnFox(c, 0, p.MaxEnergy, p.MaxEnergy)
	case components.KindHunter:
		return b.arena.SpawnHunter(c, 0, p.MaxEnergy, p.MaxEnergy)
	case components.KindTree:
		return b.arena.SpawnTree(c, 0, 0)
	case components.KindStone:
		return b.arena.SpawnStone(c)
	}
	panic("systems: unknown kind " + kind.String())
}

// feed looks for food around e in the current field. When prey is caught the
// returned cell is the prey's former cell.
func (b *Behavior) feed(e ecs.Entity, kind components.Kind, cur, next *field.Field) (field.Coord, bool) {
	pos := b.arena.Coord(e)

	if kind == components.KindHunter && b.arena.Energy(e).Low(b.hunter.LowEnergyFraction) {
		if b.harvest(e, kind, pos, cur) {
			return field.Coord{}, false
		}
	}

	for _, c := range cur.AdjacentCoords(pos, b.rng) {
		occ, ok := cur.At(c)
		if !ok || !b.diet.Preys(kind, b.arena.Kind(occ)) || !b.arena.IsAlive(occ) {
			continue
		}
		b.kill(e, kind, occ, next)
		return c, true
	}
	return field.Coord{}, false
}

// harvest takes one fruit from a neighbouring tree. The hunter stays out of the tree's cell.
func (b *Behavior) harvest(e ecs.Entity, kind components.Kind, pos field.Coord, cur *field.Field) bool {
	if _, ok := b.diet.Meal(kind, components.KindTree); !ok {
		return false
	}
	for _, c := range cur.AdjacentCoords(pos, b.rng) {
		occ, ok := cur.At(c)
		if !ok || b.arena.Kind(occ) != components.KindTree || !b.arena.IsAlive(occ) {
			continue
		}
		fruit := b.arena.Fruit(occ)
		if fruit.Count == 0 {
			continue
		}
		fruit.Count--
		b.eat(e, kind, components.KindTree)
		b.rec.RecordHarvest(kind)
		return true
	}
	return false
}

func (b *Behavior) kill(e ecs.Entity, kind components.Kind, prey ecs.Entity, next *field.Field) {
	preyKind := b.arena.Kind(prey)
	b.die(prey, preyKind, components.CauseEaten)
	// Prey that already acted this step has a placement in next.
	preyPos := b.arena.Coord(prey)
	if occ, ok := next.At(preyPos); ok && occ == prey {
		next.Clear(preyPos)
	}
	b.rec.RecordKill(kind, preyKind)
	b.eat(e, kind, preyKind)

	if kind == components.KindHunter {
		tally := b.arena.Tally(e)
		tally.Kills++
		tally.Total++
		if b.hunter.MaxKills > 0 && tally.Total >= b.hunter.MaxKills {
			b.die(e, kind, components.CauseExhausted)
		}
	}
}

func (b *Behavior) eat(e ecs.Entity, kind, food components.Kind) {
	meal, _ := b.diet.Meal(kind, food)
	energy := b.arena.Energy(e)
	energy.Level = min(energy.Max, energy.Level+meal)
}

// settle resolves where e ends up in next: the preferred cell if still free,
// else a free neighbour, else its own cell if still free. With none of those
// e dies of overcrowding.
func (b *Behavior) settle(e ecs.Entity, kind components.Kind, dest field.Coord, hasDest bool, next *field.Field) {
	pos := b.arena.Coord(e)
	if !hasDest || !next.IsFree(dest) {
		if c, ok := next.FreeAdjacentCoord(pos, b.rng); ok {
			dest = c
		} else if next.IsFree(pos) {
			dest = pos
		} else {
			b.die(e, kind, components.CauseOvercrowding)
			return
		}
	}
	b.arena.Move(e, dest)
	next.Place(e, dest)
}
