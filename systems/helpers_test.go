package systems

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/config"
	"github.com/pthm-cable/fieldsim/field"
)

func init() {
	config.MustInit("")
}

type deathKey struct {
	kind  components.Kind
	cause components.Cause
}

type countingRecorder struct {
	births   map[components.Kind]int
	deaths   map[deathKey]int
	kills    int
	harvests int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		births: make(map[components.Kind]int),
		deaths: make(map[deathKey]int),
	}
}

func (r *countingRecorder) RecordBirth(k components.Kind, n int) { r.births[k] += n }
func (r *countingRecorder) RecordDeath(k components.Kind, c components.Cause) {
	r.deaths[deathKey{k, c}]++
}
func (r *countingRecorder) RecordKill(components.Kind, components.Kind) { r.kills++ }
func (r *countingRecorder) RecordHarvest(components.Kind)               { r.harvests++ }

type testEnv struct {
	arena     *Arena
	behavior  *Behavior
	cur, next *field.Field
	rec       *countingRecorder
}

// newTestEnv builds an isolated arena and field pair. tweak may adjust a
// private copy of the default configuration.
func newTestEnv(t *testing.T, depth, width int, seed int64, tweak func(*config.Config)) *testEnv {
	t.Helper()
	cfg := config.Defaults()
	if tweak != nil {
		tweak(cfg)
	}
	arena := NewArena()
	rec := newCountingRecorder()
	rng := rand.New(rand.NewSource(seed))
	return &testEnv{
		arena:    arena,
		behavior: NewBehavior(arena, NewPolicies(cfg), NewDiet(cfg), NewHunterRules(cfg), rng, rec),
		cur:      field.New(depth, width),
		next:     field.New(depth, width),
		rec:      rec,
	}
}

// act runs every entity in order and returns the newborns.
func (v *testEnv) act(es ...ecs.Entity) []ecs.Entity {
	var born []ecs.Entity
	for _, e := range es {
		born = v.behavior.Act(e, v.cur, v.next, born)
	}
	return born
}

func (v *testEnv) swap() {
	v.cur, v.next = v.next, v.cur
	v.next.ClearAll()
}

func (v *testEnv) rabbit(c field.Coord, age int) ecs.Entity {
	e := v.arena.SpawnRabbit(c, age)
	v.cur.Place(e, c)
	return e
}

func (v *testEnv) fox(c field.Coord, age, level int) ecs.Entity {
	e := v.arena.SpawnFox(c, age, level, 4)
	v.cur.Place(e, c)
	return e
}

func (v *testEnv) hunter(c field.Coord, age, level int) ecs.Entity {
	e := v.arena.SpawnHunter(c, age, level, 200)
	v.cur.Place(e, c)
	return e
}

func (v *testEnv) tree(c field.Coord, fruit int) ecs.Entity {
	e := v.arena.SpawnTree(c, 0, fruit)
	v.cur.Place(e, c)
	return e
}

// stone places an obstacle in both fields.
func (v *testEnv) stone(c field.Coord) ecs.Entity {
	e := v.arena.SpawnStone(c)
	v.cur.Place(e, c)
	v.next.Place(e, c)
	return e
}
