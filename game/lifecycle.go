package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/field"
	"github.com/pthm-cable/fieldsim/terrain"
)

// ErrCellTaken is returned by Spawn when the target cell is occupied.
var ErrCellTaken = errors.New("game: cell is occupied")

// Reset clears the field, lays out obstacles, scatters a new population
// and recomputes the statistics.
func (s *Simulator) Reset() {
	s.Clear()

	layout := s.obstacles
	if layout == nil {
		layout = terrain.Build(s.cfg.Obstacles, s.cfg.Field.Depth, s.cfg.Field.Width, s.rng)
	}
	for _, c := range layout {
		if !s.cur.InBounds(c) || !s.cur.IsFree(c) {
			continue
		}
		s.addStone(c)
	}

	s.populate()
	s.stats.Recompute(s.cur, s.arena)

	slog.Info("reset",
		"run_id", s.runID,
		"stones", len(s.stones),
		"actors", len(s.actors),
		"entities", s.arena.Count(),
		"population", s.Summary().String(),
	)
	s.publish()
}

// Clear empties both fields and drops every entity, leaving step and
// season at zero. Use Spawn to build a custom scenario afterwards.
func (s *Simulator) Clear() {
	s.cur.ClearAll()
	s.next.ClearAll()
	s.arena.Clear()
	s.actors = s.actors[:0]
	s.stones = s.stones[:0]
	s.step = 0
	s.season = Spring
	s.stats.Invalidate()
	s.collector.Reset(0)
}

func (s *Simulator) addStone(c field.Coord) {
	e := s.arena.SpawnStone(c)
	s.stones = append(s.stones, e)
	s.cur.Place(e, c)
	s.next.Place(e, c)
}

// populate visits every free cell once and, with one roll per cell, places
// at most one actor according to the cumulative creation probabilities.
func (s *Simulator) populate() {
	p := s.cfg.Population
	thresholds := []struct {
		kind components.Kind
		prob float64
	}{
		{components.KindHunter, p.Hunter},
		{components.KindFox, p.Fox},
		{components.KindRabbit, p.Rabbit},
		{components.KindTree, p.Tree},
	}

	for row := 0; row < s.cur.Depth(); row++ {
		for col := 0; col < s.cur.Width(); col++ {
			c := field.Coord{Row: row, Col: col}
			if !s.cur.IsFree(c) {
				continue
			}
			r := s.rng.Float64()
			acc := 0.0
			for _, t := range thresholds {
				acc += t.prob
				if r < acc {
					s.track(s.spawnRandom(t.kind, c), c)
					break
				}
			}
		}
	}
}

// spawnRandom creates an actor with a random age and hunger, as found in
// an established population.
func (s *Simulator) spawnRandom(kind components.Kind, c field.Coord) ecs.Entity {
	p := s.policies.For(kind)
	age := 0
	if !p.Ageless() {
		age = s.rng.Intn(p.MaxAge)
	}
	switch kind {
	case components.KindRabbit:
		return s.arena.SpawnRabbit(c, age)
	case components.KindFox:
		return s.arena.SpawnFox(c, age, s.rng.Intn(p.MaxEnergy)+1, p.MaxEnergy)
	case components.KindHunter:
		return s.arena.SpawnHunter(c, age, s.rng.Intn(p.MaxEnergy)+1, p.MaxEnergy)
	case components.KindTree:
		return s.arena.SpawnTree(c, age, s.rng.Intn(p.MaxFruit+1))
	case components.KindStone:
		return s.arena.SpawnStone(c)
	}
	panic("game: unknown kind " + kind.String())
}

func (s *Simulator) track(e ecs.Entity, c field.Coord) {
	s.cur.Place(e, c)
	s.actors = append(s.actors, e)
}

// Spawn places a newborn of kind at c in the current field. Stones are
// permanent obstacles and are also stamped into the write field.
func (s *Simulator) Spawn(kind components.Kind, c field.Coord) (ecs.Entity, error) {
	if !s.cur.InBounds(c) {
		return ecs.Entity{}, fmt.Errorf("spawning %s at %s: out of bounds", kind, c)
	}
	if !s.cur.IsFree(c) {
		return ecs.Entity{}, fmt.Errorf("spawning %s at %s: %w", kind, c, ErrCellTaken)
	}
	defer s.stats.Invalidate()

	p := s.policies.For(kind)
	switch kind {
	case components.KindStone:
		s.addStone(c)
		return s.stones[len(s.stones)-1], nil
	case components.KindRabbit:
		s.track(s.arena.SpawnRabbit(c, 0), c)
	case components.KindFox:
		s.track(s.arena.SpawnFox(c, 0, p.MaxEnergy, p.MaxEnergy), c)
	case components.KindHunter:
		s.track(s.arena.SpawnHunter(c, 0, p.MaxEnergy, p.MaxEnergy), c)
	case components.KindTree:
		s.track(s.arena.SpawnTree(c, 0, 0), c)
	default:
		return ecs.Entity{}, fmt.Errorf("spawning at %s: unknown kind %d", c, kind)
	}
	return s.actors[len(s.actors)-1], nil
}

// prune drops actors that are no longer alive and appends newborns.
func (s *Simulator) prune(born []ecs.Entity) {
	live := s.actors[:0]
	for _, e := range s.actors {
		if s.arena.IsAlive(e) {
			live = append(live, e)
			continue
		}
		s.arena.Remove(e)
	}
	s.actors = append(live, born...)
}

// stampObstacles copies every stone into f.
func (s *Simulator) stampObstacles(f *field.Field) {
	for _, e := range s.stones {
		f.Place(e, s.arena.Coord(e))
	}
}
