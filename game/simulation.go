package game

import (
	"context"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/field"
	"github.com/pthm-cable/fieldsim/telemetry"
)

// Step advances the simulation by one step.
//
// Every actor reads the current field and writes the next one. Producers act
// before mobile actors so that nothing moves into a tree's cell.
func (s *Simulator) Step() {
	s.perf.Begin()

	var born []ecs.Entity
	s.perf.Enter(telemetry.PhaseProducers)
	for _, e := range s.actors {
		if s.arena.Kind(e).Stationary() {
			born = s.behavior.Act(e, s.cur, s.next, born)
		}
	}

	s.perf.Enter(telemetry.PhaseMobile)
	for _, e := range s.actors {
		if !s.arena.Kind(e).Stationary() {
			born = s.behavior.Act(e, s.cur, s.next, born)
		}
	}

	s.perf.Enter(telemetry.PhasePrune)
	s.prune(born)

	s.perf.Enter(telemetry.PhaseObstacles)
	s.stampObstacles(s.next)

	s.perf.Enter(telemetry.PhaseSwap)
	s.cur, s.next = s.next, s.cur
	s.next.ClearAll()
	// Stones go into the write field up front so free-cell searches skip them.
	s.stampObstacles(s.next)
	s.step++
	s.season = SeasonAt(s.step, s.cfg.Season.Length)
	s.stats.Invalidate()

	s.perf.Enter(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	s.perf.End()
	s.publish()
}

// Run steps until maxSteps steps have run, the population stops being
// viable, or ctx is cancelled. Cancellation is only observed between steps.
// It returns the number of steps run.
func (s *Simulator) Run(ctx context.Context, maxSteps int) (int, error) {
	steps := 0
	for steps < maxSteps && s.IsViable() {
		if err := ctx.Err(); err != nil {
			return steps, err
		}
		s.Step()
		steps++
	}
	return steps, nil
}

// Cell is one occupied cell of a snapshot.
type Cell struct {
	field.Coord
	Kind components.Kind
}

// Snapshot is the presentation view of the simulator after a reset or step.
type Snapshot struct {
	Step    int
	Season  Season
	Depth   int
	Width   int
	Cells   []Cell
	Summary telemetry.Summary
	Viable  bool
}

// Grid expands the snapshot into a depth x width matrix. Empty cells are nil.
func (sn Snapshot) Grid() [][]*components.Kind {
	grid := make([][]*components.Kind, sn.Depth)
	for r := range grid {
		grid[r] = make([]*components.Kind, sn.Width)
	}
	for i := range sn.Cells {
		c := &sn.Cells[i]
		grid[c.Row][c.Col] = &c.Kind
	}
	return grid
}

// Snapshot captures the current field.
func (s *Simulator) Snapshot() Snapshot {
	cells := make([]Cell, 0, s.cur.Occupied())
	s.cur.Each(func(c field.Coord, e ecs.Entity) {
		cells = append(cells, Cell{Coord: c, Kind: s.arena.Kind(e)})
	})
	return Snapshot{
		Step:    s.step,
		Season:  s.season,
		Depth:   s.cur.Depth(),
		Width:   s.cur.Width(),
		Cells:   cells,
		Summary: s.Summary(),
		Viable:  s.IsViable(),
	}
}

func (s *Simulator) publish() {
	if s.sink != nil {
		s.sink(s.Snapshot())
	}
}
