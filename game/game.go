// Package game drives the field simulation: it owns the double-buffered
// fields, the tracked actors and the per-run telemetry.
package game

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fieldsim/config"
	"github.com/pthm-cable/fieldsim/field"
	"github.com/pthm-cable/fieldsim/systems"
	"github.com/pthm-cable/fieldsim/telemetry"
	"github.com/pthm-cable/fieldsim/terrain"
)

// Options holds optional collaborators for a Simulator.
type Options struct {
	// Rng drives every random decision. Nil seeds one from cfg.Run.Seed
	// (0 = time-based).
	Rng *rand.Rand

	// Output receives CSV telemetry. Nil disables file output.
	Output *telemetry.OutputManager

	// LogStats logs each telemetry window and bookmark.
	LogStats bool

	// Sink receives a snapshot after every reset and step.
	Sink func(Snapshot)

	// Obstacles overrides the configured obstacle source.
	Obstacles terrain.Layout
}

// Simulator advances the field one step at a time. It is not safe for
// concurrent use; see Controller for serialized access.
type Simulator struct {
	cfg   *config.Config
	rng   *rand.Rand
	runID string

	arena    *systems.Arena
	behavior *systems.Behavior
	policies systems.Policies

	cur, next *field.Field
	actors    []ecs.Entity
	stones    []ecs.Entity
	obstacles terrain.Layout

	step   int
	season Season
	stats  *telemetry.PopulationStats

	// Telemetry
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	perf      *telemetry.StepTimer
	output    *telemetry.OutputManager
	logStats  bool
	sink      func(Snapshot)
}

// New creates a simulator and resets it to a freshly populated field.
func New(cfg *config.Config, opts Options) *Simulator {
	cfg.Normalize()

	rng := opts.Rng
	if rng == nil {
		seed := cfg.Run.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	runID := opts.Output.RunID()
	if runID == "" {
		runID = uuid.NewString()
	}

	arena := systems.NewArena()
	collector := telemetry.NewCollector(runID, cfg.Telemetry.WindowSteps)
	policies := systems.NewPolicies(cfg)

	s := &Simulator{
		cfg:       cfg,
		rng:       rng,
		runID:     runID,
		arena:     arena,
		policies:  policies,
		behavior:  systems.NewBehavior(arena, policies, systems.NewDiet(cfg), systems.NewHunterRules(cfg), rng, collector),
		cur:       field.New(cfg.Field.Depth, cfg.Field.Width),
		next:      field.New(cfg.Field.Depth, cfg.Field.Width),
		obstacles: opts.Obstacles,
		stats:     telemetry.NewPopulationStats(),
		collector: collector,
		bookmarks: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory),
		perf:      telemetry.NewStepTimer(cfg.Telemetry.PerfWindow),
		output:    opts.Output,
		logStats:  opts.LogStats,
		sink:      opts.Sink,
	}

	slog.Info("simulator_created",
		"run_id", runID,
		"depth", cfg.Field.Depth,
		"width", cfg.Field.Width,
	)

	s.Reset()
	return s
}

// RunID returns the identifier of this simulator's telemetry.
func (s *Simulator) RunID() string { return s.runID }

// StepCount returns the number of steps since the last reset.
func (s *Simulator) StepCount() int { return s.step }

// Season returns the current season.
func (s *Simulator) Season() Season { return s.season }

// Field returns the current (read) field. Callers must not modify it.
func (s *Simulator) Field() *field.Field { return s.cur }

// Arena returns the entity arena backing the fields.
func (s *Simulator) Arena() *systems.Arena { return s.arena }

// Actors returns the number of tracked actors.
func (s *Simulator) Actors() int { return len(s.actors) }

// Summary returns the per-species population of the current field.
func (s *Simulator) Summary() telemetry.Summary {
	return s.stats.Summary(s.cur, s.arena)
}

// IsViable reports whether more than one species is still alive.
func (s *Simulator) IsViable() bool {
	return s.stats.IsViable(s.cur, s.arena)
}

// Timing returns step timing over the recent window.
func (s *Simulator) Timing() telemetry.StepTiming {
	return s.perf.Stats()
}
