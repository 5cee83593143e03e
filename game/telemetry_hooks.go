package game

import (
	"log/slog"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulator) flushTelemetry() {
	if !s.collector.ShouldFlush(s.step) {
		return
	}

	stats := s.collector.Flush(s.step, s.season.String(), s.census())
	timing := s.perf.Stats()

	if s.logStats {
		stats.LogStats()
		timing.LogStats()
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(timing, stats.WindowEnd); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if err := s.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}

// census samples population counts and hunger distributions from the current field.
func (s *Simulator) census() telemetry.Census {
	c := telemetry.Census{Counts: s.stats.Counts(s.cur, s.arena)}
	for _, e := range s.actors {
		switch s.arena.Kind(e) {
		case components.KindFox:
			c.FoxEnergies = append(c.FoxEnergies, float64(s.arena.Energy(e).Level))
		case components.KindHunter:
			c.HunterEnergies = append(c.HunterEnergies, float64(s.arena.Energy(e).Level))
		case components.KindTree:
			c.Fruit += s.arena.Fruit(e).Count
		case components.KindRabbit, components.KindStone:
		}
	}
	return c
}
