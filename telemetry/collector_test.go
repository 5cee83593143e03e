package telemetry

import (
	"testing"

	"github.com/pthm-cable/fieldsim/components"
)

func TestCollector_FlushAndReset(t *testing.T) {
	c := NewCollector("run-1", 10)

	c.RecordBirth(components.KindRabbit, 3)
	c.RecordBirth(components.KindFox, 1)
	c.RecordDeath(components.KindRabbit, components.CauseEaten)
	c.RecordDeath(components.KindRabbit, components.CauseOldAge)
	c.RecordDeath(components.KindTree, components.CauseConflict)
	c.RecordKill(components.KindFox, components.KindRabbit)
	c.RecordHarvest(components.KindHunter)

	if c.ShouldFlush(9) {
		t.Error("window should not close before 10 steps")
	}
	if !c.ShouldFlush(10) {
		t.Error("window should close at 10 steps")
	}

	var census Census
	census.Counts[components.KindRabbit] = 12
	census.Counts[components.KindFox] = 2
	census.FoxEnergies = []float64{2, 4}
	stats := c.Flush(10, "summer", census)

	if stats.RunID != "run-1" || stats.WindowStart != 0 || stats.WindowEnd != 10 || stats.Season != "summer" {
		t.Errorf("unexpected window identity %+v", stats)
	}
	if stats.RabbitBirths != 3 || stats.FoxBirths != 1 {
		t.Errorf("unexpected births %d/%d", stats.RabbitBirths, stats.FoxBirths)
	}
	if stats.RabbitDeaths != 2 || stats.TreeDeaths != 1 {
		t.Errorf("unexpected deaths %d/%d", stats.RabbitDeaths, stats.TreeDeaths)
	}
	if stats.Eaten != 1 || stats.OldAge != 1 || stats.Conflict != 1 {
		t.Errorf("unexpected causes %+v", stats)
	}
	if stats.Kills != 1 || stats.Harvests != 1 {
		t.Errorf("expected 1 kill and 1 harvest, got %d/%d", stats.Kills, stats.Harvests)
	}
	if stats.Rabbits != 12 || stats.Foxes != 2 {
		t.Errorf("unexpected counts %d/%d", stats.Rabbits, stats.Foxes)
	}
	if stats.FoxEnergyMean != 3 {
		t.Errorf("expected fox energy mean 3, got %v", stats.FoxEnergyMean)
	}

	next := c.Flush(20, "summer", Census{})
	if next.WindowStart != 10 {
		t.Errorf("expected next window to start at 10, got %d", next.WindowStart)
	}
	if next.RabbitBirths != 0 || next.Kills != 0 || next.Eaten != 0 {
		t.Error("expected counters reset after flush")
	}
}

func TestCollector_MinimumWindow(t *testing.T) {
	c := NewCollector("", 0)
	if c.WindowSteps() != 1 {
		t.Errorf("expected window of at least 1 step, got %d", c.WindowSteps())
	}
}
