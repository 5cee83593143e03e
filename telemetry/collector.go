package telemetry

import "github.com/pthm-cable/fieldsim/components"

// Census is the population state sampled when a window is flushed.
type Census struct {
	Counts         [components.NumKinds]int
	FoxEnergies    []float64
	HunterEnergies []float64
	Fruit          int
}

// Collector accumulates lifecycle events within step windows and produces WindowStats.
// It satisfies systems.Recorder.
type Collector struct {
	runID       string
	windowSteps int

	// Current window tracking
	windowStart int

	// Event counters for current window
	births   [components.NumKinds]int
	deaths   [components.NumKinds]int
	causes   map[components.Cause]int
	kills    int
	harvests int
}

// NewCollector creates a collector that closes a window every windowSteps steps.
func NewCollector(runID string, windowSteps int) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	return &Collector{
		runID:       runID,
		windowSteps: windowSteps,
		causes:      make(map[components.Cause]int),
	}
}

// RecordBirth records n newborns of kind.
func (c *Collector) RecordBirth(kind components.Kind, n int) {
	c.births[kind] += n
}

// RecordDeath records a death event.
func (c *Collector) RecordDeath(kind components.Kind, cause components.Cause) {
	c.deaths[kind]++
	c.causes[cause]++
}

// RecordKill records a kill.
func (c *Collector) RecordKill(_, _ components.Kind) {
	c.kills++
}

// RecordHarvest records a fruit harvest.
func (c *Collector) RecordHarvest(components.Kind) {
	c.harvests++
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(step int) bool {
	return step-c.windowStart >= c.windowSteps
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(step int, season string, census Census) WindowStats {
	foxMean, _, foxP50, _ := ComputeEnergyStats(census.FoxEnergies)
	hMean, hP10, hP50, hP90 := ComputeEnergyStats(census.HunterEnergies)

	stats := WindowStats{
		RunID:       c.runID,
		WindowStart: c.windowStart,
		WindowEnd:   step,
		Season:      season,

		Rabbits: census.Counts[components.KindRabbit],
		Foxes:   census.Counts[components.KindFox],
		Hunters: census.Counts[components.KindHunter],
		Trees:   census.Counts[components.KindTree],
		Stones:  census.Counts[components.KindStone],

		RabbitBirths: c.births[components.KindRabbit],
		FoxBirths:    c.births[components.KindFox],
		HunterBirths: c.births[components.KindHunter],
		RabbitDeaths: c.deaths[components.KindRabbit],
		FoxDeaths:    c.deaths[components.KindFox],
		HunterDeaths: c.deaths[components.KindHunter],
		TreeDeaths:   c.deaths[components.KindTree],

		OldAge:       c.causes[components.CauseOldAge],
		Starvation:   c.causes[components.CauseStarvation],
		Overcrowding: c.causes[components.CauseOvercrowding],
		Eaten:        c.causes[components.CauseEaten],
		Conflict:     c.causes[components.CauseConflict],
		Exhausted:    c.causes[components.CauseExhausted],

		Kills:    c.kills,
		Harvests: c.harvests,
		Fruit:    census.Fruit,

		FoxEnergyMean:    foxMean,
		FoxEnergyP50:     foxP50,
		HunterEnergyMean: hMean,
		HunterEnergyP10:  hP10,
		HunterEnergyP50:  hP50,
		HunterEnergyP90:  hP90,
	}

	c.Reset(step)
	return stats
}

// Reset discards the current window's counters and starts a new window at step.
func (c *Collector) Reset(step int) {
	c.windowStart = step
	c.births = [components.NumKinds]int{}
	c.deaths = [components.NumKinds]int{}
	clear(c.causes)
	c.kills = 0
	c.harvests = 0
}

// WindowSteps returns the number of steps per window.
func (c *Collector) WindowSteps() int {
	return c.windowSteps
}
