package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of steps.
type WindowStats struct {
	RunID       string `csv:"run_id"`
	WindowStart int    `csv:"-"`
	WindowEnd   int    `csv:"window_end"`
	Season      string `csv:"season"`

	// Population counts at window end
	Rabbits int `csv:"rabbits"`
	Foxes   int `csv:"foxes"`
	Hunters int `csv:"hunters"`
	Trees   int `csv:"trees"`
	Stones  int `csv:"stones"`

	// Events during window
	RabbitBirths int `csv:"rabbit_births"`
	FoxBirths    int `csv:"fox_births"`
	HunterBirths int `csv:"hunter_births"`
	RabbitDeaths int `csv:"rabbit_deaths"`
	FoxDeaths    int `csv:"fox_deaths"`
	HunterDeaths int `csv:"hunter_deaths"`
	TreeDeaths   int `csv:"tree_deaths"`

	// Deaths by cause
	OldAge       int `csv:"deaths_old_age"`
	Starvation   int `csv:"deaths_starvation"`
	Overcrowding int `csv:"deaths_overcrowding"`
	Eaten        int `csv:"deaths_eaten"`
	Conflict     int `csv:"deaths_conflict"`
	Exhausted    int `csv:"deaths_exhausted"`

	Kills    int `csv:"kills"`
	Harvests int `csv:"harvests"`
	Fruit    int `csv:"fruit"`

	// Hunger distribution (sampled at window end)
	FoxEnergyMean    float64 `csv:"fox_energy_mean"`
	FoxEnergyP50     float64 `csv:"fox_energy_p50"`
	HunterEnergyMean float64 `csv:"hunter_energy_mean"`
	HunterEnergyP10  float64 `csv:"hunter_energy_p10"`
	HunterEnergyP50  float64 `csv:"hunter_energy_p50"`
	HunterEnergyP90  float64 `csv:"hunter_energy_p90"`
}

// Predators returns the number of live consumers.
func (s WindowStats) Predators() int { return s.Foxes + s.Hunters }

// ComputeEnergyStats calculates mean and empirical percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStart),
		slog.Int("window_end", s.WindowEnd),
		slog.String("season", s.Season),
		slog.Int("rabbits", s.Rabbits),
		slog.Int("foxes", s.Foxes),
		slog.Int("hunters", s.Hunters),
		slog.Int("trees", s.Trees),
		slog.Int("rabbit_births", s.RabbitBirths),
		slog.Int("fox_births", s.FoxBirths),
		slog.Int("hunter_births", s.HunterBirths),
		slog.Int("rabbit_deaths", s.RabbitDeaths),
		slog.Int("fox_deaths", s.FoxDeaths),
		slog.Int("hunter_deaths", s.HunterDeaths),
		slog.Int("kills", s.Kills),
		slog.Int("harvests", s.Harvests),
		slog.Float64("fox_energy_mean", s.FoxEnergyMean),
		slog.Float64("hunter_energy_mean", s.HunterEnergyMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEnd,
		"season", s.Season,
		"rabbits", s.Rabbits,
		"foxes", s.Foxes,
		"hunters", s.Hunters,
		"trees", s.Trees,
		"stones", s.Stones,
		"births", s.RabbitBirths+s.FoxBirths+s.HunterBirths,
		"old_age", s.OldAge,
		"starvation", s.Starvation,
		"overcrowding", s.Overcrowding,
		"eaten", s.Eaten,
		"conflict", s.Conflict,
		"exhausted", s.Exhausted,
		"kills", s.Kills,
		"harvests", s.Harvests,
		"fruit", s.Fruit,
		"fox_energy_p50", s.FoxEnergyP50,
		"hunter_energy_p10", s.HunterEnergyP10,
		"hunter_energy_p50", s.HunterEnergyP50,
		"hunter_energy_p90", s.HunterEnergyP90,
	)
}
