// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Fallback field dimensions used when the configured ones are not positive.
const (
	DefaultDepth = 50
	DefaultWidth = 50
)

// Config holds all simulation configuration parameters.
type Config struct {
	Field      FieldConfig      `yaml:"field"`
	Run        RunConfig        `yaml:"run"`
	Season     SeasonConfig     `yaml:"season"`
	Population PopulationConfig `yaml:"population"`
	Species    SpeciesConfig    `yaml:"species"`
	Diet       DietConfig       `yaml:"diet"`
	Hunter     HunterConfig     `yaml:"hunter"`
	Obstacles  ObstaclesConfig  `yaml:"obstacles"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// FieldConfig holds grid dimensions.
type FieldConfig struct {
	Depth int `yaml:"depth"`
	Width int `yaml:"width"`
}

// RunConfig holds run-level parameters.
type RunConfig struct {
	Seed     int64 `yaml:"seed"` // 0 = time-based
	MaxSteps int   `yaml:"max_steps"`
}

// SeasonConfig controls the cyclic season label.
type SeasonConfig struct {
	Length int `yaml:"length"` // steps per season
}

// PopulationConfig holds per-species creation probabilities used when populating a field.
type PopulationConfig struct {
	Hunter float64 `yaml:"hunter"`
	Fox    float64 `yaml:"fox"`
	Rabbit float64 `yaml:"rabbit"`
	Tree   float64 `yaml:"tree"`
}

// PolicyConfig holds the fixed behaviour constants of one species.
type PolicyConfig struct {
	BreedingAge         int     `yaml:"breeding_age"`
	MaxAge              int     `yaml:"max_age"` // 0 = ageless
	BreedingProbability float64 `yaml:"breeding_probability"`
	MaxLitter           int     `yaml:"max_litter"`
	MaxEnergy           int     `yaml:"max_energy"` // 0 = does not eat
	Drain               int     `yaml:"drain"`
	MaxFruit            int     `yaml:"max_fruit"`
	GrowthProbability   float64 `yaml:"growth_probability"`
}

// SpeciesConfig holds the policy of every acting species.
type SpeciesConfig struct {
	Rabbit PolicyConfig `yaml:"rabbit"`
	Fox    PolicyConfig `yaml:"fox"`
	Hunter PolicyConfig `yaml:"hunter"`
	Tree   PolicyConfig `yaml:"tree"`
}

// DietConfig maps eater species to the meal value of each food species.
// Decoding merges into the existing table per eater and food, so a partial
// overlay only replaces the meals it names. A meal of 0 removes the food.
type DietConfig map[string]map[string]int

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DietConfig) UnmarshalYAML(value *yaml.Node) error {
	var overlay map[string]map[string]int
	if err := value.Decode(&overlay); err != nil {
		return fmt.Errorf("decoding diet: %w", err)
	}
	if *d == nil {
		*d = make(DietConfig, len(overlay))
	}
	for eater, foods := range overlay {
		meals := (*d)[eater]
		if meals == nil {
			meals = make(map[string]int, len(foods))
			(*d)[eater] = meals
		}
		for food, value := range foods {
			meals[food] = value
		}
	}
	return nil
}

// HunterConfig holds the extra rules of the apex consumer.
type HunterConfig struct {
	LowEnergyFraction float64 `yaml:"low_energy_fraction"` // prefer fruit below this share of max energy
	KillsToBreed      int     `yaml:"kills_to_breed"`
	MaxKills          int     `yaml:"max_kills"`
}

// ObstaclesConfig controls obstacle placement at reset.
type ObstaclesConfig struct {
	Map           string `yaml:"map"`
	StoneCount    int    `yaml:"stone_count"`
	ClusterSpread int    `yaml:"cluster_spread"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowSteps     int `yaml:"window_steps"`
	BookmarkHistory int `yaml:"bookmark_history"`
	PerfWindow      int `yaml:"perf_window"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize replaces values the simulator cannot run with by safe defaults.
// Bad dimensions are a recoverable configuration error, never a failure.
func (c *Config) Normalize() {
	if c.Field.Depth <= 0 || c.Field.Width <= 0 {
		slog.Warn("invalid_field_dimensions",
			"depth", c.Field.Depth,
			"width", c.Field.Width,
			"using_depth", DefaultDepth,
			"using_width", DefaultWidth,
		)
		c.Field.Depth = DefaultDepth
		c.Field.Width = DefaultWidth
	}
	if c.Season.Length <= 0 {
		c.Season.Length = 1
	}
	if c.Telemetry.WindowSteps <= 0 {
		c.Telemetry.WindowSteps = 1
	}
	if c.Obstacles.StoneCount < 0 {
		c.Obstacles.StoneCount = 0
	}
	if c.Obstacles.ClusterSpread < 0 {
		c.Obstacles.ClusterSpread = 0
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
