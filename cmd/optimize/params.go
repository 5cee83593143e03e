// Package main provides CMA-ES optimization for fieldsim species policies.
package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/pthm-cable/fieldsim/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded when applied
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Rabbit
			{Name: "rabbit_breeding_prob", Path: "species.rabbit.breeding_probability", Min: 0.02, Max: 0.40, Default: 0.15},
			{Name: "rabbit_max_litter", Path: "species.rabbit.max_litter", Min: 1, Max: 8, Default: 5, Integer: true},
			// Fox (a meal resets hunger, so the rabbit meal follows max_energy)
			{Name: "fox_breeding_prob", Path: "species.fox.breeding_probability", Min: 0.02, Max: 0.30, Default: 0.09},
			{Name: "fox_max_litter", Path: "species.fox.max_litter", Min: 1, Max: 6, Default: 3, Integer: true},
			{Name: "fox_max_energy", Path: "species.fox.max_energy", Min: 2, Max: 12, Default: 4, Integer: true},
			// Hunter
			{Name: "hunter_breeding_prob", Path: "species.hunter.breeding_probability", Min: 0.2, Max: 1.0, Default: 1.0},
			{Name: "hunter_rabbit_meal", Path: "diet.hunter.rabbit", Min: 5, Max: 80, Default: 30, Integer: true},
			{Name: "hunter_fox_meal", Path: "diet.hunter.fox", Min: 5, Max: 100, Default: 50, Integer: true},
			{Name: "hunter_tree_meal", Path: "diet.hunter.tree", Min: 5, Max: 80, Default: 40, Integer: true},
			// Tree
			{Name: "tree_growth_prob", Path: "species.tree.growth_probability", Min: 0.01, Max: 0.30, Default: 0.05},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds. Integer parameters are rounded.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Max(spec.Min, math.Min(spec.Max, v[i]))
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// Format renders values as "name=value" pairs for logs.
func (pv *ParamVector) Format(values []float64) string {
	parts := make([]string, len(pv.Specs))
	for i, spec := range pv.Specs {
		parts[i] = fmt.Sprintf("%s=%.4g", spec.Name, values[i])
	}
	return strings.Join(parts, " ")
}

// ApplyToConfig applies parameter values to a Config struct.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	i := 0
	next := func() float64 {
		v := clamped[i]
		i++
		return v
	}

	cfg.Species.Rabbit.BreedingProbability = next()
	cfg.Species.Rabbit.MaxLitter = int(next())

	cfg.Species.Fox.BreedingProbability = next()
	cfg.Species.Fox.MaxLitter = int(next())
	cfg.Species.Fox.MaxEnergy = int(next())

	cfg.Species.Hunter.BreedingProbability = next()
	hunterRabbit, hunterFox, hunterTree := int(next()), int(next()), int(next())

	cfg.Species.Tree.GrowthProbability = next()

	if cfg.Diet == nil {
		cfg.Diet = config.DietConfig{}
	}
	cfg.Diet["fox"] = map[string]int{"rabbit": cfg.Species.Fox.MaxEnergy}
	cfg.Diet["hunter"] = map[string]int{
		"rabbit": hunterRabbit,
		"fox":    hunterFox,
		"tree":   hunterTree,
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Species.Rabbit.BreedingProbability,
		float64(cfg.Species.Rabbit.MaxLitter),
		cfg.Species.Fox.BreedingProbability,
		float64(cfg.Species.Fox.MaxLitter),
		float64(cfg.Species.Fox.MaxEnergy),
		cfg.Species.Hunter.BreedingProbability,
		float64(cfg.Diet["hunter"]["rabbit"]),
		float64(cfg.Diet["hunter"]["fox"]),
		float64(cfg.Diet["hunter"]["tree"]),
		cfg.Species.Tree.GrowthProbability,
	}
}
