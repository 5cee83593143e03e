package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/config"
	"github.com/pthm-cable/fieldsim/game"
)

// FitnessEvaluator runs simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxSteps   int
	seeds      []int64
	baseConfig *config.Config
	workers    int

	mu          sync.Mutex
	lastSteps   float64
	lastQuality float64
}

// NewFitnessEvaluator creates a new evaluator. workers bounds the number of
// seeds simulated at once (0 = one per seed).
func NewFitnessEvaluator(params *ParamVector, maxSteps int, seeds []int64, baseCfg *config.Config, workers int) *FitnessEvaluator {
	if workers <= 0 {
		workers = len(seeds)
	}
	return &FitnessEvaluator{
		params:     params,
		maxSteps:   maxSteps,
		seeds:      seeds,
		baseConfig: baseCfg,
		workers:    workers,
	}
}

// LastResult returns the mean viable steps and quality from the most recent evaluation.
func (fe *FitnessEvaluator) LastResult() (steps, quality float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSteps, fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	steps   int       // steps while the field stayed viable
	prey    []float64 // rabbit count per step
	hunters []float64 // fox + hunter count per step
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Fitness is the negated mean number of viable steps over all seeds, with up
// to a 20% bonus for stable populations.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, x []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	results := make([]runResult, len(fe.seeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fe.workers)
	for i, seed := range fe.seeds {
		g.Go(func() error {
			cfg, err := fe.copyConfig()
			if err != nil {
				return err
			}
			fe.params.ApplyToConfig(cfg, x)
			r, err := runSimulation(gctx, cfg, seed, fe.maxSteps)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	steps := make([]float64, len(results))
	qualities := make([]float64, len(results))
	for i, r := range results {
		steps[i] = float64(r.steps)
		qualities[i] = computeQuality(r)
	}
	meanSteps := stat.Mean(steps, nil)
	quality := stat.Mean(qualities, nil)

	fe.mu.Lock()
	fe.lastSteps = meanSteps
	fe.lastQuality = quality
	fe.mu.Unlock()

	return -(meanSteps * (1.0 + 0.2*quality)), nil
}

// runSimulation executes a single run until the field is no longer viable or
// maxSteps is reached.
func runSimulation(ctx context.Context, cfg *config.Config, seed int64, maxSteps int) (runResult, error) {
	sim := game.New(cfg, game.Options{Rng: rand.New(rand.NewSource(seed))})

	var r runResult
	for r.steps < maxSteps && sim.IsViable() {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		sim.Step()
		r.steps++

		summary := sim.Summary()
		r.prey = append(r.prey, float64(summary[components.KindRabbit]))
		r.hunters = append(r.hunters, float64(summary[components.KindFox]+summary[components.KindHunter]))
	}
	return r, nil
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() (*config.Config, error) {
	data, err := yaml.Marshal(fe.baseConfig)
	if err != nil {
		return nil, fmt.Errorf("copying config: %w", err)
	}
	cfg := &config.Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("copying config: %w", err)
	}
	return cfg, nil
}

// qualityWarmupSteps are skipped before measuring stability.
const qualityWarmupSteps = 20

// computeQuality scores population stability in [0, 1] from the coefficient
// of variation of prey and consumer counts after warmup.
func computeQuality(r runResult) float64 {
	if len(r.prey) <= qualityWarmupSteps+1 {
		return 0
	}
	cvPrey := cv(r.prey[qualityWarmupSteps:])
	cvPred := cv(r.hunters[qualityWarmupSteps:])
	return math.Exp(-(cvPrey*cvPrey + cvPred*cvPred))
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	if mean == 0 {
		return 0
	}
	return math.Sqrt(variance) / mean
}
