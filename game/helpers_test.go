package game

import (
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/config"
	"github.com/pthm-cable/fieldsim/field"
	"github.com/pthm-cable/fieldsim/terrain"
)

func init() {
	config.MustInit("")
}

// emptySim returns a simulator with no obstacles and no initial population.
func emptySim(t *testing.T, depth, width int, seed int64, tweak func(*config.Config)) *Simulator {
	t.Helper()
	cfg := emptyConfig(depth, width)
	if tweak != nil {
		tweak(cfg)
	}
	return New(cfg, Options{
		Rng:       rand.New(rand.NewSource(seed)),
		Obstacles: terrain.Layout{},
	})
}

func mustSpawn(t *testing.T, s *Simulator, kind components.Kind, c field.Coord) ecs.Entity {
	t.Helper()
	e, err := s.Spawn(kind, c)
	if err != nil {
		t.Fatalf("spawn %s at %s: %v", kind, c, err)
	}
	return e
}

func emptyConfig(depth, width int) *config.Config {
	cfg := config.Defaults()
	cfg.Field.Depth = depth
	cfg.Field.Width = width
	cfg.Population = config.PopulationConfig{}
	return cfg
}
