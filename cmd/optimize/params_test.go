package main

import (
	"context"
	"math"
	"testing"

	"github.com/pthm-cable/fieldsim/config"
)

func init() {
	config.MustInit("")
}

// ---------- params ----------

func TestParamVector_DefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Defaults())
	want := pv.DefaultVector()
	for i, spec := range pv.Specs {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s: expected default %v, config has %v", spec.Name, want[i], got[i])
		}
	}
}

func TestParamVector_NormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-9 {
			t.Errorf("%s: expected %v, got %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVector_Clamp(t *testing.T) {
	pv := NewParamVector()
	v := make([]float64, pv.Dim())
	for i := range v {
		v[i] = -1000
	}
	for i, c := range pv.Clamp(v) {
		if c != pv.Specs[i].Min {
			t.Errorf("%s: expected min %v, got %v", pv.Specs[i].Name, pv.Specs[i].Min, c)
		}
	}

	v[1] = 3.6 // rabbit_max_litter
	if got := pv.Clamp(v)[1]; got != 4 {
		t.Errorf("expected integer parameter rounded to 4, got %v", got)
	}
}

func TestParamVector_ApplyToConfig(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()
	values := pv.DefaultVector()
	values[4] = 7    // fox_max_energy
	values[7] = 64.4 // hunter_fox_meal
	pv.ApplyToConfig(cfg, values)

	if cfg.Species.Fox.MaxEnergy != 7 {
		t.Errorf("expected fox max energy 7, got %d", cfg.Species.Fox.MaxEnergy)
	}
	if cfg.Diet["fox"]["rabbit"] != 7 {
		t.Errorf("expected fox meal to follow max energy, got %d", cfg.Diet["fox"]["rabbit"])
	}
	if cfg.Diet["hunter"]["fox"] != 64 {
		t.Errorf("expected hunter fox meal 64, got %d", cfg.Diet["hunter"]["fox"])
	}
	if got := pv.ExtractFromConfig(cfg); got[4] != 7 || got[7] != 64 {
		t.Errorf("expected extract to read back applied values, got %v", got)
	}
}

// ---------- fitness ----------

func TestComputeQuality(t *testing.T) {
	flat := runResult{}
	for i := 0; i < 50; i++ {
		flat.prey = append(flat.prey, 40)
		flat.hunters = append(flat.hunters, 5)
	}
	if q := computeQuality(flat); math.Abs(q-1) > 1e-9 {
		t.Errorf("expected quality 1 for constant populations, got %v", q)
	}

	swinging := runResult{}
	for i := 0; i < 50; i++ {
		swinging.prey = append(swinging.prey, float64(1+(i%2)*80))
		swinging.hunters = append(swinging.hunters, 5)
	}
	if q := computeQuality(swinging); q >= computeQuality(flat) {
		t.Errorf("expected oscillating populations to score lower, got %v", q)
	}

	if q := computeQuality(runResult{prey: []float64{1}, hunters: []float64{1}}); q != 0 {
		t.Errorf("expected 0 for short runs, got %v", q)
	}
}

func TestEvaluate_ShortRun(t *testing.T) {
	cfg := config.Defaults()
	cfg.Field.Depth, cfg.Field.Width = 15, 15
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 20, []int64{1, 2}, cfg, 0)

	fitness, err := fe.Evaluate(context.Background(), pv.DefaultVector())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	steps, _ := fe.LastResult()
	if steps < 0 || steps > 20 {
		t.Errorf("expected mean steps within [0, 20], got %v", steps)
	}
	if fitness > 0 {
		t.Errorf("expected non-positive fitness, got %v", fitness)
	}
	if cfg.Species.Fox.MaxEnergy != 4 {
		t.Error("expected base config to be left untouched")
	}
}

func TestEvaluate_Cancelled(t *testing.T) {
	cfg := config.Defaults()
	cfg.Field.Depth, cfg.Field.Width = 10, 10
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 20, []int64{1}, cfg, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fe.Evaluate(ctx, pv.DefaultVector()); err == nil {
		t.Error("expected error from cancelled context")
	}
}
