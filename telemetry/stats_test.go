package telemetry

import (
	"math"
	"testing"
)

func TestComputeEnergyStats(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	mean, p10, p50, p90 := ComputeEnergyStats(values)

	if math.Abs(mean-5.5) > 1e-9 {
		t.Errorf("mean = %v, want 5.5", mean)
	}
	if p10 != 1 {
		t.Errorf("p10 = %v, want 1", p10)
	}
	if p50 != 5 {
		t.Errorf("p50 = %v, want 5", p50)
	}
	if p90 != 9 {
		t.Errorf("p90 = %v, want 9", p90)
	}
	if values[0] != 10 {
		t.Error("input slice must not be reordered")
	}
}

func TestComputeEnergyStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeEnergyStats(nil)

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestComputeEnergyStatsSingle(t *testing.T) {
	mean, p10, p50, p90 := ComputeEnergyStats([]float64{42})
	if mean != 42 || p10 != 42 || p50 != 42 || p90 != 42 {
		t.Errorf("expected all 42, got %v %v %v %v", mean, p10, p50, p90)
	}
}

func TestWindowStats_Predators(t *testing.T) {
	s := WindowStats{Foxes: 3, Hunters: 2}
	if s.Predators() != 5 {
		t.Errorf("expected 5, got %d", s.Predators())
	}
}
