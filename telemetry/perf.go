package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of Simulator.Step, listed in execution order.
type Phase int

const (
	PhaseProducers Phase = iota // trees act
	PhaseMobile                 // rabbits, foxes and hunters act
	PhasePrune                  // dead actors dropped, newborns appended
	PhaseObstacles              // stones stamped into the write field
	PhaseSwap                   // fields swapped, season advanced
	PhaseTelemetry              // window flush and bookmarks
	NumPhases
)

var phaseNames = [NumPhases]string{
	"producers", "mobile", "prune", "obstacles", "swap", "telemetry",
}

func (p Phase) String() string {
	if p < 0 || p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

type stepSample struct {
	total  time.Duration
	phases [NumPhases]time.Duration
}

// StepTimer measures wall time per step and per phase over the last window
// steps. It is driven by the simulation goroutine only.
type StepTimer struct {
	ring   []stepSample
	next   int
	filled int

	cur   stepSample
	begun time.Time
	mark  time.Time
	open  Phase
}

// NewStepTimer returns a timer averaging over window steps (50 if window < 1).
func NewStepTimer(window int) *StepTimer {
	if window < 1 {
		window = 50
	}
	return &StepTimer{ring: make([]stepSample, window), open: -1}
}

// Begin starts a step.
func (t *StepTimer) Begin() {
	t.begun = time.Now()
	t.cur = stepSample{}
	t.open = -1
}

// Enter closes the running phase, if any, and starts p.
func (t *StepTimer) Enter(p Phase) {
	now := time.Now()
	t.close(now)
	t.mark = now
	t.open = p
}

func (t *StepTimer) close(now time.Time) {
	if t.open >= 0 && t.open < NumPhases {
		t.cur.phases[t.open] += now.Sub(t.mark)
	}
}

// End closes the step and stores it in the window.
func (t *StepTimer) End() {
	now := time.Now()
	t.close(now)
	t.open = -1
	t.cur.total = now.Sub(t.begun)

	t.ring[t.next] = t.cur
	t.next = (t.next + 1) % len(t.ring)
	if t.filled < len(t.ring) {
		t.filled++
	}
}

// StepTiming summarizes the window of a StepTimer.
type StepTiming struct {
	Steps          int
	Mean, Min, Max time.Duration
	PhaseMean      [NumPhases]time.Duration
	StepsPerSecond float64
}

// Stats summarizes the steps currently in the window.
func (t *StepTimer) Stats() StepTiming {
	st := StepTiming{Steps: t.filled}
	if t.filled == 0 {
		return st
	}

	var sum time.Duration
	var phaseSum [NumPhases]time.Duration
	for i, s := range t.ring[:t.filled] {
		sum += s.total
		if i == 0 || s.total < st.Min {
			st.Min = s.total
		}
		st.Max = max(st.Max, s.total)
		for p, d := range s.phases {
			phaseSum[p] += d
		}
	}

	n := time.Duration(t.filled)
	st.Mean = sum / n
	for p := range phaseSum {
		st.PhaseMean[p] = phaseSum[p] / n
	}
	if st.Mean > 0 {
		st.StepsPerSecond = float64(time.Second) / float64(st.Mean)
	}
	return st
}

// Share returns the percentage of the mean step spent in p.
func (st StepTiming) Share(p Phase) float64 {
	if st.Mean <= 0 || p < 0 || p >= NumPhases {
		return 0
	}
	return float64(st.PhaseMean[p]) / float64(st.Mean) * 100
}

// LogValue implements slog.LogValuer.
func (st StepTiming) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("mean_step_us", st.Mean.Microseconds()),
		slog.Int64("min_step_us", st.Min.Microseconds()),
		slog.Int64("max_step_us", st.Max.Microseconds()),
		slog.Float64("steps_per_sec", st.StepsPerSecond),
	}
	for p := Phase(0); p < NumPhases; p++ {
		if share := st.Share(p); share >= 0.1 {
			attrs = append(attrs, slog.Float64(p.String()+"_pct", float64(int(share*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the timing summary.
func (st StepTiming) LogStats() {
	slog.Info("perf", "timing", st)
}

// PerfRecord is one row of perf.csv.
type PerfRecord struct {
	RunID        string  `csv:"run_id"`
	WindowEnd    int     `csv:"window_end"`
	AvgStepUS    int64   `csv:"avg_step_us"`
	MinStepUS    int64   `csv:"min_step_us"`
	MaxStepUS    int64   `csv:"max_step_us"`
	StepsPerSec  float64 `csv:"steps_per_sec"`
	ProducersPct float64 `csv:"producers_pct"`
	MobilePct    float64 `csv:"mobile_pct"`
	PrunePct     float64 `csv:"prune_pct"`
	ObstaclesPct float64 `csv:"obstacles_pct"`
	SwapPct      float64 `csv:"swap_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// Record flattens the summary into a perf.csv row.
func (st StepTiming) Record(runID string, windowEnd int) PerfRecord {
	return PerfRecord{
		RunID:        runID,
		WindowEnd:    windowEnd,
		AvgStepUS:    st.Mean.Microseconds(),
		MinStepUS:    st.Min.Microseconds(),
		MaxStepUS:    st.Max.Microseconds(),
		StepsPerSec:  st.StepsPerSecond,
		ProducersPct: st.Share(PhaseProducers),
		MobilePct:    st.Share(PhaseMobile),
		PrunePct:     st.Share(PhasePrune),
		ObstaclesPct: st.Share(PhaseObstacles),
		SwapPct:      st.Share(PhaseSwap),
		TelemetryPct: st.Share(PhaseTelemetry),
	}
}
