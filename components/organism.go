package components

// Energy is the hunger level of a consumer. Level is consumed every step
// and restored by feeding; the entity starves when it reaches zero.
type Energy struct {
	Level int
	Max   int
}

// Low reports whether the level is below frac of the maximum.
func (e Energy) Low(frac float64) bool {
	return float64(e.Level) < frac*float64(e.Max)
}

// Fruit is the harvestable stock of a producer.
type Fruit struct {
	Count int
}

// Tally counts a hunter's kills. Kills resets whenever a litter is produced;
// Total never resets.
type Tally struct {
	Kills int
	Total int
}

// Cause records why an entity died.
type Cause string

const (
	CauseOldAge       Cause = "old_age"
	CauseStarvation   Cause = "starvation"
	CauseOvercrowding Cause = "overcrowding"
	CauseEaten        Cause = "eaten"
	CauseConflict     Cause = "conflict"
	CauseExhausted    Cause = "exhausted"
)
