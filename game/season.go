package game

// Season is the cyclic four-valued label derived from the step counter.
type Season int

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

var seasonNames = [...]string{"spring", "summer", "autumn", "winter"}

func (s Season) String() string {
	if s >= Spring && s <= Winter {
		return seasonNames[s]
	}
	return "unknown"
}

// SeasonAt returns the season for step when each season lasts length steps.
func SeasonAt(step, length int) Season {
	if length < 1 {
		length = 1
	}
	return Season((step / length) % 4)
}
