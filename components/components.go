// Package components defines ECS components for the simulation.
package components

import "github.com/pthm-cable/fieldsim/field"

// Kind identifies the species of an entity. It is a closed set; every
// switch over Kind in the repository handles all five values.
type Kind uint8

const (
	KindRabbit Kind = iota // prey
	KindFox                // predator
	KindHunter             // apex consumer
	KindTree               // producer
	KindStone              // obstacle
	NumKinds
)

var kindNames = [NumKinds]string{"rabbit", "fox", "hunter", "tree", "stone"}

func (k Kind) String() string {
	if k < NumKinds {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a species name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Stationary reports whether the species never moves.
func (k Kind) Stationary() bool {
	return k == KindTree || k == KindStone
}

// Species tags an entity with its Kind.
type Species struct {
	Kind Kind
}

// Position is the cell an entity currently occupies.
type Position struct {
	field.Coord
}

// Life holds the state shared by every acting species.
type Life struct {
	Age   int
	Alive bool
}
