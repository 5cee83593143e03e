package systems

import (
	"log/slog"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/config"
)

// Policy holds the fixed behaviour constants of one species.
// Policies are built once per run and never mutated.
type Policy struct {
	BreedingAge         int
	MaxAge              int // 0 = ageless
	BreedingProbability float64
	MaxLitter           int
	MaxEnergy           int // 0 = does not eat
	Drain               int
	MaxFruit            int
	GrowthProbability   float64
}

// Ageless reports whether the species never dies of old age.
func (p Policy) Ageless() bool { return p.MaxAge <= 0 }

// Eats reports whether the species has a hunger level.
func (p Policy) Eats() bool { return p.MaxEnergy > 0 }

// Policies is the per-species policy table.
type Policies [components.NumKinds]Policy

// For returns the policy of k.
func (p *Policies) For(k components.Kind) Policy {
	return p[k]
}

func policyFromConfig(pc config.PolicyConfig) Policy {
	return Policy{
		BreedingAge:         pc.BreedingAge,
		MaxAge:              pc.MaxAge,
		BreedingProbability: pc.BreedingProbability,
		MaxLitter:           pc.MaxLitter,
		MaxEnergy:           pc.MaxEnergy,
		Drain:               pc.Drain,
		MaxFruit:            pc.MaxFruit,
		GrowthProbability:   pc.GrowthProbability,
	}
}

// NewPolicies builds the policy table from the species section of cfg.
func NewPolicies(cfg *config.Config) Policies {
	var p Policies
	p[components.KindRabbit] = policyFromConfig(cfg.Species.Rabbit)
	p[components.KindFox] = policyFromConfig(cfg.Species.Fox)
	p[components.KindHunter] = policyFromConfig(cfg.Species.Hunter)
	p[components.KindTree] = policyFromConfig(cfg.Species.Tree)
	// Stones never act; the zero policy is correct.
	return p
}

// Diet is the lookup table of which species may eat which, and how much a meal is worth.
type Diet [components.NumKinds][components.NumKinds]int

// NewDiet builds the diet table from cfg. Unknown species names are logged and skipped.
func NewDiet(cfg *config.Config) Diet {
	var d Diet
	for eaterName, foods := range cfg.Diet {
		eater, ok := components.ParseKind(eaterName)
		if !ok {
			slog.Warn("unknown_diet_species", "species", eaterName)
			continue
		}
		for foodName, value := range foods {
			food, ok := components.ParseKind(foodName)
			if !ok {
				slog.Warn("unknown_diet_species", "species", foodName)
				continue
			}
			d[eater][food] = value
		}
	}
	return d
}

// Meal returns the value of eater consuming food, and whether it eats it at all.
func (d *Diet) Meal(eater, food components.Kind) (int, bool) {
	v := d[eater][food]
	return v, v > 0
}

// Preys reports whether eater hunts food. Producers are harvested, not hunted.
func (d *Diet) Preys(eater, food components.Kind) bool {
	if food.Stationary() {
		return false
	}
	_, ok := d.Meal(eater, food)
	return ok
}

// HunterRules holds the apex consumer's extra constants.
type HunterRules struct {
	LowEnergyFraction float64
	KillsToBreed      int
	MaxKills          int
}

// NewHunterRules reads the hunter section of cfg.
func NewHunterRules(cfg *config.Config) HunterRules {
	return HunterRules{
		LowEnergyFraction: cfg.Hunter.LowEnergyFraction,
		KillsToBreed:      cfg.Hunter.KillsToBreed,
		MaxKills:          cfg.Hunter.MaxKills,
	}
}
