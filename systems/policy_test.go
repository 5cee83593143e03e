package systems

import (
	"testing"

	"github.com/pthm-cable/fieldsim/components"
	"github.com/pthm-cable/fieldsim/config"
)

func TestNewPolicies_Defaults(t *testing.T) {
	p := NewPolicies(config.Cfg())

	rabbit := p.For(components.KindRabbit)
	if rabbit.BreedingAge != 5 || rabbit.MaxAge != 50 || rabbit.MaxLitter != 5 {
		t.Errorf("unexpected rabbit policy %+v", rabbit)
	}
	if rabbit.Eats() {
		t.Error("rabbits have no hunger level")
	}

	fox := p.For(components.KindFox)
	if fox.MaxEnergy != 4 || fox.Drain != 1 || fox.MaxAge != 150 {
		t.Errorf("unexpected fox policy %+v", fox)
	}

	tree := p.For(components.KindTree)
	if !tree.Ageless() || tree.MaxFruit != 5 {
		t.Errorf("unexpected tree policy %+v", tree)
	}
}

func TestDiet_Table(t *testing.T) {
	d := NewDiet(config.Cfg())

	if v, ok := d.Meal(components.KindFox, components.KindRabbit); !ok || v != 4 {
		t.Errorf("expected fox->rabbit meal 4, got %d (ok=%v)", v, ok)
	}
	if d.Preys(components.KindFox, components.KindHunter) {
		t.Error("foxes must not hunt hunters")
	}
	if !d.Preys(components.KindHunter, components.KindFox) || !d.Preys(components.KindHunter, components.KindRabbit) {
		t.Error("hunters hunt foxes and rabbits")
	}
	if d.Preys(components.KindHunter, components.KindTree) {
		t.Error("trees are harvested, not hunted")
	}
	if v, ok := d.Meal(components.KindHunter, components.KindTree); !ok || v != 40 {
		t.Errorf("expected harvest value 40, got %d", v)
	}
	if d.Preys(components.KindRabbit, components.KindFox) {
		t.Error("rabbits eat nothing")
	}
}

func TestNewDiet_UnknownSpeciesSkipped(t *testing.T) {
	cfg := config.Defaults()
	cfg.Diet["dragon"] = map[string]int{"rabbit": 9}
	cfg.Diet["fox"]["unicorn"] = 3

	d := NewDiet(cfg)
	if v, _ := d.Meal(components.KindFox, components.KindRabbit); v != 4 {
		t.Errorf("expected known entries intact, got %d", v)
	}
}
