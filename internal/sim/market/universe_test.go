package market_test

import (
	"math"
	"math/rand"
	"testing"

	"starlanes/internal/sim/catalogs"
	"starlanes/internal/sim/market"
)

func heatSum(u *market.Universe) float64 {
	var sum float64
	for _, v := range u.Snapshot() {
		sum += v
	}
	return sum
}

func TestUniverse_EvenSplit(t *testing.T) {
	u := market.NewUniverse([]string{"A", "B", "C", "D", "E", "F", "G"}, 35.0)
	for _, cat := range u.Categories() {
		if got := u.Heat(cat); got != 5.0 {
			t.Fatalf("%s: heat %v, want 5.0", cat, got)
		}
	}
	if got := heatSum(u); math.Abs(got-35.0) > 1e-9 {
		t.Fatalf("sum %v, want 35", got)
	}
}

func TestUniverse_ApplyKeepsTotal(t *testing.T) {
	u := market.NewUniverse([]string{"A", "B", "C"}, 35.0)
	u.Apply("A", 4.0)
	if got := heatSum(u); math.Abs(got-35.0) > 1e-9 {
		t.Fatalf("sum %v after apply, want 35", got)
	}
	if u.Heat("A") <= u.Heat("B") {
		t.Fatalf("shifted category should lead: A=%v B=%v", u.Heat("A"), u.Heat("B"))
	}
}

func TestUniverse_ShiftFloorsAtZero(t *testing.T) {
	u := market.NewUniverse([]string{"A", "B"}, 10.0)
	u.Shift("A", -100)
	if got := u.Heat("A"); got != 0 {
		t.Fatalf("heat %v, want 0", got)
	}
	u.Normalize()
	if got := heatSum(u); math.Abs(got-10.0) > 1e-9 {
		t.Fatalf("sum %v, want 10", got)
	}
}

func TestUniverse_ShiftUnknownCategory(t *testing.T) {
	u := market.NewUniverse([]string{"A"}, 5.0)
	u.Shift("GHOST", 3)
	if got := u.Heat("A"); got != 5.0 {
		t.Fatalf("heat %v, want 5 untouched", got)
	}
	if got := u.Heat("GHOST"); got != 0 {
		t.Fatalf("ghost heat %v, want 0", got)
	}
}

func TestUniverse_RestoredRenormalizes(t *testing.T) {
	u := market.RestoredUniverse(map[string]float64{"A": 2, "B": 2}, 35.0)
	if got := u.Heat("A"); math.Abs(got-17.5) > 1e-9 {
		t.Fatalf("heat %v, want 17.5", got)
	}
}

func TestUniverse_FluctuateKeepsTotal(t *testing.T) {
	cats := loadCatalogs(t)
	u := market.NewUniverse(cats.Categories.IDs, 35.0)
	rng := rand.New(rand.NewSource(7))
	cfg := market.FluctuationConfig{Amount: 0.6, MinCategories: 2, MaxCategories: 3}

	for i := 0; i < 200; i++ {
		u.Fluctuate(rng, cfg, cats.Correlations)
		if got := heatSum(u); math.Abs(got-35.0) > 1e-6 {
			t.Fatalf("iteration %d: sum %v, want 35", i, got)
		}
		for _, cat := range u.Categories() {
			if u.Heat(cat) < 0 {
				t.Fatalf("iteration %d: %s went negative", i, cat)
			}
		}
	}
}

func TestUniverse_FluctuateUnknownSecondary(t *testing.T) {
	u := market.NewUniverse([]string{"A", "B"}, 10.0)
	corr := catalogs.CorrelationCatalog{ByPrimary: map[string][]catalogs.CorrelationDef{
		"A": {{Primary: "A", Secondary: "GONE", Strength: 0.5}},
	}}
	rng := rand.New(rand.NewSource(1))
	u.Fluctuate(rng, market.FluctuationConfig{Amount: 0.5, MinCategories: 2, MaxCategories: 2}, corr)
	if got := heatSum(u); math.Abs(got-10.0) > 1e-9 {
		t.Fatalf("sum %v, want 10", got)
	}
}
