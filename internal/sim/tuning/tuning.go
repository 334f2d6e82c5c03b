package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	RarityMultipliers RarityMultipliers `yaml:"rarity_multipliers"`

	MarketSensitivity  float64 `yaml:"market_sensitivity"`
	ConnectionDiscount float64 `yaml:"connection_discount"`
	ResalePenalty      float64 `yaml:"resale_penalty"`

	UniverseTotal     float64 `yaml:"universe_total"`
	HeatMidpoint      float64 `yaml:"heat_midpoint"`
	FluctuationAmount float64 `yaml:"fluctuation_amount"`
	FluctuationMin    int     `yaml:"fluctuation_min_categories"`
	FluctuationMax    int     `yaml:"fluctuation_max_categories"`

	EventProbability float64 `yaml:"event_probability"`
	EventDecay       float64 `yaml:"event_decay"`
	EventCooldown    int     `yaml:"event_cooldown_jumps"`
	EventWarmup      int     `yaml:"event_warmup_jumps"`

	RegenRate float64   `yaml:"regen_rate"`
	StockCaps StockCaps `yaml:"stock_caps"`

	Selector SelectorPolicy `yaml:"selector"`

	PriceBins []float64 `yaml:"price_bins"`

	DemandMultipliers DemandMultipliers `yaml:"demand_multipliers"`

	FuelCostPerUnit float64 `yaml:"fuel_cost_per_unit"`

	NewGame NewGameDefaults `yaml:"new_game"`
}

type RarityMultipliers struct {
	Common float64 `yaml:"common"`
	Rare   float64 `yaml:"rare"`
	Exotic float64 `yaml:"exotic"`
}

type StockCaps struct {
	Common float64 `yaml:"common"`
	Rare   float64 `yaml:"rare"`
	Exotic float64 `yaml:"exotic"`
}

// SelectorPolicy is the item-count table the catalog selector draws from.
// Counts are {common, rare, exotic} per situation. It is configuration, not
// a hardcoded rule, so balance passes can reshape system markets.
type SelectorPolicy struct {
	TradeHub  [3]int `yaml:"trade_hub"`
	Producing [3]int `yaml:"producing"`
	High      [3]int `yaml:"high"`
	Medium    [3]int `yaml:"medium"`
	Low       [3]int `yaml:"low"`
	None      [3]int `yaml:"none"`
}

type DemandMultipliers struct {
	None   float64 `yaml:"none"`
	Low    float64 `yaml:"low"`
	Medium float64 `yaml:"medium"`
	High   float64 `yaml:"high"`
}

type NewGameDefaults struct {
	Credits        float64 `yaml:"credits"`
	CargoCapacity  float64 `yaml:"cargo_capacity"`
	WinGoal        float64 `yaml:"win_goal"`
	StartingSystem string  `yaml:"starting_system"`
	MarketMode     string  `yaml:"market_mode"`
}

func Defaults() Tuning {
	return Tuning{
		RarityMultipliers: RarityMultipliers{Common: 1.0, Rare: 1.5, Exotic: 2.5},

		MarketSensitivity:  0.08,
		ConnectionDiscount: 0.10,
		ResalePenalty:      0.95,

		UniverseTotal:     35.0,
		HeatMidpoint:      5.0,
		FluctuationAmount: 0.6,
		FluctuationMin:    2,
		FluctuationMax:    3,

		EventProbability: 0.25,
		EventDecay:       0.5,
		EventCooldown:    3,
		EventWarmup:      5,

		RegenRate: 0.15,
		StockCaps: StockCaps{Common: 100, Rare: 40, Exotic: 15},

		Selector: SelectorPolicy{
			TradeHub:  [3]int{4, 3, 2},
			Producing: [3]int{3, 3, 2},
			High:      [3]int{3, 2, 1},
			Medium:    [3]int{2, 1, 0},
			Low:       [3]int{1, 0, 0},
			None:      [3]int{0, 0, 0},
		},

		PriceBins: []float64{0.60, 0.80, 0.95, 1.05, 1.20, 1.40},

		DemandMultipliers: DemandMultipliers{None: 0.7, Low: 0.9, Medium: 1.0, High: 1.15},

		FuelCostPerUnit: 10.0,

		NewGame: NewGameDefaults{
			Credits:        1000,
			CargoCapacity:  50,
			WinGoal:        100000,
			StartingSystem: "random",
			MarketMode:     "infinite",
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.UniverseTotal <= 0 {
		return fmt.Errorf("universe_total must be positive")
	}
	if t.FluctuationMin < 1 || t.FluctuationMax < t.FluctuationMin {
		return fmt.Errorf("fluctuation category range invalid: [%d,%d]", t.FluctuationMin, t.FluctuationMax)
	}
	if t.EventProbability < 0 || t.EventProbability > 1 {
		return fmt.Errorf("event_probability out of [0,1]: %v", t.EventProbability)
	}
	if t.ResalePenalty <= 0 || t.ResalePenalty > 1 {
		return fmt.Errorf("resale_penalty out of (0,1]: %v", t.ResalePenalty)
	}
	if len(t.PriceBins) != 6 {
		return fmt.Errorf("price_bins must list 6 edges, got %d", len(t.PriceBins))
	}
	for i := 1; i < len(t.PriceBins); i++ {
		if t.PriceBins[i] <= t.PriceBins[i-1] {
			return fmt.Errorf("price_bins must be strictly increasing")
		}
	}
	return nil
}
