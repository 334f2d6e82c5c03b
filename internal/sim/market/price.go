package market

import (
	"math"

	"starlanes/internal/sim/catalogs"
	"starlanes/internal/sim/tuning"
)

// PriceLabel is the 7-bin classification shown next to a quote.
type PriceLabel string

const (
	LabelVeryLow      PriceLabel = "VERY_LOW"
	LabelLow          PriceLabel = "LOW"
	LabelSlightlyLow  PriceLabel = "SLIGHTLY_LOW"
	LabelAverage      PriceLabel = "AVERAGE"
	LabelSlightlyHigh PriceLabel = "SLIGHTLY_HIGH"
	LabelHigh         PriceLabel = "HIGH"
	LabelVeryHigh     PriceLabel = "VERY_HIGH"
)

// Composer turns reference data plus live market state into buy/sell prices.
// Every modifier in the chain is multiplicative on base price x rarity.
type Composer struct {
	cats *catalogs.Catalogs
	tune tuning.Tuning
}

func NewComposer(cats *catalogs.Catalogs, tune tuning.Tuning) *Composer {
	return &Composer{cats: cats, tune: tune}
}

func (c *Composer) rarityMultiplier(r catalogs.Rarity) float64 {
	switch r {
	case catalogs.RarityRare:
		return c.tune.RarityMultipliers.Rare
	case catalogs.RarityExotic:
		return c.tune.RarityMultipliers.Exotic
	default:
		return c.tune.RarityMultipliers.Common
	}
}

// Reference is the neutral price (base x rarity) labels are measured against.
// Measuring against raw base would pin every exotic at VERY_HIGH.
func (c *Composer) Reference(it catalogs.ItemDef) float64 {
	return it.BasePrice * c.rarityMultiplier(it.Rarity)
}

// BuyPrice is what the system charges the player for one ton.
// nearProduction reports whether any 1-jump neighbor produces the category.
func (c *Composer) BuyPrice(sys catalogs.SystemDef, it catalogs.ItemDef, u *Universe, nearProduction bool) float64 {
	price := c.Reference(it)
	price *= 1 + c.cats.ProductionModifier(sys.PlanetType, it.Category)
	price *= c.universeMultiplier(u, it.Category)
	if nearProduction {
		price *= 1 - c.tune.ConnectionDiscount
	}
	return round2(price)
}

// AdHocBuyPrice prices a player-sold listing: same chain minus the production
// modifier, since the stock is an ad-hoc lot rather than planet manufacture.
func (c *Composer) AdHocBuyPrice(it catalogs.ItemDef, u *Universe, nearProduction bool) float64 {
	price := c.Reference(it)
	price *= c.universeMultiplier(u, it.Category)
	if nearProduction {
		price *= 1 - c.tune.ConnectionDiscount
	}
	return round2(price)
}

// SellPrice is what the system pays the player for one ton. resalePenalty is
// set when the player's holding was last purchased at this very system.
func (c *Composer) SellPrice(sys catalogs.SystemDef, it catalogs.ItemDef, u *Universe, nearProduction, resalePenalty bool) float64 {
	price := c.Reference(it)
	price *= 1 + c.cats.ProductionModifier(sys.PlanetType, it.Category)
	price *= c.universeMultiplier(u, it.Category)
	if nearProduction {
		price *= 1 - c.tune.ConnectionDiscount
	}
	price *= c.demandMultiplier(sys.PlanetType, it.Category, u)
	if resalePenalty {
		price *= c.tune.ResalePenalty
	}
	return round2(price)
}

func (c *Composer) universeMultiplier(u *Universe, category string) float64 {
	return 1 + (u.Heat(category)-c.tune.HeatMidpoint)*c.tune.MarketSensitivity
}

// demandMultiplier maps the planet's demand level to a sell-side multiplier.
// Trade Hubs quote off the live heat instead of a fixed appetite: a hot
// category sells well there, a cold one poorly.
func (c *Composer) demandMultiplier(pt catalogs.PlanetType, category string, u *Universe) float64 {
	if pt == catalogs.PlanetTradeHub {
		m := u.Heat(category) / c.tune.HeatMidpoint
		if m < c.tune.DemandMultipliers.None {
			m = c.tune.DemandMultipliers.None
		}
		if m > c.tune.DemandMultipliers.High {
			m = c.tune.DemandMultipliers.High
		}
		return m
	}
	switch c.cats.DemandLevelFor(pt, category) {
	case catalogs.DemandHigh:
		return c.tune.DemandMultipliers.High
	case catalogs.DemandMedium:
		return c.tune.DemandMultipliers.Medium
	case catalogs.DemandLow:
		return c.tune.DemandMultipliers.Low
	default:
		return c.tune.DemandMultipliers.None
	}
}

// Label bins a final price against its reference. Buy and sell sides share
// the same bin edges.
func (c *Composer) Label(finalPrice, reference float64) PriceLabel {
	if reference <= 0 {
		return LabelAverage
	}
	ratio := finalPrice / reference
	bins := c.tune.PriceBins
	labels := []PriceLabel{
		LabelVeryLow, LabelLow, LabelSlightlyLow,
		LabelAverage, LabelSlightlyHigh, LabelHigh,
	}
	for i, edge := range bins {
		if ratio <= edge {
			return labels[i]
		}
	}
	return LabelVeryHigh
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
