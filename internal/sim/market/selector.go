package market

import (
	"starlanes/internal/sim/catalogs"
	"starlanes/internal/sim/tuning"
)

// Selector decides which items a system stocks per category. It is a pure
// function of (system id, category id, reference data, policy): candidates are
// sorted by item id, shuffled with a generator seeded from the composite key,
// and the policy's per-rarity counts are taken off the front.
type Selector struct {
	cats   *catalogs.Catalogs
	policy tuning.SelectorPolicy
}

func NewSelector(cats *catalogs.Catalogs, policy tuning.SelectorPolicy) *Selector {
	return &Selector{cats: cats, policy: policy}
}

// SelectItems returns the items stocked at a system for one category, commons
// first, then rares, then exotics. An empty result means the category is not
// traded there at all.
func (s *Selector) SelectItems(systemID, categoryID string) []catalogs.ItemDef {
	sys, ok := s.cats.System(systemID)
	if !ok {
		return nil
	}
	counts := s.counts(sys.PlanetType, categoryID)
	if counts == [3]int{} {
		return nil
	}

	var common, rare, exotic []string
	for _, id := range s.cats.Items.ByCategory[categoryID] {
		switch s.cats.Items.Defs[id].Rarity {
		case catalogs.RarityCommon:
			common = append(common, id)
		case catalogs.RarityRare:
			rare = append(rare, id)
		case catalogs.RarityExotic:
			exotic = append(exotic, id)
		}
	}

	rng := newSplitMix64(seedFor(systemID, categoryID))
	picked := make([]catalogs.ItemDef, 0, counts[0]+counts[1]+counts[2])
	for i, bucket := range [][]string{common, rare, exotic} {
		for _, id := range draw(bucket, counts[i], rng) {
			picked = append(picked, s.cats.Items.Defs[id])
		}
	}
	return picked
}

// counts resolves the policy table: Trade Hub first, then production, then
// the planet's demand level for the category.
func (s *Selector) counts(pt catalogs.PlanetType, categoryID string) [3]int {
	if pt == catalogs.PlanetTradeHub {
		return s.policy.TradeHub
	}
	if s.cats.Produces(pt, categoryID) {
		return s.policy.Producing
	}
	switch s.cats.DemandLevelFor(pt, categoryID) {
	case catalogs.DemandHigh:
		return s.policy.High
	case catalogs.DemandMedium:
		return s.policy.Medium
	case catalogs.DemandLow:
		return s.policy.Low
	default:
		return s.policy.None
	}
}

// draw Fisher-Yates shuffles ids in place order (ids arrive id-sorted) and
// returns the first n. Fewer candidates than requested means all of them.
func draw(ids []string, n int, rng *splitMix64) []string {
	if n <= 0 || len(ids) == 0 {
		return nil
	}
	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
