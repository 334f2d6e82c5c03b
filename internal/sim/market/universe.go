package market

import (
	"math/rand"
	"sort"

	"starlanes/internal/sim/catalogs"
)

// Universe is the shared market-heat vector: one value per category, held to
// a fixed total by proportional rescaling after every mutation. Bounding the
// total keeps heat a relative pressure between categories rather than an
// absolute level that could inflate without limit.
type Universe struct {
	heat  map[string]float64
	ids   []string // sorted category ids, fixes iteration order
	total float64
}

func NewUniverse(categoryIDs []string, total float64) *Universe {
	u := &Universe{
		heat:  make(map[string]float64, len(categoryIDs)),
		ids:   append([]string(nil), categoryIDs...),
		total: total,
	}
	sort.Strings(u.ids)
	if len(u.ids) > 0 {
		even := total / float64(len(u.ids))
		for _, id := range u.ids {
			u.heat[id] = even
		}
	}
	return u
}

// RestoredUniverse rebuilds a universe from a saved heat vector.
func RestoredUniverse(heat map[string]float64, total float64) *Universe {
	ids := make([]string, 0, len(heat))
	for id := range heat {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	u := &Universe{heat: make(map[string]float64, len(heat)), ids: ids, total: total}
	for id, v := range heat {
		u.heat[id] = v
	}
	u.Normalize()
	return u
}

func (u *Universe) Heat(category string) float64 {
	return u.heat[category]
}

func (u *Universe) Categories() []string {
	return u.ids
}

// Snapshot copies the current vector.
func (u *Universe) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(u.heat))
	for k, v := range u.heat {
		out[k] = v
	}
	return out
}

// Shift adds delta to one category without renormalizing. Callers batch
// shifts and normalize once.
func (u *Universe) Shift(category string, delta float64) {
	if _, ok := u.heat[category]; !ok {
		return
	}
	u.heat[category] += delta
	if u.heat[category] < 0 {
		u.heat[category] = 0
	}
}

// Apply adds delta to one category and renormalizes.
func (u *Universe) Apply(category string, delta float64) {
	u.Shift(category, delta)
	u.Normalize()
}

// Normalize rescales the vector so it sums to the configured total. An empty
// or fully-zeroed vector is left alone to avoid dividing by zero.
func (u *Universe) Normalize() {
	if len(u.ids) == 0 {
		return
	}
	var sum float64
	for _, v := range u.heat {
		sum += v
	}
	if sum <= 0 {
		return
	}
	scale := u.total / sum
	for id := range u.heat {
		u.heat[id] *= scale
	}
}

// FluctuationConfig carries the per-jump drift parameters.
type FluctuationConfig struct {
	Amount        float64
	MinCategories int
	MaxCategories int
}

// Fluctuate applies one jump's worth of random drift: a few primary
// categories move by independent uniform deltas, correlated categories pick
// up a fraction of each primary move, and the vector is renormalized.
func (u *Universe) Fluctuate(rng *rand.Rand, cfg FluctuationConfig, corr catalogs.CorrelationCatalog) {
	if len(u.ids) == 0 {
		return
	}
	n := cfg.MinCategories
	if cfg.MaxCategories > cfg.MinCategories {
		n += rng.Intn(cfg.MaxCategories - cfg.MinCategories + 1)
	}
	if n > len(u.ids) {
		n = len(u.ids)
	}

	order := rng.Perm(len(u.ids))
	primary := make(map[string]float64, n)
	for _, idx := range order[:n] {
		id := u.ids[idx]
		primary[id] = (rng.Float64()*2 - 1) * cfg.Amount
	}

	// Correlated side-effects accumulate when a category is dragged by
	// several primaries. Unknown secondaries fall out in Shift.
	secondary := map[string]float64{}
	for id, delta := range primary {
		for _, c := range corr.ByPrimary[id] {
			secondary[c.Secondary] += delta * c.Strength
		}
	}

	for id, delta := range primary {
		u.Shift(id, delta)
	}
	for id, delta := range secondary {
		u.Shift(id, delta)
	}
	u.Normalize()
}
