package market

import (
	"errors"
	"fmt"

	"starlanes/internal/sim/catalogs"
	"starlanes/internal/sim/tuning"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// StockEntry tracks finite stock of one item at one system. Max is fixed at
// initialization and never changes; Current stays within [0, Max].
type StockEntry struct {
	Current  float64
	Max      float64
	LastJump int // jump counter at the last regeneration credit
}

// StockKey addresses one (system, item) cell.
type StockKey struct {
	System string
	Item   string
}

// Ledger holds finite-market stock plus the per-system player-sold pools.
// Entries are created lazily the first time a system is visited and are never
// deleted; the sold pool for a system is wiped when the player departs it.
type Ledger struct {
	entries map[StockKey]*StockEntry
	sold    map[StockKey]float64

	caps      tuning.StockCaps
	regenRate float64
}

func NewLedger(caps tuning.StockCaps, regenRate float64) *Ledger {
	return &Ledger{
		entries:   map[StockKey]*StockEntry{},
		sold:      map[StockKey]float64{},
		caps:      caps,
		regenRate: regenRate,
	}
}

func (l *Ledger) capFor(r catalogs.Rarity) float64 {
	switch r {
	case catalogs.RarityRare:
		return l.caps.Rare
	case catalogs.RarityExotic:
		return l.caps.Exotic
	default:
		return l.caps.Common
	}
}

// InitializeSystem creates full-stock entries for the given items at a system.
// Existing entries are left untouched, so revisits keep their depletion state.
func (l *Ledger) InitializeSystem(systemID string, items []catalogs.ItemDef, jump int) {
	for _, it := range items {
		key := StockKey{System: systemID, Item: it.ID}
		if _, ok := l.entries[key]; ok {
			continue
		}
		max := l.capFor(it.Rarity)
		l.entries[key] = &StockEntry{Current: max, Max: max, LastJump: jump}
	}
}

func (l *Ledger) Entry(systemID, itemID string) (StockEntry, bool) {
	e, ok := l.entries[StockKey{System: systemID, Item: itemID}]
	if !ok {
		return StockEntry{}, false
	}
	return *e, true
}

// SoldQty returns the player-sold pool for one (system, item).
func (l *Ledger) SoldQty(systemID, itemID string) float64 {
	return l.sold[StockKey{System: systemID, Item: itemID}]
}

// SoldAt lists the items with a non-empty player-sold pool at a system.
func (l *Ledger) SoldAt(systemID string) map[string]float64 {
	out := map[string]float64{}
	for key, qty := range l.sold {
		if key.System == systemID && qty > 0 {
			out[key.Item] = qty
		}
	}
	return out
}

// Available is what a purchase can draw on: the player-sold pool plus system
// stock. A missing entry means stock is untracked (infinite mode) and only
// the pool counts toward the finite part.
func (l *Ledger) Available(systemID, itemID string) (qty float64, tracked bool) {
	key := StockKey{System: systemID, Item: itemID}
	qty = l.sold[key]
	if e, ok := l.entries[key]; ok {
		return qty + e.Current, true
	}
	return qty, false
}

// Consume takes qty tons for a purchase, draining the player-sold pool before
// touching system stock. It mutates nothing when stock would go negative.
func (l *Ledger) Consume(systemID, itemID string, qty float64) error {
	if qty <= 0 {
		return fmt.Errorf("consume %s at %s: non-positive qty %v", itemID, systemID, qty)
	}
	key := StockKey{System: systemID, Item: itemID}
	pool := l.sold[key]
	entry := l.entries[key]

	fromStock := qty - pool
	if fromStock > 0 {
		if entry == nil || entry.Current < fromStock {
			return ErrInsufficientStock
		}
	}

	if fromStock <= 0 {
		l.sold[key] = pool - qty
		return nil
	}
	if pool > 0 {
		l.sold[key] = 0
	}
	entry.Current -= fromStock
	return nil
}

// DrainSold removes up to qty from the player-sold pool and returns the
// amount actually taken. Infinite-mode purchases use this directly since
// system stock is untracked there.
func (l *Ledger) DrainSold(systemID, itemID string, qty float64) float64 {
	if qty <= 0 {
		return 0
	}
	key := StockKey{System: systemID, Item: itemID}
	pool := l.sold[key]
	if pool <= 0 {
		return 0
	}
	if qty >= pool {
		delete(l.sold, key)
		return pool
	}
	l.sold[key] = pool - qty
	return qty
}

// AddSold credits a sale into the system's player-sold pool.
func (l *Ledger) AddSold(systemID, itemID string, qty float64) {
	if qty <= 0 {
		return
	}
	l.sold[StockKey{System: systemID, Item: itemID}] += qty
}

// ClearSold wipes one system's player-sold pool, called on departure.
func (l *Ledger) ClearSold(systemID string) {
	for key := range l.sold {
		if key.System == systemID {
			delete(l.sold, key)
		}
	}
}

// RegenerateInstant restocks every entry at a system to its cap.
func (l *Ledger) RegenerateInstant(systemID string) {
	for key, e := range l.entries {
		if key.System == systemID {
			e.Current = e.Max
		}
	}
}

// RegenerateTurnBased credits max x rate x elapsed-jumps to each entry at a
// system, capped at max. LastJump advances even when nothing was credited so
// an idle stretch is never counted twice.
func (l *Ledger) RegenerateTurnBased(systemID string, jump int) {
	for key, e := range l.entries {
		if key.System != systemID {
			continue
		}
		elapsed := jump - e.LastJump
		if elapsed > 0 && e.Current < e.Max {
			e.Current += e.Max * l.regenRate * float64(elapsed)
			if e.Current > e.Max {
				e.Current = e.Max
			}
		}
		e.LastJump = jump
	}
}

// Entries snapshots all stock cells for persistence.
func (l *Ledger) Entries() map[StockKey]StockEntry {
	out := make(map[StockKey]StockEntry, len(l.entries))
	for key, e := range l.entries {
		out[key] = *e
	}
	return out
}

// SoldPools snapshots all player-sold cells for persistence.
func (l *Ledger) SoldPools() map[StockKey]float64 {
	out := make(map[StockKey]float64, len(l.sold))
	for key, qty := range l.sold {
		if qty > 0 {
			out[key] = qty
		}
	}
	return out
}

// Restore rebuilds ledger state from a save.
func (l *Ledger) Restore(entries map[StockKey]StockEntry, sold map[StockKey]float64) {
	l.entries = make(map[StockKey]*StockEntry, len(entries))
	for key, e := range entries {
		cp := e
		l.entries[key] = &cp
	}
	l.sold = make(map[StockKey]float64, len(sold))
	for key, qty := range sold {
		l.sold[key] = qty
	}
}
