package session

import (
	"errors"
	"fmt"

	"starlanes/internal/protocol"
	"starlanes/internal/sim/market"
)

// Buy purchases qty tons of an item at the current system. Validation runs
// before any mutation; the player-sold pool is drained before system stock.
func (s *Session) Buy(itemID string, qty float64) (float64, error) {
	if err := s.requireStarted(); err != nil {
		return 0, err
	}
	if qty <= 0 {
		return 0, fail(protocol.ErrBadRequest, "quantity must be positive")
	}
	it, ok := s.cats.Item(itemID)
	if !ok {
		return 0, fail(protocol.ErrUnknownItem, "unknown item %q", itemID)
	}

	here := s.player.System
	listed := s.isListed(here, itemID)
	pool := s.ledger.SoldQty(here, itemID)
	if !listed && pool <= 0 {
		return 0, fail(protocol.ErrNoStock, "%s is not traded at %s", itemID, here)
	}

	near := s.nearProduction(here, it.Category)
	var price float64
	if listed {
		sys, _ := s.cats.System(here)
		price = s.composer.BuyPrice(sys, it, s.universe, near)
	} else {
		// Pool-only listing: ad-hoc lot, no production modifier.
		price = s.composer.AdHocBuyPrice(it, s.universe, near)
	}
	cost := round2(price * qty)

	if s.player.Credits < cost {
		return 0, fail(protocol.ErrNoCredits, "cost %.2f exceeds credits %.2f", cost, s.player.Credits)
	}
	if s.player.CargoFree() < qty {
		return 0, fail(protocol.ErrNoCargoSpace, "%.1ft free, need %.1ft", s.player.CargoFree(), qty)
	}
	if s.player.Mode.Finite() || !listed {
		avail, tracked := s.ledger.Available(here, itemID)
		if !tracked && listed {
			// Finite mode guarantees an entry for listed items; treat a
			// missing one as empty rather than minting stock.
			avail = pool
		}
		if avail < qty {
			return 0, fail(protocol.ErrNoStock, "only %.1ft available", avail)
		}
	}

	rp := s.capture()

	if s.player.Mode.Finite() && listed {
		if err := s.ledger.Consume(here, itemID, qty); err != nil {
			s.restore(rp)
			if errors.Is(err, market.ErrInsufficientStock) {
				return 0, fail(protocol.ErrNoStock, "insufficient stock")
			}
			return 0, err
		}
	} else {
		drained := s.ledger.DrainSold(here, itemID, qty)
		if !listed && drained < qty {
			s.restore(rp)
			return 0, fail(protocol.ErrNoStock, "only %.1ft available", drained)
		}
	}

	s.player.Credits -= cost
	lot := s.player.Hold[itemID]
	switch {
	case lot == nil || lot.Qty <= 0:
		s.player.Hold[itemID] = &Lot{Qty: qty, PurchaseSystem: here}
	case lot.PurchaseSystem == here:
		lot.Qty += qty
	default:
		// Mixing acquisitions from different systems clears the marker.
		lot.Qty += qty
		lot.PurchaseSystem = ""
	}

	err := s.withTx(func(tx txWriter) error {
		if err := s.persistPlayer(tx); err != nil {
			return err
		}
		if err := tx.UpsertInventory(inventoryRow(itemID, s.player.Hold[itemID])); err != nil {
			return err
		}
		key := market.StockKey{System: here, Item: itemID}
		if e, ok := s.ledger.Entry(here, itemID); ok {
			if err := tx.UpsertStock(key, e); err != nil {
				return err
			}
		}
		return tx.UpsertSold(key, s.ledger.SoldQty(here, itemID))
	})
	if err != nil {
		s.restore(rp)
		return 0, fmt.Errorf("buy: %w", err)
	}

	if s.journal != nil {
		_ = s.journal.WriteTrade(TradeEntry{
			Jump: s.player.Jumps, System: here, Action: "BUY",
			Item: itemID, Qty: qty, Price: price, Credits: round2(s.player.Credits),
		})
	}
	return cost, nil
}

// Sell sells qty tons from the hold at the current system. The sale feeds
// the system's player-sold pool, which future purchases drain first.
func (s *Session) Sell(itemID string, qty float64) (float64, error) {
	if err := s.requireStarted(); err != nil {
		return 0, err
	}
	if qty <= 0 {
		return 0, fail(protocol.ErrBadRequest, "quantity must be positive")
	}
	it, ok := s.cats.Item(itemID)
	if !ok {
		return 0, fail(protocol.ErrUnknownItem, "unknown item %q", itemID)
	}
	lot := s.player.Hold[itemID]
	if lot == nil || lot.Qty < qty {
		var held float64
		if lot != nil {
			held = lot.Qty
		}
		return 0, fail(protocol.ErrNoHolding, "holding %.1ft of %s, cannot sell %.1ft", held, itemID, qty)
	}

	here := s.player.System
	sys, _ := s.cats.System(here)
	penalty := lot.PurchaseSystem == here
	price := s.composer.SellPrice(sys, it, s.universe, s.nearProduction(here, it.Category), penalty)
	proceeds := round2(price * qty)

	rp := s.capture()

	lot.Qty -= qty
	if lot.Qty <= 0 {
		delete(s.player.Hold, itemID)
	}
	s.player.Credits += proceeds
	s.ledger.AddSold(here, itemID, qty)

	err := s.withTx(func(tx txWriter) error {
		if err := s.persistPlayer(tx); err != nil {
			return err
		}
		if err := tx.UpsertInventory(inventoryRow(itemID, s.player.Hold[itemID])); err != nil {
			return err
		}
		key := market.StockKey{System: here, Item: itemID}
		return tx.UpsertSold(key, s.ledger.SoldQty(here, itemID))
	})
	if err != nil {
		s.restore(rp)
		return 0, fmt.Errorf("sell: %w", err)
	}

	if s.journal != nil {
		_ = s.journal.WriteTrade(TradeEntry{
			Jump: s.player.Jumps, System: here, Action: "SELL",
			Item: itemID, Qty: qty, Price: price, Credits: round2(s.player.Credits),
		})
	}
	return proceeds, nil
}

// isListed reports whether the deterministic catalog stocks the item at the
// system.
func (s *Session) isListed(systemID, itemID string) bool {
	it, ok := s.cats.Item(itemID)
	if !ok {
		return false
	}
	for _, sel := range s.selector.SelectItems(systemID, it.Category) {
		if sel.ID == itemID {
			return true
		}
	}
	return false
}
