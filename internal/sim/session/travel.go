package session

import (
	"fmt"

	"starlanes/internal/protocol"
	"starlanes/internal/sim/market"
)

// Travel moves the player to a reachable system and advances the simulation
// by one jump: market fluctuation, event trigger/decay, destination stock
// init/regeneration. The whole action persists in one transaction; a store
// failure rolls everything back, in memory included.
func (s *Session) Travel(dest string) (*market.NewsFlash, error) {
	if err := s.requireStarted(); err != nil {
		return nil, err
	}
	if dest == s.player.System {
		return nil, fail(protocol.ErrBadRequest, "already at %s", dest)
	}
	if _, ok := s.cats.System(dest); !ok {
		return nil, fail(protocol.ErrUnknownSystem, "unknown system %q", dest)
	}
	dist, ok := s.distances[dest]
	if !ok {
		return nil, fail(protocol.ErrNotAdjacent, "no route from %s to %s", s.player.System, dest)
	}
	fuel := round2(dist * s.tune.FuelCostPerUnit)
	if s.player.Credits < fuel {
		return nil, fail(protocol.ErrNoCredits, "fuel costs %.2f, have %.2f", fuel, s.player.Credits)
	}

	rp := s.capture()
	origin := s.player.System

	// Departure: the origin's player-sold pool evaporates and lots bought
	// there lose their purchase marker, so the resale penalty cannot follow
	// the player around.
	s.ledger.ClearSold(origin)
	var retagged []string
	for item, lot := range s.player.Hold {
		if lot.PurchaseSystem == origin {
			lot.PurchaseSystem = ""
			retagged = append(retagged, item)
		}
	}

	s.player.Credits -= fuel
	s.player.System = dest
	s.player.Jumps++

	s.universe.Fluctuate(s.rng, market.FluctuationConfig{
		Amount:        s.tune.FluctuationAmount,
		MinCategories: s.tune.FluctuationMin,
		MaxCategories: s.tune.FluctuationMax,
	}, s.cats.Correlations)
	flash := s.events.Step(s.player.Jumps, s.universe, s.rng)

	switch s.player.Mode {
	case ModeFiniteInstant:
		s.ledger.InitializeSystem(dest, s.stockedItems(dest), s.player.Jumps)
		s.ledger.RegenerateInstant(dest)
	case ModeFiniteTurn:
		s.ledger.InitializeSystem(dest, s.stockedItems(dest), s.player.Jumps)
		s.ledger.RegenerateTurnBased(dest, s.player.Jumps)
	}

	s.distances = s.graph.DistancesFrom(dest)

	err := s.withTx(func(tx txWriter) error {
		if err := s.persistPlayer(tx); err != nil {
			return err
		}
		if err := tx.DeleteSoldAt(origin); err != nil {
			return err
		}
		for _, item := range retagged {
			lot := s.player.Hold[item]
			if err := tx.UpsertInventory(inventoryRow(item, lot)); err != nil {
				return err
			}
		}
		for key, e := range s.ledger.Entries() {
			if key.System != dest {
				continue
			}
			if err := tx.UpsertStock(key, e); err != nil {
				return err
			}
		}
		if err := tx.SaveUniverse(s.universe.Snapshot()); err != nil {
			return err
		}
		last, had := s.events.LastConcluded()
		return tx.SaveEvent(s.events.Active(), last, had)
	})
	if err != nil {
		s.restore(rp)
		return nil, fmt.Errorf("travel: %w", err)
	}

	if s.journal != nil {
		_ = s.journal.WriteJump(JumpEntry{
			Jump:    s.player.Jumps,
			From:    origin,
			To:      dest,
			Fuel:    fuel,
			Credits: round2(s.player.Credits),
			Heat:    s.universe.Snapshot(),
			Event:   flash,
		})
	}
	return flash, nil
}

// restorePoint snapshots everything a travel/trade action can touch.
type restorePoint struct {
	player    Player
	heat      map[string]float64
	active    *market.ActiveEvent
	lastEnded int
	hadEvent  bool
	stock     map[market.StockKey]market.StockEntry
	sold      map[market.StockKey]float64
	distances map[string]float64
}

func (s *Session) capture() restorePoint {
	var active *market.ActiveEvent
	if ev := s.events.Active(); ev != nil {
		cp := *ev
		active = &cp
	}
	last, had := s.events.LastConcluded()
	return restorePoint{
		player:    s.player.clone(),
		heat:      s.universe.Snapshot(),
		active:    active,
		lastEnded: last,
		hadEvent:  had,
		stock:     s.ledger.Entries(),
		sold:      s.ledger.SoldPools(),
		distances: s.distances,
	}
}

func (s *Session) restore(rp restorePoint) {
	s.player = rp.player
	s.universe = market.RestoredUniverse(rp.heat, s.tune.UniverseTotal)
	s.events.Restore(rp.active, rp.lastEnded, rp.hadEvent)
	s.ledger.Restore(rp.stock, rp.sold)
	s.distances = rp.distances
}
