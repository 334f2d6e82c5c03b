package session

import (
	"sort"

	"starlanes/internal/protocol"
)

// MarketListing assembles the buy-side rows for the current system: the
// deterministic catalog per category, plus the player-sold pool merged in
// for items outside the catalog.
func (s *Session) MarketListing() (protocol.MarketMsg, error) {
	if err := s.requireStarted(); err != nil {
		return protocol.MarketMsg{}, err
	}
	here := s.player.System
	sys, _ := s.cats.System(here)

	msg := protocol.MarketMsg{
		Type:            protocol.TypeMarket,
		ProtocolVersion: protocol.Version,
		System:          here,
	}

	listed := map[string]bool{}
	for _, cat := range s.cats.Categories.IDs {
		near := s.nearProduction(here, cat)
		for _, it := range s.selector.SelectItems(here, cat) {
			listed[it.ID] = true
			price := s.composer.BuyPrice(sys, it, s.universe, near)
			row := protocol.MarketRow{
				ItemID:   it.ID,
				Name:     it.Name,
				Category: it.Category,
				Rarity:   string(it.Rarity),
				BuyPrice: price,
				Label:    string(s.composer.Label(price, s.composer.Reference(it))),
			}
			if s.player.Mode.Finite() {
				avail, _ := s.ledger.Available(here, it.ID)
				row.Stock = &avail
			}
			msg.Rows = append(msg.Rows, row)
		}
	}

	// Ad-hoc rows for goods the player sold here that the planet would not
	// normally stock.
	soldIDs := make([]string, 0)
	for itemID := range s.ledger.SoldAt(here) {
		if !listed[itemID] {
			soldIDs = append(soldIDs, itemID)
		}
	}
	sort.Strings(soldIDs)
	for _, itemID := range soldIDs {
		it, ok := s.cats.Item(itemID)
		if !ok {
			continue
		}
		price := s.composer.AdHocBuyPrice(it, s.universe, s.nearProduction(here, it.Category))
		qty := s.ledger.SoldQty(here, itemID)
		msg.Rows = append(msg.Rows, protocol.MarketRow{
			ItemID:     it.ID,
			Name:       it.Name,
			Category:   it.Category,
			Rarity:     string(it.Rarity),
			BuyPrice:   price,
			Label:      string(s.composer.Label(price, s.composer.Reference(it))),
			Stock:      &qty,
			PlayerSold: true,
		})
	}
	return msg, nil
}

// CargoListing assembles the sell-side rows for the player's hold at the
// current system.
func (s *Session) CargoListing() (protocol.CargoMsg, error) {
	if err := s.requireStarted(); err != nil {
		return protocol.CargoMsg{}, err
	}
	here := s.player.System
	sys, _ := s.cats.System(here)

	msg := protocol.CargoMsg{
		Type:            protocol.TypeCargo,
		ProtocolVersion: protocol.Version,
		System:          here,
	}

	itemIDs := make([]string, 0, len(s.player.Hold))
	for id := range s.player.Hold {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	for _, itemID := range itemIDs {
		lot := s.player.Hold[itemID]
		it, ok := s.cats.Item(itemID)
		if !ok || lot.Qty <= 0 {
			continue
		}
		penalty := lot.PurchaseSystem == here
		price := s.composer.SellPrice(sys, it, s.universe, s.nearProduction(here, it.Category), penalty)
		msg.Rows = append(msg.Rows, protocol.CargoRow{
			ItemID:        it.ID,
			Name:          it.Name,
			Quantity:      lot.Qty,
			SellPrice:     price,
			Label:         string(s.composer.Label(price, s.composer.Reference(it))),
			ResalePenalty: penalty,
		})
	}
	return msg, nil
}
