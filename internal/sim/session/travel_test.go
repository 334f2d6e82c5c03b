package session_test

import (
	"math"
	"path/filepath"
	"testing"

	"starlanes/internal/persistence/store"
	"starlanes/internal/protocol"
	"starlanes/internal/sim/market"
	"starlanes/internal/sim/session"
	"starlanes/internal/sim/tuning"
)

func TestTravel_FuelAndJumpCount(t *testing.T) {
	f := newFixture(t, "infinite")

	before := f.sess.Status().Credits
	if _, err := f.sess.Travel("merchants_rest"); err != nil {
		t.Fatalf("travel: %v", err)
	}
	st := f.sess.Status()
	if st.System != "merchants_rest" || st.Jumps != 1 {
		t.Fatalf("status %+v", st)
	}
	if got := before - st.Credits; got != 10 {
		t.Fatalf("fuel charged %v, want 10 for distance 1", got)
	}

	// Multi-hop destinations are reachable directly, priced by shortest path.
	before = st.Credits
	if _, err := f.sess.Travel("lyceum"); err != nil {
		t.Fatalf("travel: %v", err)
	}
	st = f.sess.Status()
	if st.System != "lyceum" || st.Jumps != 2 {
		t.Fatalf("status %+v", st)
	}
	if got := before - st.Credits; got != 30 {
		t.Fatalf("fuel charged %v, want 30 for distance 3", got)
	}
}

func TestTravel_Validation(t *testing.T) {
	f := newFixture(t, "infinite")

	_, err := f.sess.Travel("solara")
	wantCode(t, err, protocol.ErrBadRequest)
	_, err = f.sess.Travel("atlantis")
	wantCode(t, err, protocol.ErrUnknownSystem)
}

func TestTravel_InsufficientFuel(t *testing.T) {
	cats := loadCatalogs(t)
	st, err := store.Open(filepath.Join(t.TempDir(), "save.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	s := session.New(cats, tuning.Defaults(), st, nil, 1)
	if err := s.NewGame(protocol.NewGameConfig{Credits: 5, StartingSystem: "solara"}); err != nil {
		t.Fatalf("new game: %v", err)
	}
	_, err = s.Travel("merchants_rest")
	wantCode(t, err, protocol.ErrNoCredits)
	if got := s.Status(); got.System != "solara" || got.Credits != 5 {
		t.Fatalf("failed travel mutated state: %+v", got)
	}
}

func TestTravel_HeatTotalHolds(t *testing.T) {
	f := newFixture(t, "infinite")
	dests := []string{"merchants_rest", "ferrum", "merchants_rest", "novaforge", "bastion", "novaforge", "lyceum", "asclepia", "merchants_rest", "solara"}
	for _, d := range dests {
		if _, err := f.sess.Travel(d); err != nil {
			t.Fatalf("travel %s: %v", d, err)
		}
		var sum float64
		for _, h := range f.sess.Universe().Snapshot() {
			sum += h
		}
		if math.Abs(sum-35.0) > 1e-6 {
			t.Fatalf("heat sum %v after jump to %s, want 35", sum, d)
		}
	}
}

func TestTravel_ClearsResalePenalty(t *testing.T) {
	f := newFixture(t, "infinite")
	row := firstListed(t, f.sess, "FOOD_AGRI")
	if _, err := f.sess.Buy(row.ItemID, 5); err != nil {
		t.Fatalf("buy: %v", err)
	}

	if _, err := f.sess.Travel("merchants_rest"); err != nil {
		t.Fatalf("travel: %v", err)
	}
	cargo, err := f.sess.CargoListing()
	if err != nil {
		t.Fatalf("cargo: %v", err)
	}
	if len(cargo.Rows) != 1 || cargo.Rows[0].ResalePenalty {
		t.Fatalf("cargo %+v, want one unpenalized row", cargo.Rows)
	}

	// Returning to the purchase system does not revive the penalty; the
	// marker was cleared at departure.
	if _, err := f.sess.Travel("solara"); err != nil {
		t.Fatalf("travel back: %v", err)
	}
	cargo, err = f.sess.CargoListing()
	if err != nil {
		t.Fatalf("cargo: %v", err)
	}
	if cargo.Rows[0].ResalePenalty {
		t.Fatal("penalty survived a departure")
	}
}

func TestSoldPool_AdHocListingAndDepartureWipe(t *testing.T) {
	f := newFixture(t, "infinite")

	// Find a farm good stocked at Solara that Novaforge's catalog omits.
	sel := market.NewSelector(f.cats, f.tune.Selector)
	nova := map[string]bool{}
	for _, it := range sel.SelectItems("novaforge", "FOOD_AGRI") {
		nova[it.ID] = true
	}
	var itemID string
	for _, it := range sel.SelectItems("solara", "FOOD_AGRI") {
		if !nova[it.ID] {
			itemID = it.ID
			break
		}
	}
	if itemID == "" {
		t.Fatal("no solara-only farm good found")
	}

	if _, err := f.sess.Buy(itemID, 4); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := f.sess.Travel("novaforge"); err != nil {
		t.Fatalf("travel: %v", err)
	}
	if _, err := f.sess.Sell(itemID, 4); err != nil {
		t.Fatalf("sell: %v", err)
	}

	row, ok := marketRow(t, f.sess, itemID)
	if !ok || !row.PlayerSold {
		t.Fatalf("sold goods missing from listing: %+v (found %v)", row, ok)
	}
	if row.Stock == nil || *row.Stock != 4 {
		t.Fatalf("pool row stock %+v, want 4", row.Stock)
	}

	// The pool can be bought back, at the ad-hoc price.
	if _, err := f.sess.Buy(itemID, 1); err != nil {
		t.Fatalf("buy back: %v", err)
	}
	row, _ = marketRow(t, f.sess, itemID)
	if row.Stock == nil || *row.Stock != 3 {
		t.Fatalf("pool after buy-back %+v, want 3", row.Stock)
	}

	// Departure wipes what is left.
	if _, err := f.sess.Travel("merchants_rest"); err != nil {
		t.Fatalf("travel: %v", err)
	}
	if _, err := f.sess.Travel("novaforge"); err != nil {
		t.Fatalf("travel back: %v", err)
	}
	if _, ok := marketRow(t, f.sess, itemID); ok {
		t.Fatal("player-sold pool survived departure")
	}
}

func TestFiniteStock_ConsumeAndResume(t *testing.T) {
	f := newFixture(t, "finite-instant")

	row := firstListed(t, f.sess, "FOOD_AGRI")
	if row.Stock == nil {
		t.Fatal("finite mode listing without stock")
	}
	initial := *row.Stock
	if initial <= 0 {
		t.Fatalf("initial stock %v", initial)
	}

	if _, err := f.sess.Buy(row.ItemID, 5); err != nil {
		t.Fatalf("buy: %v", err)
	}
	after, _ := marketRow(t, f.sess, row.ItemID)
	if after.Stock == nil || *after.Stock != initial-5 {
		t.Fatalf("stock %+v, want %v", after.Stock, initial-5)
	}

	// A second session over the same store resumes mid-game.
	credits := f.sess.Status().Credits
	s2 := session.New(f.cats, f.tune, f.store, nil, 99)
	ok, err := s2.Resume()
	if err != nil || !ok {
		t.Fatalf("resume: %v/%v", ok, err)
	}
	st := s2.Status()
	if st.System != "solara" || st.Credits != credits || st.MarketMode != "finite-instant" {
		t.Fatalf("resumed status %+v", st)
	}
	resumed, _ := marketRow(t, s2, row.ItemID)
	if resumed.Stock == nil || *resumed.Stock != initial-5 {
		t.Fatalf("resumed stock %+v, want %v", resumed.Stock, initial-5)
	}
}

func TestFiniteStock_Exhaustion(t *testing.T) {
	f := newFixture(t, "finite-instant")

	// Exotic caps are small enough to drain outright.
	msg, err := f.sess.MarketListing()
	if err != nil {
		t.Fatalf("market: %v", err)
	}
	var exotic protocol.MarketRow
	for _, row := range msg.Rows {
		if row.Rarity == "EXOTIC" {
			exotic = row
			break
		}
	}
	if exotic.ItemID == "" {
		t.Fatal("no exotic listed")
	}
	if exotic.Stock == nil || *exotic.Stock != 15 {
		t.Fatalf("exotic stock %+v, want 15", exotic.Stock)
	}

	_, err = f.sess.Buy(exotic.ItemID, 20)
	wantCode(t, err, protocol.ErrNoStock)

	if _, err := f.sess.Buy(exotic.ItemID, 15); err != nil {
		t.Fatalf("buy full stock: %v", err)
	}
	_, err = f.sess.Buy(exotic.ItemID, 1)
	wantCode(t, err, protocol.ErrNoStock)
}

func TestResume_EmptyStore(t *testing.T) {
	cats := loadCatalogs(t)
	st, err := store.Open(filepath.Join(t.TempDir(), "save.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	s := session.New(cats, tuning.Defaults(), st, nil, 1)

	ok, err := s.Resume()
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if ok || s.Started() {
		t.Fatal("resumed a game from an empty store")
	}
}
