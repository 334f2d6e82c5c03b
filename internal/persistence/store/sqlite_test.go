package store_test

import (
	"path/filepath"
	"testing"

	"starlanes/internal/persistence/store"
	"starlanes/internal/sim/market"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "save.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestLoadGame_EmptyStore(t *testing.T) {
	st := openStore(t)
	g, err := st.LoadGame()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g != nil {
		t.Fatalf("got %+v, want nil for empty store", g)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := openStore(t)

	tx, err := st.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	player := store.PlayerRow{
		System: "solara", Credits: 1234.56, CargoCapacity: 50,
		Jumps: 7, MarketMode: "finite-turn", WinGoal: 100000,
	}
	if err := tx.SavePlayer(player); err != nil {
		t.Fatalf("save player: %v", err)
	}
	if err := tx.UpsertInventory(store.InventoryRow{Item: "grain", Qty: 5, PurchaseSystem: "solara"}); err != nil {
		t.Fatalf("upsert inventory: %v", err)
	}
	key := market.StockKey{System: "solara", Item: "grain"}
	if err := tx.UpsertStock(key, market.StockEntry{Current: 80, Max: 100, LastJump: 7}); err != nil {
		t.Fatalf("upsert stock: %v", err)
	}
	if err := tx.UpsertSold(key, 3); err != nil {
		t.Fatalf("upsert sold: %v", err)
	}
	if err := tx.SaveUniverse(map[string]float64{"FOOD_AGRI": 6.5, "TECH": 4.2}); err != nil {
		t.Fatalf("save universe: %v", err)
	}
	if err := tx.SaveEvent(nil, 4, true); err != nil {
		t.Fatalf("save event: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	g, err := st.LoadGame()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g == nil {
		t.Fatal("no save loaded")
	}
	if g.Player != player {
		t.Fatalf("player %+v, want %+v", g.Player, player)
	}
	if len(g.Inventory) != 1 || g.Inventory[0].Qty != 5 || g.Inventory[0].PurchaseSystem != "solara" {
		t.Fatalf("inventory %+v", g.Inventory)
	}
	if e := g.Stock[key]; e.Current != 80 || e.Max != 100 || e.LastJump != 7 {
		t.Fatalf("stock %+v", e)
	}
	if g.Sold[key] != 3 {
		t.Fatalf("sold %v, want 3", g.Sold[key])
	}
	if g.Heat["FOOD_AGRI"] != 6.5 {
		t.Fatalf("heat %v, want 6.5", g.Heat["FOOD_AGRI"])
	}
	if g.ActiveEventID != "" || g.LastConcluded != 4 || !g.HadEvent {
		t.Fatalf("event state %q/%d/%v", g.ActiveEventID, g.LastConcluded, g.HadEvent)
	}
}

func TestSaveEvent_ActiveAndCleared(t *testing.T) {
	st := openStore(t)

	tx, _ := st.Begin()
	if err := tx.SavePlayer(store.PlayerRow{System: "solara", MarketMode: "infinite"}); err != nil {
		t.Fatalf("save player: %v", err)
	}
	active := &market.ActiveEvent{Remaining: 1.5, Magnitude: 2.0}
	active.Template.ID = "blight"
	if err := tx.SaveEvent(active, 0, false); err != nil {
		t.Fatalf("save event: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	g, err := st.LoadGame()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g.ActiveEventID != "blight" || g.Magnitude != 2.0 || g.Remaining != 1.5 {
		t.Fatalf("event %q/%v/%v", g.ActiveEventID, g.Magnitude, g.Remaining)
	}

	tx, _ = st.Begin()
	if err := tx.SaveEvent(nil, 9, true); err != nil {
		t.Fatalf("clear event: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	g, _ = st.LoadGame()
	if g.ActiveEventID != "" || g.LastConcluded != 9 || !g.HadEvent {
		t.Fatalf("event not cleared: %q/%d/%v", g.ActiveEventID, g.LastConcluded, g.HadEvent)
	}
}

func TestUpsertZeroDeletes(t *testing.T) {
	st := openStore(t)
	key := market.StockKey{System: "solara", Item: "grain"}

	tx, _ := st.Begin()
	_ = tx.SavePlayer(store.PlayerRow{System: "solara", MarketMode: "infinite"})
	_ = tx.UpsertInventory(store.InventoryRow{Item: "grain", Qty: 5})
	_ = tx.UpsertSold(key, 3)
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx, _ = st.Begin()
	_ = tx.UpsertInventory(store.InventoryRow{Item: "grain", Qty: 0})
	_ = tx.UpsertSold(key, 0)
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	g, err := st.LoadGame()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(g.Inventory) != 0 {
		t.Fatalf("inventory %+v, want empty", g.Inventory)
	}
	if len(g.Sold) != 0 {
		t.Fatalf("sold %+v, want empty", g.Sold)
	}
}

func TestReset(t *testing.T) {
	st := openStore(t)

	tx, _ := st.Begin()
	_ = tx.SavePlayer(store.PlayerRow{System: "solara", MarketMode: "infinite"})
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := st.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	g, err := st.LoadGame()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g != nil {
		t.Fatalf("got %+v after reset, want nil", g)
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	st := openStore(t)

	tx, _ := st.Begin()
	_ = tx.SavePlayer(store.PlayerRow{System: "solara", MarketMode: "infinite"})
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	g, err := st.LoadGame()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g != nil {
		t.Fatalf("rolled-back write persisted: %+v", g)
	}
}
