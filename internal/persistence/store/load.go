package store

import (
	"database/sql"

	"starlanes/internal/sim/market"
)

// SaveGame is everything needed to resume a session.
type SaveGame struct {
	Player    PlayerRow
	Inventory []InventoryRow
	Stock     map[market.StockKey]market.StockEntry
	Sold      map[market.StockKey]float64
	Heat      map[string]float64

	ActiveEventID string // empty when no event is active
	Magnitude     float64
	Remaining     float64
	LastConcluded int
	HadEvent      bool
}

// LoadGame reads the whole save. A nil result with nil error means no game
// has been started in this store.
func (s *Store) LoadGame() (*SaveGame, error) {
	var g SaveGame
	err := s.db.QueryRow(
		`SELECT system,credits,cargo_capacity,jumps,market_mode,win_goal FROM player WHERE id=1`,
	).Scan(&g.Player.System, &g.Player.Credits, &g.Player.CargoCapacity,
		&g.Player.Jumps, &g.Player.MarketMode, &g.Player.WinGoal)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT item,qty,purchase_system FROM player_inventory`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var r InventoryRow
		if err := rows.Scan(&r.Item, &r.Qty, &r.PurchaseSystem); err != nil {
			return nil, err
		}
		g.Inventory = append(g.Inventory, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	g.Stock = map[market.StockKey]market.StockEntry{}
	stockRows, err := s.db.Query(`SELECT system,item,current,max,last_jump FROM system_stock`)
	if err != nil {
		return nil, err
	}
	defer stockRows.Close()
	for stockRows.Next() {
		var key market.StockKey
		var e market.StockEntry
		if err := stockRows.Scan(&key.System, &key.Item, &e.Current, &e.Max, &e.LastJump); err != nil {
			return nil, err
		}
		g.Stock[key] = e
	}
	if err := stockRows.Err(); err != nil {
		return nil, err
	}

	g.Sold = map[market.StockKey]float64{}
	soldRows, err := s.db.Query(`SELECT system,item,qty FROM player_sold`)
	if err != nil {
		return nil, err
	}
	defer soldRows.Close()
	for soldRows.Next() {
		var key market.StockKey
		var qty float64
		if err := soldRows.Scan(&key.System, &key.Item, &qty); err != nil {
			return nil, err
		}
		g.Sold[key] = qty
	}
	if err := soldRows.Err(); err != nil {
		return nil, err
	}

	g.Heat = map[string]float64{}
	heatRows, err := s.db.Query(`SELECT category,heat FROM universe_heat`)
	if err != nil {
		return nil, err
	}
	defer heatRows.Close()
	for heatRows.Next() {
		var cat string
		var h float64
		if err := heatRows.Scan(&cat, &h); err != nil {
			return nil, err
		}
		g.Heat[cat] = h
	}
	if err := heatRows.Err(); err != nil {
		return nil, err
	}

	err = s.db.QueryRow(`SELECT event_id,magnitude,remaining FROM active_event WHERE id=1`).
		Scan(&g.ActiveEventID, &g.Magnitude, &g.Remaining)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	var had int
	err = s.db.QueryRow(`SELECT last_concluded,had_event FROM event_history WHERE id=1`).
		Scan(&g.LastConcluded, &had)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	g.HadEvent = had != 0

	return &g, nil
}
