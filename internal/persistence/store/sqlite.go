package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"starlanes/internal/sim/market"
)

// Store is the per-session save database. Every mutating player action runs
// inside a single transaction so the in-memory simulation and the saved state
// never diverge partway through an action.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS player (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			system TEXT NOT NULL,
			credits REAL NOT NULL,
			cargo_capacity REAL NOT NULL,
			jumps INTEGER NOT NULL,
			market_mode TEXT NOT NULL,
			win_goal REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS player_inventory (
			item TEXT PRIMARY KEY,
			qty REAL NOT NULL,
			purchase_system TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS system_stock (
			system TEXT NOT NULL,
			item TEXT NOT NULL,
			current REAL NOT NULL,
			max REAL NOT NULL,
			last_jump INTEGER NOT NULL,
			PRIMARY KEY (system, item)
		);`,
		`CREATE TABLE IF NOT EXISTS player_sold (
			system TEXT NOT NULL,
			item TEXT NOT NULL,
			qty REAL NOT NULL,
			PRIMARY KEY (system, item)
		);`,
		`CREATE TABLE IF NOT EXISTS universe_heat (
			category TEXT PRIMARY KEY,
			heat REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS active_event (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			event_id TEXT NOT NULL,
			magnitude REAL NOT NULL,
			remaining REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS event_history (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			last_concluded INTEGER NOT NULL,
			had_event INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Reset wipes all save tables. Called at new-game start; the session is
// rebuilt from scratch afterwards.
func (s *Store) Reset() error {
	tables := []string{
		"player", "player_inventory", "system_stock",
		"player_sold", "universe_heat", "active_event", "event_history",
	}
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, t := range tables {
		if _, err := tx.Exec("DELETE FROM " + t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Tx wraps one action's writes.
type Tx struct {
	tx *sql.Tx
}

func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

// PlayerRow mirrors the single-row player table.
type PlayerRow struct {
	System        string
	Credits       float64
	CargoCapacity float64
	Jumps         int
	MarketMode    string
	WinGoal       float64
}

// InventoryRow is one held item lot with its purchase-system tag. An empty
// tag means the lot mixes systems and carries no resale penalty anywhere.
type InventoryRow struct {
	Item           string
	Qty            float64
	PurchaseSystem string
}

func (t *Tx) SavePlayer(p PlayerRow) error {
	_, err := t.tx.Exec(
		`INSERT OR REPLACE INTO player(id,system,credits,cargo_capacity,jumps,market_mode,win_goal)
		 VALUES(1,?,?,?,?,?,?)`,
		p.System, p.Credits, p.CargoCapacity, p.Jumps, p.MarketMode, p.WinGoal,
	)
	return err
}

func (t *Tx) UpsertInventory(r InventoryRow) error {
	if r.Qty <= 0 {
		_, err := t.tx.Exec(`DELETE FROM player_inventory WHERE item=?`, r.Item)
		return err
	}
	_, err := t.tx.Exec(
		`INSERT OR REPLACE INTO player_inventory(item,qty,purchase_system) VALUES(?,?,?)`,
		r.Item, r.Qty, r.PurchaseSystem,
	)
	return err
}

func (t *Tx) UpsertStock(key market.StockKey, e market.StockEntry) error {
	_, err := t.tx.Exec(
		`INSERT OR REPLACE INTO system_stock(system,item,current,max,last_jump) VALUES(?,?,?,?,?)`,
		key.System, key.Item, e.Current, e.Max, e.LastJump,
	)
	return err
}

func (t *Tx) UpsertSold(key market.StockKey, qty float64) error {
	if qty <= 0 {
		_, err := t.tx.Exec(`DELETE FROM player_sold WHERE system=? AND item=?`, key.System, key.Item)
		return err
	}
	_, err := t.tx.Exec(
		`INSERT OR REPLACE INTO player_sold(system,item,qty) VALUES(?,?,?)`,
		key.System, key.Item, qty,
	)
	return err
}

func (t *Tx) DeleteSoldAt(system string) error {
	_, err := t.tx.Exec(`DELETE FROM player_sold WHERE system=?`, system)
	return err
}

func (t *Tx) SaveUniverse(heat map[string]float64) error {
	stmt, err := t.tx.Prepare(`INSERT OR REPLACE INTO universe_heat(category,heat) VALUES(?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for cat, h := range heat {
		if _, err := stmt.Exec(cat, h); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tx) SaveEvent(active *market.ActiveEvent, lastConcluded int, hadEvent bool) error {
	if active == nil {
		if _, err := t.tx.Exec(`DELETE FROM active_event`); err != nil {
			return err
		}
	} else {
		_, err := t.tx.Exec(
			`INSERT OR REPLACE INTO active_event(id,event_id,magnitude,remaining) VALUES(1,?,?,?)`,
			active.Template.ID, active.Magnitude, active.Remaining,
		)
		if err != nil {
			return err
		}
	}
	had := 0
	if hadEvent {
		had = 1
	}
	_, err := t.tx.Exec(
		`INSERT OR REPLACE INTO event_history(id,last_concluded,had_event) VALUES(1,?,?)`,
		lastConcluded, had,
	)
	return err
}
