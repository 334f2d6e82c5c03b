package session

import (
	"fmt"
	"math"
	"math/rand"

	"starlanes/internal/persistence/store"
	"starlanes/internal/protocol"
	"starlanes/internal/sim/catalogs"
	"starlanes/internal/sim/galaxy"
	"starlanes/internal/sim/market"
	"starlanes/internal/sim/tuning"
)

// Journal receives one entry per jump and per trade. Implementations live in
// internal/persistence/log; a nil journal is skipped.
type Journal interface {
	WriteJump(e JumpEntry) error
	WriteTrade(e TradeEntry) error
}

type JumpEntry struct {
	Jump    int                `json:"jump"`
	From    string             `json:"from"`
	To      string             `json:"to"`
	Fuel    float64            `json:"fuel"`
	Credits float64            `json:"credits"`
	Heat    map[string]float64 `json:"heat"`
	Event   *market.NewsFlash  `json:"event,omitempty"`
}

type TradeEntry struct {
	Jump    int     `json:"jump"`
	System  string  `json:"system"`
	Action  string  `json:"action"` // BUY | SELL
	Item    string  `json:"item"`
	Qty     float64 `json:"qty"`
	Price   float64 `json:"price"`
	Credits float64 `json:"credits"`
}

// Session owns the whole simulation for one game: reference data, live
// market state, the stock ledger, player state and the save store. All
// mutations arrive through discrete actions (NewGame, Travel, Buy, Sell)
// processed to completion one at a time.
type Session struct {
	cats  *catalogs.Catalogs
	tune  tuning.Tuning
	graph *galaxy.Graph

	selector *market.Selector
	composer *market.Composer
	universe *market.Universe
	events   *market.Engine
	ledger   *market.Ledger

	store   *store.Store
	journal Journal
	rng     *rand.Rand

	player    Player
	started   bool
	distances map[string]float64 // from the player's current system
}

func New(cats *catalogs.Catalogs, tune tuning.Tuning, st *store.Store, journal Journal, seed int64) *Session {
	return &Session{
		cats:     cats,
		tune:     tune,
		graph:    galaxy.New(cats.Galaxy),
		selector: market.NewSelector(cats, tune.Selector),
		composer: market.NewComposer(cats, tune),
		store:    st,
		journal:  journal,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (s *Session) Started() bool { return s.started }

func (s *Session) Universe() *market.Universe { return s.universe }

func (s *Session) ActiveEvent() *market.ActiveEvent {
	if s.events == nil {
		return nil
	}
	return s.events.Active()
}

// NewGame resets the save store and starts a fresh game. Config fields left
// zero fall back to the tuning defaults.
func (s *Session) NewGame(cfg protocol.NewGameConfig) error {
	def := s.tune.NewGame
	if cfg.Credits <= 0 {
		cfg.Credits = def.Credits
	}
	if cfg.CargoCapacity <= 0 {
		cfg.CargoCapacity = def.CargoCapacity
	}
	if cfg.WinGoal <= 0 {
		cfg.WinGoal = def.WinGoal
	}
	if cfg.StartingSystem == "" {
		cfg.StartingSystem = def.StartingSystem
	}
	if cfg.MarketMode == "" {
		cfg.MarketMode = def.MarketMode
	}

	mode, ok := ParseMarketMode(cfg.MarketMode)
	if !ok {
		return fail(protocol.ErrBadRequest, "unknown market mode %q", cfg.MarketMode)
	}

	start := cfg.StartingSystem
	if start == "random" {
		start = s.cats.Systems.IDs[s.rng.Intn(len(s.cats.Systems.IDs))]
	} else if _, ok := s.cats.System(start); !ok {
		return fail(protocol.ErrUnknownSystem, "unknown starting system %q", start)
	}

	if err := s.store.Reset(); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}

	s.player = Player{
		System:        start,
		Credits:       cfg.Credits,
		CargoCapacity: cfg.CargoCapacity,
		WinGoal:       cfg.WinGoal,
		Mode:          mode,
		Hold:          map[string]*Lot{},
	}
	s.universe = market.NewUniverse(s.cats.Categories.IDs, s.tune.UniverseTotal)
	s.events = market.NewEngine(s.cats.Events, market.EngineConfig{
		Probability:   s.tune.EventProbability,
		Decay:         s.tune.EventDecay,
		CooldownJumps: s.tune.EventCooldown,
		WarmupJumps:   s.tune.EventWarmup,
	})
	s.ledger = market.NewLedger(s.tune.StockCaps, s.tune.RegenRate)
	if mode.Finite() {
		s.ledger.InitializeSystem(start, s.stockedItems(start), 0)
	}
	s.distances = s.graph.DistancesFrom(start)
	s.started = true

	tx, err := s.store.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := s.persistAll(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("persist new game: %w", err)
	}
	return tx.Commit()
}

// Resume rebuilds a session from the save store. Returns false when the
// store holds no game.
func (s *Session) Resume() (bool, error) {
	g, err := s.store.LoadGame()
	if err != nil {
		return false, err
	}
	if g == nil {
		return false, nil
	}

	mode, ok := ParseMarketMode(g.Player.MarketMode)
	if !ok {
		return false, fmt.Errorf("save: unknown market mode %q", g.Player.MarketMode)
	}
	s.player = Player{
		System:        g.Player.System,
		Credits:       g.Player.Credits,
		CargoCapacity: g.Player.CargoCapacity,
		Jumps:         g.Player.Jumps,
		WinGoal:       g.Player.WinGoal,
		Mode:          mode,
		Hold:          map[string]*Lot{},
	}
	for _, r := range g.Inventory {
		s.player.Hold[r.Item] = &Lot{Qty: r.Qty, PurchaseSystem: r.PurchaseSystem}
	}

	s.universe = market.RestoredUniverse(g.Heat, s.tune.UniverseTotal)
	s.events = market.NewEngine(s.cats.Events, market.EngineConfig{
		Probability:   s.tune.EventProbability,
		Decay:         s.tune.EventDecay,
		CooldownJumps: s.tune.EventCooldown,
		WarmupJumps:   s.tune.EventWarmup,
	})
	var active *market.ActiveEvent
	if g.ActiveEventID != "" {
		tpl, ok := s.cats.Events.ByID[g.ActiveEventID]
		if !ok {
			return false, fmt.Errorf("save: unknown event %q", g.ActiveEventID)
		}
		active = &market.ActiveEvent{Template: tpl, Magnitude: g.Magnitude, Remaining: g.Remaining}
	}
	s.events.Restore(active, g.LastConcluded, g.HadEvent)

	s.ledger = market.NewLedger(s.tune.StockCaps, s.tune.RegenRate)
	s.ledger.Restore(g.Stock, g.Sold)

	s.distances = s.graph.DistancesFrom(s.player.System)
	s.started = true
	return true, nil
}

// stockedItems lists every item the deterministic selector stocks at a
// system, across all categories.
func (s *Session) stockedItems(systemID string) []catalogs.ItemDef {
	var items []catalogs.ItemDef
	for _, cat := range s.cats.Categories.IDs {
		items = append(items, s.selector.SelectItems(systemID, cat)...)
	}
	return items
}

// nearProduction reports whether any 1-jump neighbor of the system produces
// the category, which earns the connection discount.
func (s *Session) nearProduction(systemID, category string) bool {
	for _, e := range s.graph.Neighbors(systemID) {
		if sys, ok := s.cats.System(e.To); ok && s.cats.Produces(sys.PlanetType, category) {
			return true
		}
	}
	return false
}

// Status reports the player's situation plus reachability from the current
// system for the map display.
func (s *Session) Status() protocol.StatusMsg {
	sys, _ := s.cats.System(s.player.System)
	reach := make(map[string]float64, len(s.distances))
	for id, d := range s.distances {
		reach[id] = d
	}
	return protocol.StatusMsg{
		System:        s.player.System,
		SystemName:    sys.Name,
		PlanetType:    string(sys.PlanetType),
		Credits:       round2(s.player.Credits),
		CargoUsed:     s.player.CargoUsed(),
		CargoCapacity: s.player.CargoCapacity,
		Jumps:         s.player.Jumps,
		MarketMode:    string(s.player.Mode),
		WinGoal:       s.player.WinGoal,
		Won:           s.player.Won(),
		Reachable:     reach,
	}
}

func (s *Session) requireStarted() error {
	if !s.started {
		return fail(protocol.ErrNoSession, "no game in progress")
	}
	return nil
}

// persistAll writes the full session state; used by NewGame where everything
// is new.
func (s *Session) persistAll(tx *store.Tx) error {
	if err := s.persistPlayer(tx); err != nil {
		return err
	}
	for item, lot := range s.player.Hold {
		if err := tx.UpsertInventory(store.InventoryRow{Item: item, Qty: lot.Qty, PurchaseSystem: lot.PurchaseSystem}); err != nil {
			return err
		}
	}
	for key, e := range s.ledger.Entries() {
		if err := tx.UpsertStock(key, e); err != nil {
			return err
		}
	}
	for key, qty := range s.ledger.SoldPools() {
		if err := tx.UpsertSold(key, qty); err != nil {
			return err
		}
	}
	if err := tx.SaveUniverse(s.universe.Snapshot()); err != nil {
		return err
	}
	last, had := s.events.LastConcluded()
	return tx.SaveEvent(s.events.Active(), last, had)
}

func (s *Session) persistPlayer(tx *store.Tx) error {
	return tx.SavePlayer(store.PlayerRow{
		System:        s.player.System,
		Credits:       s.player.Credits,
		CargoCapacity: s.player.CargoCapacity,
		Jumps:         s.player.Jumps,
		MarketMode:    string(s.player.Mode),
		WinGoal:       s.player.WinGoal,
	})
}

type txWriter = *store.Tx

// withTx runs one action's writes in a single transaction.
func (s *Session) withTx(fn func(tx txWriter) error) error {
	tx, err := s.store.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func inventoryRow(item string, lot *Lot) store.InventoryRow {
	if lot == nil {
		return store.InventoryRow{Item: item}
	}
	return store.InventoryRow{Item: item, Qty: lot.Qty, PurchaseSystem: lot.PurchaseSystem}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
