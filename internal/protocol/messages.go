package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	PlayerName      string         `json:"player_name"`
	Catalogs        CatalogDigests `json:"catalogs"`
	Status          *StatusMsg     `json:"status,omitempty"`
}

type CatalogDigests struct {
	ItemsDigest        string `json:"items_digest"`
	CategoriesDigest   string `json:"categories_digest"`
	SystemsDigest      string `json:"systems_digest"`
	ConnectionsDigest  string `json:"connections_digest"`
	CorrelationsDigest string `json:"correlations_digest"`
	EventsDigest       string `json:"events_digest"`
	ProductionDigest   string `json:"production_digest"`
	DemandDigest       string `json:"demand_digest"`
}

// INTENT (client -> server): a single player action.
type IntentMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	IntentID        string `json:"intent_id"`
	Action          string `json:"action"` // NEW_GAME | TRAVEL | BUY | SELL | MARKET | CARGO | STATUS

	// NEW_GAME
	Config *NewGameConfig `json:"config,omitempty"`
	// TRAVEL
	Destination string `json:"destination,omitempty"`
	// BUY / SELL
	ItemID   string  `json:"item_id,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
}

type NewGameConfig struct {
	Credits        float64 `json:"credits,omitempty"`
	CargoCapacity  float64 `json:"cargo_capacity,omitempty"`
	WinGoal        float64 `json:"win_goal,omitempty"`
	StartingSystem string  `json:"starting_system,omitempty"` // system id or "random"
	MarketMode     string  `json:"market_mode,omitempty"`     // infinite | finite-instant | finite-turn
}

// ACK (server -> client): outcome of one intent.
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
}

// STATUS (server -> client): the player's situation after an action.
type StatusMsg struct {
	Type            string             `json:"type,omitempty"`
	ProtocolVersion string             `json:"protocol_version,omitempty"`
	System          string             `json:"system"`
	SystemName      string             `json:"system_name"`
	PlanetType      string             `json:"planet_type"`
	Credits         float64            `json:"credits"`
	CargoUsed       float64            `json:"cargo_used"`
	CargoCapacity   float64            `json:"cargo_capacity"`
	Jumps           int                `json:"jumps"`
	MarketMode      string             `json:"market_mode"`
	WinGoal         float64            `json:"win_goal"`
	Won             bool               `json:"won"`
	Reachable       map[string]float64 `json:"reachable"` // system id -> jump distance
}

// MARKET (server -> client): buy-side listing at the current system.
type MarketMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	System          string      `json:"system"`
	Rows            []MarketRow `json:"rows"`
}

type MarketRow struct {
	ItemID     string   `json:"item_id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Rarity     string   `json:"rarity"`
	BuyPrice   float64  `json:"buy_price"`
	Label      string   `json:"label"`
	Stock      *float64 `json:"stock,omitempty"` // nil in infinite mode
	PlayerSold bool     `json:"player_sold,omitempty"`
}

// CARGO (server -> client): sell-side listing of the player's hold.
type CargoMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	System          string     `json:"system"`
	Rows            []CargoRow `json:"rows"`
}

type CargoRow struct {
	ItemID        string  `json:"item_id"`
	Name          string  `json:"name"`
	Quantity      float64 `json:"quantity"`
	SellPrice     float64 `json:"sell_price"`
	Label         string  `json:"label"`
	ResalePenalty bool    `json:"resale_penalty,omitempty"`
}

// NEWS (server -> client): a market event flash.
type NewsMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Kind            string  `json:"kind"` // TRIGGERED | DECAYED | EXPIRED
	EventID         string  `json:"event_id"`
	Headline        string  `json:"headline"`
	Category        string  `json:"category"`
	Impact          string  `json:"impact"`
	Remaining       float64 `json:"remaining,omitempty"`
}
