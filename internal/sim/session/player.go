package session

// MarketMode selects how system stock behaves.
type MarketMode string

const (
	ModeInfinite      MarketMode = "infinite"
	ModeFiniteInstant MarketMode = "finite-instant"
	ModeFiniteTurn    MarketMode = "finite-turn"
)

func ParseMarketMode(s string) (MarketMode, bool) {
	switch MarketMode(s) {
	case ModeInfinite, ModeFiniteInstant, ModeFiniteTurn:
		return MarketMode(s), true
	case "":
		return ModeInfinite, true
	}
	return "", false
}

func (m MarketMode) Finite() bool {
	return m == ModeFiniteInstant || m == ModeFiniteTurn
}

// Lot is the player's holding of one item. PurchaseSystem is where the lot
// was last acquired; it goes blank once the lot mixes acquisitions from
// different systems, and blanks again when the player departs that system.
type Lot struct {
	Qty            float64
	PurchaseSystem string
}

// Player is the mutable player state for one session.
type Player struct {
	System        string
	Credits       float64
	CargoCapacity float64
	Jumps         int
	WinGoal       float64
	Mode          MarketMode

	Hold map[string]*Lot // item id -> lot
}

func (p *Player) CargoUsed() float64 {
	var used float64
	for _, lot := range p.Hold {
		used += lot.Qty
	}
	return used
}

func (p *Player) CargoFree() float64 {
	return p.CargoCapacity - p.CargoUsed()
}

func (p *Player) Won() bool {
	return p.Credits >= p.WinGoal
}

func (p *Player) clone() Player {
	cp := *p
	cp.Hold = make(map[string]*Lot, len(p.Hold))
	for id, lot := range p.Hold {
		l := *lot
		cp.Hold[id] = &l
	}
	return cp
}
