package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Action validation (rejected before any mutation).
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrNoCredits     = "E_NO_CREDITS"
	ErrNoCargoSpace  = "E_NO_CARGO_SPACE"
	ErrNoStock       = "E_NO_STOCK"
	ErrNoHolding     = "E_NO_HOLDING"
	ErrNotAdjacent   = "E_NOT_ADJACENT"
	ErrUnknownSystem = "E_UNKNOWN_SYSTEM"
	ErrUnknownItem   = "E_UNKNOWN_ITEM"

	// Store/session failures.
	ErrNoSession = "E_NO_SESSION"
	ErrInternal  = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrNoCredits:       {},
	ErrNoCargoSpace:    {},
	ErrNoStock:         {},
	ErrNoHolding:       {},
	ErrNotAdjacent:     {},
	ErrUnknownSystem:   {},
	ErrUnknownItem:     {},
	ErrNoSession:       {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
