package session

import (
	"errors"
	"fmt"

	"starlanes/internal/protocol"
)

// ActionError is a rejected player action: the code travels to the display,
// the message explains the rejection. Nothing was mutated when one is
// returned.
type ActionError struct {
	Code string
	Msg  string
}

func (e *ActionError) Error() string {
	return e.Code + ": " + e.Msg
}

func fail(code, format string, args ...any) *ActionError {
	return &ActionError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf maps any error to a protocol error code. Store and integrity
// failures collapse to E_INTERNAL; the caller already rolled back.
func CodeOf(err error) string {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return protocol.ErrInternal
}
