package gamekey

import (
	"errors"
	"fmt"
)

// Sentinel kinds for game key errors.
var (
	ErrUnresolvedGame = errors.New("unresolved game")
	ErrMalformedKey   = errors.New("malformed game key")
	ErrUnknownWeek    = errors.New("unknown week label")
)

// UnresolvedGameError reports a game whose forward and reversed keys are both
// absent from the known-key set.
type UnresolvedGameError struct {
	Forward Key
}

func (e *UnresolvedGameError) Error() string {
	return fmt.Sprintf("game %s: neither %s nor %s is a known game", e.Forward, e.Forward, e.Forward.Reversed())
}

// Is lets errors.Is match ErrUnresolvedGame.
func (e *UnresolvedGameError) Is(target error) bool {
	return target == ErrUnresolvedGame
}
