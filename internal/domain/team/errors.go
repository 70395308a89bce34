package team

import (
	"errors"
	"fmt"
)

// Sentinel kinds for registry errors.
var (
	ErrUnknownTeam    = errors.New("unknown team")
	ErrDuplicateAlias = errors.New("duplicate team alias")
	ErrInvalidTeam    = errors.New("invalid team")
)

// UnknownTeamError reports an alias that no registered team claims.
type UnknownTeamError struct {
	Alias string
}

func (e *UnknownTeamError) Error() string {
	return fmt.Sprintf("unknown team %q", e.Alias)
}

// Is lets errors.Is match ErrUnknownTeam.
func (e *UnknownTeamError) Is(target error) bool {
	return target == ErrUnknownTeam
}
