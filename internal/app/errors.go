package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for run errors.
var (
	ErrRunInProgress = errors.New("a run is already in progress")
	ErrNoGames       = errors.New("game catalog is empty")
)

// gameError is a structural failure that aborted one game.
type gameError struct {
	game string
	kind string
	err  error
}

func (e *gameError) Error() string {
	return fmt.Sprintf("game %s: %v", e.game, e.err)
}

func (e *gameError) Unwrap() error { return e.err }

// Kind is the diagnostics and metrics label of the failure.
func (e *gameError) Kind() string { return e.kind }
