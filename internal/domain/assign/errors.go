package assign

import "errors"

// Structural errors; either aborts the whole game.
var (
	ErrNoDrives  = errors.New("no drives")
	ErrUnordered = errors.New("drives not ordered by non-increasing start")
)
