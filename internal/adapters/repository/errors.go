package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound = errors.New("not found")
	ErrNoRun    = errors.New("no completed run")
	ErrNilRun   = errors.New("nil run")
	ErrNoDSN    = errors.New("postgres dsn not configured")
)
