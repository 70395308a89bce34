package synth

import "errors"

// Sentinel errors for the generator and verifier.
var (
	ErrInvalidConfig = errors.New("invalid synth config")
	ErrUnhealthy     = errors.New("service is not healthy")
	ErrMismatch      = errors.New("service results do not match the generated season")
)
