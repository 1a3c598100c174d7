package profile

import "errors"

// ErrUnknown indicates an invalid profile identifier was specified.
var ErrUnknown = errors.New("unknown profile")

// ErrInvalidConfig indicates a profile configuration file could not be applied.
var ErrInvalidConfig = errors.New("invalid profile configuration")
