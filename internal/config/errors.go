package config

import "errors"

// ErrInvalid is wrapped by every configuration validation error.
var ErrInvalid = errors.New("invalid configuration")
