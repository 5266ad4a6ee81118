package config

import (
	"errors"
)

// Sentinel errors distinguishing unreadable configuration from readable
// but rejected configuration; callers match with errors.Is.
var (
	// ErrInvalidConfig marks a loaded config that failed validation,
	// such as an unknown period mode or a non-positive tau.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig marks a failure to read or decode the config sources.
	ErrLoadConfig = errors.New("load config failed")
)
