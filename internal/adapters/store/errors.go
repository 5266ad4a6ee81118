package store

import "errors"

// Sentinel kinds for rating store errors.
var (
	ErrNotFound     = errors.New("athlete not found")
	ErrInvalidLimit = errors.New("invalid ranking limit")
)
