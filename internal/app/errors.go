package service

import "errors"

// ErrNoRun is returned by query methods before any successful run.
var ErrNoRun = errors.New("no completed rating run")
