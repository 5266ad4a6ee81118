package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrBadDocument = errors.New("malformed events document")
	ErrBadDate     = errors.New("unparseable event date")
)
