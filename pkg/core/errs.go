package core

import "errors"

var (
	// ErrNoData indicates the upstream market-data service could not provide
	// a payload (transport failure or non-success status).
	ErrNoData = errors.New("no data available")

	// ErrEmptyRegistry indicates no coin list has been loaded yet.
	ErrEmptyRegistry = errors.New("coin registry is empty")
)
