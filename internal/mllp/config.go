package mllp

import "time"

// DefaultTimeout bounds each socket operation when the caller does not
// choose a value.
const DefaultTimeout = 30 * time.Second

// readChunkSize is the scratch buffer used by the receive loop. Responses
// larger than one chunk are accumulated across reads.
const readChunkSize = 4096

// Config defines the per-exchange transport budget.
type Config struct {
	// Timeout applies to the connect, to the single write, and to each
	// read in the receive loop. It must be positive; Exchange rejects a
	// zero or negative value instead of treating it as unbounded.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout: DefaultTimeout,
	}
}
