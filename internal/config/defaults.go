package config

import "time"

const defaultOperationTimeout = 3 * time.Second

// DefaultOperationTimeout returns the store operation timeout used when none
// is configured.
func DefaultOperationTimeout() time.Duration {
	return defaultOperationTimeout
}
