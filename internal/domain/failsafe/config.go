package failsafe

import "time"

// Config carries the thresholds the risk evaluator and the checkpoint
// manager apply. It is passed by value at call time; there is no process-wide
// mutable configuration.
type Config struct {
	RevenueThresholdCents   int64
	CustomerThreshold       int
	HighValueThresholdCents int64
	RollbackWindow          time.Duration
}

const DefaultRollbackWindow = 24 * time.Hour

func DefaultConfig() Config {
	return Config{
		RevenueThresholdCents:   500_000,
		CustomerThreshold:       3,
		HighValueThresholdCents: 1_000_000,
		RollbackWindow:          DefaultRollbackWindow,
	}
}
