package config

import "time"

const (
	// DefaultSweepSchedule runs the expired-lease sweep once a minute.
	DefaultSweepSchedule = "@every 1m"

	// DefaultLeaseTTL is used when a caller does not pick a lease duration.
	DefaultLeaseTTL = 30 * time.Second

	DefaultStorageDriver = Postgres
)
