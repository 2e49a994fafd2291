package config

import (
	"errors"
	"time"

	"lockgate/custom_errors"
)

type LockgateConfig struct {
	Instance string // Unique identifier for this instance, used as the default lease owner prefix

	StorageDriver StorageDriver // Specifies the lease backend (PostgreSQL or Redis)

	// Configuration for the PostgreSQL storage driver
	PostgresConfig PostgresConfig
	// Configuration for the Redis storage driver
	RedisConfig RedisConfig

	SweepSchedule   string        // Cron expression for the expired-lease sweep
	DefaultLeaseTTL time.Duration // Lease duration used when callers do not pick one
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	ConnectionUrl string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string // Redis address (e.g., "localhost:6379")
	Password string // Password for Redis authentication (optional)
	DB       int    // Redis database number (0 by default)
}

// ContainerOption type for functional options pattern
type ContainerOption func(*LockgateConfig) error

// NewLockgateConfig creates a new LockgateConfig with default values. Only
// the instance name is required; option failures are aggregated so the caller
// sees every configuration problem at once.
func NewLockgateConfig(instance string, opts ...ContainerOption) (*LockgateConfig, error) {
	cfg := &LockgateConfig{
		Instance:        instance,
		StorageDriver:   DefaultStorageDriver,
		SweepSchedule:   DefaultSweepSchedule,
		DefaultLeaseTTL: DefaultLeaseTTL,
	}

	validationErrs := &custom_errors.ValidationError{}
	if instance == "" {
		validationErrs.Add(errors.New("instance name is required"))
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			validationErrs.Add(err)
		}
	}

	if validationErrs.HasError() {
		return nil, validationErrs
	}
	return cfg, nil
}

func WithPostgresConfig(pg PostgresConfig) ContainerOption {
	return func(c *LockgateConfig) error {
		if pg.ConnectionUrl == "" {
			return errors.New("postgres config: connection URL is required")
		}
		c.StorageDriver = Postgres
		c.PostgresConfig = pg
		return nil
	}
}

func WithRedisConfig(rd RedisConfig) ContainerOption {
	return func(c *LockgateConfig) error {
		if rd.Address == "" {
			return errors.New("redis config: address is required")
		}
		c.StorageDriver = Redis
		c.RedisConfig = rd
		return nil
	}
}

func WithSweepSchedule(schedule string) ContainerOption {
	return func(c *LockgateConfig) error {
		if schedule == "" {
			return errors.New("sweep schedule must not be empty")
		}
		c.SweepSchedule = schedule
		return nil
	}
}

func WithDefaultLeaseTTL(ttl time.Duration) ContainerOption {
	return func(c *LockgateConfig) error {
		if ttl <= 0 {
			return errors.New("default lease TTL must be positive")
		}
		c.DefaultLeaseTTL = ttl
		return nil
	}
}
