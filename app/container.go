package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"lockgate/client"
	"lockgate/internal/clock"
	"lockgate/internal/lease"
	leasepostgres "lockgate/internal/lease/postgres"
	leaseredis "lockgate/internal/lease/redis"
	"lockgate/internal/uow"
	"lockgate/types/config"
)

// Container holds all application dependencies. It is the single source of
// truth for dependency injection and ensures connections and services are
// created once.
type Container struct {
	Config *config.LockgateConfig

	// Storage connections (created once, shared by all components)
	DB    *sql.DB
	Redis *redis.Client

	Clock clock.Clock

	// Lease manager for the configured storage driver
	Leases lease.Manager

	// Transaction orchestration over the Postgres connection
	UnitOfWork *uow.Manager

	Sweeper *client.Sweeper
	Keeper  *client.Keeper
}

// NewContainer creates and wires all dependencies. Single entry point for DI.
// Pass optional WithDB, WithRedis, WithClock to inject collaborators for
// testing.
func NewContainer(ctx context.Context, cfg *config.LockgateConfig, opts ...ContainerOption) (*Container, error) {
	opt := &containerConfig{}
	for _, o := range opts {
		o(opt)
	}

	db := opt.db
	redisClient := opt.redis
	if db == nil && redisClient == nil {
		var err error
		db, redisClient, err = initStorageConnections(cfg)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
	}

	clk := opt.clock
	if clk == nil {
		clk = clock.System()
	}

	var leases lease.Manager
	switch cfg.StorageDriver {
	case config.Postgres:
		if db == nil {
			return nil, fmt.Errorf("postgres driver selected but no database connection available")
		}
		leases = leasepostgres.NewPostgresLeaseManager(db, clk)
	case config.Redis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis driver selected but no redis client available")
		}
		leases = leaseredis.NewRedisLeaseManager(redisClient)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %v", cfg.StorageDriver)
	}

	c := &Container{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Clock:  clk,
		Leases: leases,
		Keeper: client.NewKeeper(leases, cfg.Instance),
	}
	if db != nil {
		c.UnitOfWork = uow.NewManager(db)
		c.Sweeper = client.NewSweeper(db, leases, cfg.SweepSchedule)
	}
	return c, nil
}

// initStorageConnections creates storage connections based on config.
func initStorageConnections(cfg *config.LockgateConfig) (*sql.DB, *redis.Client, error) {
	switch cfg.StorageDriver {
	case config.Postgres:
		db, err := sql.Open("postgres", cfg.PostgresConfig.ConnectionUrl)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return db, nil, nil
	case config.Redis:
		return nil, redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Address,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		}), nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %v", cfg.StorageDriver)
	}
}
