package app

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lockgate/internal/clock"
	"lockgate/types/config"
)

func TestNewContainer_Postgres(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg, err := config.NewLockgateConfig("west-1",
		config.WithPostgresConfig(config.PostgresConfig{ConnectionUrl: "postgres://localhost/locks"}))
	require.NoError(t, err)

	c, err := NewContainer(context.Background(), cfg, WithDB(db))
	require.NoError(t, err)

	assert.Same(t, db, c.DB)
	assert.NotNil(t, c.Leases)
	assert.NotNil(t, c.UnitOfWork)
	assert.NotNil(t, c.Sweeper)
	assert.NotNil(t, c.Keeper)
}

func TestNewContainer_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg, err := config.NewLockgateConfig("west-1",
		config.WithRedisConfig(config.RedisConfig{Address: mr.Addr()}))
	require.NoError(t, err)

	c, err := NewContainer(context.Background(), cfg, WithRedis(client))
	require.NoError(t, err)

	assert.NotNil(t, c.Leases)
	assert.Nil(t, c.UnitOfWork)
	assert.Nil(t, c.Sweeper)
	assert.NotNil(t, c.Keeper)

	ok, err := c.Leases.AcquireLock(context.Background(), "job", "42", "worker-A", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewContainer_InjectedClock(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cfg, err := config.NewLockgateConfig("west-1",
		config.WithPostgresConfig(config.PostgresConfig{ConnectionUrl: "postgres://localhost/locks"}))
	require.NoError(t, err)

	clk := clock.NewFrozen(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c, err := NewContainer(context.Background(), cfg, WithDB(db), WithClock(clk))
	require.NoError(t, err)

	assert.Same(t, clock.Clock(clk), c.Clock)
}

func TestNewContainer_MismatchedDriver(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	// postgres driver with only a redis client wired in
	cfg, err := config.NewLockgateConfig("west-1")
	require.NoError(t, err)

	_, err = NewContainer(context.Background(), cfg, WithRedis(client))
	assert.Error(t, err)
}
