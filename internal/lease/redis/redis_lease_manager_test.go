package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManagerForTest(t *testing.T) (*RedisLeaseManager, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return NewRedisLeaseManager(client), mr, cleanup
}

func TestRedisLeaseManager_AcquireLock(t *testing.T) {
	mgr, _, cleanup := newManagerForTest(t)
	defer cleanup()
	ctx := context.Background()

	ok, err := mgr.AcquireLock(ctx, "job", "42", "worker-A", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mgr.AcquireLock(ctx, "job", "42", "worker-B", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLeaseManager_AcquireLock_Reentrant(t *testing.T) {
	mgr, _, cleanup := newManagerForTest(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := mgr.AcquireLock(ctx, "job", "42", "worker-A", 5*time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRedisLeaseManager_AcquireLock_StaleTakeover(t *testing.T) {
	mgr, mr, cleanup := newManagerForTest(t)
	defer cleanup()
	ctx := context.Background()

	ok, err := mgr.AcquireLock(ctx, "job", "42", "worker-A", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = mgr.AcquireLock(ctx, "job", "42", "worker-B", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLeaseManager_ExtendLock(t *testing.T) {
	mgr, _, cleanup := newManagerForTest(t)
	defer cleanup()
	ctx := context.Background()

	ok, err := mgr.AcquireLock(ctx, "job", "42", "worker-A", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = mgr.ExtendLock(ctx, "job", "42", "worker-A", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mgr.ExtendLock(ctx, "job", "42", "worker-B", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLeaseManager_ExtendLock_NothingHeld(t *testing.T) {
	mgr, _, cleanup := newManagerForTest(t)
	defer cleanup()

	ok, err := mgr.ExtendLock(context.Background(), "job", "42", "worker-A", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLeaseManager_ReleaseLock(t *testing.T) {
	mgr, _, cleanup := newManagerForTest(t)
	defer cleanup()
	ctx := context.Background()

	ok, err := mgr.AcquireLock(ctx, "job", "42", "worker-A", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// a non-owner release must not free the lease
	require.NoError(t, mgr.ReleaseLock(ctx, "job", "42", "worker-B"))
	ok, err = mgr.AcquireLock(ctx, "job", "42", "worker-B", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mgr.ReleaseLock(ctx, "job", "42", "worker-A"))
	ok, err = mgr.AcquireLock(ctx, "job", "42", "worker-B", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLeaseManager_ReleaseLocks(t *testing.T) {
	mgr, _, cleanup := newManagerForTest(t)
	defer cleanup()
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		ok, err := mgr.AcquireLock(ctx, "job", id, "worker-A", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := mgr.AcquireLock(ctx, "job", "4", "worker-B", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, mgr.ReleaseLocks(ctx, "worker-A"))

	for _, id := range []string{"1", "2", "3"} {
		ok, err := mgr.AcquireLock(ctx, "job", id, "worker-C", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "lease job/%s should have been released", id)
	}
	// worker-B's lease survives the bulk release
	ok, err = mgr.AcquireLock(ctx, "job", "4", "worker-C", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// owner with nothing held is a safe no-op
	require.NoError(t, mgr.ReleaseLocks(ctx, "worker-Z"))
}
