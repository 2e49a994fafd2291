package client

import (
	"context"
	"sync"
	"time"
)

// mockLeaseManager is a func-field mock of lease.Manager.
type mockLeaseManager struct {
	mu sync.Mutex

	AcquireLockFunc         func(ctx context.Context, entityName, entityID, ownerID string, expirationIn time.Duration) (bool, error)
	ExtendLockFunc          func(ctx context.Context, entityName, entityID, ownerID string, expirationIn time.Duration) (bool, error)
	ReleaseLocksFunc        func(ctx context.Context, ownerID string) error
	ReleaseExpiredLocksFunc func(ctx context.Context) (int64, error)

	acquireCalls  int
	extendCalls   int
	releasedOwner string
}

func (m *mockLeaseManager) AcquireLock(ctx context.Context, entityName, entityID, ownerID string, expirationIn time.Duration) (bool, error) {
	m.mu.Lock()
	m.acquireCalls++
	m.mu.Unlock()
	if m.AcquireLockFunc != nil {
		return m.AcquireLockFunc(ctx, entityName, entityID, ownerID, expirationIn)
	}
	return true, nil
}

func (m *mockLeaseManager) ExtendLock(ctx context.Context, entityName, entityID, ownerID string, expirationIn time.Duration) (bool, error) {
	m.mu.Lock()
	m.extendCalls++
	m.mu.Unlock()
	if m.ExtendLockFunc != nil {
		return m.ExtendLockFunc(ctx, entityName, entityID, ownerID, expirationIn)
	}
	return true, nil
}

func (m *mockLeaseManager) ReleaseLock(ctx context.Context, entityName, entityID, ownerID string) error {
	return nil
}

func (m *mockLeaseManager) ReleaseLocks(ctx context.Context, ownerID string) error {
	m.mu.Lock()
	m.releasedOwner = ownerID
	m.mu.Unlock()
	if m.ReleaseLocksFunc != nil {
		return m.ReleaseLocksFunc(ctx, ownerID)
	}
	return nil
}

func (m *mockLeaseManager) ReleaseExpiredLocks(ctx context.Context) (int64, error) {
	if m.ReleaseExpiredLocksFunc != nil {
		return m.ReleaseExpiredLocksFunc(ctx)
	}
	return 0, nil
}

func (m *mockLeaseManager) counts() (acquires, extends int, releasedOwner string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquireCalls, m.extendCalls, m.releasedOwner
}
