package lease

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v5"

	"lockgate/custom_errors"
)

// Manager is a persisted, cross-process exclusive lease over an arbitrary
// named entity. Leases survive process restarts and live independently of any
// open transaction or connection; holders must extend them before expiry.
//
// "Lease busy" is never an error: AcquireLock and ExtendLock answer with
// false. Errors mean the operation itself failed (connection, SQL).
type Manager interface {
	// AcquireLock takes or renews the lease on (entityName, entityID) for
	// ownerID. It reports true when the caller now holds the lease. Calling
	// it again before expiry with the same owner renews and reports true.
	AcquireLock(ctx context.Context, entityName, entityID, ownerID string, expirationIn time.Duration) (bool, error)

	// ExtendLock pushes the expiry forward for the current owner only.
	// A non-owner gets false and changes nothing.
	ExtendLock(ctx context.Context, entityName, entityID, ownerID string, expirationIn time.Duration) (bool, error)

	// ReleaseLock frees the lease if ownerID holds it. Releasing a lease one
	// does not hold is a no-op, not an error.
	ReleaseLock(ctx context.Context, entityName, entityID, ownerID string) error

	// ReleaseLocks frees every lease held by ownerID, e.g. on shutdown.
	ReleaseLocks(ctx context.Context, ownerID string) error

	// ReleaseExpiredLocks clears every lease whose expiry has passed and
	// reports how many it cleared. Acquisition never needs this sweep for
	// correctness; it is hygiene for abandoned rows.
	ReleaseExpiredLocks(ctx context.Context) (int64, error)
}

// EnsureAcquiringLock acquires the lease or fails with LockNotAcquiredError.
// Use it where the lease is a precondition rather than a branch.
func EnsureAcquiringLock(ctx context.Context, m Manager, entityName, entityID, ownerID string, expirationIn time.Duration) error {
	ok, err := m.AcquireLock(ctx, entityName, entityID, ownerID, expirationIn)
	if err != nil {
		return err
	}
	if !ok {
		return &custom_errors.LockNotAcquiredError{
			EntityName: entityName,
			EntityID:   entityID,
			OwnerID:    ownerID,
		}
	}
	return nil
}

// AwaitLock polls AcquireLock with exponential backoff until the lease is
// obtained, the attempts run out or ctx is cancelled. The managers build no
// waiting in themselves; this is the sanctioned polling layer on top.
func AwaitLock(ctx context.Context, m Manager, entityName, entityID, ownerID string, expirationIn time.Duration, opts ...retry.Option) error {
	options := append([]retry.Option{
		retry.Context(ctx),
		retry.Attempts(10),
		retry.Delay(100 * time.Millisecond),
		retry.MaxDelay(5 * time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}, opts...)

	return retry.New(options...).Do(func() error {
		ok, err := m.AcquireLock(ctx, entityName, entityID, ownerID, expirationIn)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		if !ok {
			return &custom_errors.LockNotAcquiredError{
				EntityName: entityName,
				EntityID:   entityID,
				OwnerID:    ownerID,
			}
		}
		return nil
	})
}
