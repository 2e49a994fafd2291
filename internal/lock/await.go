package lock

import (
	"context"
	"errors"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// ErrLockBusy is reported by Await when every attempt found the lock held by
// another session.
var ErrLockBusy = errors.New("advisory lock is held by another session")

// Await polls TryAcquire with exponential backoff until the lock is obtained,
// the attempts run out or ctx is cancelled. Connection errors abort the wait
// immediately. Callers can override the defaults with retry options.
func Await(ctx context.Context, l *DistributedLock, name string, opts ...retry.Option) (*LockScope, error) {
	options := append([]retry.Option{
		retry.Context(ctx),
		retry.Attempts(10),
		retry.Delay(100 * time.Millisecond),
		retry.MaxDelay(5 * time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}, opts...)

	return retry.NewWithData[*LockScope](options...).Do(func() (*LockScope, error) {
		scope, err := l.TryAcquire(ctx, name)
		if err != nil {
			return nil, retry.Unrecoverable(err)
		}
		if scope == nil {
			return nil, ErrLockBusy
		}
		return scope, nil
	})
}
