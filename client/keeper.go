package client

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lockgate/custom_errors"
	"lockgate/internal/lease"
)

// Lease names one resource the keeper should own.
type Lease struct {
	EntityName string
	EntityID   string
	TTL        time.Duration
}

// Keeper acquires a set of leases and keeps them alive, renewing each one at
// a third of its TTL. Losing any lease stops the keeper: exclusive work must
// not continue once ownership is gone. On shutdown every lease held by this
// owner is released in bulk.
type Keeper struct {
	leases  lease.Manager
	ownerID string
	targets []Lease
}

// NewKeeper builds a keeper whose owner identity combines the instance name
// with a random suffix, so a restarted instance never mistakes a stale lease
// of its predecessor for its own.
func NewKeeper(m lease.Manager, instance string) *Keeper {
	return &Keeper{
		leases:  m,
		ownerID: instance + "-" + uuid.NewString(),
	}
}

func (k *Keeper) OwnerID() string {
	return k.ownerID
}

// Add registers a lease to hold. Call before Run.
func (k *Keeper) Add(entityName, entityID string, ttl time.Duration) {
	k.targets = append(k.targets, Lease{EntityName: entityName, EntityID: entityID, TTL: ttl})
}

// Run acquires every registered lease and renews them until ctx is cancelled,
// then releases everything held by this owner. It returns an error when a
// lease could not be acquired or was lost mid-flight.
func (k *Keeper) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, target := range k.targets {
		target := target
		g.Go(func() error {
			return k.keep(gctx, target)
		})
	}
	err := g.Wait()

	// ctx is gone by now; the release gets its own deadline
	releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if rerr := k.leases.ReleaseLocks(releaseCtx, k.ownerID); rerr != nil {
		log.Printf("keeper: failed to release leases on shutdown: %v", rerr)
	}
	return err
}

func (k *Keeper) keep(ctx context.Context, t Lease) error {
	if err := lease.EnsureAcquiringLock(ctx, k.leases, t.EntityName, t.EntityID, k.ownerID, t.TTL); err != nil {
		return err
	}

	interval := t.TTL / 3
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// cancellation is the normal way to stop holding a lease
			return nil
		case <-ticker.C:
			ok, err := k.leases.ExtendLock(ctx, t.EntityName, t.EntityID, k.ownerID, t.TTL)
			if err != nil {
				return err
			}
			if !ok {
				return &custom_errors.LockNotAcquiredError{
					EntityName: t.EntityName,
					EntityID:   t.EntityID,
					OwnerID:    k.ownerID,
				}
			}
		}
	}
}
