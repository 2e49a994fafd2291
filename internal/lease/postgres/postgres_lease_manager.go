package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lockgate/internal/clock"
	"lockgate/internal/metrics"
)

// PostgresLeaseManager keeps leases in the lockgate_schema.locks table, one
// row per (entity_name, entity_id). A row with owner_id NULL is free; a row
// whose expired_at has passed is free for acquisition even before a sweep
// clears it. Rows are created lazily and never deleted, only their ownership
// fields are nulled.
//
// The decisive write is a single conditional UPDATE, so concurrent acquirers
// racing on a free or stale row cannot both win. All timestamps come from the
// injected clock and are compared inside that one statement, never against
// the database clock.
type PostgresLeaseManager struct {
	db    *sql.DB
	clock clock.Clock
}

func NewPostgresLeaseManager(db *sql.DB, clk clock.Clock) *PostgresLeaseManager {
	if clk == nil {
		clk = clock.System()
	}
	return &PostgresLeaseManager{db: db, clock: clk}
}

func (m *PostgresLeaseManager) AcquireLock(ctx context.Context, entityName, entityID, ownerID string, expirationIn time.Duration) (bool, error) {
	if expirationIn <= 0 {
		return false, fmt.Errorf("lease duration must be positive, got %s", expirationIn)
	}

	if err := m.ensureRow(ctx, entityName, entityID); err != nil {
		return false, err
	}

	// Re-entrant path: an owner acquiring its own live lease renews it.
	extended, err := m.ExtendLock(ctx, entityName, entityID, ownerID, expirationIn)
	if err != nil {
		return false, err
	}
	if extended {
		return true, nil
	}

	now := m.clock.Now()
	res, err := m.db.ExecContext(ctx, `
		UPDATE lockgate_schema.locks
		SET owner_id = $1,
		    acquired_at = $2,
		    expired_at = $3
		WHERE entity_name = $4 AND entity_id = $5
		  AND (owner_id IS NULL OR expired_at < $2)
	`, ownerID, now, now.Add(expirationIn), entityName, entityID)
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected > 0 {
		metrics.LeaseAcquired.Inc()
		return true, nil
	}
	metrics.LeaseContended.Inc()
	return false, nil
}

func (m *PostgresLeaseManager) ExtendLock(ctx context.Context, entityName, entityID, ownerID string, expirationIn time.Duration) (bool, error) {
	if expirationIn <= 0 {
		return false, fmt.Errorf("lease duration must be positive, got %s", expirationIn)
	}

	now := m.clock.Now()
	res, err := m.db.ExecContext(ctx, `
		UPDATE lockgate_schema.locks
		SET expired_at = $1
		WHERE entity_name = $2 AND entity_id = $3 AND owner_id = $4
	`, now.Add(expirationIn), entityName, entityID, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to extend lease: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected > 0 {
		metrics.LeaseExtended.Inc()
		return true, nil
	}
	return false, nil
}

func (m *PostgresLeaseManager) ReleaseLock(ctx context.Context, entityName, entityID, ownerID string) error {
	res, err := m.db.ExecContext(ctx, `
		UPDATE lockgate_schema.locks
		SET owner_id = NULL,
		    acquired_at = NULL,
		    expired_at = NULL
		WHERE entity_name = $1 AND entity_id = $2 AND owner_id = $3
	`, entityName, entityID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to release lease: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected > 0 {
		metrics.LeaseReleased.Inc()
	}
	return nil
}

func (m *PostgresLeaseManager) ReleaseLocks(ctx context.Context, ownerID string) error {
	res, err := m.db.ExecContext(ctx, `
		UPDATE lockgate_schema.locks
		SET owner_id = NULL,
		    acquired_at = NULL,
		    expired_at = NULL
		WHERE owner_id = $1
	`, ownerID)
	if err != nil {
		return fmt.Errorf("failed to release leases for owner %s: %w", ownerID, err)
	}

	if affected, _ := res.RowsAffected(); affected > 0 {
		metrics.LeaseReleased.Add(float64(affected))
	}
	return nil
}

func (m *PostgresLeaseManager) ReleaseExpiredLocks(ctx context.Context) (int64, error) {
	res, err := m.db.ExecContext(ctx, `
		UPDATE lockgate_schema.locks
		SET owner_id = NULL,
		    acquired_at = NULL,
		    expired_at = NULL
		WHERE expired_at < $1
	`, m.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to release expired leases: %w", err)
	}

	affected, _ := res.RowsAffected()
	if affected > 0 {
		metrics.LeasesSwept.Add(float64(affected))
	}
	return affected, nil
}

func (m *PostgresLeaseManager) ensureRow(ctx context.Context, entityName, entityID string) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO lockgate_schema.locks (entity_name, entity_id)
		VALUES ($1, $2)
		ON CONFLICT (entity_name, entity_id) DO NOTHING
	`, entityName, entityID)
	if err != nil {
		return fmt.Errorf("failed to ensure lease row: %w", err)
	}
	return nil
}
