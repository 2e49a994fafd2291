package lock

import (
	"context"
	"fmt"
	"sync"
)

const stillHeldQuery = `
	SELECT EXISTS (
		SELECT 1 FROM pg_locks
		WHERE locktype = 'advisory'
		  AND classid = $1
		  AND objid = $2
		  AND objsubid = 1
		  AND pid = pg_backend_pid()
		  AND granted
	)`

// LockScope represents one successful advisory lock acquisition on one
// database session.
type LockScope struct {
	sess    session
	lockID  int64
	txBound bool

	mu       sync.Mutex
	released bool
}

func newLockScope(sess session, lockID int64, txBound bool) *LockScope {
	return &LockScope{sess: sess, lockID: lockID, txBound: txBound}
}

// Close releases the lock. For transaction-bound scopes it is a no-op: the
// owning transaction's commit or rollback releases the lock. Calling Close
// more than once is safe; only the first call issues the unlock.
func (s *LockScope) Close(ctx context.Context) error {
	if s.txBound {
		return nil
	}

	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	s.mu.Unlock()

	var released bool
	if err := s.sess.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", s.lockID).Scan(&released); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if !released {
		return fmt.Errorf("advisory lock %d was not held by this session", s.lockID)
	}
	return nil
}

// StillHeld reports whether this session currently holds the advisory lock
// according to pg_locks. It is a point-in-time snapshot for diagnostics, not
// a guarantee: a colliding id could be released and retaken by another name
// between the check and any use of the answer.
func (s *LockScope) StillHeld(ctx context.Context) (bool, error) {
	// pg_locks splits the 64-bit advisory key into classid (high 32 bits)
	// and objid (low 32 bits).
	classID := int64(uint32(uint64(s.lockID) >> 32))
	objID := int64(uint32(uint64(s.lockID)))

	var held bool
	if err := s.sess.QueryRowContext(ctx, stillHeldQuery, classID, objID).Scan(&held); err != nil {
		return false, fmt.Errorf("failed to check lock state: %w", err)
	}
	return held, nil
}
