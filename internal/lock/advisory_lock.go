package lock

import (
	"context"
	"database/sql"
	"fmt"
)

// session runs statements on one pinned database session. Both *sql.Conn and
// *sql.Tx qualify. A bare *sql.DB does not: advisory locks belong to the
// backend that took them, and a pool may route the unlock statement to a
// different backend, silently breaking mutual exclusion.
type session interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DistributedLock provides mutual exclusion on a named resource through
// Postgres advisory locks. It is constructed in exactly one of three modes:
//
//   - NewSessionLock: bound to a caller-owned pinned connection. The caller
//     keeps the connection open for as long as any returned scope is held.
//   - NewTransactionLock: bound to an open transaction. Locks taken in this
//     mode are transaction-scoped and released by commit or rollback.
//   - NewConnectionStringLock: given a DSN; the lock opens and pins its own
//     connection on first acquire and Close tears it down.
type DistributedLock struct {
	conn *sql.Conn
	tx   *sql.Tx

	// set only in connection-string mode
	db  *sql.DB
	dsn string
}

// NewSessionLock binds to an existing pinned connection. The caller owns the
// connection lifetime; Close on the lock never touches it.
func NewSessionLock(conn *sql.Conn) *DistributedLock {
	return &DistributedLock{conn: conn}
}

// NewTransactionLock binds to an open transaction. Acquired locks use
// pg_advisory_xact_lock and vanish when the transaction reaches a terminal
// state; the returned scopes need no explicit release.
func NewTransactionLock(tx *sql.Tx) *DistributedLock {
	return &DistributedLock{tx: tx}
}

// NewConnectionStringLock owns the connection it opens. The connection is
// opened lazily on the first Acquire or TryAcquire and closed by Close.
func NewConnectionStringLock(dsn string) *DistributedLock {
	return &DistributedLock{dsn: dsn}
}

// Acquire blocks until the advisory lock for name is obtained, then returns a
// scope that releases it. The wait happens server-side and has no built-in
// timeout; bound it through ctx. Any error means the lock was not obtained.
func (l *DistributedLock) Acquire(ctx context.Context, name string) (*LockScope, error) {
	sess, err := l.session(ctx)
	if err != nil {
		return nil, err
	}

	id := LockID(name)
	stmt := "SELECT pg_advisory_lock($1)"
	if l.tx != nil {
		stmt = "SELECT pg_advisory_xact_lock($1)"
	}

	if _, err := sess.ExecContext(ctx, stmt, id); err != nil {
		return nil, fmt.Errorf("failed to acquire lock %q: %w", name, err)
	}

	return newLockScope(sess, id, l.tx != nil), nil
}

// TryAcquire attempts the advisory lock for name without waiting. It returns
// (nil, nil) when another session holds the lock. This is the primitive to
// build leader election and bounded waiting on.
func (l *DistributedLock) TryAcquire(ctx context.Context, name string) (*LockScope, error) {
	sess, err := l.session(ctx)
	if err != nil {
		return nil, err
	}

	id := LockID(name)
	stmt := "SELECT pg_try_advisory_lock($1)"
	if l.tx != nil {
		stmt = "SELECT pg_try_advisory_xact_lock($1)"
	}

	var acquired bool
	if err := sess.QueryRowContext(ctx, stmt, id).Scan(&acquired); err != nil {
		return nil, fmt.Errorf("failed to try lock %q: %w", name, err)
	}
	if !acquired {
		return nil, nil
	}

	return newLockScope(sess, id, l.tx != nil), nil
}

// Close releases the connection only in connection-string mode. Locks bound
// to a caller-supplied connection or transaction never close what they did
// not open.
func (l *DistributedLock) Close() error {
	if l.db == nil {
		return nil
	}
	if l.conn != nil {
		if err := l.conn.Close(); err != nil {
			l.db.Close()
			return fmt.Errorf("failed to close lock connection: %w", err)
		}
		l.conn = nil
	}
	err := l.db.Close()
	l.db = nil
	if err != nil {
		return fmt.Errorf("failed to close lock database handle: %w", err)
	}
	return nil
}

func (l *DistributedLock) session(ctx context.Context) (session, error) {
	if l.tx != nil {
		return l.tx, nil
	}
	if l.conn != nil {
		return l.conn, nil
	}
	if l.dsn == "" {
		return nil, fmt.Errorf("distributed lock has no connection, transaction or connection string")
	}

	db, err := sql.Open("postgres", l.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock connection: %w", err)
	}
	// Pin one physical connection; the pool must not swap backends under us.
	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to pin lock connection: %w", err)
	}

	l.db = db
	l.conn = conn
	return conn, nil
}
