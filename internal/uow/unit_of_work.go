package uow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lockgate/internal/lock"
)

// Manager opens units of work: transactions that may carry a named advisory
// lock for their whole lifetime. The lock is transaction-scoped, so commit or
// rollback releases it; a unit of work can never leak a held lock.
type Manager struct {
	db *sql.DB
}

func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// Option configures Begin.
type Option func(*beginConfig)

type beginConfig struct {
	lockName string
}

// WithLockName makes the unit of work acquire the named advisory lock on its
// transaction before any work runs. Acquisition failure fails Begin and rolls
// the transaction back.
func WithLockName(name string) Option {
	return func(c *beginConfig) {
		c.lockName = name
	}
}

// UnitOfWork is one open transaction. It reaches a terminal state exactly
// once: the first Commit or Rollback wins, later calls are no-ops.
type UnitOfWork struct {
	tx    *sql.Tx
	scope *lock.LockScope
	done  bool
}

func (m *Manager) Begin(ctx context.Context, opts ...Option) (*UnitOfWork, error) {
	var cfg beginConfig
	for _, o := range opts {
		o(&cfg)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	u := &UnitOfWork{tx: tx}
	if cfg.lockName != "" {
		scope, err := lock.NewTransactionLock(tx).Acquire(ctx, cfg.lockName)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		u.scope = scope
	}
	return u, nil
}

// Tx exposes the open transaction for the caller's statements.
func (u *UnitOfWork) Tx() *sql.Tx {
	return u.tx
}

func (u *UnitOfWork) Commit() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// Do runs fn inside a unit of work that is guaranteed to terminate: commit on
// success, rollback on error or panic.
func (m *Manager) Do(ctx context.Context, fn func(tx *sql.Tx) error, opts ...Option) error {
	u, err := m.Begin(ctx, opts...)
	if err != nil {
		return err
	}
	defer u.Rollback()

	if err := fn(u.tx); err != nil {
		return err
	}
	return u.Commit()
}
