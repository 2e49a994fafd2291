package client

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"lockgate/internal/lease"
	"lockgate/internal/lock"
)

const sweeperLockName = "lockgate:sweeper"

// Sweeper clears expired lease rows on a cron schedule. Every instance
// schedules the sweep; the sweeper advisory lock elects the single instance
// that actually runs it, the rest skip the round. The sweep is hygiene only —
// acquisition treats stale leases as free without it.
type Sweeper struct {
	db       *sql.DB
	leases   lease.Manager
	schedule string
	cron     *cron.Cron
}

func NewSweeper(db *sql.DB, leases lease.Manager, schedule string) *Sweeper {
	return &Sweeper{db: db, leases: leases, schedule: schedule}
}

// Start schedules the sweep and returns immediately.
func (s *Sweeper) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.SweepOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule sweep %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// SweepOnce runs a single sweep round if this instance wins the sweeper lock.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		log.Printf("sweeper: failed to pin connection: %v", err)
		return
	}
	defer conn.Close()

	scope, err := lock.NewSessionLock(conn).TryAcquire(ctx, sweeperLockName)
	if err != nil {
		log.Printf("sweeper: %v", err)
		return
	}
	if scope == nil {
		// another instance holds the sweep
		return
	}
	defer scope.Close(ctx)

	swept, err := s.leases.ReleaseExpiredLocks(ctx)
	if err != nil {
		log.Printf("sweeper: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("sweeper: cleared %d expired leases", swept)
	}
}
