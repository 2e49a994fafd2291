package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"lockgate/internal/lock"
)

const (
	schema        = "lockgate_schema"
	migrationLock = "lockgate:migrations"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS lockgate_schema.locks (
		entity_name text NOT NULL,
		entity_id   text NOT NULL,
		owner_id    text,
		acquired_at timestamptz,
		expired_at  timestamptz,
		CONSTRAINT locks_pkey PRIMARY KEY (entity_name, entity_id)
	)`,
}

// Init connects to the database and brings the lockgate schema up to date.
// The migration advisory lock ensures only one instance runs the DDL at a
// time; the others block on Acquire and then find the work already done.
func Init(ctx context.Context, postgresURL string) error {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return Migrate(ctx, db)
}

// Migrate runs the schema migrations on db under the migration lock.
func Migrate(ctx context.Context, db *sql.DB) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to pin migration connection: %w", err)
	}
	defer conn.Close()

	scope, err := lock.NewSessionLock(conn).Acquire(ctx, migrationLock)
	if err != nil {
		return err
	}
	defer scope.Close(ctx)

	if _, err := conn.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	for i, stmt := range migrations {
		log.Printf("running migration %d/%d", i+1, len(migrations))
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i+1, err)
		}
	}
	return nil
}
