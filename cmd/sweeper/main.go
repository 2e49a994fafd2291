package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lockgate/app"
	"lockgate/internal/db"
	"lockgate/types/config"
)

func main() {
	const postgresURL = "host=localhost port=5432 user=postgres password=postgres dbname=lockgate sslmode=disable"

	cfg, err := config.NewLockgateConfig("west-1",
		config.WithPostgresConfig(config.PostgresConfig{ConnectionUrl: postgresURL}),
		config.WithSweepSchedule("@every 30s"),
		config.WithDefaultLeaseTTL(time.Minute),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx, postgresURL); err != nil {
		log.Fatal(err)
	}

	container, err := app.NewContainer(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer container.DB.Close()

	if err := container.Sweeper.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer container.Sweeper.Stop()

	// hold the nightly-report lease for as long as this process lives
	container.Keeper.Add("scheduled-job", "nightly-report", cfg.DefaultLeaseTTL)

	log.Printf("lockgate sweeper running as %s", container.Keeper.OwnerID())
	if err := container.Keeper.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
