// Command server runs the read-only migration status API on its own, for
// deployments that want the status surface without shipping the CLI.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"db_prog_object_migrator/internal/config"
	"db_prog_object_migrator/internal/db"
	"db_prog_object_migrator/internal/httpapi"
	"db_prog_object_migrator/internal/logging"
	"db_prog_object_migrator/internal/migrate"

	_ "db_prog_object_migrator/migrations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	if err := cfg.ValidateTarget(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)

	adapter, err := db.Open(cfg.Engine, cfg.DSN, cfg.LockScope)
	if err != nil {
		logger.Error("db connection failed", "error", err)
		os.Exit(1)
	}
	defer adapter.Close()

	srv := httpapi.New(cfg.HTTPAddress, logger, adapter, migrate.Registered())
	if err := srv.Start(ctx); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}
