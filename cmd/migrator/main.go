// Command migrator is the thin CLI over the migration toolkit: it scaffolds
// programmable-object migrations from drift and applies registered migration
// units to a target database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"db_prog_object_migrator/internal/asset"
	"db_prog_object_migrator/internal/config"
	"db_prog_object_migrator/internal/db"
	"db_prog_object_migrator/internal/httpapi"
	"db_prog_object_migrator/internal/logging"
	"db_prog_object_migrator/internal/migrate"
	"db_prog_object_migrator/internal/scaffold"
	"db_prog_object_migrator/internal/snapshot"
	"db_prog_object_migrator/internal/sqlgen"

	_ "db_prog_object_migrator/migrations"
)

// productVersion is stamped into history rows; overridden at build time with
// -ldflags "-X main.productVersion=...".
var productVersion = "dev"

const (
	snapshotFile  = "prog_snapshot.json"
	manifestFile  = "prog_manifest.json"
	migrationsDir = "migrations"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "init":
		err = initCmd(args)
	case "prog":
		if len(args) < 1 || args[0] != "add" {
			fmt.Fprintln(os.Stderr, "usage: migrator prog add --root <path> --name <migrationName>")
			os.Exit(1)
		}
		err = progAddCmd(args[1:])
	case "db":
		if len(args) < 1 || args[0] != "update" {
			fmt.Fprintln(os.Stderr, "usage: migrator db update --engine <engine> --conn <dsn>")
			os.Exit(1)
		}
		err = dbUpdateCmd(args[1:])
	case "status":
		err = statusCmd(args)
	case "serve":
		err = serveCmd(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %s\n", cmd)
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`migrator commands:
  init       - materialize the asset directory layout plus empty snapshot and manifest
  prog add   - diff programmable objects against the snapshot and scaffold a migration
  db update  - apply pending registered migrations to a database
  status     - show recent applied-migration history
  serve      - run the read-only status API

Flags are command specific; run "<cmd> -h" for details.`)
}

func initCmd(args []string) error {
	cfg := config.Load()
	fs := flagSet("init")
	root := fs.String("root", cfg.Root, "project root to initialize")
	scope := fs.String("scope", migrate.DefaultLockScope, "migration scope recorded in the manifest")
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, dir := range asset.KindDirNames() {
		if err := os.MkdirAll(filepath.Join(*root, dir), 0o755); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Join(*root, migrationsDir), 0o755); err != nil {
		return err
	}

	snapPath := filepath.Join(*root, snapshotFile)
	if _, err := os.Stat(snapPath); os.IsNotExist(err) {
		if err := snapshot.Save(snapPath, &snapshot.Snapshot{Items: []snapshot.Item{}}); err != nil {
			return err
		}
	}

	manifestPath := filepath.Join(*root, manifestFile)
	if _, err := os.Stat(manifestPath); os.IsNotExist(err) {
		if err := writeEmptyManifest(manifestPath, *scope); err != nil {
			return err
		}
	}

	fmt.Println("initialized project layout at", *root)
	return nil
}

func writeEmptyManifest(path, scope string) error {
	m := scaffold.Manifest{Scope: scope, UpdatedAtUtc: time.Now().UTC(), Migrations: []scaffold.ManifestEntry{}}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func progAddCmd(args []string) error {
	cfg := config.Load()
	fs := flagSet("prog add")
	root := fs.String("root", cfg.Root, "project root")
	name := fs.String("name", "", "migration name")
	schema := fs.String("schema", cfg.DefaultSchema, "default schema for assets that do not encode one")
	scope := fs.String("scope", lockScopeOr(cfg.LockScope), "migration scope recorded in the manifest")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	res, err := scaffold.Run(scaffold.RunInput{
		Provider:     asset.NewDirProvider(*root, *schema, asset.KindProcedure),
		SnapshotPath: filepath.Join(*root, snapshotFile),
		ManifestPath: filepath.Join(*root, manifestFile),
		OutputDir:    filepath.Join(*root, migrationsDir),
		Name:         *name,
		Scope:        *scope,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	if res.Ops == 0 {
		fmt.Println("up to date: no programmable object changes")
		return nil
	}
	fmt.Printf("scaffolded %s (%d operations)\n", res.File, res.Ops)
	fmt.Println(res.Summary)
	return nil
}

func dbUpdateCmd(args []string) error {
	cfg := config.Load()
	fs := flagSet("db update")
	engine := fs.String("engine", cfg.Engine, "target engine: postgres, mysql or sqlite")
	conn := fs.String("conn", cfg.DSN, "connection string")
	scope := fs.String("scope", lockScopeOr(cfg.LockScope), "lock and history scope")
	timeout := fs.Int("timeout", int(cfg.CommandTimeout/time.Second), "per-batch timeout in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Engine, cfg.DSN = *engine, *conn
	if err := cfg.ValidateTarget(); err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	adapter, err := db.Open(cfg.Engine, cfg.DSN, *scope)
	if err != nil {
		return err
	}
	defer adapter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := sqlgen.ForEngine(cfg.Engine)
	if err != nil {
		return err
	}
	m := migrate.New(gen, adapter, adapter, adapter, migrate.Options{
		LockScope:      *scope,
		CommandTimeout: time.Duration(*timeout) * time.Second,
		ProductVersion: productVersion,
		Logger:         logger,
	})
	res, err := m.Migrate(ctx, migrate.Registered())
	if err != nil {
		return err
	}
	if res.UpToDate() {
		fmt.Printf("up to date: %d migrations already applied\n", res.Skipped)
		return nil
	}
	fmt.Printf("applied %d migrations (%d skipped)\n", len(res.Applied), res.Skipped)
	return nil
}

func statusCmd(args []string) error {
	cfg := config.Load()
	fs := flagSet("status")
	engine := fs.String("engine", cfg.Engine, "target engine")
	conn := fs.String("conn", cfg.DSN, "connection string")
	scope := fs.String("scope", lockScopeOr(cfg.LockScope), "history scope")
	limit := fs.Int("limit", 10, "number of rows to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Engine, cfg.DSN = *engine, *conn
	if err := cfg.ValidateTarget(); err != nil {
		return err
	}

	adapter, err := db.Open(cfg.Engine, cfg.DSN, *scope)
	if err != nil {
		return err
	}
	defer adapter.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := adapter.EnsureCreated(ctx); err != nil {
		return err
	}
	rows, err := adapter.History(ctx, *limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no migrations applied yet")
		return nil
	}
	for _, r := range rows {
		fmt.Printf("  %s  %s  version=%s  applied=%s\n", r.ID, r.Name, r.ProductVersion, r.AppliedAt.Format(time.RFC3339))
	}
	return nil
}

func serveCmd(args []string) error {
	cfg := config.Load()
	fs := flagSet("serve")
	engine := fs.String("engine", cfg.Engine, "target engine")
	conn := fs.String("conn", cfg.DSN, "connection string")
	scope := fs.String("scope", lockScopeOr(cfg.LockScope), "history scope")
	addr := fs.String("addr", cfg.HTTPAddress, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Engine, cfg.DSN = *engine, *conn
	if err := cfg.ValidateTarget(); err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	adapter, err := db.Open(cfg.Engine, cfg.DSN, *scope)
	if err != nil {
		return err
	}
	defer adapter.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpapi.New(*addr, logger, adapter, migrate.Registered())
	return srv.Start(ctx)
}

func lockScopeOr(scope string) string {
	if scope == "" {
		return migrate.DefaultLockScope
	}
	return scope
}

func flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	return fs
}
