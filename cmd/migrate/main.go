package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"syncchat.backend/internal/config"
	"syncchat.backend/internal/infrastructure/datasources/postgres"
	"syncchat.backend/internal/infrastructure/migrations"
)

type migrateDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	open    func(cfg config.DatabaseConfig) (*sql.DB, error)
	up      func(ctx context.Context, db *sql.DB) error
	status  func(ctx context.Context, db *sql.DB) error
	out     io.Writer
}

func defaultMigrateDeps() migrateDeps {
	return migrateDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		open:    postgres.NewConnection,
		up:      migrations.Up,
		status:  migrations.Status,
		out:     os.Stdout,
	}
}

func runMigrate(args []string, deps migrateDeps) error {
	def := defaultMigrateDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.open == nil {
		deps.open = def.open
	}
	if deps.up == nil {
		deps.up = def.up
	}
	if deps.status == nil {
		deps.status = def.status
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(deps.out)
	command := fs.String("command", "up", "migration command: up or status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var run func(ctx context.Context, db *sql.DB) error
	switch *command {
	case "up":
		run = deps.up
	case "status":
		run = deps.status
	default:
		return fmt.Errorf("unknown command %q (allowed: up, status)", *command)
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()

	db, err := deps.open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := run(context.Background(), db); err != nil {
		return fmt.Errorf("migrate %s failed: %w", *command, err)
	}
	_, _ = fmt.Fprintf(deps.out, "migrate %s complete for %s\n", *command, cfg.Database.DBName)
	return nil
}

func main() {
	if err := runMigrate(os.Args[1:], defaultMigrateDeps()); err != nil {
		log.Fatal(err)
	}
}
