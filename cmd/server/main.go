// Package main implements the entry point for the Taskboard API server,
// a task management backend with cookie-based JWT sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
)

// cliFlags holds the parsed command line options.
type cliFlags struct {
	migrate        string
	skipMigrations bool
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&f.migrate, "migrate", "",
		"run a migration command and exit: "+strings.Join(postgres.MigrationCommands, "|"))
	fs.BoolVar(&f.skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	return f, nil
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if err := run(flags); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(flags cliFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"app_name", cfg.App.Name,
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", "error", err)
		}
	}()

	if flags.migrate != "" {
		return postgres.Migrate(ctx, db, flags.migrate, log)
	}
	if !flags.skipMigrations {
		if err := postgres.Migrate(ctx, db, "up", log); err != nil {
			return err
		}
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
