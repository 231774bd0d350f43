package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	userService      service.UserService
	taskService      service.TaskService

	dispatcher *events.Dispatcher
}

// newApplication wires stores, services and the event pipeline.
// The database connection must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	tx := store.NewSQLTransactor(db)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewAuditLogHandler(logger))
	app.dispatcher = events.NewDispatcher(emitter, events.DispatcherConfig{
		WorkerCount: cfg.Events.WorkerCount,
		QueueSize:   cfg.Events.QueueSize,
	}, logger)

	app.userService = service.NewUserService(app.userStore, tx, app.passwordVerifier, hasher, logger)
	app.taskService = service.NewTaskService(app.taskStore, app.userStore, tx, app.dispatcher, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

func (app *application) cookieOptions() shared.CookieOptions {
	return shared.CookieOptions{
		Secure: app.config.Auth.CookieSecure,
		Domain: app.config.Auth.CookieDomain,
	}
}

// Run starts the event dispatcher and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	app.dispatcher.Start()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains queued events once the server has stopped accepting requests.
func (app *application) cleanup(ctx context.Context) {
	if app.dispatcher != nil {
		if err := app.dispatcher.Stop(ctx); err != nil {
			app.logger.Error("error stopping event dispatcher", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
