package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// startHTTPServer serves router until ctx is cancelled, then shuts down gracefully.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	srvCfg := app.config.Server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", srvCfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(srvCfg.ReadTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(srvCfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(srvCfg.WriteTimeoutSeconds) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "port", srvCfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			app.logger.Error("server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(srvCfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.cleanup(shutdownCtx)

	app.logger.Info("server shutdown completed")
	return nil
}
