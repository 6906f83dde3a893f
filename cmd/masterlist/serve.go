package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/greyfable/masterlist/internal/api"
	"github.com/greyfable/masterlist/internal/audit"
	"github.com/greyfable/masterlist/internal/auth"
	"github.com/greyfable/masterlist/internal/config"
	"github.com/greyfable/masterlist/internal/db"
	"github.com/greyfable/masterlist/internal/metrics"
	"github.com/greyfable/masterlist/internal/repository"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

var configFile string

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "/etc/masterlist/config.yaml", "Path to configuration file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	// Setup logger
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.Logging.Level),
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.Logging.Level),
		})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}

	store, err := audit.NewStore(cfg.Activity.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	users := repository.NewUserRepository(database.DB)
	sessions := repository.NewSessionRepository(database.DB)
	characters := repository.NewCharacterRepository(database.DB)
	settings := repository.NewSettingsRepository(database.DB)

	m := metrics.New()
	handlers := api.NewHandlers(api.HandlersConfig{
		Config:     cfg,
		Logger:     logger,
		Users:      users,
		Sessions:   sessions,
		Characters: characters,
		Settings:   settings,
		Activity:   audit.NewRecorder(store, logger),
		Auth:       auth.NewAuthenticator(users, logger),
		Metrics:    m,
	})

	srv := api.NewServer(cfg, handlers, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Expired sessions accumulate between logins; sweep them hourly.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := sessions.DeleteExpired(); err != nil {
					logger.Error("session cleanup failed", "error", err)
				} else if n > 0 {
					logger.Info("removed expired sessions", "count", n)
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Server.ListenAddr, "tls", cfg.Server.TLS.Enabled)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-sigCh:
		logger.Info("shutting down...", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
