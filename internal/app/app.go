// Package app wires the daemon together: configuration, logging,
// storage and the clipboard monitor.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/brencon/clipsy/internal/artifact"
	"github.com/brencon/clipsy/internal/classify"
	"github.com/brencon/clipsy/internal/clipboard"
	"github.com/brencon/clipsy/internal/config"
	"github.com/brencon/clipsy/internal/database"
)

// App is the assembled capture daemon.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	Artifacts  *artifact.Store
	Repository *database.Repository
	Monitor    *clipboard.Monitor
}

// New builds the daemon on top of an already-initialized clipboard
// source. The source is injected so tests can drive the pipeline with a
// scripted clipboard.
func New(cfg *config.Config, logger *slog.Logger, source clipboard.Source) (*App, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("prepare data directory: %w", err)
	}

	artifacts, err := artifact.New(cfg.ImagesPath())
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}

	repository, err := database.NewRepository(cfg.DBPath(), artifacts, cfg.MaxEntries, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	monitor := clipboard.NewMonitor(source, repository, artifacts, classify.New(cfg.PreviewLength), cfg, logger)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Artifacts:  artifacts,
		Repository: repository,
		Monitor:    monitor,
	}, nil
}

// Run prunes expired entries, then drives the poll loop until ctx is
// canceled. A failed startup prune is logged and the daemon keeps going;
// retention still holds through the per-insert cap.
func (a *App) Run(ctx context.Context) error {
	if n, err := a.Repository.PruneOlderThan(ctx, a.Config.MaxEntryAge()); err != nil {
		a.Logger.Warn("startup prune failed", "error", err)
	} else if n > 0 {
		a.Logger.Info("pruned expired entries", "count", n, "max_age", a.Config.MaxEntryAge())
	}

	return a.Monitor.Run(ctx)
}

// Close releases the database handle.
func (a *App) Close() error {
	return a.Repository.Close()
}

// NewLogger builds the process logger from the configured level and
// format. Unknown values fall back to info-level text output.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
