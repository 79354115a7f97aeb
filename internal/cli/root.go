// Package cli implements the clipsy command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/brencon/clipsy/internal/app"
	"github.com/brencon/clipsy/internal/artifact"
	"github.com/brencon/clipsy/internal/config"
	"github.com/brencon/clipsy/internal/database"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:   "clipsy",
	Short: "Clipboard history manager",
	Long: `Clipsy keeps a searchable history of everything you copy. The watch
command runs the capture daemon; the other commands query and manage
the stored history.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (default $CLIPSY_DATA_DIR or ~/.local/share/clipsy)")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(gcCmd)
}

// cmdContext holds the resources the one-shot commands share.
type cmdContext struct {
	Config     *config.Config
	Logger     *slog.Logger
	Artifacts  *artifact.Store
	Repository *database.Repository
}

// Close releases resources held by cmdContext.
func (c *cmdContext) Close() {
	if c.Repository != nil {
		c.Repository.Close()
	}
}

// initContext loads the config and opens the store.
func initContext() *cmdContext {
	cfg, err := config.Load(dataDir)
	if err != nil {
		exitError("%v", err)
	}
	if err := cfg.EnsureDirs(); err != nil {
		exitError("%v", err)
	}

	logger := app.NewLogger(cfg)

	artifacts, err := artifact.New(cfg.ImagesPath())
	if err != nil {
		exitError("failed to open artifact store: %v", err)
	}

	repository, err := database.NewRepository(cfg.DBPath(), artifacts, cfg.MaxEntries, logger)
	if err != nil {
		exitError("failed to open database: %v", err)
	}

	return &cmdContext{
		Config:     cfg,
		Logger:     logger,
		Artifacts:  artifacts,
		Repository: repository,
	}
}

// exitError prints an error and exits.
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
