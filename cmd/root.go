// Package cmd implements the Readmate CLI using Cobra.
package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/gaurav-prasanna/readmate/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is the CLI version reported by --version.
var Version = "0.1.0"

// Persistent flag variables.
var (
	flagConfig  string
	flagDataDir string
	flagDocsDir string
	flagBackend string
	flagVerbose bool
)

// cfg and logger are set up before any subcommand runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "readmate",
	Short: "Readmate: import web articles and scans into a reading library",
	Long: `Readmate turns web articles and scanned pages into paginated PDF documents
and keeps them in a local reading library.

Usage:
  readmate import <url>
  readmate scan <image>... --title <title>
  readmate library list`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/readmate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Library data directory (default: $XDG_DATA_HOME/readmate)")
	rootCmd.PersistentFlags().StringVar(&flagDocsDir, "documents-dir", "", "Directory for imported documents (default: <data-dir>/documents)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "catalog", "", "Catalog backend: json or sqlite")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// setup loads .env, the configuration and the logger.
func setup(cmd *cobra.Command, args []string) error {
	// Load .env file if present (ignore errors)
	_ = godotenv.Load()

	loaded, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	// A relocated data directory takes its documents along unless they are
	// placed explicitly by flag, config file or environment.
	if flagDataDir != "" {
		loaded.DataDir = flagDataDir
	}
	if flagDocsDir != "" {
		loaded.DocumentsDir = flagDocsDir
	}
	if flagBackend != "" {
		loaded.CatalogBackend = flagBackend
	}
	if flagVerbose {
		loaded.Verbose = true
	}
	loaded.DocumentsDir = loaded.Documents()
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	logger = setupLogger(cfg.Verbose)
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", "file", cfg.ConfigFile, "data_dir", cfg.DataDir,
		"documents_dir", cfg.DocumentsDir, "catalog", cfg.CatalogBackend)
	return nil
}

// setupLogger creates a structured logger based on verbosity setting.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command. Interrupts cancel ctx, which cancels any
// import in progress.
func Execute(ctx context.Context) error {
	return fang.Execute(ctx, rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	)
}
