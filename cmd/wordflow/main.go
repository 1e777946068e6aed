package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vytor/wordflow/internal/app"
	"github.com/vytor/wordflow/internal/config"
	"github.com/vytor/wordflow/internal/logger"
)

var (
	dbPath   string
	logLevel string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wordflow",
		Short:         "Spaced-repetition review engine",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDefault(logger.New(
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithLevel(logger.ParseLevel(logLevel)),
			))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
	flags.StringVar(&logLevel, "log-level", "WARN", "log level: debug, info, warn, error")

	root.AddCommand(newSimulateCommand())
	root.AddCommand(newEnrollCommand())
	root.AddCommand(newReviewCommand())
	root.AddCommand(newDueCommand())
	root.AddCommand(newStatsCommand())
	return root
}

// openApp loads configuration, applies the --db override and opens the store.
func openApp() (*app.App, error) {
	cfg := config.Load()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a, err := app.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.DBPath, err)
	}
	return a, nil
}
