// Package cli provides the command-line interface for impression.
package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/raphaelgruber/impression-go/internal/config"
	"github.com/raphaelgruber/impression-go/internal/metrics"
	"github.com/raphaelgruber/impression-go/internal/platform"
	"github.com/raphaelgruber/impression-go/internal/store"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose      bool
	platformFlag string
	userFlag     string
	showStats    bool

	// Global config and platform
	cfg         config.Config
	logger      = slog.Default()
	closeLogger = func() error { return nil }
	stats       *metrics.Collector
	registry    = platform.Default()
	plat        platform.Platform

	// Lazy-initialized stores
	jobStore  store.JobStore
	fileStore store.FileStore
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "impression",
	Short: "Submit and track prediction jobs",
	Long: `Impression submits prediction jobs on input files and tracks them
through their lifecycle (SUBMITTED, QUEUED, STARTED, FINISHED, ERROR).

Job records live in a document database and files in an input and an output
bucket. The backend is selected with --platform or IMPRESSION_PLATFORM.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if platformFlag != "" {
			cfg.Platform = platformFlag
		}
		if userFlag != "" {
			cfg.User = userFlag
		}

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, closeLogger = config.SetupLogger(cfg.LogFile, level)
		stats = metrics.NewCollector()

		p, err := registry.Resolve(cfg.Platform)
		if err != nil {
			return err
		}
		plat = p
		logger.Debug("platform resolved", "platform", plat.Name, "user", cfg.User)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if showStats && stats != nil {
			printStats(cmd.OutOrStdout(), stats.Snapshot())
		}
		return nil
	},
}

func deps() platform.Deps {
	return platform.Deps{Config: cfg, Logger: logger, Metrics: stats}
}

// getJobStore opens the platform's job store on first use.
func getJobStore(ctx context.Context) (store.JobStore, error) {
	if jobStore != nil {
		return jobStore, nil
	}
	s, err := plat.OpenJobStore(ctx, deps())
	if err != nil {
		return nil, err
	}
	jobStore = s
	return s, nil
}

// getFileStore opens the platform's file store on first use.
func getFileStore(ctx context.Context) (store.FileStore, error) {
	if fileStore != nil {
		return fileStore, nil
	}
	fs, err := plat.OpenFileStore(ctx, deps())
	if err != nil {
		return nil, err
	}
	fileStore = fs
	return fs, nil
}

// currentUser returns the requesting user for job operations.
func currentUser() (string, error) {
	if cfg.User == "" {
		return "", errors.New("no user: pass --user or set IMPRESSION_USER")
	}
	return cfg.User, nil
}

// closeStores releases the stores opened during the command.
func closeStores() {
	if jobStore != nil {
		if err := jobStore.Close(context.Background()); err != nil {
			logger.Warn("failed to close job store", "error", err)
		}
		jobStore = nil
	}
	if fileStore != nil {
		if err := fileStore.Close(); err != nil {
			logger.Warn("failed to close file store", "error", err)
		}
		fileStore = nil
	}
	_ = closeLogger()
	closeLogger = func() error { return nil }
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer closeStores()
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&platformFlag, "platform", "p", "", "backend platform (overrides IMPRESSION_PLATFORM)")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "requesting user (overrides IMPRESSION_USER)")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "print store timing statistics after the command")

	// Add subcommands
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(platformsCmd)
}

