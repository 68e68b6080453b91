package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/app"
	"kodkariyer/ats-engine/internal/config"
	"kodkariyer/ats-engine/internal/logger"
)

var (
	// Version info set from main
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"

	outputFmt string
	verbose   bool
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
	app.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "atsctl",
	Short: "Operate the ATS scoring engine",
	Long: `atsctl scores job applications and manages stored scores
from the command line, using the same database and embedding
configuration as the API server.

Examples:
  atsctl score 3f0c...          # Score one application
  atsctl ranking 9a1e...        # Rank a job's applications
  atsctl recalculate 9a1e...    # Rescore every application of a job
  atsctl export 9a1e... --out ranking.xlsx`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table",
		"output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

// bootstrap loads configuration and wires the application container. The
// caller owns the returned container and must Close it.
func bootstrap(ctx context.Context) (*app.Container, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug || verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c, err := app.New(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	log.Debug("container ready", zap.String("env", cfg.Server.Env))
	return c, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("atsctl %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", buildTime)
	},
}
