/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

var verbose bool

func init() {
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log internal progress to stderr")
}

var rootCmd = &cobra.Command{
	Use:          "pgadvise",
	SilenceUsage: true,
	Short:        "Diagnose, benchmark, and batch-audit PostgreSQL queries",
	Long: `pgadvise is a CLI tool for diagnosing PostgreSQL query plans.

It detects plan-level problems, suggests indexes and rewrites, scores cost and
complexity, benchmarks queries against a live database, and audits whole
fleets of databases from a manifest. Supports SQL, and JSON input formats.`,
	Example: `  # Diagnose a single query
  pgadvise analyze query.sql --db postgres://localhost/app

  # Compare two plans
  pgadvise compare old.sql new.sql

  # Benchmark a query, or race two candidates
  pgadvise benchmark query.sql --iterations 10
  pgadvise benchmark old.sql --against new.sql

  # Audit a fleet of databases
  pgadvise batch fleet.yaml --quick

  # Setup connection profiles
  pgadvise init`,
}

// newLogger returns the CLI logger. Quiet by default; --verbose switches to
// zap's development output on stderr.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}
