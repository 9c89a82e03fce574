/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pgadvise/pgadvise/internal/batch"
	"github.com/pgadvise/pgadvise/internal/health"
	"github.com/pgadvise/pgadvise/internal/output"
	"github.com/pgadvise/pgadvise/internal/profile"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch [manifest]",
	Short: "Audit a fleet of databases from a manifest",
	Long: `Audit every database listed in a YAML manifest and aggregate the results
into a fleet report.

Targets run concurrently. Failing targets are retried with a delay and never
abort the rest of the batch. Repeated targets within one run are served from
a short-lived cache.

Each target names a connection directly or references a saved profile.`,
	Example: `  # Full audit of a fleet
  pgadvise batch fleet.yaml

  # Lightweight health checks only
  pgadvise batch fleet.yaml --quick

  # Tune parallelism and patience
  pgadvise batch fleet.yaml --concurrency 10 --retries 3 --timeout 2m

  # Disable retries entirely
  pgadvise batch fleet.yaml --retries 0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quick, _ := cmd.Flags().GetBool("quick")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		retries, _ := cmd.Flags().GetInt("retries")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")
		format, _ := cmd.Flags().GetString("format")

		if format != "text" && format != "json" {
			return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
		}

		targets, err := batch.LoadTargets(args[0])
		if err != nil {
			return err
		}

		for i := range targets {
			if targets[i].Conn == "" && targets[i].Profile != "" {
				conn, err := profile.Resolve(targets[i].Profile)
				if err != nil {
					return fmt.Errorf("target %s: %w", targets[i].Name, err)
				}
				targets[i].Conn = conn
			}
		}

		// Zero means the orchestrator default, so an explicit 0 maps to the
		// negative disable value.
		if retries == 0 && cmd.Flags().Changed("retries") {
			retries = -1
		}

		mode := batch.ModeFull
		if quick {
			mode = batch.ModeQuick
		}

		logger := newLogger()
		checker := health.New(logger)
		orch := batch.New(checker, batch.Options{
			MaxConcurrency: concurrency,
			RetryAttempts:  retries,
			TargetTimeout:  timeout,
			CacheTTL:       cacheTTL,
			Mode:           mode,
		}, logger)

		if format == "text" {
			orch.Events = func(ev batch.Event) {
				printEvent(os.Stderr, ev)
			}
		}

		report, runErr := orch.Run(cmd.Context(), targets)

		switch format {
		case "json":
			if err := output.RenderJSON(os.Stdout, report); err != nil {
				return err
			}
		case "text":
			if err := output.RenderBatchText(os.Stdout, report); err != nil {
				return err
			}
		}

		return runErr
	},
}

// printEvent writes one progress line per event. Each event is a single
// Fprintf call so concurrent workers never interleave partial lines.
func printEvent(w io.Writer, ev batch.Event) {
	switch ev.Type {
	case batch.EventStart:
		fmt.Fprintf(w, "starting batch analysis\n")
	case batch.EventTargetStart:
		fmt.Fprintf(w, "  analyzing %s\n", ev.Target.Name)
	case batch.EventCacheHit:
		fmt.Fprintf(w, "  %s: cached\n", ev.Target.Name)
	case batch.EventRetry:
		fmt.Fprintf(w, "  %s: retry %d: %s\n", ev.Target.Name, ev.Attempt, ev.Err)
	case batch.EventTargetFailed:
		fmt.Fprintf(w, "  %s: failed: %s\n", ev.Target.Name, ev.Err)
	case batch.EventTargetDone:
		fmt.Fprintf(w, "  %s: done\n", ev.Target.Name)
	case batch.EventComplete:
		fmt.Fprintf(w, "batch analysis complete\n")
	}
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().Bool("quick", false, "Run lightweight health checks only")
	batchCmd.Flags().Int("concurrency", batch.DefaultMaxConcurrency, "Maximum targets analyzed in parallel")
	batchCmd.Flags().Int("retries", batch.DefaultRetryAttempts, "Retry attempts per target, 0 to disable")
	batchCmd.Flags().Duration("timeout", batch.DefaultTargetTimeout, "Per-target timeout")
	batchCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	batchCmd.Flags().Duration("cache-ttl", batch.DefaultCacheTTL, "How long repeated targets are served from cache")
}
