/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pgadvise/pgadvise/internal/advisor"
	"github.com/pgadvise/pgadvise/internal/analyzer"
	"github.com/pgadvise/pgadvise/internal/catalog"
	"github.com/pgadvise/pgadvise/internal/output"
	"github.com/pgadvise/pgadvise/internal/plan"
	"github.com/pgadvise/pgadvise/internal/profile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Diagnose a single query",
	Long: `Diagnose a single PostgreSQL query and provide optimization insights.

Input can be a SQL file, or JSON file (EXPLAIN output).
Use "-" to read from stdin. If no file is provided, enters interactive mode.

For SQL input, a database connection is required to run EXPLAIN (ANALYZE, BUFFERS, FORMAT JSON).
With a connection, index suggestions are filtered against indexes that already exist.`,
	Example: `  # Diagnose from file
  pgadvise analyze query.sql

  # Use saved profile
  pgadvise analyze query.sql --profile prod

  # Read from stdin
  cat query.sql | pgadvise analyze -

  # Attach the raw execution plan to JSON output
  pgadvise analyze query.sql --format json --plan`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _ := cmd.Flags().GetString("db")
		profileName, _ := cmd.Flags().GetString("profile")
		format, _ := cmd.Flags().GetString("format")
		showPlan, _ := cmd.Flags().GetBool("plan")

		if format != "text" && format != "json" {
			return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", format)
		}

		connStr, err := profile.ResolveConnStr(db, profileName)
		if err != nil {
			return err
		}

		var file string
		if len(args) > 0 {
			file = args[0]
		}

		planOutput, query, err := plan.ResolveQuery(cmd.Context(), file, connStr, "")
		if err != nil {
			return err
		}

		logger := newLogger()
		pipe := analyzer.Pipeline{KeepPlan: showPlan}

		if connStr != "" && query != "" {
			cat, err := catalog.Open(cmd.Context(), connStr)
			if err != nil {
				logger.Warn("catalog unavailable, index advice unfiltered", zap.Error(err))
			} else {
				defer cat.Close()
				pipe.LookupIndexes = existingIndexLookup(cat)
			}
		}

		result := pipe.AnalyzePlan(cmd.Context(), query, planOutput)

		switch format {
		case "json":
			return output.RenderJSON(os.Stdout, result)
		case "text":
			return output.RenderAnalysisText(os.Stdout, result)
		}

		return nil
	},
}

// existingIndexLookup adapts catalog index rows to the advisor's shape.
func existingIndexLookup(cat *catalog.Catalog) analyzer.IndexLookupFunc {
	return func(ctx context.Context, tables []string) ([]advisor.ExistingIndex, error) {
		rows, err := cat.Indexes(ctx, tables)
		if err != nil {
			return nil, err
		}
		existing := make([]advisor.ExistingIndex, 0, len(rows))
		for _, row := range rows {
			existing = append(existing, advisor.ExistingIndex{Table: row.Table, Column: row.Column})
		}
		return existing, nil
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("db", "d", "", "PostgreSQL connection string")
	analyzeCmd.Flags().StringP("profile", "p", "", "Use named profile from config")
	analyzeCmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	analyzeCmd.Flags().Bool("plan", false, "Attach the raw execution plan to the result")
	analyzeCmd.MarkFlagsMutuallyExclusive("db", "profile")
}
