// Package health grades a database's operational state and implements the
// batch target analyzer on top of the catalog probes.
package health

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pgadvise/pgadvise/internal/advisor"
	"github.com/pgadvise/pgadvise/internal/analyzer"
	"github.com/pgadvise/pgadvise/internal/batch"
	"github.com/pgadvise/pgadvise/internal/catalog"
	"github.com/pgadvise/pgadvise/internal/detector"
	"github.com/pgadvise/pgadvise/internal/plan"
)

// minSupportedMajor is the oldest PostgreSQL major release that passes the
// version gate without a finding.
const minSupportedMajor = 13

// Report is the detailed outcome of one health check. The score starts at 10
// and loses points per finding; 0 is the floor.
type Report struct {
	Target          string               `json:"target,omitempty"`
	Mode            batch.Mode           `json:"mode"`
	Score           int                  `json:"overallScore"`
	ServerVersion   string               `json:"serverVersion,omitempty"`
	CacheHitRatio   float64              `json:"cacheHitRatio"`
	TotalIssues     int                  `json:"totalIssues"`
	CriticalIssues  int                  `json:"criticalIssues"`
	SecurityRisk    string               `json:"securityRisk"`
	PerformanceRisk string               `json:"performanceRisk"`
	Suggestions     []advisor.Suggestion `json:"suggestions,omitempty"`
	QueryResults    []analyzer.Result    `json:"queryResults,omitempty"`
}

// TargetReport condenses the report into the batch-level scoreboard shape.
func (r *Report) TargetReport() batch.TargetReport {
	recs := make([]string, 0, len(r.Suggestions))
	for _, s := range r.Suggestions {
		recs = append(recs, s.Title)
	}
	return batch.TargetReport{
		Score:              r.Score,
		TotalIssues:        r.TotalIssues,
		CriticalIssues:     r.CriticalIssues,
		SecurityRisk:       r.SecurityRisk,
		PerformanceRisk:    r.PerformanceRisk,
		TopRecommendations: recs,
	}
}

// Checker grades databases. Quick mode stops after connectivity, version and
// cache checks; full mode adds catalog statistics and per-query diagnostics.
type Checker struct {
	Logger *zap.Logger

	// Open and Explain default to live connections; tests swap them out.
	Open    func(ctx context.Context, dsn string) (*catalog.Catalog, error)
	Explain func(ctx context.Context, dsn string, query string) ([]plan.ExplainOutput, error)

	MinMajorVersion uint64
}

func New(logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		Logger:          logger,
		Open:            catalog.Open,
		Explain:         plan.Execute,
		MinMajorVersion: minSupportedMajor,
	}
}

// AnalyzeTarget implements batch.TargetAnalyzer.
func (c *Checker) AnalyzeTarget(ctx context.Context, target batch.Target, mode batch.Mode) (batch.TargetReport, error) {
	report, err := c.Check(ctx, target, mode)
	if err != nil {
		return batch.TargetReport{}, err
	}
	return report.TargetReport(), nil
}

// Check runs the health checks for one target.
func (c *Checker) Check(ctx context.Context, target batch.Target, mode batch.Mode) (*Report, error) {
	cat, err := c.Open(ctx, target.Conn)
	if err != nil {
		return nil, err
	}
	defer cat.Close()

	report := &Report{Target: target.Name, Mode: mode}

	version, err := cat.ServerVersion(ctx)
	if err != nil {
		return nil, err
	}
	report.ServerVersion = version

	ratio, err := cat.CacheHitRatio(ctx)
	if err != nil {
		return nil, err
	}
	report.CacheHitRatio = ratio

	signals := versionSignal(c.Logger, version, c.MinMajorVersion)
	signals = append(signals, cacheSignal(ratio)...)

	var queries queryFindings
	if mode == batch.ModeFull {
		fullSignals, err := c.catalogSignals(ctx, cat)
		if err != nil {
			return nil, err
		}
		signals = append(signals, fullSignals...)
		queries = c.analyzeQueries(ctx, cat, target)
		report.QueryResults = queries.results
	}

	score := 10 - queries.penalty
	perfPenalty := queries.penalty
	var secPenalty int
	for _, sig := range signals {
		score -= sig.penalty
		report.TotalIssues++
		if sig.critical {
			report.CriticalIssues++
		}
		if sig.area == areaSecurity {
			secPenalty += sig.penalty
		} else {
			perfPenalty += sig.penalty
		}
		report.Suggestions = append(report.Suggestions, sig.suggestion)
	}
	report.Suggestions = append(report.Suggestions, queries.suggestions...)
	report.TotalIssues += queries.issues
	report.CriticalIssues += queries.critical

	if score < 0 {
		score = 0
	}
	report.Score = score
	report.SecurityRisk = riskLevel(secPenalty)
	report.PerformanceRisk = riskLevel(perfPenalty)
	return report, nil
}

// catalogSignals fans the independent statistics probes out and joins them.
func (c *Checker) catalogSignals(ctx context.Context, cat *catalog.Catalog) ([]signal, error) {
	var (
		security catalog.SecuritySettings
		seqHeavy []catalog.TableScanStats
		unused   []catalog.IndexUsage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		security, err = cat.SecuritySettings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		seqHeavy, err = cat.SeqScanHeavyTables(gctx, seqScanMinRows)
		return err
	})
	g.Go(func() error {
		var err error
		unused, err = cat.UnusedIndexes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collecting catalog statistics: %w", err)
	}

	signals := securitySignals(security)
	signals = append(signals, scanSignals(seqHeavy, unused)...)

	// pg_stat_statements is optional; its absence is not a finding.
	stats, err := cat.TopStatements(ctx, 10)
	if err != nil {
		c.Logger.Debug("statement statistics unavailable", zap.Error(err))
		return signals, nil
	}
	return append(signals, statementSignal(stats)...), nil
}

type queryFindings struct {
	suggestions []advisor.Suggestion
	results     []analyzer.Result
	issues      int
	critical    int
	penalty     int
}

// analyzeQueries runs the single-query pipeline over the target's sample
// queries. A failing query is logged and skipped, not fatal.
func (c *Checker) analyzeQueries(ctx context.Context, cat *catalog.Catalog, target batch.Target) queryFindings {
	var found queryFindings
	if len(target.Queries) == 0 {
		return found
	}

	pipeline := analyzer.New(func(ctx context.Context, query string) ([]plan.ExplainOutput, error) {
		return c.Explain(ctx, target.Conn, query)
	})
	pipeline.LookupIndexes = func(ctx context.Context, tables []string) ([]advisor.ExistingIndex, error) {
		cols, err := cat.Indexes(ctx, tables)
		if err != nil {
			return nil, err
		}
		existing := make([]advisor.ExistingIndex, len(cols))
		for i, col := range cols {
			existing[i] = advisor.ExistingIndex{Table: col.Table, Column: col.Column}
		}
		return existing, nil
	}

	for _, query := range target.Queries {
		res, err := pipeline.Analyze(ctx, query)
		if err != nil {
			c.Logger.Warn("query analysis failed",
				zap.String("target", target.Name), zap.Error(err))
			continue
		}
		found.results = append(found.results, res)
		found.issues += len(res.Issues)
		for _, issue := range res.Issues {
			if issue.Severity == detector.SeverityCritical {
				found.critical++
			}
		}
		for _, s := range res.Suggestions {
			if s.Priority == advisor.PriorityHigh {
				found.suggestions = append(found.suggestions, s)
			}
		}
	}

	if found.issues > 0 {
		found.penalty = 1
	}
	if found.critical > 0 {
		found.penalty += 2
	}
	return found
}
