package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgadvise/pgadvise/internal/advisor"
	"github.com/pgadvise/pgadvise/internal/detector"
	"github.com/pgadvise/pgadvise/internal/metrics"
	"github.com/pgadvise/pgadvise/internal/plan"
)

// ErrEmptyQuery is returned when the query is blank after trimming.
var ErrEmptyQuery = errors.New("query is empty")

// ExplainFunc obtains EXPLAIN output for a query.
type ExplainFunc func(ctx context.Context, query string) ([]plan.ExplainOutput, error)

// IndexLookupFunc reports existing indexes on the given tables.
type IndexLookupFunc func(ctx context.Context, tables []string) ([]advisor.ExistingIndex, error)

// Pipeline runs the diagnostic chain for single queries: EXPLAIN, metrics,
// issue detection, then advisory generation.
type Pipeline struct {
	Explain ExplainFunc

	// LookupIndexes, when set, filters index advice against existing
	// indexes. Lookups are best effort: on error the advice stays
	// unfiltered.
	LookupIndexes IndexLookupFunc

	// KeepPlan attaches the raw execution plan to the result.
	KeepPlan bool
}

func New(explain ExplainFunc) *Pipeline {
	return &Pipeline{Explain: explain}
}

// Analyze diagnoses one query.
func (p *Pipeline) Analyze(ctx context.Context, query string) (Result, error) {
	started := time.Now()

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return Result{}, ErrEmptyQuery
	}

	outputs, err := p.Explain(ctx, trimmed)
	if err != nil {
		return Result{}, fmt.Errorf("running explain: %w", err)
	}
	if len(outputs) == 0 {
		return Result{}, errors.New("explain returned no plans")
	}

	return p.build(ctx, trimmed, outputs[0], started), nil
}

// AnalyzePlan diagnoses a pre-captured EXPLAIN output. The query text is
// optional; without it the text advisors have nothing to inspect and only
// plan-derived findings appear.
func (p *Pipeline) AnalyzePlan(ctx context.Context, query string, out plan.ExplainOutput) Result {
	return p.build(ctx, strings.TrimSpace(query), out, time.Now())
}

func (p *Pipeline) build(ctx context.Context, query string, out plan.ExplainOutput, started time.Time) Result {
	m := metrics.FromPlan(out)
	issues := detector.Detect(&out.Plan, m)

	var existing []advisor.ExistingIndex
	if p.LookupIndexes != nil {
		if tables := advisor.ReferencedTables(query); len(tables) > 0 {
			if found, err := p.LookupIndexes(ctx, tables); err == nil {
				existing = found
			}
		}
	}

	suggestions := advisor.SuggestIndexes(query, existing)
	suggestions = append(suggestions, advisor.SuggestRewrites(query)...)

	result := Result{
		Query:       query,
		Performance: m,
		Issues:      issues,
		Suggestions: suggestions,
		Cost:        advisor.EstimateCost(query, m),
		Complexity:  advisor.EstimateComplexity(query),
		Timestamp:   started,
		Duration:    time.Since(started),
	}
	if p.KeepPlan {
		result.Plan = &out
	}
	return result
}
