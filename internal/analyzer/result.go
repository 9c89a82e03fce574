package analyzer

import (
	"time"

	"github.com/pgadvise/pgadvise/internal/advisor"
	"github.com/pgadvise/pgadvise/internal/detector"
	"github.com/pgadvise/pgadvise/internal/metrics"
	"github.com/pgadvise/pgadvise/internal/plan"
)

// Result is the full diagnostic output for one query.
type Result struct {
	Query             string                     `json:"query"`
	Performance       metrics.PerformanceMetrics `json:"performance"`
	Issues            []detector.Issue           `json:"issues"`
	Suggestions       []advisor.Suggestion       `json:"suggestions"`
	Cost              advisor.CostReport         `json:"cost"`
	Complexity        advisor.ComplexityReport   `json:"complexity"`
	AIRecommendations []string                   `json:"aiRecommendations,omitempty"`
	Plan              *plan.ExplainOutput        `json:"executionPlan,omitempty"`
	Timestamp         time.Time                  `json:"timestamp"`
	Duration          time.Duration              `json:"duration"`
}
