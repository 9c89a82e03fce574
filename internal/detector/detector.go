package detector

import (
	"github.com/pgadvise/pgadvise/internal/metrics"
	"github.com/pgadvise/pgadvise/internal/plan"
)

// Detect evaluates the fixed rule table against a plan and its metrics.
// Rules run in table order; node-level rules visit the tree depth-first,
// parent before children, siblings left to right. Identical input always
// yields an identical, identically ordered issue list.
func Detect(root *plan.PlanNode, m metrics.PerformanceMetrics) []Issue {
	var issues []Issue
	for _, rule := range defaultRules {
		issues = append(issues, rule(root, m)...)
	}
	return issues
}
