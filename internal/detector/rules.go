package detector

import (
	"fmt"
	"regexp"

	"github.com/pgadvise/pgadvise/internal/metrics"
	"github.com/pgadvise/pgadvise/internal/plan"
)

const (
	// Execution time boundaries are exclusive: a query at exactly the
	// threshold is not flagged.
	SlowQueryHighMs     = 1000.0
	SlowQueryCriticalMs = 5000.0

	CacheHitMediumPct   = 80
	CacheHitCriticalPct = 50
)

type Rule func(root *plan.PlanNode, m metrics.PerformanceMetrics) []Issue

var defaultRules = []Rule{
	checkSlowQuery,
	checkSequentialScans,
	checkHighBufferUsage,
	checkMissingIndexes,
}

func checkSlowQuery(root *plan.PlanNode, m metrics.PerformanceMetrics) []Issue {
	if m.ExecutionTime <= SlowQueryHighMs {
		return nil
	}

	severity := SeverityHigh
	if m.ExecutionTime > SlowQueryCriticalMs {
		severity = SeverityCritical
	}

	return []Issue{{
		Type:       TypeSlowQuery,
		Severity:   severity,
		Message:    fmt.Sprintf("Query execution took %.2fms", m.ExecutionTime),
		Suggestion: "Review the plan for full scans and consider adding indexes or rewriting the query",
	}}
}

func checkSequentialScans(root *plan.PlanNode, m metrics.PerformanceMetrics) []Issue {
	var issues []Issue
	plan.Walk(root, func(n *plan.PlanNode) {
		if n.NodeType != "Seq Scan" {
			return
		}
		relation := relationOrUnknown(n)
		issues = append(issues, Issue{
			Type:       TypeSequentialScan,
			Severity:   SeverityHigh,
			Message:    fmt.Sprintf("Sequential scan on table %s", relation),
			Table:      relation,
			Suggestion: "Consider adding an index to avoid reading the whole table",
		})
	})
	return issues
}

func checkHighBufferUsage(root *plan.PlanNode, m metrics.PerformanceMetrics) []Issue {
	if m.CacheHitRatio >= CacheHitMediumPct {
		return nil
	}

	severity := SeverityMedium
	if m.CacheHitRatio < CacheHitCriticalPct {
		severity = SeverityCritical
	}

	return []Issue{{
		Type:       TypeHighBufferUsage,
		Severity:   severity,
		Message:    fmt.Sprintf("Cache hit ratio is %d%%", m.CacheHitRatio),
		Suggestion: "Consider increasing shared_buffers or reducing the query's working set",
	}}
}

// filterColumnRe isolates the first identifier immediately preceding a
// comparison operator, e.g. "active" in "(active = true)".
var filterColumnRe = regexp.MustCompile(`(\w+)\s*[=<>]`)

func checkMissingIndexes(root *plan.PlanNode, m metrics.PerformanceMetrics) []Issue {
	var issues []Issue
	plan.Walk(root, func(n *plan.PlanNode) {
		if n.NodeType != "Seq Scan" || n.Filter == "" {
			return
		}
		match := filterColumnRe.FindStringSubmatch(n.Filter)
		if match == nil {
			// Best effort: a filter we cannot read yields no issue.
			return
		}
		column := match[1]
		relation := relationOrUnknown(n)
		suggestion := fmt.Sprintf("Consider adding an index on the filtered column %q", column)
		if n.RelationName != "" {
			suggestion = fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s);",
				n.RelationName, column, n.RelationName, column)
		}
		issues = append(issues, Issue{
			Type:       TypeMissingIndex,
			Severity:   SeverityMedium,
			Message:    fmt.Sprintf("Sequential scan on %s filters on %q without an index", relation, column),
			Table:      relation,
			Column:     column,
			Suggestion: suggestion,
		})
	})
	return issues
}

func relationOrUnknown(n *plan.PlanNode) string {
	if n.RelationName == "" {
		return "unknown"
	}
	return n.RelationName
}
