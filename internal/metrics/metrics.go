package metrics

import (
	"fmt"
	"math"

	"github.com/pgadvise/pgadvise/internal/plan"
)

// PerformanceMetrics is the normalized per-query performance profile shared
// by the issue detector, the advisors and the benchmark runner.
type PerformanceMetrics struct {
	ExecutionTime float64 `json:"executionTime"`
	PlanningTime  float64 `json:"planningTime"`
	RowsReturned  int64   `json:"rowsReturned"`
	BufferUsage   string  `json:"bufferUsage"`
	CacheHitRatio int     `json:"cacheHitRatio"`
	EstimatedCost float64 `json:"estimatedCost"`
	ActualCost    float64 `json:"actualCost"`
}

// PostgreSQL buffer counters are in 8 KiB blocks.
const blockSizeKiB = 8

// FromPlan extracts the performance profile from one EXPLAIN output. Fields
// absent from the plan contribute zero; a partial plan still yields metrics.
func FromPlan(out plan.ExplainOutput) PerformanceMetrics {
	root := out.Plan

	return PerformanceMetrics{
		ExecutionTime: out.ExecutionTime,
		PlanningTime:  out.PlanningTime,
		RowsReturned:  maxActualRows(&root),
		BufferUsage:   bufferUsage(&root),
		CacheHitRatio: cacheHitRatio(&root),
		EstimatedCost: root.TotalCost,
		ActualCost:    root.TotalCost,
	}
}

// maxActualRows reports the largest row count produced by any node in the
// tree, not the root's count: aggregates collapse the rows they consumed.
func maxActualRows(root *plan.PlanNode) int64 {
	var rows int64
	plan.Walk(root, func(n *plan.PlanNode) {
		if n.ActualRows > rows {
			rows = n.ActualRows
		}
	})
	return rows
}

// cacheHitRatio reports shared buffer hits as a percentage of all shared
// buffer accesses at the plan root, rounded to the nearest integer. Zero
// accesses report zero.
func cacheHitRatio(root *plan.PlanNode) int {
	total := root.SharedHitBlocks + root.SharedReadBlocks
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(root.SharedHitBlocks) / float64(total) * 100))
}

func bufferUsage(root *plan.PlanNode) string {
	blocks := root.SharedHitBlocks + root.SharedReadBlocks +
		root.SharedDirtiedBlocks + root.SharedWrittenBlocks
	return fmt.Sprintf("%.1f MB", float64(blocks*blockSizeKiB)/1024)
}
