package advisor

import (
	"strings"

	"github.com/pgadvise/pgadvise/internal/metrics"
)

// Cost score penalties and category boundaries.
const (
	costSelectStar    = 50.0
	costPerJoin       = 25.0
	costUnboundedSort = 30.0
	costGroupBy       = 40.0
	costDistinct      = 35.0

	costMediumAt   = 100.0
	costHighAt     = 300.0
	costCriticalAt = 600.0
)

// ResourceEstimate is a coarse utilization guess: cpu and memory as
// percentages, io and network as High/Low labels.
type ResourceEstimate struct {
	CPU     float64 `json:"cpu"`
	Memory  float64 `json:"memory"`
	IO      string  `json:"io"`
	Network string  `json:"network"`
}

type CostReport struct {
	Score     float64          `json:"score"`
	Category  string           `json:"category"`
	Resources ResourceEstimate `json:"resources"`
}

// EstimateCost scores the query from its execution time plus fixed penalties
// for expensive constructs, then buckets the score into a category.
func EstimateCost(query string, m metrics.PerformanceMetrics) CostReport {
	q := strings.ToLower(query)

	score := m.ExecutionTime * 0.1
	if strings.Contains(q, "select *") {
		score += costSelectStar
	}
	score += float64(strings.Count(q, "join")) * costPerJoin
	if strings.Contains(q, "order by") && !strings.Contains(q, "limit") {
		score += costUnboundedSort
	}
	if strings.Contains(q, "group by") {
		score += costGroupBy
	}
	if strings.Contains(q, "distinct") {
		score += costDistinct
	}

	return CostReport{
		Score:     score,
		Category:  costCategory(score),
		Resources: estimateResources(m),
	}
}

func costCategory(score float64) string {
	switch {
	case score < costMediumAt:
		return "low"
	case score < costHighAt:
		return "medium"
	case score < costCriticalAt:
		return "high"
	default:
		return "critical"
	}
}

func estimateResources(m metrics.PerformanceMetrics) ResourceEstimate {
	cpu := m.ExecutionTime / 100
	if cpu > 100 {
		cpu = 100
	}
	memory := float64(m.RowsReturned) * 0.1
	if memory > 100 {
		memory = 100
	}

	io := "Low"
	if m.CacheHitRatio < 80 {
		io = "High"
	}
	network := "Low"
	if m.RowsReturned > 1000 {
		network = "High"
	}

	return ResourceEstimate{CPU: cpu, Memory: memory, IO: io, Network: network}
}
