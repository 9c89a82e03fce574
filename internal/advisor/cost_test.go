package advisor

import (
	"math"
	"testing"

	"github.com/pgadvise/pgadvise/internal/metrics"
)

func TestEstimateCost_PenaltiesOnly(t *testing.T) {
	m := metrics.PerformanceMetrics{CacheHitRatio: 99}

	cases := []struct {
		query string
		want  float64
	}{
		{"SELECT id FROM t WHERE id = 1 LIMIT 1", 0},
		{"SELECT * FROM t", 50},
		{"SELECT a FROM t JOIN u ON t.id = u.id JOIN v ON u.id = v.id", 50},
		{"SELECT a FROM t ORDER BY a", 30},
		{"SELECT a FROM t ORDER BY a LIMIT 5", 0},
		{"SELECT a FROM t GROUP BY a", 40},
		{"SELECT DISTINCT a FROM t", 35},
		{"SELECT * FROM t GROUP BY a ORDER BY a", 120},
	}

	for _, c := range cases {
		report := EstimateCost(c.query, m)
		if report.Score != c.want {
			t.Errorf("%q: score = %v, want %v", c.query, report.Score, c.want)
		}
	}
}

func TestEstimateCost_ExecutionTimeComponent(t *testing.T) {
	m := metrics.PerformanceMetrics{ExecutionTime: 250, CacheHitRatio: 99}
	report := EstimateCost("SELECT id FROM t WHERE id = 1 LIMIT 1", m)
	if math.Abs(report.Score-25) > 1e-9 {
		t.Errorf("score = %v, want 25", report.Score)
	}
}

func TestEstimateCost_Categories(t *testing.T) {
	cases := []struct {
		executionTime float64
		query         string
		want          string
	}{
		{0, "SELECT id FROM t WHERE id = 1 LIMIT 1", "low"},
		{0, "SELECT * FROM t GROUP BY a ORDER BY a", "medium"},
		{3200, "SELECT id FROM t WHERE id = 1 LIMIT 1", "high"},
		{7000, "SELECT id FROM t WHERE id = 1 LIMIT 1", "critical"},
	}

	for _, c := range cases {
		m := metrics.PerformanceMetrics{ExecutionTime: c.executionTime, CacheHitRatio: 99}
		report := EstimateCost(c.query, m)
		if report.Category != c.want {
			t.Errorf("time=%v %q: category = %q, want %q", c.executionTime, c.query, report.Category, c.want)
		}
	}
}

func TestEstimateResources(t *testing.T) {
	m := metrics.PerformanceMetrics{
		ExecutionTime: 500,
		RowsReturned:  500,
		CacheHitRatio: 79,
	}
	r := EstimateCost("SELECT 1", m).Resources

	if r.CPU != 5 {
		t.Errorf("cpu = %v, want 5", r.CPU)
	}
	if r.Memory != 50 {
		t.Errorf("memory = %v, want 50", r.Memory)
	}
	if r.IO != "High" {
		t.Errorf("io = %q, want High (ratio below 80)", r.IO)
	}
	if r.Network != "Low" {
		t.Errorf("network = %q, want Low (rows not above 1000)", r.Network)
	}
}

func TestEstimateResources_Clamped(t *testing.T) {
	m := metrics.PerformanceMetrics{
		ExecutionTime: 50000,
		RowsReturned:  100000,
		CacheHitRatio: 80,
	}
	r := EstimateCost("SELECT 1", m).Resources

	if r.CPU != 100 {
		t.Errorf("cpu = %v, want clamped 100", r.CPU)
	}
	if r.Memory != 100 {
		t.Errorf("memory = %v, want clamped 100", r.Memory)
	}
	if r.IO != "Low" {
		t.Errorf("io = %q, want Low (ratio at 80)", r.IO)
	}
	if r.Network != "High" {
		t.Errorf("network = %q, want High (rows above 1000)", r.Network)
	}
}
