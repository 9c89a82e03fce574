package metrics

import (
	"testing"

	"github.com/pgadvise/pgadvise/internal/plan"
)

func TestFromPlan_FullPlan(t *testing.T) {
	out := plan.ExplainOutput{
		Plan: plan.PlanNode{
			NodeType:         "Seq Scan",
			TotalCost:        125.5,
			ActualRows:       1000,
			SharedHitBlocks:  90,
			SharedReadBlocks: 10,
		},
		PlanningTime:  0.5,
		ExecutionTime: 42.3,
	}

	m := FromPlan(out)

	if m.ExecutionTime != 42.3 {
		t.Errorf("ExecutionTime = %f, want 42.3", m.ExecutionTime)
	}
	if m.PlanningTime != 0.5 {
		t.Errorf("PlanningTime = %f, want 0.5", m.PlanningTime)
	}
	if m.RowsReturned != 1000 {
		t.Errorf("RowsReturned = %d, want 1000", m.RowsReturned)
	}
	if m.CacheHitRatio != 90 {
		t.Errorf("CacheHitRatio = %d, want 90", m.CacheHitRatio)
	}
	if m.EstimatedCost != 125.5 {
		t.Errorf("EstimatedCost = %f, want 125.5", m.EstimatedCost)
	}
	if m.ActualCost != 125.5 {
		t.Errorf("ActualCost = %f, want 125.5", m.ActualCost)
	}
}

func TestFromPlan_EmptyPlan(t *testing.T) {
	m := FromPlan(plan.ExplainOutput{})

	if m.ExecutionTime != 0 {
		t.Errorf("ExecutionTime = %f, want 0", m.ExecutionTime)
	}
	if m.RowsReturned != 0 {
		t.Errorf("RowsReturned = %d, want 0", m.RowsReturned)
	}
	if m.CacheHitRatio != 0 {
		t.Errorf("CacheHitRatio = %d, want 0", m.CacheHitRatio)
	}
	if m.BufferUsage != "0.0 MB" {
		t.Errorf("BufferUsage = %q, want %q", m.BufferUsage, "0.0 MB")
	}
}

func TestFromPlan_RowsReturnedIsMaxNotSum(t *testing.T) {
	out := plan.ExplainOutput{
		Plan: plan.PlanNode{
			NodeType:   "Aggregate",
			ActualRows: 1,
			Plans: []plan.PlanNode{
				{NodeType: "Seq Scan", ActualRows: 5000},
				{NodeType: "Index Scan", ActualRows: 200},
			},
		},
	}

	m := FromPlan(out)
	if m.RowsReturned != 5000 {
		t.Errorf("RowsReturned = %d, want 5000 (max over tree)", m.RowsReturned)
	}
}

func TestCacheHitRatio_ZeroAccesses(t *testing.T) {
	m := FromPlan(plan.ExplainOutput{Plan: plan.PlanNode{NodeType: "Result"}})
	if m.CacheHitRatio != 0 {
		t.Errorf("CacheHitRatio = %d, want 0 for zero accesses", m.CacheHitRatio)
	}
}

func TestCacheHitRatio_Rounding(t *testing.T) {
	out := plan.ExplainOutput{
		Plan: plan.PlanNode{SharedHitBlocks: 1, SharedReadBlocks: 2},
	}
	if got := FromPlan(out).CacheHitRatio; got != 33 {
		t.Errorf("CacheHitRatio = %d, want 33", got)
	}

	out.Plan.SharedHitBlocks = 2
	out.Plan.SharedReadBlocks = 1
	if got := FromPlan(out).CacheHitRatio; got != 67 {
		t.Errorf("CacheHitRatio = %d, want 67", got)
	}
}

func TestCacheHitRatio_Bounds(t *testing.T) {
	cases := []struct {
		hit, read int64
	}{
		{0, 0}, {0, 1}, {1, 0}, {7, 3}, {1000000, 1}, {1, 1000000},
	}
	for _, c := range cases {
		out := plan.ExplainOutput{
			Plan: plan.PlanNode{SharedHitBlocks: c.hit, SharedReadBlocks: c.read},
		}
		got := FromPlan(out).CacheHitRatio
		if got < 0 || got > 100 {
			t.Errorf("CacheHitRatio(hit=%d, read=%d) = %d, out of [0,100]", c.hit, c.read, got)
		}
	}
}

func TestBufferUsage_Format(t *testing.T) {
	out := plan.ExplainOutput{
		Plan: plan.PlanNode{
			SharedHitBlocks:     100,
			SharedReadBlocks:    20,
			SharedDirtiedBlocks: 5,
			SharedWrittenBlocks: 3,
		},
	}
	// 128 blocks * 8 KiB = 1024 KiB = 1.0 MB
	if got := FromPlan(out).BufferUsage; got != "1.0 MB" {
		t.Errorf("BufferUsage = %q, want %q", got, "1.0 MB")
	}
}

func TestFromPlan_CostFromRootOnly(t *testing.T) {
	out := plan.ExplainOutput{
		Plan: plan.PlanNode{
			TotalCost: 300,
			Plans:     []plan.PlanNode{{TotalCost: 250}},
		},
	}
	m := FromPlan(out)
	if m.EstimatedCost != 300 {
		t.Errorf("EstimatedCost = %f, want 300 (root only)", m.EstimatedCost)
	}
}
