package comparator

import (
	"github.com/pgadvise/pgadvise/internal/plan"
)

type Comparator struct {
	Threshold float64
}

func (c *Comparator) Compare(old, new plan.ExplainOutput) ComparisonResult {
	rootDelta := c.diffNodes(&old.Plan, &new.Plan)

	summary := Summary{
		OldTotalCost: old.Plan.TotalCost,
		NewTotalCost: new.Plan.TotalCost,
		CostDelta:    new.Plan.TotalCost - old.Plan.TotalCost,
		CostPct:      pctChange(old.Plan.TotalCost, new.Plan.TotalCost),
		CostDir:      c.direction(old.Plan.TotalCost, new.Plan.TotalCost, true),

		OldExecutionTime: old.ExecutionTime,
		NewExecutionTime: new.ExecutionTime,
		TimeDelta:        new.ExecutionTime - old.ExecutionTime,
		TimePct:          pctChange(old.ExecutionTime, new.ExecutionTime),
		TimeDir:          c.direction(old.ExecutionTime, new.ExecutionTime, true),

		OldPlanningTime: old.PlanningTime,
		NewPlanningTime: new.PlanningTime,
		PlanningDir:     c.direction(old.PlanningTime, new.PlanningTime, true),

		// Root buffer counters are cumulative over the whole tree.
		OldTotalReads: old.Plan.SharedReadBlocks,
		NewTotalReads: new.Plan.SharedReadBlocks,
		OldTotalHits:  old.Plan.SharedHitBlocks,
		NewTotalHits:  new.Plan.SharedHitBlocks,
	}

	countChanges(&rootDelta, &summary)
	summary.Verdict = verdict(summary.TimeDir, summary.CostDir)

	return ComparisonResult{
		Deltas:  []NodeDelta{rootDelta},
		Summary: summary,
	}
}

func countChanges(delta *NodeDelta, summary *Summary) {
	switch delta.ChangeType {
	case Added:
		summary.NodesAdded++
	case Removed:
		summary.NodesRemoved++
	case Modified:
		summary.NodesModified++
	case TypeChanged:
		summary.NodesTypeChanged++
	}

	for i := range delta.Children {
		countChanges(&delta.Children[i], summary)
	}
}

func verdict(time, cost Direction) string {
	switch {
	case time == Improved && cost == Improved:
		return "faster and cheaper"
	case time == Improved && cost == Regressed:
		return "faster but more expensive"
	case time == Improved:
		return "faster"
	case time == Regressed && cost == Regressed:
		return "slower and more expensive"
	case time == Regressed && cost == Improved:
		return "slower but cheaper"
	case time == Regressed:
		return "slower"
	case cost == Improved:
		return "cheaper"
	case cost == Regressed:
		return "more expensive"
	default:
		return "no significant change"
	}
}
