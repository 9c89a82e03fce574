package comparator

import "encoding/json"

type Direction int

const (
	Unchanged Direction = 0
	Improved  Direction = 1
	Regressed Direction = 2

	SignificanceThresholdPct = 1.0
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "unchanged"
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

type ChangeType int

const (
	NoChange    ChangeType = 0
	Modified    ChangeType = 1
	Added       ChangeType = 2
	Removed     ChangeType = 3
	TypeChanged ChangeType = 4
)

func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Removed:
		return "removed"
	case TypeChanged:
		return "type_changed"
	default:
		return "no_change"
	}
}

func (c ChangeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

type NodeDelta struct {
	NodeType   string     `json:"nodeType"`
	Relation   string     `json:"relation,omitempty"`
	ChangeType ChangeType `json:"changeType"`

	OldNodeType string `json:"oldNodeType,omitempty"`
	NewNodeType string `json:"newNodeType,omitempty"`

	OldCost   float64   `json:"oldCost"`
	NewCost   float64   `json:"newCost"`
	CostDelta float64   `json:"costDelta"`
	CostPct   float64   `json:"costPct"`
	CostDir   Direction `json:"costDir"`

	OldTime   float64   `json:"oldTime"`
	NewTime   float64   `json:"newTime"`
	TimeDelta float64   `json:"timeDelta"`
	TimePct   float64   `json:"timePct"`
	TimeDir   Direction `json:"timeDir"`

	OldRows   int64     `json:"oldRows"`
	NewRows   int64     `json:"newRows"`
	RowsDelta int64     `json:"rowsDelta"`
	RowsPct   float64   `json:"rowsPct"`
	RowsDir   Direction `json:"rowsDir"`

	// Loops
	OldLoops int64 `json:"oldLoops,omitempty"`
	NewLoops int64 `json:"newLoops,omitempty"`

	// Filter effectiveness
	OldRowsRemovedByFilter int64 `json:"oldRowsRemovedByFilter,omitempty"`
	NewRowsRemovedByFilter int64 `json:"newRowsRemovedByFilter,omitempty"`

	// Parallel
	OldWorkersLaunched int `json:"oldWorkersLaunched,omitempty"`
	NewWorkersLaunched int `json:"newWorkersLaunched,omitempty"`
	OldWorkersPlanned  int `json:"oldWorkersPlanned,omitempty"`
	NewWorkersPlanned  int `json:"newWorkersPlanned,omitempty"`

	// Buffers
	OldSharedHit  int64     `json:"oldSharedHit,omitempty"`
	NewSharedHit  int64     `json:"newSharedHit,omitempty"`
	OldSharedRead int64     `json:"oldSharedRead,omitempty"`
	NewSharedRead int64     `json:"newSharedRead,omitempty"`
	OldTempBlocks int64     `json:"oldTempBlocks,omitempty"`
	NewTempBlocks int64     `json:"newTempBlocks,omitempty"`
	BufferDir     Direction `json:"bufferDir"`

	OldSortSpill   bool `json:"oldSortSpill,omitempty"`
	NewSortSpill   bool `json:"newSortSpill,omitempty"`
	OldHashBatches int  `json:"oldHashBatches,omitempty"`
	NewHashBatches int  `json:"newHashBatches,omitempty"`

	OldFilter string `json:"oldFilter,omitempty"`
	NewFilter string `json:"newFilter,omitempty"`

	OldIndexCond string `json:"oldIndexCond,omitempty"`
	NewIndexCond string `json:"newIndexCond,omitempty"`

	OldIndexName string `json:"oldIndexName,omitempty"`
	NewIndexName string `json:"newIndexName,omitempty"`

	Children []NodeDelta `json:"children,omitempty"`
}

type ComparisonResult struct {
	Deltas  []NodeDelta `json:"deltas"`
	Summary Summary     `json:"summary"`
}

type Summary struct {
	OldTotalCost float64   `json:"oldTotalCost"`
	NewTotalCost float64   `json:"newTotalCost"`
	CostDelta    float64   `json:"costDelta"`
	CostPct      float64   `json:"costPct"`
	CostDir      Direction `json:"costDir"`

	OldExecutionTime float64   `json:"oldExecutionTime"`
	NewExecutionTime float64   `json:"newExecutionTime"`
	TimeDelta        float64   `json:"timeDelta"`
	TimePct          float64   `json:"timePct"`
	TimeDir          Direction `json:"timeDir"`

	OldPlanningTime float64   `json:"oldPlanningTime"`
	NewPlanningTime float64   `json:"newPlanningTime"`
	PlanningDir     Direction `json:"planningDir"`

	NodesAdded       int `json:"nodesAdded"`
	NodesRemoved     int `json:"nodesRemoved"`
	NodesModified    int `json:"nodesModified"`
	NodesTypeChanged int `json:"nodesTypeChanged"`

	OldTotalReads int64 `json:"oldTotalReads"`
	NewTotalReads int64 `json:"newTotalReads"`
	OldTotalHits  int64 `json:"oldTotalHits"`
	NewTotalHits  int64 `json:"newTotalHits"`

	Verdict string `json:"verdict"`
}
