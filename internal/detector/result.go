package detector

// Severity ranks how urgently an issue needs attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Issue types emitted by the default rule table.
const (
	TypeSlowQuery       = "slow_query"
	TypeSequentialScan  = "sequential_scan"
	TypeHighBufferUsage = "high_buffer_usage"
	TypeMissingIndex    = "missing_index"
)

// Issue is one detected problem with a query. Table and Column are set only
// when the rule can attribute the issue to a specific relation.
type Issue struct {
	Type       string   `json:"type"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	Table      string   `json:"table,omitempty"`
	Column     string   `json:"column,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}
