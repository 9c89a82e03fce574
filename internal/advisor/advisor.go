package advisor

// Suggestion types.
const (
	TypeIndex         = "index"
	TypeQueryRewrite  = "query_rewrite"
	TypeSchemaChange  = "schema_change"
	TypeConfiguration = "configuration"
	TypeOther         = "other"
)

// Suggestion priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Suggestion is one actionable optimization recommendation. SQL is set when
// the suggestion can be applied by running a statement verbatim.
type Suggestion struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SQL         string `json:"sql,omitempty"`
	Impact      string `json:"impact"`
	Effort      string `json:"effort"`
}

// ExistingIndex identifies one indexed column. Suggestions whose (table,
// column) pair is already covered are dropped.
type ExistingIndex struct {
	Table  string
	Column string
}
