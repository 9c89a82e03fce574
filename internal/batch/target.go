package batch

import "context"

// Mode selects how much work a target analysis performs. Quick mode runs
// lightweight health checks only; full mode runs the complete diagnostic
// pipeline.
type Mode string

const (
	ModeQuick Mode = "quick"
	ModeFull  Mode = "full"
)

// Status is the terminal state of one target.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusTimeout Status = "timeout"
)

// Target identifies one database in a batch run.
type Target struct {
	ID       string            `json:"id,omitempty" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Conn     string            `json:"connectionIdentifier" yaml:"connection"`
	Profile  string            `json:"profile,omitempty" yaml:"profile"`
	Priority int               `json:"priority,omitempty" yaml:"priority"`
	Tags     []string          `json:"tags,omitempty" yaml:"tags"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata"`
	Queries  []string          `json:"queries,omitempty" yaml:"queries"`
}

// TargetAnalyzer runs one analysis attempt against a target.
type TargetAnalyzer interface {
	AnalyzeTarget(ctx context.Context, target Target, mode Mode) (TargetReport, error)
}

// TargetReport is the score-bearing outcome of one target analysis.
type TargetReport struct {
	Score              int      `json:"overallScore"`
	TotalIssues        int      `json:"totalIssues"`
	CriticalIssues     int      `json:"criticalIssues"`
	SecurityRisk       string   `json:"securityRisk"`
	PerformanceRisk    string   `json:"performanceRisk"`
	TopRecommendations []string `json:"topRecommendations,omitempty"`
}
