package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pgadvise/pgadvise/internal/analyzer"
	"github.com/pgadvise/pgadvise/internal/batch"
	"github.com/pgadvise/pgadvise/internal/bench"
	"github.com/pgadvise/pgadvise/internal/comparator"
	"github.com/pgadvise/pgadvise/internal/detector"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func RenderAnalysisText(w io.Writer, result analyzer.Result) error {
	tw := &textWriter{w: w}

	p := result.Performance
	tw.printf("%s%sPerformance%s\n\n", colorBold, colorCyan, colorReset)
	if p.ExecutionTime > 0 {
		tw.printf("  Execution Time: %.3f ms\n", p.ExecutionTime)
	}
	if p.PlanningTime > 0 {
		tw.printf("  Planning Time:  %.3f ms\n", p.PlanningTime)
	}
	tw.printf("  Rows Returned:  %d\n", p.RowsReturned)
	tw.printf("  Buffer Usage:   %s\n", p.BufferUsage)
	tw.printf("  Cache Hit:      %d%%\n", p.CacheHitRatio)
	tw.printf("  Estimated Cost: %.2f\n", p.EstimatedCost)
	tw.printf("\n")

	if len(result.Issues) == 0 {
		tw.printf("%s%sNo issues found.%s\n", colorBold, colorGreen, colorReset)
	} else {
		tw.printf("%s%sIssues (%d)%s\n\n", colorBold, colorCyan, len(result.Issues), colorReset)
		for i, issue := range result.Issues {
			label, color := severityFormat(issue.Severity)
			tw.printf("  %s%-8s%s %s\n", color, label, colorReset, issue.Message)
			if issue.Suggestion != "" {
				tw.printf("  %s→ %s%s\n", colorDim, issue.Suggestion, colorReset)
			}
			if i < len(result.Issues)-1 {
				tw.printf("\n")
			}
		}
	}

	if len(result.Suggestions) > 0 {
		tw.printf("\n%s%sSuggestions (%d)%s\n\n", colorBold, colorCyan, len(result.Suggestions), colorReset)
		for i, sug := range result.Suggestions {
			tw.printf("  %s%-8s%s %s\n", priorityColor(sug.Priority), strings.ToUpper(sug.Priority), colorReset, sug.Title)
			tw.printf("  %s%s%s\n", colorDim, sug.Description, colorReset)
			if sug.SQL != "" {
				tw.printf("  %s%s%s\n", colorDim, sug.SQL, colorReset)
			}
			tw.printf("  %simpact: %s, effort: %s%s\n", colorDim, sug.Impact, sug.Effort, colorReset)
			if i < len(result.Suggestions)-1 {
				tw.printf("\n")
			}
		}
	}

	tw.printf("\n%s%sCost%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Score:     %s%.1f (%s)%s\n", categoryColor(result.Cost.Category), result.Cost.Score, result.Cost.Category, colorReset)
	res := result.Cost.Resources
	tw.printf("  Resources: cpu %.0f%%, memory %.0f%%, io %s, network %s\n", res.CPU, res.Memory, res.IO, res.Network)

	c := result.Complexity
	tw.printf("\n%s%sComplexity%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Score:           %d/10\n", c.Score)
	tw.printf("  Readability:     %d/10\n", c.Readability)
	tw.printf("  Maintainability: %d/10\n", c.Maintainability)
	for _, risk := range c.RiskFactors {
		tw.printf("  %s→ %s%s\n", colorDim, risk, colorReset)
	}

	if len(result.AIRecommendations) > 0 {
		tw.printf("\n%s%sRecommendations%s\n\n", colorBold, colorCyan, colorReset)
		for _, rec := range result.AIRecommendations {
			tw.printf("  • %s\n", rec)
		}
	}

	return tw.err
}

func severityFormat(s detector.Severity) (string, string) {
	switch s {
	case detector.SeverityCritical:
		return "CRITICAL", colorRed
	case detector.SeverityHigh:
		return "HIGH", colorRed
	case detector.SeverityMedium:
		return "MEDIUM", colorYellow
	default:
		return "LOW", colorCyan
	}
}

func priorityColor(priority string) string {
	switch priority {
	case "high":
		return colorRed
	case "medium":
		return colorYellow
	default:
		return colorCyan
	}
}

func categoryColor(category string) string {
	switch category {
	case "high", "critical":
		return colorRed
	case "medium":
		return colorYellow
	default:
		return colorGreen
	}
}

func RenderBenchmarkText(w io.Writer, result bench.Result) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sBenchmark%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Iterations: %d\n", result.Iterations)
	tw.printf("  Average:    %.3f ms\n", result.AverageTime)
	tw.printf("  Min:        %.3f ms\n", result.MinTime)
	tw.printf("  Max:        %.3f ms\n", result.MaxTime)
	tw.printf("  Std Dev:    %.3f ms\n", result.StdDev)

	return tw.err
}

func RenderBenchComparisonText(w io.Writer, cmp bench.Comparison) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sBenchmark Comparison%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  First:  %.3f ms avg over %d runs\n", cmp.First.AverageTime, cmp.First.Iterations)
	tw.printf("  Second: %.3f ms avg over %d runs\n", cmp.Second.AverageTime, cmp.Second.Iterations)

	switch {
	case cmp.Improvement > 0:
		tw.printf("\n%sSecond query is %.1f%% faster.%s\n", colorGreen, cmp.Improvement, colorReset)
	case cmp.Improvement < 0:
		tw.printf("\n%sSecond query is %.1f%% slower.%s\n", colorRed, -cmp.Improvement, colorReset)
	default:
		tw.printf("\nNo measurable difference.\n")
	}

	return tw.err
}

func RenderBatchText(w io.Writer, report batch.Report) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sBatch Report%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Databases: %d total, %d analyzed, %d failed, %d skipped\n",
		report.TotalDatabases, report.Successful, report.Failed, report.Skipped)
	tw.printf("  Duration:  %s\n\n", report.ExecutionTime.Round(time.Millisecond))

	for _, res := range report.Results {
		tw.renderTargetLine(res)
	}

	if report.Successful == 0 {
		tw.printf("\n%s%sNo targets analyzed successfully.%s\n", colorBold, colorRed, colorReset)
		return tw.err
	}

	s := report.Summary
	tw.printf("\n%s%sFleet Summary%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Overall Score: %s%d/10%s\n", scoreColor(s.OverallScore), s.OverallScore, colorReset)
	tw.printf("  Issues:        %d (%d critical)\n", s.TotalIssues, s.CriticalIssues)
	tw.printf("  At Risk:       %d security, %d performance\n", s.SecurityAtRisk, s.PerformanceAtRisk)
	d := s.Distribution
	tw.printf("  Health:        %d excellent, %d good, %d fair, %d poor, %d critical\n",
		d.Excellent, d.Good, d.Fair, d.Poor, d.Critical)

	if len(s.TopRecommendations) > 0 {
		tw.printf("\n%s%sTop Recommendations%s\n\n", colorBold, colorCyan, colorReset)
		for i, rec := range s.TopRecommendations {
			tw.printf("  %2d. %s\n", i+1, rec)
		}
	}

	return tw.err
}

func (tw *textWriter) renderTargetLine(res batch.Result) {
	marker, color := statusFormat(res.Status)
	tw.printf("  %s%s %-20s%s", color, marker, res.Target.Name, colorReset)
	if res.Report != nil {
		tw.printf(" score %s%d/10%s", scoreColor(res.Report.Score), res.Report.Score, colorReset)
	}
	if res.Duration > 0 {
		tw.printf(" %s%s%s", colorDim, res.Duration.Round(time.Millisecond), colorReset)
	}
	if res.CacheHit {
		tw.printf(" %s(cached)%s", colorDim, colorReset)
	}
	if res.RetryCount > 0 {
		tw.printf(" %s(retries: %d)%s", colorDim, res.RetryCount, colorReset)
	}
	tw.printf("\n")
	if res.Err != "" {
		tw.printf("      %s%s%s\n", colorRed, res.Err, colorReset)
	}
}

func statusFormat(s batch.Status) (string, string) {
	switch s {
	case batch.StatusSuccess:
		return "✓", colorGreen
	case batch.StatusSkipped:
		return "-", colorDim
	default:
		return "✗", colorRed
	}
}

func scoreColor(score int) string {
	switch {
	case score >= 7:
		return colorGreen
	case score >= 4:
		return colorYellow
	default:
		return colorRed
	}
}

func RenderComparisonText(w io.Writer, result comparator.ComparisonResult) error {
	tw := &textWriter{w: w}
	s := result.Summary

	tw.printf("%s%sSummary%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Cost:           %s\n", formatDelta(s.OldTotalCost, s.NewTotalCost, s.CostPct, s.CostDir, "%.2f"))
	if s.OldExecutionTime > 0 || s.NewExecutionTime > 0 {
		tw.printf("  Execution Time: %s\n", formatDelta(s.OldExecutionTime, s.NewExecutionTime, s.TimePct, s.TimeDir, "%.3f ms"))
	}
	if s.OldPlanningTime > 0 || s.NewPlanningTime > 0 {
		tw.printf("  Planning Time:  %s\n", formatDelta(s.OldPlanningTime, s.NewPlanningTime, pctChange(s.OldPlanningTime, s.NewPlanningTime), s.PlanningDir, "%.3f ms"))
	}
	if s.OldTotalHits > 0 || s.NewTotalHits > 0 || s.OldTotalReads > 0 || s.NewTotalReads > 0 {
		tw.printf("  Buffers:        hit %d→%d, read %d→%d\n", s.OldTotalHits, s.NewTotalHits, s.OldTotalReads, s.NewTotalReads)
	}
	tw.printf("\n")

	changes := s.NodesAdded + s.NodesRemoved + s.NodesModified + s.NodesTypeChanged
	if changes == 0 {
		tw.printf("%s%sPlans are identical.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	tw.printf("  Changes: %d modified, %d type changed, %d added, %d removed\n\n",
		s.NodesModified, s.NodesTypeChanged, s.NodesAdded, s.NodesRemoved)

	tw.printf("%s%sNode Details%s\n\n", colorBold, colorCyan, colorReset)

	for _, delta := range result.Deltas {
		tw.renderDelta(delta, 0)
	}

	tw.renderVerdict(s)

	return tw.err
}

func (tw *textWriter) renderDelta(d comparator.NodeDelta, depth int) {
	indent := strings.Repeat("  ", depth+1)

	switch d.ChangeType {
	case comparator.NoChange:
		for _, child := range d.Children {
			tw.renderDelta(child, depth)
		}
		return
	case comparator.Added:
		tw.renderAddedNode(indent, d)
	case comparator.Removed:
		tw.renderRemovedNode(indent, d)
	case comparator.TypeChanged:
		tw.renderTypeChangedNode(indent, d)
	case comparator.Modified:
		tw.renderModifiedNode(indent, d)
	}

	for _, child := range d.Children {
		tw.renderDelta(child, depth+1)
	}
}

func (tw *textWriter) renderAddedNode(indent string, d comparator.NodeDelta) {
	tw.printf("%s%s+ %s%s", indent, colorGreen, nodeLabel(d), colorReset)
	tw.printf(" (cost=%.2f", d.NewCost)
	if d.NewTime > 0 {
		tw.printf(" time=%.3fms", d.NewTime)
	}
	tw.printf(")\n")
}

func (tw *textWriter) renderRemovedNode(indent string, d comparator.NodeDelta) {
	tw.printf("%s%s- %s%s", indent, colorRed, nodeLabel(d), colorReset)
	tw.printf(" (cost=%.2f", d.OldCost)
	if d.OldTime > 0 {
		tw.printf(" time=%.3fms", d.OldTime)
	}
	tw.printf(")\n")
}

func (tw *textWriter) renderTypeChangedNode(indent string, d comparator.NodeDelta) {
	tw.printf("%s%s~ %s → %s%s", indent, colorYellow, d.OldNodeType, d.NewNodeType, colorReset)
	if d.Relation != "" {
		tw.printf(" on %s", d.Relation)
	}
	tw.printf("\n")
	tw.renderMetricLine(indent, "cost", d.OldCost, d.NewCost, d.CostPct, d.CostDir, "%.2f")
	if d.OldTime > 0 || d.NewTime > 0 {
		tw.renderMetricLine(indent, "time", d.OldTime, d.NewTime, d.TimePct, d.TimeDir, "%.3f ms")
	}
	if d.OldRows != d.NewRows {
		tw.renderMetricLineInt(indent, "rows", d.OldRows, d.NewRows, d.RowsPct)
	}
	tw.renderFilterChange(indent, d)
	tw.renderIndexCondChange(indent, d)
	tw.renderIndexNameChange(indent, d)
	tw.renderBufferChanges(indent, d)
	tw.renderSpillChanges(indent, d)
}

func (tw *textWriter) renderModifiedNode(indent string, d comparator.NodeDelta) {
	tw.printf("%s%s~ %s%s\n", indent, colorYellow, nodeLabel(d), colorReset)
	tw.renderMetricLine(indent, "cost", d.OldCost, d.NewCost, d.CostPct, d.CostDir, "%.2f")
	if d.OldTime > 0 || d.NewTime > 0 {
		tw.renderMetricLine(indent, "time", d.OldTime, d.NewTime, d.TimePct, d.TimeDir, "%.3f ms")
	}
	if d.OldRows != d.NewRows {
		tw.renderMetricLineInt(indent, "rows", d.OldRows, d.NewRows, d.RowsPct)
	}
	if d.OldLoops != d.NewLoops && (d.OldLoops > 1 || d.NewLoops > 1) {
		tw.renderMetricLineInt(indent, "loops", d.OldLoops, d.NewLoops,
			pctChange(float64(d.OldLoops), float64(d.NewLoops)))
	}
	if d.OldRowsRemovedByFilter != d.NewRowsRemovedByFilter {
		tw.renderMetricLineInt(indent, "rows removed by filter",
			d.OldRowsRemovedByFilter, d.NewRowsRemovedByFilter,
			pctChange(float64(d.OldRowsRemovedByFilter), float64(d.NewRowsRemovedByFilter)))
	}
	if d.OldWorkersLaunched != d.NewWorkersLaunched {
		tw.printf("%s  workers: %d/%d → %d/%d\n", indent,
			d.OldWorkersLaunched, d.OldWorkersPlanned,
			d.NewWorkersLaunched, d.NewWorkersPlanned)
	}
	tw.renderFilterChange(indent, d)
	tw.renderIndexCondChange(indent, d)
	tw.renderIndexNameChange(indent, d)
	tw.renderBufferChanges(indent, d)
	tw.renderSpillChanges(indent, d)
}

func (tw *textWriter) renderMetricLine(indent, label string, oldVal, newVal, pct float64, dir comparator.Direction, fmtStr string) {
	color := dirColor(dir)
	arrow := dirArrow(dir)
	oldStr := fmt.Sprintf(fmtStr, oldVal)
	newStr := fmt.Sprintf(fmtStr, newVal)
	tw.printf("%s  %s: %s → %s%s %s (%+.1f%%)%s\n", indent, label, oldStr, color, newStr, arrow, pct, colorReset)
}

func (tw *textWriter) renderMetricLineInt(indent, label string, oldVal, newVal int64, pct float64) {
	tw.printf("%s  %s: %d → %d (%+.1f%%)\n", indent, label, oldVal, newVal, pct)
}

func (tw *textWriter) renderFilterChange(indent string, d comparator.NodeDelta) {
	if d.OldFilter == d.NewFilter {
		return
	}
	if d.OldFilter == "" {
		tw.printf("%s  %sfilter added: %s%s\n", indent, colorYellow, d.NewFilter, colorReset)
	} else if d.NewFilter == "" {
		tw.printf("%s  %sfilter removed: %s%s\n", indent, colorGreen, d.OldFilter, colorReset)
	} else {
		tw.printf("%s  %sfilter: %s → %s%s\n", indent, colorYellow, d.OldFilter, d.NewFilter, colorReset)
	}
}

func (tw *textWriter) renderIndexCondChange(indent string, d comparator.NodeDelta) {
	if d.OldIndexCond == d.NewIndexCond {
		return
	}
	if d.OldIndexCond == "" {
		tw.printf("%s  %sindex cond added: %s%s\n", indent, colorYellow, d.NewIndexCond, colorReset)
	} else if d.NewIndexCond == "" {
		tw.printf("%s  %sindex cond removed: %s%s\n", indent, colorGreen, d.OldIndexCond, colorReset)
	} else {
		tw.printf("%s  %sindex cond: %s → %s%s\n", indent, colorYellow, d.OldIndexCond, d.NewIndexCond, colorReset)
	}
}

func (tw *textWriter) renderBufferChanges(indent string, d comparator.NodeDelta) {
	if d.OldSharedRead != d.NewSharedRead {
		color, arrow := deltaIndicator(d.OldSharedRead, d.NewSharedRead)
		tw.printf("%s  disk reads: %d → %s%d %s%s\n",
			indent, d.OldSharedRead, color, d.NewSharedRead, arrow, colorReset)
	}
	if d.OldSharedHit != d.NewSharedHit {
		tw.printf("%s  cache hits: %d → %d\n", indent, d.OldSharedHit, d.NewSharedHit)
	}
	if d.OldTempBlocks != d.NewTempBlocks {
		color, arrow := deltaIndicator(d.OldTempBlocks, d.NewTempBlocks)
		tw.printf("%s  temp blocks: %d → %s%d %s%s\n",
			indent, d.OldTempBlocks, color, d.NewTempBlocks, arrow, colorReset)
	}
}

func (tw *textWriter) renderSpillChanges(indent string, d comparator.NodeDelta) {
	if d.OldSortSpill != d.NewSortSpill {
		if d.NewSortSpill {
			tw.printf("%s  %ssort: memory → disk ↑%s\n", indent, colorRed, colorReset)
		} else {
			tw.printf("%s  %ssort: disk → memory ↓%s\n", indent, colorGreen, colorReset)
		}
	}
	if d.OldHashBatches != d.NewHashBatches {
		color, arrow := deltaIndicator(int64(d.OldHashBatches), int64(d.NewHashBatches))
		tw.printf("%s  hash batches: %d → %s%d %s%s\n", indent, d.OldHashBatches, color, d.NewHashBatches, arrow, colorReset)
	}
}

func deltaIndicator(oldVal, newVal int64) (string, string) {
	if newVal > oldVal {
		return colorRed, "↑"
	}
	return colorGreen, "↓"
}

func formatDelta(oldVal, newVal, pct float64, dir comparator.Direction, fmtStr string) string {
	color := dirColor(dir)
	arrow := dirArrow(dir)
	oldStr := fmt.Sprintf(fmtStr, oldVal)
	newStr := fmt.Sprintf(fmtStr, newVal)
	return fmt.Sprintf("%s → %s%s %s (%+.1f%%)%s", oldStr, color, newStr, arrow, pct, colorReset)
}

func dirColor(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return colorGreen
	case comparator.Regressed:
		return colorRed
	default:
		return ""
	}
}

func dirArrow(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return "↓"
	case comparator.Regressed:
		return "↑"
	default:
		return ""
	}
}

func pctChange(old, new float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return ((new - old) / old) * 100
}

func (tw *textWriter) renderIndexNameChange(indent string, d comparator.NodeDelta) {
	if d.OldIndexName == d.NewIndexName {
		return
	}
	if d.OldIndexName == "" {
		tw.printf("%s  %sindex added: %s%s\n", indent, colorGreen, d.NewIndexName, colorReset)
	} else if d.NewIndexName == "" {
		tw.printf("%s  %sindex removed: %s%s\n", indent, colorRed, d.OldIndexName, colorReset)
	} else {
		tw.printf("%s  %sindex: %s → %s%s\n", indent, colorYellow, d.OldIndexName, d.NewIndexName, colorReset)
	}
}

func (tw *textWriter) renderVerdict(s comparator.Summary) {
	var color string
	switch {
	case s.TimeDir == comparator.Improved && s.CostDir == comparator.Improved:
		color = colorGreen
	case s.TimeDir == comparator.Regressed && s.CostDir == comparator.Regressed:
		color = colorRed
	case s.TimeDir == comparator.Improved || s.CostDir == comparator.Improved:
		color = colorYellow
	}
	if color != "" {
		tw.printf("\n%sVerdict: %s%s\n", color, s.Verdict, colorReset)
	} else {
		tw.printf("\nVerdict: %s\n", s.Verdict)
	}
}

func nodeLabel(d comparator.NodeDelta) string {
	if d.Relation != "" {
		return fmt.Sprintf("%s on %s", d.NodeType, d.Relation)
	}
	return d.NodeType
}
