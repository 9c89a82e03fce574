package batch

import (
	"sort"
	"time"
)

// Result records the terminal state of one target.
type Result struct {
	Target     Target        `json:"target"`
	Status     Status        `json:"status"`
	Report     *TargetReport `json:"report,omitempty"`
	Err        string        `json:"error,omitempty"`
	CacheHit   bool          `json:"cacheHit,omitempty"`
	RetryCount int           `json:"retryCount"`
	Duration   time.Duration `json:"duration"`
}

// Report aggregates a whole batch run. Timeouts count as failed in the
// counters; the per-target status keeps the distinction.
type Report struct {
	TotalDatabases int           `json:"totalDatabases"`
	Successful     int           `json:"successful"`
	Failed         int           `json:"failed"`
	Skipped        int           `json:"skipped"`
	Results        []Result      `json:"results"`
	Summary        Summary       `json:"summary"`
	ExecutionTime  time.Duration `json:"executionTime"`
	Timestamp      time.Time     `json:"timestamp"`
}

// Distribution is a histogram of successful targets by health score.
type Distribution struct {
	Excellent int `json:"excellent"` // 9-10
	Good      int `json:"good"`      // 7-8
	Fair      int `json:"fair"`      // 5-6
	Poor      int `json:"poor"`      // 3-4
	Critical  int `json:"critical"`  // 0-2
}

// Summary condenses the successful targets of a batch run.
type Summary struct {
	OverallScore       int          `json:"overallScore"`
	TotalIssues        int          `json:"totalIssues"`
	CriticalIssues     int          `json:"criticalIssues"`
	SecurityAtRisk     int          `json:"securityAtRisk"`
	PerformanceAtRisk  int          `json:"performanceAtRisk"`
	Distribution       Distribution `json:"healthDistribution"`
	TopRecommendations []string     `json:"topRecommendations,omitempty"`
}

func buildReport(results []Result, started time.Time) Report {
	report := Report{
		TotalDatabases: len(results),
		Results:        results,
		Summary:        summarize(results),
		ExecutionTime:  time.Since(started),
		Timestamp:      started,
	}
	for _, res := range results {
		switch res.Status {
		case StatusSuccess:
			report.Successful++
		case StatusSkipped:
			report.Skipped++
		default:
			report.Failed++
		}
	}
	return report
}

// summarize folds the successful targets into one Summary. The overall score
// is the integer average of their scores, 0 when nothing succeeded. Top
// recommendations are ranked by occurrence count, ties broken by first
// appearance, capped at 10.
func summarize(results []Result) Summary {
	var s Summary
	var scoreSum, succeeded int
	recCounts := make(map[string]int)
	var recOrder []string

	for _, res := range results {
		if res.Status != StatusSuccess || res.Report == nil {
			continue
		}
		r := res.Report

		succeeded++
		scoreSum += r.Score
		s.TotalIssues += r.TotalIssues
		s.CriticalIssues += r.CriticalIssues
		if atRisk(r.SecurityRisk) {
			s.SecurityAtRisk++
		}
		if atRisk(r.PerformanceRisk) {
			s.PerformanceAtRisk++
		}

		switch {
		case r.Score >= 9:
			s.Distribution.Excellent++
		case r.Score >= 7:
			s.Distribution.Good++
		case r.Score >= 5:
			s.Distribution.Fair++
		case r.Score >= 3:
			s.Distribution.Poor++
		default:
			s.Distribution.Critical++
		}

		for _, rec := range r.TopRecommendations {
			if _, seen := recCounts[rec]; !seen {
				recOrder = append(recOrder, rec)
			}
			recCounts[rec]++
		}
	}

	if succeeded > 0 {
		s.OverallScore = scoreSum / succeeded
	}

	sort.SliceStable(recOrder, func(i, j int) bool {
		return recCounts[recOrder[i]] > recCounts[recOrder[j]]
	})
	if len(recOrder) > 10 {
		recOrder = recOrder[:10]
	}
	s.TopRecommendations = recOrder
	return s
}

func atRisk(level string) bool {
	return level == "high" || level == "critical"
}
