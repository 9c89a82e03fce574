// Package bench measures query latency by repeatedly executing EXPLAIN
// ANALYZE and aggregating the wall-clock timings.
package bench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/pgadvise/pgadvise/internal/analyzer"
	"github.com/pgadvise/pgadvise/internal/metrics"
)

// DefaultIterations is the number of measured runs when the caller does not
// choose one.
const DefaultIterations = 5

const (
	defaultWarmupRuns     = 3
	defaultWarmupDelay    = 50 * time.Millisecond
	defaultIterationDelay = 100 * time.Millisecond
)

// IterationError reports the first measured iteration that failed. The
// benchmark aborts immediately; no partial statistics are returned.
type IterationError struct {
	Iteration int
	Err       error
}

func (e *IterationError) Error() string {
	return fmt.Sprintf("iteration %d: %s", e.Iteration, e.Err)
}

func (e *IterationError) Unwrap() error { return e.Err }

// Result holds the aggregated statistics of one benchmark.
type Result struct {
	Query       string                       `json:"query"`
	Iterations  int                          `json:"iterations"`
	AverageTime float64                      `json:"averageTime"`
	MinTime     float64                      `json:"minTime"`
	MaxTime     float64                      `json:"maxTime"`
	StdDev      float64                      `json:"standardDeviation"`
	Runs        []metrics.PerformanceMetrics `json:"results"`
}

// Comparison reports two benchmarks side by side. Improvement is the second
// query's gain over the first as a percentage of the first's average time;
// negative means the second query is slower.
type Comparison struct {
	First       Result  `json:"first"`
	Second      Result  `json:"second"`
	Improvement float64 `json:"improvement"`
}

// Runner drives timed EXPLAIN executions for one query at a time. Warm-up
// runs prime caches and tolerate failures; measured runs fail fast.
type Runner struct {
	Explain analyzer.ExplainFunc
	Logger  *zap.Logger

	WarmupRuns     int
	WarmupDelay    time.Duration
	IterationDelay time.Duration
}

func New(explain analyzer.ExplainFunc, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Explain:        explain,
		Logger:         logger,
		WarmupRuns:     defaultWarmupRuns,
		WarmupDelay:    defaultWarmupDelay,
		IterationDelay: defaultIterationDelay,
	}
}

// Run executes the query iterations times after the warm-up phase. Each
// measured run yields one PerformanceMetrics whose execution time is the
// observed wall-clock time, not the plan's self-reported figure.
func (r *Runner) Run(ctx context.Context, query string, iterations int) (Result, error) {
	if iterations < 1 {
		return Result{}, fmt.Errorf("iterations must be at least 1, got %d", iterations)
	}

	for i := 0; i < r.WarmupRuns; i++ {
		if _, err := r.Explain(ctx, query); err != nil {
			r.Logger.Warn("warm-up run failed", zap.Int("run", i+1), zap.Error(err))
		}
		if err := wait(ctx, r.WarmupDelay); err != nil {
			return Result{}, err
		}
	}

	runs := make([]metrics.PerformanceMetrics, 0, iterations)
	times := make([]float64, 0, iterations)
	for i := 0; i < iterations; i++ {
		started := time.Now()
		outputs, err := r.Explain(ctx, query)
		elapsed := time.Since(started)
		if err != nil {
			return Result{}, &IterationError{Iteration: i + 1, Err: err}
		}
		if len(outputs) == 0 {
			return Result{}, &IterationError{Iteration: i + 1, Err: errors.New("explain returned no plans")}
		}

		m := metrics.FromPlan(outputs[0])
		m.ExecutionTime = elapsed.Seconds() * 1000
		runs = append(runs, m)
		times = append(times, m.ExecutionTime)

		if err := wait(ctx, r.IterationDelay); err != nil {
			return Result{}, err
		}
	}

	mean, min, max, stddev := Stats(times)
	return Result{
		Query:       query,
		Iterations:  iterations,
		AverageTime: mean,
		MinTime:     min,
		MaxTime:     max,
		StdDev:      stddev,
		Runs:        runs,
	}, nil
}

// Compare benchmarks both queries under identical settings.
func (r *Runner) Compare(ctx context.Context, first, second string, iterations int) (Comparison, error) {
	a, err := r.Run(ctx, first, iterations)
	if err != nil {
		return Comparison{}, fmt.Errorf("benchmarking first query: %w", err)
	}
	b, err := r.Run(ctx, second, iterations)
	if err != nil {
		return Comparison{}, fmt.Errorf("benchmarking second query: %w", err)
	}

	var improvement float64
	if a.AverageTime != 0 {
		improvement = (a.AverageTime - b.AverageTime) / a.AverageTime * 100
	}
	return Comparison{First: a, Second: b, Improvement: improvement}, nil
}

// Stats returns the arithmetic mean, minimum, maximum and population
// standard deviation (divide by N, not N-1) of the samples.
func Stats(samples []float64) (mean, min, max, stddev float64) {
	if len(samples) == 0 {
		return 0, 0, 0, 0
	}

	min = samples[0]
	max = samples[0]
	var sum float64
	for _, s := range samples {
		sum += s
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	mean = sum / float64(len(samples))

	var sq float64
	for _, s := range samples {
		d := s - mean
		sq += d * d
	}
	stddev = math.Sqrt(sq / float64(len(samples)))
	return mean, min, max, stddev
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
