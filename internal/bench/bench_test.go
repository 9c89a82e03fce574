package bench

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pgadvise/pgadvise/internal/plan"
)

func trivialPlan() []plan.ExplainOutput {
	return []plan.ExplainOutput{{
		Plan:          plan.PlanNode{NodeType: "Result", ActualRows: 1, TotalCost: 0.01},
		ExecutionTime: 9999,
	}}
}

// fastRunner returns a Runner with zero spacing so tests do not sleep.
func fastRunner(explain func(context.Context, string) ([]plan.ExplainOutput, error)) *Runner {
	r := New(explain, zap.NewNop())
	r.WarmupDelay = 0
	r.IterationDelay = 0
	return r
}

func TestStats(t *testing.T) {
	mean, min, max, stddev := Stats([]float64{10, 20, 30})
	assert.InDelta(t, 20.0, mean, 1e-9)
	assert.InDelta(t, 10.0, min, 1e-9)
	assert.InDelta(t, 30.0, max, 1e-9)
	assert.InDelta(t, math.Sqrt(200.0/3.0), stddev, 1e-9)
}

func TestStats_SingleSample(t *testing.T) {
	mean, min, max, stddev := Stats([]float64{42})
	assert.InDelta(t, 42.0, mean, 1e-9)
	assert.InDelta(t, 42.0, min, 1e-9)
	assert.InDelta(t, 42.0, max, 1e-9)
	assert.Zero(t, stddev)
}

func TestStats_Empty(t *testing.T) {
	mean, min, max, stddev := Stats(nil)
	assert.Zero(t, mean)
	assert.Zero(t, min)
	assert.Zero(t, max)
	assert.Zero(t, stddev)
}

func TestRun_CollectsIterations(t *testing.T) {
	calls := 0
	r := fastRunner(func(context.Context, string) ([]plan.ExplainOutput, error) {
		calls++
		return trivialPlan(), nil
	})

	res, err := r.Run(context.Background(), "SELECT 1", 4)
	require.NoError(t, err)

	assert.Equal(t, 7, calls, "3 warm-ups plus 4 measured runs")
	assert.Equal(t, "SELECT 1", res.Query)
	assert.Equal(t, 4, res.Iterations)
	require.Len(t, res.Runs, 4)

	// Wall clock replaces the plan's self-reported 9999ms.
	for _, run := range res.Runs {
		assert.Less(t, run.ExecutionTime, 1000.0)
	}
	assert.LessOrEqual(t, res.MinTime, res.AverageTime)
	assert.LessOrEqual(t, res.AverageTime, res.MaxTime)
}

func TestRun_WarmupErrorsTolerated(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	calls := 0
	r := fastRunner(func(context.Context, string) ([]plan.ExplainOutput, error) {
		calls++
		if calls <= 3 {
			return nil, errors.New("cold cache")
		}
		return trivialPlan(), nil
	})
	r.Logger = zap.New(core)

	res, err := r.Run(context.Background(), "SELECT 1", 2)
	require.NoError(t, err)
	assert.Len(t, res.Runs, 2)
	assert.Equal(t, 3, logs.FilterMessage("warm-up run failed").Len())
}

func TestRun_MeasuredFailureAborts(t *testing.T) {
	calls := 0
	r := fastRunner(func(context.Context, string) ([]plan.ExplainOutput, error) {
		calls++
		if calls == 5 { // second measured run
			return nil, errors.New("connection reset")
		}
		return trivialPlan(), nil
	})

	_, err := r.Run(context.Background(), "SELECT 1", 10)
	require.Error(t, err)

	var iterErr *IterationError
	require.ErrorAs(t, err, &iterErr)
	assert.Equal(t, 2, iterErr.Iteration)
	assert.Equal(t, 5, calls, "no further runs after the failure")
}

func TestRun_RejectsZeroIterations(t *testing.T) {
	r := fastRunner(func(context.Context, string) ([]plan.ExplainOutput, error) {
		return trivialPlan(), nil
	})

	_, err := r.Run(context.Background(), "SELECT 1", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterations")
}

func TestRun_ContextCanceled(t *testing.T) {
	r := New(func(context.Context, string) ([]plan.ExplainOutput, error) {
		return trivialPlan(), nil
	}, zap.NewNop())
	r.WarmupDelay = 10 * time.Millisecond
	r.IterationDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, "SELECT 1", 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompare(t *testing.T) {
	r := fastRunner(func(_ context.Context, query string) ([]plan.ExplainOutput, error) {
		if query == "slow" {
			time.Sleep(5 * time.Millisecond)
		}
		return trivialPlan(), nil
	})

	cmp, err := r.Compare(context.Background(), "slow", "fast", 2)
	require.NoError(t, err)
	assert.Equal(t, "slow", cmp.First.Query)
	assert.Equal(t, "fast", cmp.Second.Query)
	assert.Positive(t, cmp.Improvement, "second query is faster")

	cmp, err = r.Compare(context.Background(), "fast", "slow", 2)
	require.NoError(t, err)
	assert.Negative(t, cmp.Improvement, "second query is slower")
}

func TestCompare_SecondQueryFails(t *testing.T) {
	r := fastRunner(func(_ context.Context, query string) ([]plan.ExplainOutput, error) {
		if query == "bad" {
			return nil, errors.New("syntax error")
		}
		return trivialPlan(), nil
	})

	_, err := r.Compare(context.Background(), "good", "bad", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "benchmarking second query")
}
