// Package batch fans the diagnostic pipeline out over many databases under
// bounded concurrency, with per-target retries and a shared TTL result cache.
package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxConcurrency = 5
	DefaultRetryAttempts  = 2
	DefaultRetryDelay     = time.Second
	DefaultTargetTimeout  = 60 * time.Second
	DefaultCacheTTL       = 5 * time.Minute
)

// Options tunes an Orchestrator. Zero values take the defaults above; a
// negative RetryAttempts disables retries and a negative TargetTimeout
// disables the per-attempt deadline.
type Options struct {
	MaxConcurrency int
	RetryAttempts  int
	RetryDelay     time.Duration
	TargetTimeout  time.Duration
	CacheTTL       time.Duration
	Mode           Mode
}

// Orchestrator runs targets in parallel and aggregates their outcomes. One
// target exhausting its retries never aborts or delays the others.
type Orchestrator struct {
	// Events, when set, receives progress notifications. It is called from
	// worker goroutines.
	Events EventSink

	analyzer TargetAnalyzer
	opts     Options
	cache    *resultCache
	logger   *zap.Logger
}

func New(analyzer TargetAnalyzer, opts Options, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = DefaultRetryAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.TargetTimeout == 0 {
		opts.TargetTimeout = DefaultTargetTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Mode == "" {
		opts.Mode = ModeFull
	}
	return &Orchestrator{
		analyzer: analyzer,
		opts:     opts,
		cache:    newResultCache(opts.CacheTTL),
		logger:   logger,
	}
}

// ClearCache drops every cached target report.
func (o *Orchestrator) ClearCache() {
	o.cache.clear()
}

// Run analyzes every target and returns once all of them reached a terminal
// state. The returned error is non-nil only when ctx was cancelled; the
// report still covers every target in that case.
func (o *Orchestrator) Run(ctx context.Context, targets []Target) (Report, error) {
	started := time.Now()
	o.emit(Event{Type: EventStart, Time: started})

	results := make([]Result, len(targets))
	sem := make(chan struct{}, o.opts.MaxConcurrency)
	var wg sync.WaitGroup

	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = o.analyzeTarget(ctx, targets[i])
		}(i)
	}
	wg.Wait()

	report := buildReport(results, started)
	o.emit(Event{Type: EventComplete, Time: time.Now()})
	return report, ctx.Err()
}

func (o *Orchestrator) analyzeTarget(ctx context.Context, target Target) Result {
	started := time.Now()

	if target.Conn == "" {
		o.logger.Warn("skipping target without connection identifier",
			zap.String("target", target.Name))
		return Result{
			Target:   target,
			Status:   StatusSkipped,
			Err:      "no connection identifier",
			Duration: time.Since(started),
		}
	}

	o.emit(Event{Type: EventTargetStart, Target: &target, Time: started})

	key := fingerprint(target.Conn, o.opts.Mode)
	if report, ok := o.cache.get(key, time.Now()); ok {
		o.emit(Event{Type: EventCacheHit, Target: &target, Time: time.Now()})
		return Result{
			Target:   target,
			Status:   StatusSuccess,
			Report:   &report,
			CacheHit: true,
			Duration: time.Since(started),
		}
	}

	var lastErr error
	attempt := 0
	for ; ; attempt++ {
		report, err := o.attempt(ctx, target)
		if err == nil {
			o.cache.set(key, report, time.Now())
			o.emit(Event{Type: EventTargetDone, Target: &target, Time: time.Now()})
			return Result{
				Target:     target,
				Status:     StatusSuccess,
				Report:     &report,
				RetryCount: attempt,
				Duration:   time.Since(started),
			}
		}
		lastErr = err

		// An attempt that hit its deadline is terminal, never retried.
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			o.emit(Event{Type: EventTargetFailed, Target: &target, Err: err.Error(), Time: time.Now()})
			o.logger.Error("target analysis timed out",
				zap.String("target", target.Name), zap.Error(err))
			return Result{
				Target:     target,
				Status:     StatusTimeout,
				Err:        err.Error(),
				RetryCount: attempt,
				Duration:   time.Since(started),
			}
		}

		if attempt >= o.opts.RetryAttempts || ctx.Err() != nil {
			break
		}

		retry := attempt + 1
		o.emit(Event{Type: EventRetry, Target: &target, Attempt: retry, Err: err.Error(), Time: time.Now()})
		o.logger.Warn("target attempt failed, retrying",
			zap.String("target", target.Name),
			zap.Int("attempt", retry),
			zap.Error(err))
		if werr := wait(ctx, o.opts.RetryDelay*time.Duration(retry)); werr != nil {
			lastErr = werr
			break
		}
	}

	o.emit(Event{Type: EventTargetFailed, Target: &target, Err: lastErr.Error(), Time: time.Now()})
	o.logger.Error("target analysis failed",
		zap.String("target", target.Name),
		zap.Int("attempts", attempt+1),
		zap.Error(lastErr))
	return Result{
		Target:     target,
		Status:     StatusFailed,
		Err:        lastErr.Error(),
		RetryCount: attempt,
		Duration:   time.Since(started),
	}
}

// attempt runs one analysis with the per-attempt deadline applied.
func (o *Orchestrator) attempt(ctx context.Context, target Target) (TargetReport, error) {
	if o.opts.TargetTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.TargetTimeout)
		defer cancel()
	}
	return o.analyzer.AnalyzeTarget(ctx, target, o.opts.Mode)
}

func (o *Orchestrator) emit(ev Event) {
	if o.Events != nil {
		o.Events(ev)
	}
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
