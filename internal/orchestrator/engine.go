package orchestrator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"flight-pipeline-service/pkg/logger"
	"flight-pipeline-service/pkg/metrics"
)

// Engine executes a stage graph. Ready stages run concurrently, failed
// stages are retried per their policy, and everything downstream of a
// terminal failure is skipped. Stages on independent branches keep
// running after a failure elsewhere in the graph.
type Engine struct {
	logger  logger.Logger
	metrics *metrics.Metrics
}

func NewEngine(log logger.Logger, m *metrics.Metrics) *Engine {
	return &Engine{logger: log, metrics: m}
}

// Run executes the graph to completion and returns the final stage
// state together with the first stage error, if any
func (e *Engine) Run(ctx context.Context, stages []Stage) (*State, error) {
	if _, err := validateDAG(stages); err != nil {
		return nil, err
	}
	st := NewState(stages)

	var runErr error
	for {
		e.skipBlocked(st, stages)

		var ready []Stage
		for _, def := range stages {
			ss := st.Stages[def.Name]
			if ss.Status == StagePending && depsSatisfied(def, st) {
				ready = append(ready, def)
			}
		}
		if len(ready) == 0 {
			break
		}

		var g errgroup.Group
		for _, def := range ready {
			def := def
			ss := st.Stages[def.Name]
			g.Go(func() error {
				return e.runStage(ctx, def, ss)
			})
		}
		if err := g.Wait(); err != nil && runErr == nil {
			runErr = err
		}
	}

	return st, runErr
}

// skipBlocked marks pending stages downstream of a failure as skipped,
// iterating so skips cascade through the graph
func (e *Engine) skipBlocked(st *State, stages []Stage) {
	for {
		changed := false
		for _, def := range stages {
			ss := st.Stages[def.Name]
			if ss.Status != StagePending {
				continue
			}
			if depsBlocked(def, st) {
				ss.Status = StageSkipped
				markFinished(ss, "")
				e.logger.Warn("Stage skipped, upstream failed", "stage", def.Name)
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func (e *Engine) runStage(ctx context.Context, def Stage, ss *StageState) error {
	ss.Status = StageRunning
	markStarted(ss)
	e.logger.Info("Stage started", "stage", def.Name)

	for {
		err := runOnce(ctx, def)
		ss.Attempts++
		if err == nil {
			ss.Status = StageSucceeded
			markFinished(ss, "")
			e.observe(def.Name, ss)
			e.logger.Info("Stage completed", "stage", def.Name, "attempts", ss.Attempts, "duration", ss.Duration().String())
			return nil
		}

		ss.LastError = err.Error()
		if !shouldRetry(def.Retry, ss.Attempts, err) {
			ss.Status = StageFailed
			markFinished(ss, err.Error())
			e.observe(def.Name, ss)
			e.logger.Error("Stage failed", "stage", def.Name, "attempts", ss.Attempts, "error", err)
			return fmt.Errorf("stage %s: %w", def.Name, err)
		}

		delay := computeBackoff(def.Retry, ss.Attempts)
		e.logger.Warn("Stage failed, retrying", "stage", def.Name, "attempt", ss.Attempts, "backoff", delay.String(), "error", err)
		if e.metrics != nil {
			e.metrics.StageRetries.WithLabelValues(def.Name).Inc()
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			ss.Status = StageFailed
			markFinished(ss, ctx.Err().Error())
			return fmt.Errorf("stage %s: %w", def.Name, ctx.Err())
		case <-timer.C:
		}
	}
}

func (e *Engine) observe(stage string, ss *StageState) {
	if e.metrics == nil {
		return
	}
	e.metrics.StageDuration.WithLabelValues(stage).Observe(ss.Duration().Seconds())
}

// runOnce executes the stage body a single time, converting panics to
// errors and applying the stage timeout
func runOnce(ctx context.Context, def Stage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage %s panicked: %v", def.Name, r)
		}
	}()
	if def.Run == nil {
		return fmt.Errorf("stage %q: Run is nil", def.Name)
	}
	if def.Timeout > 0 {
		tctx, cancel := context.WithTimeout(ctx, def.Timeout)
		defer cancel()
		ctx = tctx
	}
	return def.Run(ctx)
}

func shouldRetry(r RetryPolicy, attempts int, err error) bool {
	if r.MaxAttempts <= 0 || attempts >= r.MaxAttempts {
		return false
	}
	if r.Retryable == nil {
		return true
	}
	return r.Retryable(err)
}

func computeBackoff(r RetryPolicy, attempts int) time.Duration {
	minB := r.MinBackoff
	maxB := r.MaxBackoff
	j := r.JitterFrac
	if minB <= 0 {
		minB = 1 * time.Second
	}
	if maxB <= 0 {
		maxB = 30 * time.Second
	}
	if j <= 0 {
		j = 0.20
	}
	if attempts < 1 {
		attempts = 1
	}
	d := time.Duration(float64(minB) * math.Pow(2, float64(attempts-1)))
	if d > maxB {
		d = maxB
	}
	delta := float64(d) * j
	low := float64(d) - delta
	high := float64(d) + delta
	if low < 0 {
		low = 0
	}
	return time.Duration(low + rand.Float64()*(high-low))
}
