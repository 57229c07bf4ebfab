package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"thundle/internal/thundle/pipeline"
)

// The pipeline refreshes the refined set once a day, well before the first
// players show up for the new day's pick.
const (
	runHourUTC   = 0
	runMinuteUTC = 30
)

type Worker struct {
	Log      *zap.Logger
	Pipeline *pipeline.Pipeline
	retryWg  sync.WaitGroup
}

func nextDailyRun(now time.Time) time.Time {
	utc := now.UTC()
	next := time.Date(utc.Year(), utc.Month(), utc.Day(), runHourUTC, runMinuteUTC, 0, 0, time.UTC)
	if !next.After(utc) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (w *Worker) Run(ctx context.Context) {
	// Run once on startup so a fresh deployment has data immediately.
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.Log.Info("Waiting for retry goroutines to complete...")
			w.retryWg.Wait()
			return
		default:
			next := nextDailyRun(time.Now())
			sleep := time.Until(next)
			if sleep < 0 {
				sleep = 0
			}
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				w.Log.Info("Waiting for retry goroutines to complete...")
				w.retryWg.Wait()
				return
			case <-timer.C:
				w.runOnce(ctx)
			}
		}
	}
}

// runOnce triggers one pipeline pass. The pipeline itself never retries, so
// batch-level failures are retried here asynchronously without blocking the
// schedule.
func (w *Worker) runOnce(ctx context.Context) {
	if err := w.Pipeline.Run(ctx); err != nil {
		w.Log.Error("Pipeline run failed", zap.Error(err))
		w.retryWg.Add(1)
		go func() {
			defer w.retryWg.Done()
			w.asyncRetryLoop(ctx)
		}()
	}
}

// calculateRetryDelay returns the delay before retry n: 15s * 2^(n-1).
func (w *Worker) calculateRetryDelay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 15 * time.Second
	}
	delay := 15 * time.Second
	for i := 1; i < retryCount; i++ {
		delay *= 2
	}
	return delay
}

func (w *Worker) asyncRetryLoop(ctx context.Context) {
	const maxRetries = 5

	for attempt := 2; attempt <= maxRetries; attempt++ {
		retryDelay := w.calculateRetryDelay(attempt - 1)

		w.Log.Info("Pipeline retry scheduled",
			zap.Int("attempt", attempt),
			zap.Int("maxRetries", maxRetries),
			zap.Duration("delay", retryDelay),
		)

		timer := time.NewTimer(retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.Log.Info("Context cancelled, stopping pipeline retries",
				zap.Int("attempt", attempt),
			)
			return
		case <-timer.C:
			if err := w.Pipeline.Run(ctx); err != nil {
				w.Log.Error("Pipeline retry failed",
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
				continue
			}
			w.Log.Info("Pipeline retry succeeded", zap.Int("attempt", attempt))
			return
		}
	}

	w.Log.Error("Pipeline retry max attempts exceeded, giving up",
		zap.Int("maxRetries", maxRetries),
	)
}
