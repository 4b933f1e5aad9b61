// Package jobrunner runs the background job loops: a watcher that keeps the
// recurring sync and alert jobs queued, and a processor pool that executes
// whatever the queue holds.
package jobrunner

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/accraquant/sika/internal/common"
	"github.com/accraquant/sika/internal/interfaces"
	"github.com/accraquant/sika/internal/models"
)

// Runner owns the watcher loop and processor pool. The queue is persistent,
// so jobs survive restarts; orphaned running jobs are reset to pending on
// start.
type Runner struct {
	market   interfaces.MarketService
	alerts   interfaces.AlertService
	backtest interfaces.BacktestService
	storage  interfaces.StorageManager
	logger   *common.Logger
	config   common.JobRunnerConfig

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a new job runner.
func NewRunner(
	market interfaces.MarketService,
	alerts interfaces.AlertService,
	backtest interfaces.BacktestService,
	storage interfaces.StorageManager,
	logger *common.Logger,
	config common.JobRunnerConfig,
) *Runner {
	return &Runner{
		market:   market,
		alerts:   alerts,
		backtest: backtest,
		storage:  storage,
		logger:   logger,
		config:   config,
	}
}

// safeGo launches a goroutine with panic recovery and logging.
func (r *Runner) safeGo(name string, fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error().
					Str("goroutine", name).
					Str("panic", fmt.Sprintf("%v", rec)).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic in job runner goroutine")
			}
		}()
		fn()
	}()
}

// Start launches the watcher loop and processor pool. Safe to call multiple
// times — stops any existing loops before starting.
func (r *Runner) Start() {
	if r.cancel != nil {
		r.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	// Reset orphaned jobs from a previous crash
	if count, err := r.storage.JobQueueStore().ResetRunningJobs(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to reset orphaned running jobs")
	} else if count > 0 {
		r.logger.Info().Int("count", count).Msg("Reset orphaned running jobs to pending")
	}

	r.safeGo("watcher", func() { r.watchLoop(ctx) })

	maxConc := r.config.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 3
	}
	for i := 0; i < maxConc; i++ {
		name := fmt.Sprintf("processor-%d", i)
		r.safeGo(name, func() { r.processLoop(ctx) })
	}

	r.logger.Info().
		Str("watcher_interval", r.config.WatcherInterval).
		Int("max_concurrent", maxConc).
		Msg("Job runner started")
}

// Stop cancels all loops and waits for completion.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.wg.Wait()
	r.logger.Info().Msg("Job runner stopped")
}

// processLoop continuously dequeues and executes jobs.
func (r *Runner) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := r.storage.JobQueueStore().Dequeue(ctx)
			if err != nil {
				r.logger.Warn().Err(err).Msg("Processor: dequeue error")
				select {
				case <-ctx.Done():
					return
				case <-time.After(1 * time.Second):
					continue
				}
			}
			if job == nil {
				// Queue empty, sleep briefly
				select {
				case <-ctx.Done():
					return
				case <-time.After(1 * time.Second):
					continue
				}
			}

			start := time.Now()
			execErr := r.executeJob(ctx, job)
			durationMS := time.Since(start).Milliseconds()

			if execErr != nil {
				r.logger.Warn().
					Str("job_id", job.ID).
					Str("job_type", job.JobType).
					Str("key", job.Key).
					Int64("duration_ms", durationMS).
					Err(execErr).
					Msg("Job failed")

				// Re-queue if under max attempts
				if job.Attempts < job.MaxAttempts {
					r.logger.Info().
						Str("job_id", job.ID).
						Int("attempt", job.Attempts).
						Int("max", job.MaxAttempts).
						Msg("Re-queuing failed job")

					job.Status = models.JobStatusPending
					job.Error = ""
					if err := r.storage.JobQueueStore().Enqueue(ctx, job); err != nil {
						r.logger.Warn().Str("job_id", job.ID).Err(err).Msg("Failed to re-enqueue job")
					} else {
						continue // Skip complete() — job is re-queued
					}
				}
			} else {
				r.logger.Debug().
					Str("job_id", job.ID).
					Str("job_type", job.JobType).
					Str("key", job.Key).
					Int64("duration_ms", durationMS).
					Msg("Job completed")
			}

			if err := r.storage.JobQueueStore().Complete(ctx, job.ID, execErr, durationMS); err != nil {
				r.logger.Warn().Str("job_id", job.ID).Err(err).Msg("Failed to complete job in queue")
			}
		}
	}
}

// executeJob dispatches a job to the correct service method based on job type.
func (r *Runner) executeJob(ctx context.Context, job *models.Job) error {
	switch job.JobType {
	case models.JobTypeSyncStocks:
		_, err := r.market.SyncStocks(ctx, false)
		return err
	case models.JobTypeGenerateAlerts:
		_, err := r.alerts.GenerateAlerts(ctx)
		return err
	case models.JobTypeRunBacktest:
		return r.backtest.ExecuteBacktest(ctx, job.Key) // Key = backtest id
	default:
		return fmt.Errorf("unknown job type: %s", job.JobType)
	}
}
