package jobrunner

import (
	"context"
	"time"

	"github.com/accraquant/sika/internal/models"
)

// Recurring job keys. One pending job per (type, key) at a time.
const (
	keyUniverse = "universe"
	keyAlerts   = "alerts"
)

// alertRetention bounds how long alerts are kept before housekeeping
// removes them.
const alertRetention = 30 * 24 * time.Hour

// watchLoop keeps the recurring jobs queued and purges old completed jobs.
func (r *Runner) watchLoop(ctx context.Context) {
	interval := r.config.GetWatcherInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run an initial scan immediately
	r.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.scan(ctx)
		}
	}
}

// scan enqueues the recurring sync and alert jobs. The sync job itself
// checks freshness before hitting the feed, so a scan that fires while the
// data is fresh costs one queue round-trip and nothing else. Alerts queue
// after sync at lower priority so they diff the refreshed universe.
func (r *Runner) scan(ctx context.Context) {
	enqueued := 0
	checks := []struct {
		jobType  string
		key      string
		priority int
	}{
		{models.JobTypeSyncStocks, keyUniverse, models.PrioritySyncStocks},
		{models.JobTypeGenerateAlerts, keyAlerts, models.PriorityGenerateAlerts},
	}

	for _, c := range checks {
		if err := r.enqueueIfNeeded(ctx, c.jobType, c.key, c.priority); err != nil {
			r.logger.Warn().
				Str("job_type", c.jobType).
				Err(err).
				Msg("Watcher: failed to enqueue job")
		} else {
			enqueued++
		}
	}

	r.logger.Debug().Int("enqueued", enqueued).Msg("Watcher: scan complete")

	r.purgeOldJobs(ctx)
	r.purgeOldAlerts(ctx)
}

// enqueueIfNeeded checks for an existing pending job with the same type+key
// and only enqueues if none exists (dedup).
func (r *Runner) enqueueIfNeeded(ctx context.Context, jobType, key string, priority int) error {
	exists, err := r.storage.JobQueueStore().HasPendingJob(ctx, jobType, key)
	if err != nil {
		return err
	}
	if exists {
		return nil // Already queued
	}

	job := &models.Job{
		JobType:     jobType,
		Key:         key,
		Priority:    priority,
		Status:      models.JobStatusPending,
		CreatedAt:   time.Now(),
		MaxAttempts: r.config.GetMaxRetries(),
	}
	return r.storage.JobQueueStore().Enqueue(ctx, job)
}

// purgeOldJobs removes completed/failed jobs older than the configured
// retention window.
func (r *Runner) purgeOldJobs(ctx context.Context) {
	cutoff := time.Now().Add(-r.config.GetPurgeAfter())
	if _, err := r.storage.JobQueueStore().PurgeCompleted(ctx, cutoff); err != nil {
		r.logger.Warn().Err(err).Msg("Watcher: failed to purge old jobs")
	}
}

// purgeOldAlerts drops alerts past the retention window.
func (r *Runner) purgeOldAlerts(ctx context.Context) {
	if _, err := r.alerts.PurgeOld(ctx, alertRetention); err != nil {
		r.logger.Warn().Err(err).Msg("Watcher: failed to purge old alerts")
	}
}
