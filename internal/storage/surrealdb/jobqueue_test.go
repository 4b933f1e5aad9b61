package surrealdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/accraquant/sika/internal/models"
)

func TestJobQueueStore_EnqueueAndDequeue(t *testing.T) {
	db := testDB(t)
	store := NewJobQueueStore(db, testLogger())
	ctx := context.Background()

	job := &models.Job{
		JobType:     models.JobTypeSyncStocks,
		Key:         "universe",
		Priority:    models.PrioritySyncStocks,
		MaxAttempts: 3,
	}

	if err := store.Enqueue(ctx, job); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if job.ID == "" {
		t.Error("expected job ID to be set after enqueue")
	}
	if job.Status != models.JobStatusPending {
		t.Errorf("expected status pending, got %s", job.Status)
	}

	got, err := store.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a job from dequeue")
	}
	if got.Status != models.JobStatusRunning {
		t.Errorf("expected status running after dequeue, got %s", got.Status)
	}
	if got.Key != "universe" {
		t.Errorf("expected key universe, got %s", got.Key)
	}
}

func TestJobQueueStore_Dequeue_PriorityOrdering(t *testing.T) {
	db := testDB(t)
	store := NewJobQueueStore(db, testLogger())
	ctx := context.Background()

	// Enqueue low priority first, high priority second
	store.Enqueue(ctx, &models.Job{JobType: models.JobTypeGenerateAlerts, Key: "alerts", Priority: models.PriorityGenerateAlerts, MaxAttempts: 3})
	store.Enqueue(ctx, &models.Job{JobType: models.JobTypeRunBacktest, Key: "bt-1", Priority: models.PriorityRunBacktest, MaxAttempts: 3})

	// Should dequeue high priority first
	got, _ := store.Dequeue(ctx)
	if got == nil {
		t.Fatal("expected a job")
	}
	if got.JobType != models.JobTypeRunBacktest {
		t.Errorf("expected backtest (priority 10) first, got %s", got.JobType)
	}

	got2, _ := store.Dequeue(ctx)
	if got2 == nil {
		t.Fatal("expected second job")
	}
	if got2.JobType != models.JobTypeGenerateAlerts {
		t.Errorf("expected alerts (priority 3) second, got %s", got2.JobType)
	}
}

func TestJobQueueStore_Dequeue_EmptyQueue(t *testing.T) {
	db := testDB(t)
	store := NewJobQueueStore(db, testLogger())
	ctx := context.Background()

	got, err := store.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue on empty queue failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil from empty queue, got %v", got)
	}
}

func TestJobQueueStore_Complete(t *testing.T) {
	db := testDB(t)
	store := NewJobQueueStore(db, testLogger())
	ctx := context.Background()

	job := &models.Job{JobType: models.JobTypeSyncStocks, Key: "universe", Priority: 5, MaxAttempts: 3}
	store.Enqueue(ctx, job)

	dequeued, _ := store.Dequeue(ctx)

	if err := store.Complete(ctx, dequeued.ID, nil, 100); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	pending, _ := store.CountPending(ctx)
	if pending != 0 {
		t.Errorf("expected 0 pending after complete, got %d", pending)
	}
}

func TestJobQueueStore_Complete_WithError(t *testing.T) {
	db := testDB(t)
	store := NewJobQueueStore(db, testLogger())
	ctx := context.Background()

	job := &models.Job{JobType: models.JobTypeRunBacktest, Key: "bt-9", Priority: 10, MaxAttempts: 3}
	store.Enqueue(ctx, job)

	dequeued, _ := store.Dequeue(ctx)
	store.Complete(ctx, dequeued.ID, errors.New("feed unavailable"), 50)

	all, _ := store.ListAll(ctx, 10)
	if len(all) != 1 {
		t.Fatalf("expected 1 job, got %d", len(all))
	}
	if all[0].Status != models.JobStatusFailed {
		t.Errorf("expected status failed, got %s", all[0].Status)
	}
	if all[0].Error != "feed unavailable" {
		t.Errorf("expected error message recorded, got %q", all[0].Error)
	}
}

func TestJobQueueStore_Cancel(t *testing.T) {
	db := testDB(t)
	store := NewJobQueueStore(db, testLogger())
	ctx := context.Background()

	job := &models.Job{JobType: models.JobTypeSyncStocks, Key: "universe", Priority: 5, MaxAttempts: 3}
	store.Enqueue(ctx, job)

	if err := store.Cancel(ctx, job.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	pending, _ := store.CountPending(ctx)
	if pending != 0 {
		t.Errorf("expected 0 pending after cancel, got %d", pending)
	}
}

func TestJobQueueStore_HasPendingJob(t *testing.T) {
	db := testDB(t)
	store := NewJobQueueStore(db, testLogger())
	ctx := context.Background()

	store.Enqueue(ctx, &models.Job{JobType: models.JobTypeRunBacktest, Key: "bt-1", Priority: 10, MaxAttempts: 3})

	has, err := store.HasPendingJob(ctx, models.JobTypeRunBacktest, "bt-1")
	if err != nil {
		t.Fatalf("HasPendingJob failed: %v", err)
	}
	if !has {
		t.Error("expected pending job to be found")
	}

	has, _ = store.HasPendingJob(ctx, models.JobTypeRunBacktest, "bt-2")
	if has {
		t.Error("expected no pending job for different key")
	}
}

func TestJobQueueStore_ResetRunningJobs(t *testing.T) {
	db := testDB(t)
	store := NewJobQueueStore(db, testLogger())
	ctx := context.Background()

	store.Enqueue(ctx, &models.Job{JobType: models.JobTypeSyncStocks, Key: "universe", Priority: 5, MaxAttempts: 3})
	store.Dequeue(ctx)

	if _, err := store.ResetRunningJobs(ctx); err != nil {
		t.Fatalf("ResetRunningJobs failed: %v", err)
	}

	pending, _ := store.CountPending(ctx)
	if pending != 1 {
		t.Errorf("expected running job reset to pending, got %d pending", pending)
	}
}

func TestJobQueueStore_PurgeCompleted(t *testing.T) {
	db := testDB(t)
	store := NewJobQueueStore(db, testLogger())
	ctx := context.Background()

	job := &models.Job{JobType: models.JobTypeSyncStocks, Key: "universe", Priority: 5, MaxAttempts: 3}
	store.Enqueue(ctx, job)
	dequeued, _ := store.Dequeue(ctx)
	store.Complete(ctx, dequeued.ID, nil, 10)

	if _, err := store.PurgeCompleted(ctx, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("PurgeCompleted failed: %v", err)
	}

	all, _ := store.ListAll(ctx, 10)
	if len(all) != 0 {
		t.Errorf("expected completed jobs purged, got %d", len(all))
	}
}
