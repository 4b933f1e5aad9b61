package models

import "time"

// Job represents a unit of work in the job queue.
type Job struct {
	ID          string    `json:"id"`
	JobType     string    `json:"job_type"`
	Key         string    `json:"key"` // ticker or backtest id, depending on type
	Priority    int       `json:"priority"`
	Status      string    `json:"status"` // "pending", "running", "completed", "failed", "cancelled"
	CreatedAt   time.Time `json:"created_at"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Error       string    `json:"error,omitempty"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	DurationMS  int64     `json:"duration_ms"`
}

// Job type constants
const (
	JobTypeSyncStocks     = "sync_stocks"
	JobTypeGenerateAlerts = "generate_alerts"
	JobTypeRunBacktest    = "run_backtest"
)

// Job status constants
const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusCancelled = "cancelled"
)

// Default priorities (higher = processed first)
const (
	PriorityRunBacktest    = 10
	PrioritySyncStocks     = 5
	PriorityGenerateAlerts = 3
)

// DefaultPriority returns the default priority for a job type.
func DefaultPriority(jobType string) int {
	switch jobType {
	case JobTypeRunBacktest:
		return PriorityRunBacktest
	case JobTypeSyncStocks:
		return PrioritySyncStocks
	case JobTypeGenerateAlerts:
		return PriorityGenerateAlerts
	default:
		return 0
	}
}
