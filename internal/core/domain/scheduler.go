package domain

import "time"

// TaskIDIngest identifies the periodic literature ingestion task.
const TaskIDIngest = "literature-ingest"

// ScheduledTask is the persisted state of a recurring background task.
type ScheduledTask struct {
	ID          string
	Name        string
	Interval    time.Duration
	LastRun     time.Time
	NextRun     time.Time
	LastError   string
	LastSuccess time.Time
	Enabled     bool
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	if !t.Enabled {
		return false
	}
	return t.NextRun.IsZero() || !t.NextRun.After(now)
}

// TaskResult records one execution of a scheduled task.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool
	Error     string

	// Status is the ingestion outcome for ingest tasks.
	Status IngestStatus

	// ItemsProcessed is the number of points upserted.
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// IngestInterval is how often ingestion runs.
	IngestInterval time.Duration

	// TickInterval is how often due tasks are checked.
	TickInterval time.Duration

	// HistoryLimit is the number of results kept per task.
	HistoryLimit int
}

// DefaultSchedulerConfig returns the defaults used by `serve --schedule`.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:        false,
		IngestInterval: 24 * time.Hour,
		TickInterval:   time.Minute,
		HistoryLimit:   100,
	}
}
