package models

import "time"

// Sync task types handled by the dispatch worker.
const (
	TaskNotifyOrder = "notify_order"
	TaskSheetSync   = "sheet_sync"
)

// Sync task statuses.
const (
	SyncPending   = "pending"
	SyncRetry     = "retry"
	SyncCompleted = "completed"
	SyncFailed    = "failed"
)

// SyncTask is a persisted unit of asynchronous delivery work.
type SyncTask struct {
	ID          int64
	TaskType    string
	OrderID     int64
	Payload     string
	Status      string
	RetryCount  int
	LastError   string
	CreatedAt   time.Time
	ProcessedAt *time.Time
	NextRetryAt *time.Time
}
