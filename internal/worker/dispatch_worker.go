package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"vantry/internal/database"
	"vantry/internal/domain"
	"vantry/internal/metrics"
	"vantry/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	dispatchQueueKey = "dispatch:queue"
	pollInterval     = 10 * time.Second
	batchSize        = 10
)

// DispatchWorker drains the sync_queue table: it sends order
// notifications and mirrors the inventory to the sheet. Tasks are
// durable in SQLite; Redis only wakes the worker early.
type DispatchWorker struct {
	db       *database.DB
	redis    *redis.Client
	notifier domain.Notifier
	sheets   domain.SheetsWriter
	policy   RetryPolicy
	logger   *zerolog.Logger
	wake     chan struct{}
}

func NewDispatchWorker(db *database.DB, redisClient *redis.Client, notifier domain.Notifier, sheetsWriter domain.SheetsWriter, policy RetryPolicy, logger *zerolog.Logger) *DispatchWorker {
	return &DispatchWorker{
		db:       db,
		redis:    redisClient,
		notifier: notifier,
		sheets:   sheetsWriter,
		policy:   policy,
		logger:   logger,
		wake:     make(chan struct{}, 1),
	}
}

// EnqueueNotifyOrder persists a notification task for the order.
func (w *DispatchWorker) EnqueueNotifyOrder(ctx context.Context, order *models.PurchaseOrder) error {
	task := &models.SyncTask{
		TaskType: models.TaskNotifyOrder,
		OrderID:  order.ID,
		Payload:  order.Message,
		Status:   models.SyncPending,
	}
	if err := w.db.CreateSyncTask(ctx, task); err != nil {
		return err
	}
	w.signal(ctx, task.ID)
	return nil
}

// EnqueueSheetSync persists a full inventory mirror task.
func (w *DispatchWorker) EnqueueSheetSync(ctx context.Context) error {
	task := &models.SyncTask{
		TaskType: models.TaskSheetSync,
		Status:   models.SyncPending,
	}
	if err := w.db.CreateSyncTask(ctx, task); err != nil {
		return err
	}
	w.signal(ctx, task.ID)
	return nil
}

// signal wakes the worker loop. The Redis push is best effort; the
// in-process channel and the poll ticker cover the rest.
func (w *DispatchWorker) signal(ctx context.Context, taskID int64) {
	if w.redis != nil {
		if err := w.redis.RPush(ctx, dispatchQueueKey, strconv.FormatInt(taskID, 10)).Err(); err != nil {
			w.logger.Debug().Err(err).Msg("failed to push wake signal to redis")
		}
	}
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Start runs the worker until the context is cancelled.
func (w *DispatchWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("poll_interval", pollInterval).Msg("dispatch worker started")

	if w.redis != nil {
		go w.listenRedis(ctx)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("dispatch worker stopped")
			return
		case <-ticker.C:
		case <-w.wake:
		}

		if err := w.ProcessPending(ctx); err != nil {
			w.logger.Error().Err(err).Msg("failed to process pending tasks")
		}
	}
}

// listenRedis converts cross-process queue pushes into wake signals.
func (w *DispatchWorker) listenRedis(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		res, err := w.redis.BLPop(ctx, 5*time.Second, dispatchQueueKey).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.logger.Debug().Err(err).Msg("redis queue listen failed")
			time.Sleep(5 * time.Second)
			continue
		}
		if len(res) == 2 {
			select {
			case w.wake <- struct{}{}:
			default:
			}
		}
	}
}

// ProcessPending handles one batch of due tasks.
func (w *DispatchWorker) ProcessPending(ctx context.Context) error {
	tasks, err := w.db.GetPendingSyncTasks(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		w.processTask(ctx, task)
	}
	return nil
}

func (w *DispatchWorker) processTask(ctx context.Context, task models.SyncTask) {
	err := w.handle(ctx, task)
	if err == nil {
		if uerr := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncCompleted, "", nil); uerr != nil {
			w.logger.Error().Err(uerr).Int64("task_id", task.ID).Msg("failed to mark task completed")
			return
		}
		metrics.IncWorkerTask(task.TaskType, "completed")
		w.logger.Info().Int64("task_id", task.ID).Str("task_type", task.TaskType).Msg("task completed")
		return
	}

	if w.policy.ShouldRetry(task.RetryCount) {
		next := time.Now().Add(w.policy.NextDelay(task.RetryCount))
		if uerr := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncRetry, err.Error(), &next); uerr != nil {
			w.logger.Error().Err(uerr).Int64("task_id", task.ID).Msg("failed to schedule retry")
			return
		}
		metrics.IncWorkerTask(task.TaskType, "retry")
		w.logger.Warn().Err(err).Int64("task_id", task.ID).Int("retry_count", task.RetryCount+1).Time("next_retry_at", next).Msg("task failed, scheduled retry")
		return
	}

	if uerr := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncFailed, err.Error(), nil); uerr != nil {
		w.logger.Error().Err(uerr).Int64("task_id", task.ID).Msg("failed to mark task failed")
		return
	}
	metrics.IncWorkerTask(task.TaskType, "failed")
	w.logger.Error().Err(err).Int64("task_id", task.ID).Str("task_type", task.TaskType).Msg("task moved to dead letter")
}

func (w *DispatchWorker) handle(ctx context.Context, task models.SyncTask) error {
	switch task.TaskType {
	case models.TaskNotifyOrder:
		if w.notifier == nil {
			w.logger.Debug().Int64("task_id", task.ID).Msg("notifier disabled, skipping")
			return nil
		}
		return w.notifier.SendOrder(ctx, task.Payload)
	case models.TaskSheetSync:
		if w.sheets == nil {
			w.logger.Debug().Int64("task_id", task.ID).Msg("sheets disabled, skipping")
			return nil
		}
		items, err := w.db.ListItems(ctx)
		if err != nil {
			return fmt.Errorf("failed to list items for sheet sync: %w", err)
		}
		return w.sheets.ReplaceInventorySheet(ctx, items)
	default:
		return fmt.Errorf("unknown task type %q", task.TaskType)
	}
}
