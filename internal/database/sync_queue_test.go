package database

import (
	"context"
	"testing"
	"time"

	"vantry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncTaskLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{
		TaskType: models.TaskNotifyOrder,
		OrderID:  7,
		Payload:  `{"order_id":7}`,
		Status:   models.SyncPending,
	}
	require.NoError(t, db.CreateSyncTask(ctx, task))
	require.NotZero(t, task.ID)

	pending, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.TaskNotifyOrder, pending[0].TaskType)

	// Push to retry with a future retry time: no longer due.
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncRetry, "boom", &future))

	pending, err = db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := db.GetSyncTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, "boom", got.LastError)

	// Complete it.
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncCompleted, "", nil))
	got, err = db.GetSyncTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncCompleted, got.Status)
	assert.NotNil(t, got.ProcessedAt)
}

func TestGetFailedSyncTasks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	task := &models.SyncTask{TaskType: models.TaskSheetSync, Status: models.SyncPending}
	require.NoError(t, db.CreateSyncTask(ctx, task))
	require.NoError(t, db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncFailed, "gave up", nil))

	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "gave up", failed[0].LastError)
}
