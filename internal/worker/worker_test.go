package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"vantry/internal/database"
	"vantry/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendOrder(ctx context.Context, message string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, message)
	return nil
}

type fakeSheets struct {
	rows int
	err  error
}

func (f *fakeSheets) ReplaceInventorySheet(ctx context.Context, items []models.Item) error {
	if f.err != nil {
		return f.err
	}
	f.rows = len(items)
	return nil
}

func setupWorkerDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRetryPolicy(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, BaseDelay: time.Minute, MaxDelay: 10 * time.Minute}

	assert.Equal(t, time.Minute, p.NextDelay(0))
	assert.Equal(t, 2*time.Minute, p.NextDelay(1))
	assert.Equal(t, 4*time.Minute, p.NextDelay(2))
	assert.Equal(t, 10*time.Minute, p.NextDelay(10))

	assert.True(t, p.ShouldRetry(2))
	assert.False(t, p.ShouldRetry(3))
}

func TestNotifyOrderTask(t *testing.T) {
	db := setupWorkerDB(t)
	logger := zerolog.Nop()
	notifier := &fakeNotifier{}
	w := NewDispatchWorker(db, nil, notifier, nil, DefaultRetryPolicy(), &logger)
	ctx := context.Background()

	order := &models.PurchaseOrder{Reference: "PO-1", Lines: []models.OrderLine{{ItemName: "Buns", Quantity: 5}}, Message: "Buns x 5"}
	require.NoError(t, db.CreatePurchaseOrder(ctx, order))
	require.NoError(t, w.EnqueueNotifyOrder(ctx, order))

	require.NoError(t, w.ProcessPending(ctx))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Buns x 5", notifier.sent[0])

	tasks, err := db.GetPendingSyncTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSheetSyncTask(t *testing.T) {
	db := setupWorkerDB(t)
	logger := zerolog.Nop()
	sheets := &fakeSheets{}
	w := NewDispatchWorker(db, nil, nil, sheets, DefaultRetryPolicy(), &logger)
	ctx := context.Background()

	require.NoError(t, db.CreateItem(ctx, &models.Item{Name: "Cola", Category: "Drinks", Quantity: 3, Threshold: 24}))
	require.NoError(t, w.EnqueueSheetSync(ctx))

	require.NoError(t, w.ProcessPending(ctx))
	assert.Equal(t, 1, sheets.rows)
}

func TestFailedTaskSchedulesRetry(t *testing.T) {
	db := setupWorkerDB(t)
	logger := zerolog.Nop()
	notifier := &fakeNotifier{err: errors.New("telegram unreachable")}
	w := NewDispatchWorker(db, nil, notifier, nil, DefaultRetryPolicy(), &logger)
	ctx := context.Background()

	order := &models.PurchaseOrder{Reference: "PO-2", Lines: []models.OrderLine{{ItemName: "Buns", Quantity: 5}}, Message: "Buns x 5"}
	require.NoError(t, db.CreatePurchaseOrder(ctx, order))
	require.NoError(t, w.EnqueueNotifyOrder(ctx, order))
	require.NoError(t, w.ProcessPending(ctx))

	var taskID int64 = 1
	task, err := db.GetSyncTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncRetry, task.Status)
	assert.Equal(t, 1, task.RetryCount)
	require.NotNil(t, task.NextRetryAt)
	assert.True(t, task.NextRetryAt.After(time.Now()))
	assert.Contains(t, task.LastError, "telegram unreachable")

	// Not due yet, so the next pass leaves it alone.
	require.NoError(t, w.ProcessPending(ctx))
	task, err = db.GetSyncTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, 1, task.RetryCount)
}

func TestExhaustedRetriesDeadLetter(t *testing.T) {
	db := setupWorkerDB(t)
	logger := zerolog.Nop()
	notifier := &fakeNotifier{err: errors.New("boom")}
	policy := RetryPolicy{MaxRetries: 1, BaseDelay: 0, MaxDelay: 0}
	w := NewDispatchWorker(db, nil, notifier, nil, policy, &logger)
	ctx := context.Background()

	order := &models.PurchaseOrder{Reference: "PO-3", Lines: []models.OrderLine{{ItemName: "Buns", Quantity: 5}}, Message: "x"}
	require.NoError(t, db.CreatePurchaseOrder(ctx, order))
	require.NoError(t, w.EnqueueNotifyOrder(ctx, order))

	require.NoError(t, w.ProcessPending(ctx)) // attempt 1: retry scheduled
	require.NoError(t, w.ProcessPending(ctx)) // attempt 2: dead letter

	failed, err := db.GetFailedSyncTasks(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, models.TaskNotifyOrder, failed[0].TaskType)
}

func TestDisabledIntegrationsComplete(t *testing.T) {
	db := setupWorkerDB(t)
	logger := zerolog.Nop()
	w := NewDispatchWorker(db, nil, nil, nil, DefaultRetryPolicy(), &logger)
	ctx := context.Background()

	require.NoError(t, w.EnqueueSheetSync(ctx))
	require.NoError(t, w.ProcessPending(ctx))

	task, err := db.GetSyncTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SyncCompleted, task.Status)
}
