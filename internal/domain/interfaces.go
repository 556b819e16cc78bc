package domain

import (
	"context"
	"time"

	"vantry/internal/database"
	"vantry/internal/models"
)

// Repository is the storage surface the services depend on.
type Repository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	GetItemByName(ctx context.Context, name string) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	UpdateStock(ctx context.Context, id, quantity, threshold int64) error
	UpdateOrderFields(ctx context.Context, id, orderQuantity int64, note string) error
	ApplyStockUpdates(ctx context.Context, updates []database.StockUpdate) ([]int64, error)
	CountItems(ctx context.Context) (int, error)
	SeedCatalog(ctx context.Context, catalog models.Catalog) (int, error)

	CreatePurchaseOrder(ctx context.Context, order *models.PurchaseOrder) error
	GetPurchaseOrder(ctx context.Context, id int64) (*models.PurchaseOrder, error)
	ListRecentOrders(ctx context.Context, limit int) ([]models.PurchaseOrder, error)
}

// DraftRepository stores per-session order drafts and rate-limit state.
type DraftRepository interface {
	GetDraft(ctx context.Context, sessionID string) (*models.OrderDraft, error)
	SetDraft(ctx context.Context, draft *models.OrderDraft) error
	ClearDraft(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error)
}

// Notifier delivers a composed purchase order to managers.
type Notifier interface {
	SendOrder(ctx context.Context, message string) error
}

// SheetsWriter mirrors the inventory into an external spreadsheet.
type SheetsWriter interface {
	ReplaceInventorySheet(ctx context.Context, items []models.Item) error
}

// TaskQueue schedules asynchronous delivery work.
type TaskQueue interface {
	EnqueueNotifyOrder(ctx context.Context, order *models.PurchaseOrder) error
	EnqueueSheetSync(ctx context.Context) error
}

// EventPublisher emits in-process domain events.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
