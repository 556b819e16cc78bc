package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vantry/internal/models"
)

// ErrOrderNotFound is returned for lookups that match no purchase order.
var ErrOrderNotFound = errors.New("purchase order not found")

func (db *DB) CreatePurchaseOrder(ctx context.Context, order *models.PurchaseOrder) error {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode order lines: %w", err)
	}

	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO purchase_orders (reference, lines, message, created_at) VALUES (?, ?, ?, ?)`,
		order.Reference, string(lines), order.Message, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create purchase order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	order.ID = id
	order.CreatedAt = now
	return nil
}

func (db *DB) GetPurchaseOrder(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, reference, lines, message, created_at FROM purchase_orders WHERE id = ?`, id)
	return scanPurchaseOrder(row)
}

func (db *DB) GetPurchaseOrderByReference(ctx context.Context, reference string) (*models.PurchaseOrder, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, reference, lines, message, created_at FROM purchase_orders WHERE reference = ?`, reference)
	return scanPurchaseOrder(row)
}

func scanPurchaseOrder(row *sql.Row) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	var lines string
	err := row.Scan(&order.ID, &order.Reference, &lines, &order.Message, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}
	if err := json.Unmarshal([]byte(lines), &order.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode order lines: %w", err)
	}
	return &order, nil
}

// ListRecentOrders returns the newest orders first, up to limit.
func (db *DB) ListRecentOrders(ctx context.Context, limit int) ([]models.PurchaseOrder, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, reference, lines, message, created_at FROM purchase_orders ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []models.PurchaseOrder
	for rows.Next() {
		var order models.PurchaseOrder
		var lines string
		if err := rows.Scan(&order.ID, &order.Reference, &lines, &order.Message, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order: %w", err)
		}
		if err := json.Unmarshal([]byte(lines), &order.Lines); err != nil {
			return nil, fmt.Errorf("failed to decode order lines: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
