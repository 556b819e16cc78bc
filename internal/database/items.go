package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vantry/internal/models"
)

const itemColumns = `id, name, category, quantity, threshold, order_quantity, note, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID, &item.Name, &item.Category, &item.Quantity, &item.Threshold,
		&item.OrderQuantity, &item.Note, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO inventory (name, category, quantity, threshold, order_quantity, note, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := db.ExecContext(ctx, query,
		item.Name,
		item.Category,
		item.Quantity,
		item.Threshold,
		item.OrderQuantity,
		item.Note,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now

	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory WHERE id = ?`
	item, err := scanItem(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func (db *DB) GetItemByName(ctx context.Context, name string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory WHERE name = ?`
	item, err := scanItem(db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by name: %w", err)
	}
	return &item, nil
}

// ListItems returns every item ordered by category then name, which gives
// the dashboard its stable grouping order.
func (db *DB) ListItems(ctx context.Context) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory ORDER BY category, name`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateStock sets quantity and threshold for one item.
func (db *DB) UpdateStock(ctx context.Context, id, quantity, threshold int64) error {
	query := `UPDATE inventory SET quantity = ?, threshold = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, quantity, threshold, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// UpdateOrderFields stores the user-entered order quantity and note.
func (db *DB) UpdateOrderFields(ctx context.Context, id, orderQuantity int64, note string) error {
	query := `UPDATE inventory SET order_quantity = ?, note = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, orderQuantity, note, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update order fields: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// StockUpdate is one row of a bulk update.
type StockUpdate struct {
	ID        int64
	Quantity  int64
	Threshold int64
}

// ApplyStockUpdates applies the given rows in a single transaction.
// Rows referencing unknown ids are skipped and returned; any storage
// error rolls the whole batch back.
func (db *DB) ApplyStockUpdates(ctx context.Context, updates []StockUpdate) (missing []int64, err error) {
	if len(updates) == 0 {
		return nil, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now()
	for _, u := range updates {
		result, execErr := tx.ExecContext(ctx,
			`UPDATE inventory SET quantity = ?, threshold = ?, updated_at = ? WHERE id = ?`,
			u.Quantity, u.Threshold, now, u.ID,
		)
		if execErr != nil {
			err = fmt.Errorf("failed to update item %d: %w", u.ID, execErr)
			return nil, err
		}
		affected, raErr := result.RowsAffected()
		if raErr != nil {
			err = fmt.Errorf("failed to read rows affected: %w", raErr)
			return nil, err
		}
		if affected == 0 {
			missing = append(missing, u.ID)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock updates: %w", err)
	}
	return missing, nil
}

func (db *DB) CountItems(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// SeedCatalog populates an empty inventory from the seed catalog. Items
// start at quantity 0 so the dashboard immediately flags them. Returns the
// number of items inserted; a non-empty store is left untouched.
func (db *DB) SeedCatalog(ctx context.Context, catalog models.Catalog) (int, error) {
	count, err := db.CountItems(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now()
	inserted := 0
	for _, cat := range catalog.Categories {
		threshold := cat.Threshold
		if threshold <= 0 {
			threshold = models.FallbackThreshold
		}
		for _, name := range cat.Items {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO inventory (name, category, quantity, threshold, created_at, updated_at) VALUES (?, ?, 0, ?, ?, ?)`,
				name, cat.Name, threshold, now, now,
			); err != nil {
				err = fmt.Errorf("failed to seed item %q: %w", name, err)
				return 0, err
			}
			inserted++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}

	db.log.Info().Int("items", inserted).Msg("seeded inventory from catalog")
	return inserted, nil
}
