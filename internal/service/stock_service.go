package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vantry/internal/database"
	"vantry/internal/domain"
	"vantry/internal/events"
	"vantry/internal/metrics"
	"vantry/internal/models"

	"github.com/rs/zerolog"
)

var ErrDuplicateName = errors.New("item with this name already exists")

// FieldError reports which input field failed validation so the UI can
// point at it.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StockUpdateRow is one row of a bulk stock update.
type StockUpdateRow struct {
	ID        int64 `json:"id"`
	Quantity  int64 `json:"quantity"`
	Threshold int64 `json:"threshold"`
}

// RowError describes why one bulk row was rejected. Other rows are
// unaffected.
type RowError struct {
	ItemID int64  `json:"item_id"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// BulkResult summarizes a bulk update: how many rows landed and which
// were rejected.
type BulkResult struct {
	Applied int        `json:"applied"`
	Errors  []RowError `json:"errors,omitempty"`
}

// AddItemParams carries the add-item form. Threshold nil means "use the
// category default".
type AddItemParams struct {
	Name      string
	Category  string
	Quantity  int64
	Threshold *int64
}

// StockService owns inventory reads, the dashboard aggregation and all
// stock mutations.
type StockService struct {
	repo    domain.Repository
	bus     domain.EventPublisher
	catalog models.Catalog
	logger  *zerolog.Logger
}

func NewStockService(repo domain.Repository, bus domain.EventPublisher, catalog models.Catalog, logger *zerolog.Logger) *StockService {
	return &StockService{repo: repo, bus: bus, catalog: catalog, logger: logger}
}

// ListItems returns all items sorted by category then name.
func (s *StockService) ListItems(ctx context.Context) ([]models.Item, error) {
	return s.repo.ListItems(ctx)
}

// GetItem returns one item by ID.
func (s *StockService) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return s.repo.GetItem(ctx, id)
}

// GetDashboard groups every item by category and tags each with its
// status. Categories follow the catalog order; categories not in the
// catalog come after, in the alphabetical order the store returns.
func (s *StockService) GetDashboard(ctx context.Context) (*models.Dashboard, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for dashboard: %w", err)
	}

	byCategory := make(map[string][]models.StockedItem)
	var extraOrder []string
	known := make(map[string]bool)
	for _, name := range s.catalog.CategoryNames() {
		known[name] = true
	}

	dashboard := &models.Dashboard{}
	for _, item := range items {
		st := item.Status()
		dashboard.Counts.Add(st)
		if _, seen := byCategory[item.Category]; !seen && !known[item.Category] {
			extraOrder = append(extraOrder, item.Category)
		}
		byCategory[item.Category] = append(byCategory[item.Category], models.StockedItem{Item: item, StockStatus: st})
	}

	order := append(s.catalog.CategoryNames(), extraOrder...)
	for _, category := range order {
		group := byCategory[category]
		if len(group) == 0 {
			continue
		}
		cg := models.CategoryGroup{Category: category, Items: group}
		for _, it := range group {
			cg.Counts.Add(it.StockStatus)
		}
		dashboard.Groups = append(dashboard.Groups, cg)
	}

	return dashboard, nil
}

// UpdateStock sets quantity and threshold for one item.
func (s *StockService) UpdateStock(ctx context.Context, id, quantity, threshold int64) error {
	if quantity < 0 {
		metrics.IncUpdateFailure("negative_quantity")
		return &FieldError{Field: "quantity", Message: "must not be negative"}
	}
	if threshold < 0 {
		metrics.IncUpdateFailure("negative_threshold")
		return &FieldError{Field: "threshold", Message: "must not be negative"}
	}

	if err := s.repo.UpdateStock(ctx, id, quantity, threshold); err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			metrics.IncUpdateFailure("not_found")
		}
		return err
	}

	metrics.AddStockUpdates(1)
	s.publish(events.EventStockUpdated, map[string]int64{
		"item_id":   id,
		"quantity":  quantity,
		"threshold": threshold,
	})

	s.logger.Info().Int64("item_id", id).Int64("quantity", quantity).Int64("threshold", threshold).Msg("stock updated")
	return nil
}

// BulkUpdate applies every valid row and reports the rejected ones.
// A rejected row never blocks the others.
func (s *StockService) BulkUpdate(ctx context.Context, rows []StockUpdateRow) (*BulkResult, error) {
	result := &BulkResult{}
	valid := make([]database.StockUpdate, 0, len(rows))

	for _, row := range rows {
		switch {
		case row.Quantity < 0:
			result.Errors = append(result.Errors, RowError{ItemID: row.ID, Field: "quantity", Reason: "must not be negative"})
			metrics.IncUpdateFailure("negative_quantity")
		case row.Threshold < 0:
			result.Errors = append(result.Errors, RowError{ItemID: row.ID, Field: "threshold", Reason: "must not be negative"})
			metrics.IncUpdateFailure("negative_threshold")
		default:
			valid = append(valid, database.StockUpdate{ID: row.ID, Quantity: row.Quantity, Threshold: row.Threshold})
		}
	}

	missing, err := s.repo.ApplyStockUpdates(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to apply stock updates: %w", err)
	}
	for _, id := range missing {
		result.Errors = append(result.Errors, RowError{ItemID: id, Field: "id", Reason: "item not found"})
		metrics.IncUpdateFailure("not_found")
	}

	result.Applied = len(valid) - len(missing)
	if result.Applied > 0 {
		metrics.AddStockUpdates(result.Applied)
		s.publish(events.EventStockUpdated, map[string]int{"applied": result.Applied})
	}

	s.logger.Info().Int("applied", result.Applied).Int("rejected", len(result.Errors)).Msg("bulk stock update")
	return result, nil
}

// AddItem creates a new inventory item. A missing threshold falls back
// to the category default.
func (s *StockService) AddItem(ctx context.Context, params AddItemParams) (*models.Item, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, &FieldError{Field: "name", Message: "is required"}
	}
	category := strings.TrimSpace(params.Category)
	if category == "" {
		return nil, &FieldError{Field: "category", Message: "is required"}
	}
	if params.Quantity < 0 {
		return nil, &FieldError{Field: "quantity", Message: "must not be negative"}
	}

	threshold := s.catalog.DefaultThreshold(category)
	if params.Threshold != nil {
		if *params.Threshold < 0 {
			return nil, &FieldError{Field: "threshold", Message: "must not be negative"}
		}
		threshold = *params.Threshold
	}

	if existing, err := s.repo.GetItemByName(ctx, name); err == nil && existing != nil {
		return nil, ErrDuplicateName
	} else if err != nil && !errors.Is(err, database.ErrItemNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate item: %w", err)
	}

	item := &models.Item{
		Name:      name,
		Category:  category,
		Quantity:  params.Quantity,
		Threshold: threshold,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.publish(events.EventItemAdded, map[string]interface{}{
		"item_id":  item.ID,
		"name":     item.Name,
		"category": item.Category,
	})

	s.logger.Info().Int64("item_id", item.ID).Str("name", item.Name).Str("category", item.Category).Msg("item added")
	return item, nil
}

func (s *StockService) publish(eventType string, payload interface{}) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}
