package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"vantry/internal/domain"
	"vantry/internal/events"
	"vantry/internal/metrics"
	"vantry/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNothingToOrder means every item is above its threshold.
var ErrNothingToOrder = errors.New("no items need restocking")

// WorksheetLine is one editable row of the order page: an item that
// needs restocking, its suggested quantity, and any draft override.
type WorksheetLine struct {
	models.StockedItem
	Suggested int64  `json:"suggested"`
	OrderQty  int64  `json:"order_qty"`
	OrderNote string `json:"order_note,omitempty"`
}

// OrderService composes purchase orders from under-threshold items.
type OrderService struct {
	repo   domain.Repository
	drafts *DraftService
	queue  domain.TaskQueue
	bus    domain.EventPublisher
	logger *zerolog.Logger
}

func NewOrderService(repo domain.Repository, drafts *DraftService, queue domain.TaskQueue, bus domain.EventPublisher, logger *zerolog.Logger) *OrderService {
	return &OrderService{repo: repo, drafts: drafts, queue: queue, bus: bus, logger: logger}
}

// Worksheet returns the items that need restocking, with the session's
// draft overrides applied. GOOD items never appear.
func (s *OrderService) Worksheet(ctx context.Context, sessionID string) ([]WorksheetLine, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for order worksheet: %w", err)
	}

	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order draft: %w", err)
	}

	var lines []WorksheetLine
	for _, item := range items {
		st := item.Status()
		if st == models.StatusGood {
			continue
		}
		line := WorksheetLine{
			StockedItem: models.StockedItem{Item: item, StockStatus: st},
			Suggested:   suggestedQuantity(item),
		}
		line.OrderQty = line.Suggested
		if ov, ok := draft.Override(item.ID); ok {
			if ov.Quantity > 0 {
				line.OrderQty = ov.Quantity
			}
			line.OrderNote = ov.Note
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// SaveDraft stores the user's quantity and note overrides for later.
func (s *OrderService) SaveDraft(ctx context.Context, sessionID string, overrides map[int64]models.OrderOverride) error {
	return s.drafts.SetOverrides(ctx, sessionID, overrides)
}

// Compose builds a purchase order from every non-GOOD item, persists
// it, clears the draft, and queues delivery. Submitted overrides win
// over the stored draft.
func (s *OrderService) Compose(ctx context.Context, sessionID string, overrides map[int64]models.OrderOverride) (*models.PurchaseOrder, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for order: %w", err)
	}

	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order draft: %w", err)
	}

	var lines []models.OrderLine
	for _, item := range items {
		if item.Status() == models.StatusGood {
			continue
		}

		qty := suggestedQuantity(item)
		note := ""
		if ov, ok := draft.Override(item.ID); ok {
			if ov.Quantity > 0 {
				qty = ov.Quantity
			}
			note = ov.Note
		}
		if ov, ok := overrides[item.ID]; ok {
			if ov.Quantity > 0 {
				qty = ov.Quantity
			}
			note = ov.Note
		}

		lines = append(lines, models.OrderLine{
			ItemID:   item.ID,
			ItemName: item.Name,
			Category: item.Category,
			Quantity: qty,
			Note:     strings.TrimSpace(note),
		})
	}

	if len(lines) == 0 {
		return nil, ErrNothingToOrder
	}

	order := &models.PurchaseOrder{
		Reference: newReference(),
		Lines:     lines,
		CreatedAt: time.Now(),
	}
	order.Message = FormatOrderMessage(order)

	if err := s.repo.CreatePurchaseOrder(ctx, order); err != nil {
		return nil, err
	}

	// Remember what was ordered per item so the next worksheet prefills
	// with the last real amounts.
	for _, line := range lines {
		if err := s.repo.UpdateOrderFields(ctx, line.ItemID, line.Quantity, line.Note); err != nil {
			s.logger.Warn().Err(err).Int64("item_id", line.ItemID).Msg("failed to record last ordered quantity")
		}
	}

	if err := s.drafts.Clear(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to clear order draft")
	}

	if s.queue != nil {
		if err := s.queue.EnqueueNotifyOrder(ctx, order); err != nil {
			s.logger.Error().Err(err).Str("reference", order.Reference).Msg("failed to queue order notification")
		}
		if err := s.queue.EnqueueSheetSync(ctx); err != nil {
			s.logger.Error().Err(err).Msg("failed to queue sheet sync")
		}
	}

	if s.bus != nil {
		if err := s.bus.PublishJSON(events.EventOrderComposed, map[string]interface{}{
			"order_id":  order.ID,
			"reference": order.Reference,
			"lines":     len(order.Lines),
		}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish order event")
		}
	}

	metrics.IncOrdersComposed()
	s.logger.Info().Str("reference", order.Reference).Int("lines", len(order.Lines)).Msg("purchase order composed")
	return order, nil
}

// GetOrder returns a previously composed order.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*models.PurchaseOrder, error) {
	return s.repo.GetPurchaseOrder(ctx, id)
}

// RecentOrders returns the latest composed orders, newest first.
func (s *OrderService) RecentOrders(ctx context.Context, limit int) ([]models.PurchaseOrder, error) {
	return s.repo.ListRecentOrders(ctx, limit)
}

// suggestedQuantity is threshold minus quantity, with a floor of one so
// an out-of-stock item with a zero threshold still gets ordered.
func suggestedQuantity(item models.Item) int64 {
	if n := item.SuggestedOrder(); n > 0 {
		return n
	}
	return 1
}

func newReference() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("PO-%s-%s", time.Now().Format("20060102"), id[:6])
}

// FormatOrderMessage renders the shareable plain-text shopping list,
// grouped by category in line order.
func FormatOrderMessage(order *models.PurchaseOrder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Purchase order %s\n", order.Reference)
	fmt.Fprintf(&b, "%s\n", order.CreatedAt.Format("Mon, 02 Jan 2006 15:04"))

	lastCategory := ""
	for _, line := range order.Lines {
		if line.Category != lastCategory {
			fmt.Fprintf(&b, "\n%s:\n", line.Category)
			lastCategory = line.Category
		}
		fmt.Fprintf(&b, "- %s x %d", line.ItemName, line.Quantity)
		if line.Note != "" {
			fmt.Fprintf(&b, " (%s)", line.Note)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nItems: %d\n", len(order.Lines))
	return b.String()
}

// ShareLink returns a WhatsApp share URL carrying the order message.
func ShareLink(order *models.PurchaseOrder) string {
	return "https://wa.me/?text=" + url.QueryEscape(order.Message)
}
