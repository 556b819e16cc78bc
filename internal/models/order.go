package models

import "time"

// OrderLine is a single suggested purchase entry for an under-threshold item.
type OrderLine struct {
	ItemID   int64  `json:"item_id"`
	ItemName string `json:"item_name"`
	Category string `json:"category"`
	Quantity int64  `json:"quantity"`
	Note     string `json:"note,omitempty"`
}

// OrderOverride carries user-entered adjustments for one order line.
type OrderOverride struct {
	Quantity int64  `json:"quantity,omitempty"`
	Note     string `json:"note,omitempty"`
}

// PurchaseOrder is a composed, shareable shopping list.
type PurchaseOrder struct {
	ID        int64       `json:"id"`
	Reference string      `json:"reference"`
	Lines     []OrderLine `json:"lines"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrderDraft holds per-session override state while the user fills in the
// order worksheet, before the order is composed.
type OrderDraft struct {
	SessionID string                  `json:"session_id"`
	Overrides map[int64]OrderOverride `json:"overrides"`
}

// Override returns the stored override for an item, if any.
func (d *OrderDraft) Override(itemID int64) (OrderOverride, bool) {
	if d == nil || d.Overrides == nil {
		return OrderOverride{}, false
	}
	ov, ok := d.Overrides[itemID]
	return ov, ok
}
