package models

// StockCounts holds per-status totals for a set of items.
type StockCounts struct {
	Total      int `json:"total"`
	OutOfStock int `json:"out_of_stock"`
	Low        int `json:"low"`
	Good       int `json:"good"`
}

// Add counts one item with the given status.
func (c *StockCounts) Add(s Status) {
	c.Total++
	switch s {
	case StatusOutOfStock:
		c.OutOfStock++
	case StatusLow:
		c.Low++
	case StatusGood:
		c.Good++
	}
}

// StockedItem is an item tagged with its computed status.
type StockedItem struct {
	Item
	StockStatus Status `json:"status"`
}

// CategoryGroup is one dashboard section: a category with its items and counts.
type CategoryGroup struct {
	Category string        `json:"category"`
	Items    []StockedItem `json:"items"`
	Counts   StockCounts   `json:"counts"`
}

// Dashboard is the full aggregated view the UI renders.
type Dashboard struct {
	Groups []CategoryGroup `json:"groups"`
	Counts StockCounts     `json:"counts"`
}
