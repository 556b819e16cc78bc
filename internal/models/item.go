package models

import "time"

// Status classifies an item's stock level against its threshold.
type Status string

const (
	StatusOutOfStock Status = "out_of_stock"
	StatusLow        Status = "low"
	StatusGood       Status = "good"
)

// Classify maps quantity and threshold to a stock status.
// Zero quantity is always out of stock, even with a zero threshold.
func Classify(quantity, threshold int64) Status {
	switch {
	case quantity == 0:
		return StatusOutOfStock
	case quantity <= threshold:
		return StatusLow
	default:
		return StatusGood
	}
}

// Label returns a human-readable form for templates and messages.
func (s Status) Label() string {
	switch s {
	case StatusOutOfStock:
		return "Needs to buy"
	case StatusLow:
		return "Low stock"
	default:
		return "Good"
	}
}

type Item struct {
	ID            int64     `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name"`
	Category      string    `yaml:"category" json:"category"`
	Quantity      int64     `yaml:"quantity" json:"quantity"`
	Threshold     int64     `yaml:"threshold" json:"threshold"`
	OrderQuantity int64     `yaml:"order_quantity,omitempty" json:"order_quantity,omitempty"`
	Note          string    `yaml:"note,omitempty" json:"note,omitempty"`
	CreatedAt     time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt     time.Time `yaml:"updated_at" json:"updated_at"`
}

// Status returns the classification of the item's current stock level.
func (i Item) Status() Status {
	return Classify(i.Quantity, i.Threshold)
}

// SuggestedOrder returns how many units to buy to get back above the
// threshold. GOOD items suggest zero.
func (i Item) SuggestedOrder() int64 {
	if n := i.Threshold - i.Quantity; n > 0 {
		return n
	}
	return 0
}
