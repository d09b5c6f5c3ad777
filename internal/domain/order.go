package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a paper-trading order.
// Identity (ID) is immutable once created; Filled and Status are
// mutated only by the engine's fill/cancel logic.
type Order struct {
	ID        string          `json:"id"`
	Exchange  string          `json:"exchange"` // Venue label, e.g. "paper", "binance"
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"` // "buy", "sell"
	Type      string          `json:"type"` // "market", "limit", "stop"
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Filled    decimal.Decimal `json:"filled"`
	Status    string          `json:"status"` // "pending", "filled", "cancelled", "partial"
	Timestamp time.Time       `json:"timestamp"`
}

const (
	SideBuy  = "buy"
	SideSell = "sell"

	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"
	OrderTypeStop   = "stop"

	OrderStatusPending   = "pending"
	OrderStatusFilled    = "filled"
	OrderStatusCancelled = "cancelled"
	OrderStatusPartial   = "partial"
)

// IsOpen checks if the order is still active.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPartial
}

// OrderRequest carries the caller-supplied fields of a new order.
// Price is nil for market orders; limit and stop orders require it.
type OrderRequest struct {
	Exchange string           `json:"exchange"`
	Symbol   string           `json:"symbol"`
	Side     string           `json:"side"`
	Type     string           `json:"type"`
	Amount   decimal.Decimal  `json:"amount"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// OrderFilter narrows order queries. Empty fields match everything;
// set fields are exact-match AND conditions.
type OrderFilter struct {
	Exchange string
	Symbol   string
	Status   string
}

// Matches reports whether the order satisfies every set filter field.
func (f OrderFilter) Matches(o *Order) bool {
	if f.Exchange != "" && o.Exchange != f.Exchange {
		return false
	}
	if f.Symbol != "" && o.Symbol != f.Symbol {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}
