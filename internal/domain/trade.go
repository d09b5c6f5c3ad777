package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the immutable record of a fill. Exactly one Trade is
// created per filled order (full-fill semantics) and appended to the
// engine's trade ledger; it is never mutated afterwards.
type Trade struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Exchange  string          `json:"exchange"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Fee       decimal.Decimal `json:"fee"` // Quote currency
	Timestamp time.Time       `json:"timestamp"`
}

// TradeFilter narrows trade queries, same semantics as OrderFilter.
type TradeFilter struct {
	Exchange string
	Symbol   string
}

// Matches reports whether the trade satisfies every set filter field.
func (f TradeFilter) Matches(t *Trade) bool {
	if f.Exchange != "" && t.Exchange != f.Exchange {
		return false
	}
	if f.Symbol != "" && t.Symbol != f.Symbol {
		return false
	}
	return true
}
