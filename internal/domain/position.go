package domain

import (
	"github.com/shopspring/decimal"
)

// PnL is the result of a profit-and-loss computation.
type PnL struct {
	PnL        decimal.Decimal `json:"pnl"`
	PnLPercent decimal.Decimal `json:"pnl_percent"`
}

// ComputePnL computes unrealized profit-and-loss for a position.
// For side=buy (long): pnl = (current - entry) * amount.
// For side=sell (short): pnl = (entry - current) * amount.
// PnLPercent = pnl / (entry * amount) * 100.
//
// Pure function. A zero or negative entry price, non-positive amount,
// or unknown side returns an InvalidInputError instead of producing
// Inf/NaN output.
func ComputePnL(entryPrice, currentPrice, amount decimal.Decimal, side string) (PnL, error) {
	if !entryPrice.IsPositive() {
		return PnL{}, &InvalidInputError{Field: "entryPrice", Value: entryPrice.String()}
	}
	if !amount.IsPositive() {
		return PnL{}, &InvalidInputError{Field: "amount", Value: amount.String()}
	}

	var pnl decimal.Decimal
	switch side {
	case SideBuy:
		pnl = currentPrice.Sub(entryPrice).Mul(amount)
	case SideSell:
		pnl = entryPrice.Sub(currentPrice).Mul(amount)
	default:
		return PnL{}, &InvalidInputError{Field: "side", Value: side}
	}

	notional := entryPrice.Mul(amount)
	pct := pnl.Div(notional).Mul(decimal.NewFromInt(100))

	return PnL{PnL: pnl, PnLPercent: pct}, nil
}

// Position is a derived view combining an order's fill with a live
// price. It is recomputed on demand, never persisted.
type Position struct {
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Amount     decimal.Decimal `json:"amount"`
}

// Unrealized computes the position's PnL against the given price.
func (p *Position) Unrealized(currentPrice decimal.Decimal) (PnL, error) {
	return ComputePnL(p.EntryPrice, currentPrice, p.Amount, p.Side)
}
