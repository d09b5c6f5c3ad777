package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Balance represents a per-asset account balance with invariant
// checking. Reserved tracks funds locked for open orders; the
// reserve-on-place / release-on-cancel / settle-on-fill transitions
// are driven by the engine.
type Balance struct {
	Asset    string          `json:"asset"`
	Amount   decimal.Decimal `json:"amount"`   // Total balance
	Reserved decimal.Decimal `json:"reserved"` // Locked for open orders
}

// Available returns the spendable balance (total - reserved).
func (b *Balance) Available() decimal.Decimal {
	return b.Amount.Sub(b.Reserved)
}

// Credit adds funds to the balance.
func (b *Balance) Credit(amount decimal.Decimal) {
	b.Amount = b.Amount.Add(amount)
}

// Debit removes funds. Panics if the balance cannot cover it; callers
// must check Available first, a failed debit is state corruption.
func (b *Balance) Debit(amount decimal.Decimal) {
	if amount.GreaterThan(b.Amount) {
		panic(fmt.Sprintf("BALANCE_INSUFFICIENT: %s need %s, have %s",
			b.Asset, amount, b.Amount))
	}
	b.Amount = b.Amount.Sub(amount)
}

// Reserve locks funds for an order. Panics if unavailable.
func (b *Balance) Reserve(amount decimal.Decimal) {
	if amount.GreaterThan(b.Available()) {
		panic(fmt.Sprintf("BALANCE_RESERVE_INSUFFICIENT: %s need %s, available %s",
			b.Asset, amount, b.Available()))
	}
	b.Reserved = b.Reserved.Add(amount)
}

// Release unlocks reserved funds. Panics if it exceeds the reservation.
func (b *Balance) Release(amount decimal.Decimal) {
	if amount.GreaterThan(b.Reserved) {
		panic(fmt.Sprintf("BALANCE_RELEASE_EXCEEDS_RESERVED: %s release %s, reserved %s",
			b.Asset, amount, b.Reserved))
	}
	b.Reserved = b.Reserved.Sub(amount)
}

// VerifyInvariant checks that the balance satisfies its invariants.
// Call after any state change to ensure data integrity.
func (b *Balance) VerifyInvariant() {
	if b.Amount.IsNegative() {
		panic(fmt.Sprintf("BALANCE_INVARIANT_NEGATIVE_AMOUNT: %s = %s",
			b.Asset, b.Amount))
	}
	if b.Reserved.IsNegative() {
		panic(fmt.Sprintf("BALANCE_INVARIANT_NEGATIVE_RESERVED: %s = %s",
			b.Asset, b.Reserved))
	}
	if b.Reserved.GreaterThan(b.Amount) {
		panic(fmt.Sprintf("BALANCE_INVARIANT_RESERVED_EXCEEDS_AMOUNT: %s reserved=%s, amount=%s",
			b.Asset, b.Reserved, b.Amount))
	}
}

// BalanceBook manages multiple balances with invariant checking.
type BalanceBook struct {
	balances map[string]*Balance
}

// NewBalanceBook creates a new balance book.
func NewBalanceBook() *BalanceBook {
	return &BalanceBook{
		balances: make(map[string]*Balance),
	}
}

// Get returns the balance for an asset, creating it if not exists.
func (bb *BalanceBook) Get(asset string) *Balance {
	b, ok := bb.balances[asset]
	if !ok {
		b = &Balance{Asset: asset}
		bb.balances[asset] = b
	}
	return b
}

// VerifyAll checks invariants on all balances.
func (bb *BalanceBook) VerifyAll() {
	for _, b := range bb.balances {
		b.VerifyInvariant()
	}
}

// Snapshot returns a copy of all balances (for state dump and API reads).
func (bb *BalanceBook) Snapshot() map[string]Balance {
	result := make(map[string]Balance, len(bb.balances))
	for k, v := range bb.balances {
		result[k] = *v
	}
	return result
}

// TotalEquity computes the portfolio value in the quote currency.
// prices maps asset -> current quote price; the quote asset itself
// values at 1. Assets without a price are skipped (conservative).
func (bb *BalanceBook) TotalEquity(quoteAsset string, prices map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for asset, balance := range bb.balances {
		if asset == quoteAsset {
			total = total.Add(balance.Amount)
			continue
		}
		price, ok := prices[asset]
		if !ok {
			continue
		}
		total = total.Add(balance.Amount.Mul(price))
	}
	return total
}
