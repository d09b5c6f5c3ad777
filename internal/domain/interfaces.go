package domain

import (
	"context"
)

// Desk is the contract the API layer consumes. It abstracts the paper
// engine so handlers can be tested against a fake.
type Desk interface {
	// PlaceOrder submits an order. Market orders are filled before
	// the call returns.
	PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error)

	// CancelOrder cancels a pending order. Returns false for unknown
	// ids and terminal orders.
	CancelOrder(orderID string) bool

	// Order returns an order by id.
	Order(orderID string) (*Order, bool)

	// Orders returns orders matching the filter, newest first.
	Orders(filter OrderFilter) []*Order

	// Trades returns trades matching the filter, newest first.
	Trades(filter TradeFilter) []*Trade

	// MarketData returns the current tick for a symbol.
	MarketData(symbol string) (MarketTick, bool)

	// AllMarketData returns ticks for every tracked symbol, sorted by symbol.
	AllMarketData() []MarketTick

	// Balances returns a snapshot of all account balances.
	Balances() map[string]Balance

	// Close tears down the engine. Background simulation stops;
	// queries remain valid against the frozen state.
	Close() error
}

// TickListener receives the per-tick market snapshot. Listeners run
// outside the engine lock and must not call back into mutating
// engine operations synchronously.
type TickListener func(ticks []MarketTick)
