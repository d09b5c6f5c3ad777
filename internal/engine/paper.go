package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"tradedesk/internal/domain"
	"tradedesk/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SymbolSeed is one entry of the seeded symbol table.
type SymbolSeed struct {
	Symbol     string
	BaseAsset  string
	QuoteAsset string
	BasePrice  decimal.Decimal
}

// Config holds the engine's simulation parameters.
type Config struct {
	Symbols      []SymbolSeed
	TickInterval time.Duration
	Volatility   float64 // Max fractional price change per tick, e.g. 0.002
	TakerFeeRate decimal.Decimal
	Window       time.Duration // Rolling stats window, 24h in production
	Exchange     string        // Default venue label for orders
	Seed         int64         // RNG seed; 0 means time-based
}

// marketState pairs the public tick snapshot with its rolling window.
type marketState struct {
	tick   domain.MarketTick
	window *domain.PriceWindow
	base   string
	quote  string
}

// reservation records what PlaceOrder locked for an order, so cancel
// can release and fill can settle exactly that.
type reservation struct {
	asset  string
	amount decimal.Decimal
}

// PaperEngine simulates a market and a matching order pipeline
// sufficient for demo/paper trading, without external connectivity.
//
// All mutation happens under a single RWMutex; the tick loop is a
// single goroutine owned by the engine. A market order's fill is
// linearized inside the placing call, so a query that follows
// PlaceOrder observes the filled state.
type PaperEngine struct {
	mu  sync.RWMutex
	cfg Config
	rng *rand.Rand

	markets      map[string]*marketState
	orders       map[string]*domain.Order
	orderLog     []*domain.Order // Append-only, placement order
	trades       []*domain.Trade // Append-only ledger
	reservations map[string]reservation
	balances     *domain.BalanceBook
	nextOrderID  uint64

	listeners []domain.TickListener

	closed    bool
	quit      chan struct{}
	closeOnce sync.Once
}

// NewPaperEngine seeds the simulated market and returns a ready
// engine. The caller owns the lifecycle: start the tick loop with Run
// and tear down with Close.
func NewPaperEngine(cfg Config) *PaperEngine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &PaperEngine{
		cfg:          cfg,
		rng:          rand.New(rand.NewSource(seed)),
		markets:      make(map[string]*marketState, len(cfg.Symbols)),
		orders:       make(map[string]*domain.Order),
		reservations: make(map[string]reservation),
		balances:     domain.NewBalanceBook(),
		nextOrderID:  1,
		quit:         make(chan struct{}),
	}

	now := time.Now()
	for _, s := range cfg.Symbols {
		e.seedMarket(s, now)
	}

	return e
}

// seedMarket initializes one symbol with its base price and a
// randomized initial envelope. The synthetic high/low are backdated
// samples in the window, so the envelope invariant holds from the
// first tick.
func (e *PaperEngine) seedMarket(s SymbolSeed, now time.Time) {
	w := domain.NewPriceWindow(e.cfg.Window)

	spread := 0.01 + e.rng.Float64()*0.04 // 1-5% initial envelope
	low := s.BasePrice.Mul(decimal.NewFromFloat(1 - spread))
	high := s.BasePrice.Mul(decimal.NewFromFloat(1 + spread))

	w.Push(low, now.Add(-2*time.Hour))
	w.Push(high, now.Add(-time.Hour))
	w.Push(s.BasePrice, now)

	change := decimal.Zero
	if pct := w.ChangePct(); pct != nil {
		change = *pct
	}

	e.markets[s.Symbol] = &marketState{
		tick: domain.MarketTick{
			Symbol:     s.Symbol,
			Price:      s.BasePrice,
			Change24h:  change,
			Volume24h:  s.BasePrice.Mul(decimal.NewFromFloat(1000 + e.rng.Float64()*50000)),
			High24h:    w.High(),
			Low24h:     w.Low(),
			LastUpdate: now,
		},
		window: w,
		base:   s.BaseAsset,
		quote:  s.QuoteAsset,
	}
}

// Subscribe registers a tick listener. Listeners are invoked outside
// the engine lock, after every simulation step. Must be called before
// Run.
func (e *PaperEngine) Subscribe(fn domain.TickListener) {
	e.listeners = append(e.listeners, fn)
}

// Deposit credits funds to the simulated account.
func (e *PaperEngine) Deposit(asset string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &domain.InvalidInputError{Field: "amount", Value: amount.String()}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.ErrEngineClosed
	}
	e.balances.Get(asset).Credit(amount)
	e.balances.VerifyAll()
	return nil
}

// PlaceOrder resolves the execution price, reserves funds, assigns a
// strictly monotonic id, and inserts the order as pending. Market
// orders are filled synchronously before the call returns.
func (e *PaperEngine) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, domain.ErrEngineClosed
	}

	market, ok := e.markets[req.Symbol]
	if !ok {
		return nil, domain.ErrSymbolNotFound
	}

	// Explicit price if given, else the current simulated price.
	price := market.tick.Price
	if req.Price != nil {
		price = *req.Price
	}

	// Market orders execute at the simulated price regardless of any
	// explicit price, and they fill inside this same critical
	// section, so the reservation is taken at the execution price.
	reservePrice := price
	if req.Type == domain.OrderTypeMarket {
		reservePrice = market.tick.Price
	}

	res, err := e.reserve(market, req.Side, reservePrice, req.Amount)
	if err != nil {
		infra.GlobalMetrics.RecordOrderRejected()
		return nil, err
	}

	exchange := req.Exchange
	if exchange == "" {
		exchange = e.cfg.Exchange
	}

	now := time.Now()
	order := &domain.Order{
		ID:        fmt.Sprintf("ord-%d", e.nextOrderID),
		Exchange:  exchange,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Type:      req.Type,
		Price:     price,
		Amount:    req.Amount,
		Filled:    decimal.Zero,
		Status:    domain.OrderStatusPending,
		Timestamp: now,
	}
	e.nextOrderID++

	e.orders[order.ID] = order
	e.orderLog = append(e.orderLog, order)
	e.reservations[order.ID] = res
	infra.GlobalMetrics.RecordOrderPlaced()

	if order.Type == domain.OrderTypeMarket {
		e.fillLocked(order, market.tick.Price, now)
	}

	cp := *order
	return &cp, nil
}

func validateRequest(req domain.OrderRequest) error {
	switch req.Side {
	case domain.SideBuy, domain.SideSell:
	default:
		return &domain.InvalidInputError{Field: "side", Value: req.Side}
	}
	switch req.Type {
	case domain.OrderTypeMarket:
		if req.Price != nil && !req.Price.IsPositive() {
			return &domain.InvalidInputError{Field: "price", Value: req.Price.String()}
		}
	case domain.OrderTypeLimit, domain.OrderTypeStop:
		if req.Price == nil || !req.Price.IsPositive() {
			v := "nil"
			if req.Price != nil {
				v = req.Price.String()
			}
			return &domain.InvalidInputError{Field: "price", Value: v}
		}
	default:
		return &domain.InvalidInputError{Field: "type", Value: req.Type}
	}
	if !req.Amount.IsPositive() {
		return &domain.InvalidInputError{Field: "amount", Value: req.Amount.String()}
	}
	return nil
}

// reserve locks the funds an order needs: quote notional plus taker
// fee for buys, base quantity for sells. Caller holds the write lock.
func (e *PaperEngine) reserve(m *marketState, side string, price, amount decimal.Decimal) (reservation, error) {
	var res reservation
	if side == domain.SideBuy {
		notional := price.Mul(amount)
		res = reservation{
			asset:  m.quote,
			amount: notional.Add(notional.Mul(e.cfg.TakerFeeRate)),
		}
	} else {
		res = reservation{asset: m.base, amount: amount}
	}

	bal := e.balances.Get(res.asset)
	if res.amount.GreaterThan(bal.Available()) {
		return reservation{}, domain.ErrInsufficientBalance
	}
	bal.Reserve(res.amount)
	return res, nil
}

// fillLocked converts a pending order into a trade at execPrice.
// No-op for unknown or terminal orders. Caller holds the write lock.
func (e *PaperEngine) fillLocked(order *domain.Order, execPrice decimal.Decimal, now time.Time) *domain.Trade {
	if order == nil || order.Status != domain.OrderStatusPending {
		return nil
	}

	market := e.markets[order.Symbol]
	fee := execPrice.Mul(order.Amount).Mul(e.cfg.TakerFeeRate)
	notional := execPrice.Mul(order.Amount)

	// Settle: release the reservation, then move the funds.
	res := e.reservations[order.ID]
	delete(e.reservations, order.ID)

	quote := e.balances.Get(market.quote)
	base := e.balances.Get(market.base)

	if order.Side == domain.SideBuy {
		quote.Release(res.amount)
		quote.Debit(notional.Add(fee))
		base.Credit(order.Amount)
	} else {
		base.Release(res.amount)
		base.Debit(order.Amount)
		quote.Credit(notional.Sub(fee))
	}
	e.balances.VerifyAll()

	trade := &domain.Trade{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		Exchange:  order.Exchange,
		Symbol:    order.Symbol,
		Side:      order.Side,
		Price:     execPrice,
		Amount:    order.Amount,
		Fee:       fee,
		Timestamp: now,
	}
	e.trades = append(e.trades, trade)

	order.Price = execPrice
	order.Filled = order.Amount
	order.Status = domain.OrderStatusFilled
	infra.GlobalMetrics.RecordOrderFilled()

	return trade
}

// CancelOrder releases the order's reservation and marks it
// cancelled. Returns false for unknown ids and terminal orders;
// filled orders are terminal and cannot be cancelled.
func (e *PaperEngine) CancelOrder(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, ok := e.orders[orderID]
	if !ok || order.Status != domain.OrderStatusPending {
		return false
	}

	if res, ok := e.reservations[orderID]; ok {
		e.balances.Get(res.asset).Release(res.amount)
		delete(e.reservations, orderID)
	}
	e.balances.VerifyAll()

	order.Status = domain.OrderStatusCancelled
	infra.GlobalMetrics.RecordOrderCancelled()
	return true
}

// Order returns a copy of the order by id.
func (e *PaperEngine) Order(orderID string) (*domain.Order, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	order, ok := e.orders[orderID]
	if !ok {
		return nil, false
	}
	cp := *order
	return &cp, true
}

// Orders returns orders matching the filter, newest first.
func (e *PaperEngine) Orders(filter domain.OrderFilter) []*domain.Order {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]*domain.Order, 0)
	for i := len(e.orderLog) - 1; i >= 0; i-- {
		o := e.orderLog[i]
		if filter.Matches(o) {
			cp := *o
			result = append(result, &cp)
		}
	}
	return result
}

// Trades returns trades matching the filter, newest first.
func (e *PaperEngine) Trades(filter domain.TradeFilter) []*domain.Trade {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]*domain.Trade, 0)
	for i := len(e.trades) - 1; i >= 0; i-- {
		t := e.trades[i]
		if filter.Matches(t) {
			cp := *t
			result = append(result, &cp)
		}
	}
	return result
}

// MarketData returns the current tick for a symbol.
func (e *PaperEngine) MarketData(symbol string) (domain.MarketTick, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m, ok := e.markets[symbol]
	if !ok {
		return domain.MarketTick{}, false
	}
	return m.tick, true
}

// AllMarketData returns every tracked symbol's tick, sorted by symbol
// for consistent ordering.
func (e *PaperEngine) AllMarketData() []domain.MarketTick {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.snapshotLocked()
}

func (e *PaperEngine) snapshotLocked() []domain.MarketTick {
	result := make([]domain.MarketTick, 0, len(e.markets))
	for _, m := range e.markets {
		result = append(result, m.tick)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})
	return result
}

// Balances returns a snapshot of all account balances.
func (e *PaperEngine) Balances() map[string]domain.Balance {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.balances.Snapshot()
}

// Close tears down the engine. The tick loop stops; subsequent
// queries remain valid against the frozen last-known state, mutating
// operations return ErrEngineClosed.
func (e *PaperEngine) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		close(e.quit)
	})
	return nil
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (e *PaperEngine) DumpState(filename string) {
	e.mu.RLock()
	data := struct {
		NextOrderID uint64                    `json:"next_order_id"`
		Markets     []domain.MarketTick       `json:"markets"`
		Orders      []*domain.Order           `json:"orders"`
		Trades      []*domain.Trade           `json:"trades"`
		Balances    map[string]domain.Balance `json:"balances"`
	}{
		NextOrderID: e.nextOrderID,
		Markets:     e.snapshotLocked(),
		Orders:      e.orderLog,
		Trades:      e.trades,
		Balances:    e.balances.Snapshot(),
	}
	b, err := json.MarshalIndent(data, "", "  ")
	e.mu.RUnlock()

	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}

var _ domain.Desk = (*PaperEngine)(nil)
