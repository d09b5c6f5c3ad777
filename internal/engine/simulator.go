package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"tradedesk/internal/domain"
	"tradedesk/internal/infra"

	"github.com/shopspring/decimal"
)

// Run drives the background price simulation at the configured tick
// interval. It never returns while the engine is alive; it stops on
// context cancellation or Close. Run MUST be called in a single
// goroutine; all its mutation funnels through the engine lock.
func (e *PaperEngine) Run(ctx context.Context) {
	slog.Info("Paper engine simulation started",
		slog.Int("symbols", len(e.markets)),
		slog.Duration("interval", e.cfg.TickInterval))

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			e.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Paper engine simulation stopping...")
			return
		case <-e.quit:
			slog.Info("Paper engine closed, simulation stopped")
			return
		case now := <-ticker.C:
			e.Advance(now)
		}
	}
}

// Advance executes one simulation step at the given instant: perturb
// every symbol's price, roll the 24h window, then evaluate pending
// limit/stop triggers against the new prices. Exported so tests and
// replay tooling can drive the simulation deterministically without
// the ticker.
func (e *PaperEngine) Advance(now time.Time) {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		return
	}

	// Deterministic iteration order keeps RNG consumption stable for
	// a given seed.
	symbols := make([]string, 0, len(e.markets))
	for s := range e.markets {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		m := e.markets[symbol]
		e.stepMarket(m, now)
		e.evaluateTriggers(m, now)
	}

	infra.GlobalMetrics.RecordTick()

	snapshot := e.snapshotLocked()
	listeners := e.listeners
	e.mu.Unlock()

	// Listeners run outside the lock so they may freely read the
	// engine back.
	for _, fn := range listeners {
		fn(snapshot)
	}
}

// stepMarket perturbs one symbol's price by a bounded random
// percentage and refreshes the rolling stats.
func (e *PaperEngine) stepMarket(m *marketState, now time.Time) {
	drift := (e.rng.Float64()*2 - 1) * e.cfg.Volatility
	m.tick.Price = m.tick.Price.Mul(decimal.NewFromFloat(1 + drift))

	m.window.Push(m.tick.Price, now)
	m.tick.High24h = m.window.High()
	m.tick.Low24h = m.window.Low()
	if pct := m.window.ChangePct(); pct != nil {
		m.tick.Change24h = *pct
	}

	// Simulated turnover accrues a random notional per tick.
	traded := m.tick.Price.Mul(decimal.NewFromFloat(e.rng.Float64() * 10))
	m.tick.Volume24h = m.tick.Volume24h.Add(traded)

	m.tick.LastUpdate = now
}

// evaluateTriggers fills pending limit/stop orders whose trigger the
// new price touched. Orders touched by the same tick fill in
// placement order (ascending order id); execution is at the stored
// order price.
func (e *PaperEngine) evaluateTriggers(m *marketState, now time.Time) {
	price := m.tick.Price
	for _, order := range e.orderLog {
		if order.Symbol != m.tick.Symbol || order.Status != domain.OrderStatusPending {
			continue
		}
		if triggered(order, price) {
			e.fillLocked(order, order.Price, now)
		}
	}
}

// triggered evaluates the trigger condition for a pending order.
// Limit orders fill on favorable touches (buy at or below the limit,
// sell at or above); stop orders on adverse touches (buy at or above
// the stop, sell at or below).
func triggered(order *domain.Order, price decimal.Decimal) bool {
	switch order.Type {
	case domain.OrderTypeLimit:
		if order.Side == domain.SideBuy {
			return price.LessThanOrEqual(order.Price)
		}
		return price.GreaterThanOrEqual(order.Price)
	case domain.OrderTypeStop:
		if order.Side == domain.SideBuy {
			return price.GreaterThanOrEqual(order.Price)
		}
		return price.LessThanOrEqual(order.Price)
	default:
		return false
	}
}
