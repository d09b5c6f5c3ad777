package engine

import (
	"context"
	"testing"
	"time"

	"tradedesk/internal/domain"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func TestProperty_OrderIDUniqueness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewPaperEngine(testConfig())
		defer e.Close()
		if err := e.Deposit("USDT", decimal.NewFromInt(100_000_000)); err != nil {
			t.Fatalf("Deposit failed: %v", err)
		}

		n := rapid.IntRange(1, 100).Draw(t, "n")
		seen := make(map[string]bool, n)

		for i := 0; i < n; i++ {
			req := domain.OrderRequest{
				Symbol: rapid.SampledFrom([]string{"BTCUSDT", "ETHUSDT"}).Draw(t, "symbol"),
				Side:   domain.SideBuy,
				Type:   domain.OrderTypeMarket,
				Amount: decimal.NewFromFloat(0.01),
			}
			order, err := e.PlaceOrder(context.Background(), req)
			if err != nil {
				t.Fatalf("PlaceOrder failed: %v", err)
			}
			if seen[order.ID] {
				t.Fatalf("Duplicate order id %s", order.ID)
			}
			seen[order.ID] = true
		}
	})
}

func TestProperty_EnvelopeAlwaysBracketsPrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := testConfig()
		cfg.Seed = rapid.Int64Range(1, 1<<40).Draw(t, "seed")
		e := NewPaperEngine(cfg)
		defer e.Close()

		ticks := rapid.IntRange(0, 200).Draw(t, "ticks")
		now := time.Now()
		for i := 0; i < ticks; i++ {
			now = now.Add(time.Second)
			e.Advance(now)
		}

		for _, tick := range e.AllMarketData() {
			if tick.High24h.LessThan(tick.Price) {
				t.Fatalf("%s: high24h %s < price %s after %d ticks", tick.Symbol, tick.High24h, tick.Price, ticks)
			}
			if tick.Low24h.GreaterThan(tick.Price) {
				t.Fatalf("%s: low24h %s > price %s after %d ticks", tick.Symbol, tick.Low24h, tick.Price, ticks)
			}
			if tick.Low24h.GreaterThan(tick.High24h) {
				t.Fatalf("%s: low24h %s > high24h %s", tick.Symbol, tick.Low24h, tick.High24h)
			}
		}
	})
}

func TestProperty_QueryFilterCorrectness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := NewPaperEngine(testConfig())
		defer e.Close()
		if err := e.Deposit("USDT", decimal.NewFromInt(100_000_000)); err != nil {
			t.Fatalf("Deposit failed: %v", err)
		}

		n := rapid.IntRange(1, 50).Draw(t, "n")
		for i := 0; i < n; i++ {
			symbol := rapid.SampledFrom([]string{"BTCUSDT", "ETHUSDT"}).Draw(t, "symbol")
			typ := rapid.SampledFrom([]string{domain.OrderTypeMarket, domain.OrderTypeLimit}).Draw(t, "type")

			req := domain.OrderRequest{
				Symbol: symbol,
				Side:   domain.SideBuy,
				Type:   typ,
				Amount: decimal.NewFromFloat(0.01),
			}
			if typ == domain.OrderTypeLimit {
				// Far below market so it rests pending
				limit := decimal.NewFromInt(1)
				req.Price = &limit
			}
			if _, err := e.PlaceOrder(context.Background(), req); err != nil {
				t.Fatalf("PlaceOrder failed: %v", err)
			}
		}

		filter := domain.OrderFilter{
			Symbol: rapid.SampledFrom([]string{"", "BTCUSDT", "ETHUSDT"}).Draw(t, "filterSymbol"),
			Status: rapid.SampledFrom([]string{"", domain.OrderStatusPending, domain.OrderStatusFilled}).Draw(t, "filterStatus"),
		}
		got := e.Orders(filter)

		// Every returned order matches the filter, newest first.
		for i, o := range got {
			if !filter.Matches(o) {
				t.Fatalf("Order %s does not match filter %+v", o.ID, filter)
			}
			if i > 0 && o.Timestamp.After(got[i-1].Timestamp) {
				t.Fatalf("Orders not in descending timestamp order at index %d", i)
			}
		}

		// Nothing matching was dropped.
		all := e.Orders(domain.OrderFilter{})
		want := 0
		for _, o := range all {
			if filter.Matches(o) {
				want++
			}
		}
		if len(got) != want {
			t.Fatalf("Filter returned %d orders, expected %d", len(got), want)
		}
	})
}

func TestProperty_PnLSign(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entry := decimal.NewFromFloat(rapid.Float64Range(0.01, 100000).Draw(t, "entry"))
		current := decimal.NewFromFloat(rapid.Float64Range(0.01, 100000).Draw(t, "current"))
		amount := decimal.NewFromFloat(rapid.Float64Range(0.0001, 1000).Draw(t, "amount"))

		long, err := domain.ComputePnL(entry, current, amount, domain.SideBuy)
		if err != nil {
			t.Fatalf("ComputePnL(buy) failed: %v", err)
		}
		short, err := domain.ComputePnL(entry, current, amount, domain.SideSell)
		if err != nil {
			t.Fatalf("ComputePnL(sell) failed: %v", err)
		}

		switch {
		case current.GreaterThan(entry):
			if !long.PnL.IsPositive() || !short.PnL.IsNegative() {
				t.Fatalf("Sign mismatch: long %s, short %s for entry %s current %s", long.PnL, short.PnL, entry, current)
			}
		case current.LessThan(entry):
			if !long.PnL.IsNegative() || !short.PnL.IsPositive() {
				t.Fatalf("Sign mismatch: long %s, short %s for entry %s current %s", long.PnL, short.PnL, entry, current)
			}
		default:
			if !long.PnL.IsZero() || !short.PnL.IsZero() {
				t.Fatalf("Expected zero PnL at entry price, got long %s short %s", long.PnL, short.PnL)
			}
		}

		// Long and short mirror each other exactly.
		if !long.PnL.Add(short.PnL).IsZero() {
			t.Fatalf("Long and short PnL must cancel out: %s vs %s", long.PnL, short.PnL)
		}
	})
}
