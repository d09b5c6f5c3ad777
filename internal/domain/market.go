package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketTick is the per-symbol snapshot the simulator maintains.
// High24h/Low24h/Change24h are computed over a rolling time window,
// not lifetime-of-process extremes.
type MarketTick struct {
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	Change24h  decimal.Decimal `json:"change_24h"` // Percent over the window
	Volume24h  decimal.Decimal `json:"volume_24h"`
	High24h    decimal.Decimal `json:"high_24h"`
	Low24h     decimal.Decimal `json:"low_24h"`
	LastUpdate time.Time       `json:"last_update"`
}

// PricePoint is one timestamped sample in a price window.
type PricePoint struct {
	Price decimal.Decimal
	At    time.Time
}

// PriceWindow keeps the samples of a rolling time window, oldest
// first. Push appends; samples older than the window are trimmed on
// every Push. Not safe for concurrent use; the engine guards it.
type PriceWindow struct {
	span    time.Duration
	samples []PricePoint
}

// NewPriceWindow creates a window covering the given span.
func NewPriceWindow(span time.Duration) *PriceWindow {
	return &PriceWindow{span: span}
}

// Push records a sample and drops everything older than span.
func (w *PriceWindow) Push(price decimal.Decimal, at time.Time) {
	w.samples = append(w.samples, PricePoint{Price: price, At: at})

	cutoff := at.Add(-w.span)
	i := 0
	for i < len(w.samples) && w.samples[i].At.Before(cutoff) {
		i++
	}
	if i > 0 {
		w.samples = w.samples[i:]
	}
}

// Len returns the number of live samples.
func (w *PriceWindow) Len() int {
	return len(w.samples)
}

// High returns the maximum price over the window. Zero if empty.
func (w *PriceWindow) High() decimal.Decimal {
	if len(w.samples) == 0 {
		return decimal.Zero
	}
	high := w.samples[0].Price
	for _, s := range w.samples[1:] {
		if s.Price.GreaterThan(high) {
			high = s.Price
		}
	}
	return high
}

// Low returns the minimum price over the window. Zero if empty.
func (w *PriceWindow) Low() decimal.Decimal {
	if len(w.samples) == 0 {
		return decimal.Zero
	}
	low := w.samples[0].Price
	for _, s := range w.samples[1:] {
		if s.Price.LessThan(low) {
			low = s.Price
		}
	}
	return low
}

// ChangePct returns the percent change from the oldest live sample to
// the newest. Nil when fewer than two samples exist or the oldest
// price is zero.
func (w *PriceWindow) ChangePct() *decimal.Decimal {
	if len(w.samples) < 2 {
		return nil
	}
	oldest := w.samples[0].Price
	if oldest.IsZero() {
		return nil
	}
	newest := w.samples[len(w.samples)-1].Price
	pct := newest.Sub(oldest).Div(oldest).Mul(decimal.NewFromInt(100))
	return &pct
}
