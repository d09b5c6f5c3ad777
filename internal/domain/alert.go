package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertConfig represents a price alert configuration (the dashboard's
// alert widget backend).
type AlertConfig struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	TargetPrice  decimal.Decimal `json:"target"`
	Direction    string          `json:"direction"` // "UP" or "DOWN"
	IsPersistent bool            `json:"is_persistent"`
	CreatedAt    time.Time       `json:"created_at"`
	active       bool
}

// NewAlertConfig creates a new alert configuration.
// Direction is automatically determined based on currentPrice:
// - UP: targetPrice > currentPrice (waiting for price to rise)
// - DOWN: targetPrice < currentPrice (waiting for price to fall)
func NewAlertConfig(id, symbol string, targetPrice, currentPrice decimal.Decimal, isPersistent bool) *AlertConfig {
	direction := "UP"
	if targetPrice.LessThan(currentPrice) {
		direction = "DOWN"
	}
	return &AlertConfig{
		ID:           id,
		Symbol:       symbol,
		TargetPrice:  targetPrice,
		Direction:    direction,
		IsPersistent: isPersistent,
		CreatedAt:    time.Now(),
		active:       true,
	}
}

// IsActive returns whether the alert is active.
func (a *AlertConfig) IsActive() bool {
	return a.active
}

// SetActive sets the alert's active state.
func (a *AlertConfig) SetActive(active bool) {
	a.active = active
}

// CheckCondition checks if the alert condition is met.
// Returns true when:
// - Direction is UP and currentPrice >= targetPrice
// - Direction is DOWN and currentPrice <= targetPrice
func (a *AlertConfig) CheckCondition(currentPrice decimal.Decimal) bool {
	if !a.active {
		return false
	}
	switch a.Direction {
	case "UP":
		return currentPrice.GreaterThanOrEqual(a.TargetPrice)
	case "DOWN":
		return currentPrice.LessThanOrEqual(a.TargetPrice)
	default:
		return false
	}
}

// AlertEvent is delivered to notifiers when an alert fires.
type AlertEvent struct {
	Alert *AlertConfig    `json:"alert"`
	Price decimal.Decimal `json:"price"`
	At    time.Time       `json:"at"`
}
