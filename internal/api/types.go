package api

import (
	"github.com/shopspring/decimal"

	"tradedesk/internal/domain"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// cancelResponse reports the outcome of a cancel request.
type cancelResponse struct {
	OrderID   string `json:"order_id"`
	Cancelled bool   `json:"cancelled"`
}

// pnlRequest is the risk-calculator endpoint body. CurrentPrice may
// be omitted when Symbol is set; the live simulated price is used.
type pnlRequest struct {
	Symbol       string           `json:"symbol,omitempty"`
	EntryPrice   decimal.Decimal  `json:"entry_price"`
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty"`
	Amount       decimal.Decimal  `json:"amount"`
	Side         string           `json:"side"`
}

// alertRequest creates a price alert.
type alertRequest struct {
	Symbol      string          `json:"symbol"`
	TargetPrice decimal.Decimal `json:"target"`
	Persistent  bool            `json:"persistent"`
}

// alertView is the serialized form of an alert.
type alertView struct {
	ID          string          `json:"id"`
	Symbol      string          `json:"symbol"`
	TargetPrice decimal.Decimal `json:"target"`
	Direction   string          `json:"direction"`
	Persistent  bool            `json:"persistent"`
	Active      bool            `json:"active"`
}

func newAlertView(a *domain.AlertConfig) alertView {
	return alertView{
		ID:          a.ID,
		Symbol:      a.Symbol,
		TargetPrice: a.TargetPrice,
		Direction:   a.Direction,
		Persistent:  a.IsPersistent,
		Active:      a.IsActive(),
	}
}

// tickMessage is the WebSocket frame broadcast on every simulation tick.
type tickMessage struct {
	Channel string              `json:"channel"`
	Ticks   []domain.MarketTick `json:"ticks"`
}
