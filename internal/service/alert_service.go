package service

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tradedesk/internal/domain"
	"tradedesk/internal/infra"

	"github.com/shopspring/decimal"
)

// Notifier receives fired alert events (UI push, webhook, log).
type Notifier func(domain.AlertEvent)

// AlertService manages price alert configurations and evaluates them
// against every simulation tick. Wire OnTick as an engine tick
// listener.
type AlertService struct {
	mu        sync.RWMutex
	alerts    map[string][]*domain.AlertConfig // symbol -> alerts
	notifiers []Notifier
	nextID    uint64
}

// NewAlertService creates a new AlertService instance
func NewAlertService() *AlertService {
	return &AlertService{
		alerts: make(map[string][]*domain.AlertConfig),
		nextID: 1,
	}
}

// AddNotifier registers a notifier for fired alerts. Must be called
// before the engine starts ticking.
func (s *AlertService) AddNotifier(fn Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifiers = append(s.notifiers, fn)
}

// Add registers a price alert for a symbol and returns it. Direction
// is derived from the current price.
func (s *AlertService) Add(symbol string, targetPrice, currentPrice decimal.Decimal, persistent bool) *domain.AlertConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("alert-%d", s.nextID)
	s.nextID++

	alert := domain.NewAlertConfig(id, symbol, targetPrice, currentPrice, persistent)
	s.alerts[symbol] = append(s.alerts[symbol], alert)
	return alert
}

// Remove deletes an alert by id. Returns false if not found.
func (s *AlertService) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for symbol, list := range s.alerts {
		for i, alert := range list {
			if alert.ID == id {
				s.alerts[symbol] = append(list[:i], list[i+1:]...)
				return true
			}
		}
	}
	return false
}

// List returns all alerts, active and inactive.
func (s *AlertService) List() []*domain.AlertConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AlertConfig, 0)
	for _, list := range s.alerts {
		result = append(result, list...)
	}
	return result
}

// OnTick evaluates alerts against the latest market snapshot and
// dispatches fired ones. Non-persistent alerts deactivate after
// firing; persistent alerts keep firing on every touching tick.
func (s *AlertService) OnTick(ticks []domain.MarketTick) {
	fired := s.collectFired(ticks)
	if len(fired) == 0 {
		return
	}

	s.mu.RLock()
	notifiers := s.notifiers
	s.mu.RUnlock()

	for _, ev := range fired {
		slog.Info("Price alert fired",
			slog.String("alert", ev.Alert.ID),
			slog.String("symbol", ev.Alert.Symbol),
			slog.String("price", ev.Price.String()),
			slog.String("target", ev.Alert.TargetPrice.String()))
		infra.GlobalMetrics.RecordAlertFired()

		for _, fn := range notifiers {
			fn(ev)
		}
	}
}

func (s *AlertService) collectFired(ticks []domain.MarketTick) []domain.AlertEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fired []domain.AlertEvent
	now := time.Now()

	for _, tick := range ticks {
		for _, alert := range s.alerts[tick.Symbol] {
			if !alert.CheckCondition(tick.Price) {
				continue
			}
			if !alert.IsPersistent {
				alert.SetActive(false)
			}
			fired = append(fired, domain.AlertEvent{
				Alert: alert,
				Price: tick.Price,
				At:    now,
			})
		}
	}
	return fired
}
