package service

import (
	"testing"

	"tradedesk/internal/domain"

	"github.com/shopspring/decimal"
)

func tickAt(symbol string, price int64) []domain.MarketTick {
	return []domain.MarketTick{{Symbol: symbol, Price: decimal.NewFromInt(price)}}
}

func TestAlertService_FiresOnTouch(t *testing.T) {
	s := NewAlertService()

	var fired []domain.AlertEvent
	s.AddNotifier(func(ev domain.AlertEvent) {
		fired = append(fired, ev)
	})

	alert := s.Add("BTCUSDT", decimal.NewFromInt(50000), decimal.NewFromInt(45000), false)
	if alert.Direction != "UP" {
		t.Fatalf("Expected UP alert, got %s", alert.Direction)
	}

	// Below target: nothing fires
	s.OnTick(tickAt("BTCUSDT", 49000))
	if len(fired) != 0 {
		t.Fatalf("Expected no events below target, got %d", len(fired))
	}

	// Touch fires exactly once
	s.OnTick(tickAt("BTCUSDT", 50500))
	if len(fired) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(fired))
	}
	if fired[0].Alert.ID != alert.ID {
		t.Errorf("Expected alert %s, got %s", alert.ID, fired[0].Alert.ID)
	}
	if !fired[0].Price.Equal(decimal.NewFromInt(50500)) {
		t.Errorf("Expected fire price 50500, got %s", fired[0].Price)
	}
}

func TestAlertService_NonPersistentDeactivates(t *testing.T) {
	s := NewAlertService()

	count := 0
	s.AddNotifier(func(domain.AlertEvent) { count++ })

	s.Add("BTCUSDT", decimal.NewFromInt(50000), decimal.NewFromInt(45000), false)

	s.OnTick(tickAt("BTCUSDT", 51000))
	s.OnTick(tickAt("BTCUSDT", 52000))

	if count != 1 {
		t.Errorf("Non-persistent alert must fire once, fired %d times", count)
	}
}

func TestAlertService_PersistentKeepsFiring(t *testing.T) {
	s := NewAlertService()

	count := 0
	s.AddNotifier(func(domain.AlertEvent) { count++ })

	s.Add("BTCUSDT", decimal.NewFromInt(50000), decimal.NewFromInt(45000), true)

	s.OnTick(tickAt("BTCUSDT", 51000))
	s.OnTick(tickAt("BTCUSDT", 52000))

	if count != 2 {
		t.Errorf("Persistent alert must fire on every touch, fired %d times", count)
	}
}

func TestAlertService_RemoveAndList(t *testing.T) {
	s := NewAlertService()

	a1 := s.Add("BTCUSDT", decimal.NewFromInt(50000), decimal.NewFromInt(45000), false)
	s.Add("ETHUSDT", decimal.NewFromInt(2000), decimal.NewFromInt(2300), false)

	if got := len(s.List()); got != 2 {
		t.Fatalf("Expected 2 alerts, got %d", got)
	}

	if !s.Remove(a1.ID) {
		t.Fatal("Expected remove to succeed")
	}
	if s.Remove(a1.ID) {
		t.Fatal("Second remove must fail")
	}
	if got := len(s.List()); got != 1 {
		t.Fatalf("Expected 1 alert after remove, got %d", got)
	}
}

func TestAlertService_OtherSymbolIgnored(t *testing.T) {
	s := NewAlertService()

	count := 0
	s.AddNotifier(func(domain.AlertEvent) { count++ })

	s.Add("BTCUSDT", decimal.NewFromInt(50000), decimal.NewFromInt(45000), false)
	s.OnTick(tickAt("ETHUSDT", 99999))

	if count != 0 {
		t.Errorf("Alert for another symbol must not fire, fired %d times", count)
	}
}
