package storage

import (
	"path/filepath"
	"testing"
	"time"

	"tradedesk/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Storage {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(&domain.SymbolInfo{}, &domain.AppConfig{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return &Storage{db: db}
}

func TestUpsertAndGetSymbol(t *testing.T) {
	s := setupTestDB(t)

	sym := &domain.SymbolInfo{
		Symbol:     "BTCUSDT",
		Name:       "Bitcoin",
		BaseAsset:  "BTC",
		QuoteAsset: "USDT",
		IsActive:   true,
		UpdatedAt:  time.Now(),
	}

	// 1. Create
	if err := s.UpsertSymbol(sym); err != nil {
		t.Fatalf("UpsertSymbol failed: %v", err)
	}

	// 2. Get
	fetched, err := s.GetSymbol("BTCUSDT")
	if err != nil {
		t.Fatalf("GetSymbol failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("fetched symbol is nil")
	}
	if fetched.BaseAsset != "BTC" {
		t.Errorf("expected base asset BTC, got %s", fetched.BaseAsset)
	}
}

func TestGetSymbol_NotFound(t *testing.T) {
	s := setupTestDB(t)

	fetched, err := s.GetSymbol("NOPE")
	if err != nil {
		t.Fatalf("GetSymbol failed: %v", err)
	}
	if fetched != nil {
		t.Error("expected nil for unknown symbol")
	}
}

func TestUpdateSymbol(t *testing.T) {
	s := setupTestDB(t)
	sym := &domain.SymbolInfo{Symbol: "ETHUSDT", Name: "Before"}
	s.UpsertSymbol(sym)

	// Update
	sym.Name = "After"
	if err := s.UpsertSymbol(sym); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, _ := s.GetSymbol("ETHUSDT")
	if fetched.Name != "After" {
		t.Errorf("expected name 'After', got '%s'", fetched.Name)
	}
}

func TestToggleFavorite(t *testing.T) {
	s := setupTestDB(t)
	s.UpsertSymbol(&domain.SymbolInfo{Symbol: "SOLUSDT"})

	fav, err := s.ToggleFavorite("SOLUSDT")
	if err != nil {
		t.Fatalf("ToggleFavorite failed: %v", err)
	}
	if !fav {
		t.Error("expected favorite after first toggle")
	}

	fav, _ = s.ToggleFavorite("SOLUSDT")
	if fav {
		t.Error("expected not favorite after second toggle")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := setupTestDB(t)

	if err := s.SaveConfig("theme", "dark"); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if err := s.SaveConfig("layout", "grid"); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	m, err := s.LoadConfigMap()
	if err != nil {
		t.Fatalf("LoadConfigMap failed: %v", err)
	}
	if m["theme"] != "dark" || m["layout"] != "grid" {
		t.Errorf("unexpected config map: %v", m)
	}
}
