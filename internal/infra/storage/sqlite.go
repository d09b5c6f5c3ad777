package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"tradedesk/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists the symbol catalog and user settings. The paper
// engine itself is purely in-memory; nothing here feeds back into the
// order or trade ledgers.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.SymbolInfo{}, &domain.AppConfig{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "TradeDesk", "data", "tradedesk.db"), nil
}

// ======================================================================================
// Symbol Operations
// ======================================================================================

// UpsertSymbol creates or updates symbol metadata
func (s *Storage) UpsertSymbol(sym *domain.SymbolInfo) error {
	return s.db.Save(sym).Error
}

// GetSymbol retrieves symbol metadata
func (s *Storage) GetSymbol(symbol string) (*domain.SymbolInfo, error) {
	var sym domain.SymbolInfo
	err := s.db.First(&sym, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &sym, err
}

// GetAllSymbols retrieves all symbols
func (s *Storage) GetAllSymbols() ([]domain.SymbolInfo, error) {
	var symbols []domain.SymbolInfo
	err := s.db.Find(&symbols).Error
	return symbols, err
}

// ToggleFavorite toggles the favorite status of a symbol
func (s *Storage) ToggleFavorite(symbol string) (bool, error) {
	var sym domain.SymbolInfo
	if err := s.db.First(&sym, "symbol = ?", symbol).Error; err != nil {
		return false, err
	}

	sym.IsFavorite = !sym.IsFavorite
	err := s.db.Save(&sym).Error
	return sym.IsFavorite, err
}

// DeleteSymbol deletes a symbol from the database
func (s *Storage) DeleteSymbol(symbol string) error {
	return s.db.Where("symbol = ?", symbol).Delete(&domain.SymbolInfo{}).Error
}

// ======================================================================================
// Config Operations
// ======================================================================================

// SaveConfig saves a user configuration
func (s *Storage) SaveConfig(key, value string) error {
	config := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&config).Error
}

// LoadConfigMap loads all user configurations as a map
func (s *Storage) LoadConfigMap() (map[string]string, error) {
	var configs []domain.AppConfig
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, cfg := range configs {
		result[cfg.Key] = cfg.Value
	}
	return result, nil
}
