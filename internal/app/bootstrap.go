package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tradedesk/internal/domain"
	"tradedesk/internal/engine"
	"tradedesk/internal/infra"
	"tradedesk/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Downloader *infra.IconDownloader
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (DB, Dir, etc.)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Trade Desk...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Initialize Icon Downloader
	downloader, err := infra.NewIconDownloader()
	if err != nil {
		return err
	}
	b.Downloader = downloader
	slog.Info("✅ Icon downloader ready")

	return nil
}

// EngineConfig translates the loaded configuration into the paper
// engine's simulation parameters.
func (b *Bootstrap) EngineConfig() engine.Config {
	cfg := b.Config

	seeds := make([]engine.SymbolSeed, 0, len(cfg.Market.Symbols))
	for _, s := range cfg.Market.Symbols {
		seeds = append(seeds, engine.SymbolSeed{
			Symbol:     s.Symbol,
			BaseAsset:  s.BaseAsset,
			QuoteAsset: s.QuoteAsset,
			BasePrice:  s.BasePrice,
		})
	}

	return engine.Config{
		Symbols:      seeds,
		TickInterval: cfg.TickInterval(),
		Volatility:   cfg.Market.Volatility,
		TakerFeeRate: cfg.Market.TakerFeeRate,
		Window:       cfg.Window(),
		Exchange:     cfg.Market.Exchange,
	}
}

// SyncAssets synchronizes the symbol catalog and icons in the background.
// This backs the dashboard's loading screen.
func (b *Bootstrap) SyncAssets(ctx context.Context) {
	slog.Info("🔄 Starting asset synchronization...")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, sc := range b.Config.Market.Symbols {
		wg.Add(1)
		go func(sc infra.SymbolConfig) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			name := sc.Name
			if name == "" {
				name = sc.Symbol
			}

			// 1. Upsert to DB
			sym := &domain.SymbolInfo{
				Symbol:       sc.Symbol,
				Name:         name,
				BaseAsset:    sc.BaseAsset,
				QuoteAsset:   sc.QuoteAsset,
				IsActive:     true,
				UpdatedAt:    time.Now(),
				LastSyncedAt: time.Time{}, // Force sync if needed
			}

			// Check if exists to preserve IsFavorite
			if existing, _ := b.Storage.GetSymbol(sc.Symbol); existing != nil {
				sym.IsFavorite = existing.IsFavorite
				sym.IconPath = existing.IconPath
				sym.LastSyncedAt = existing.LastSyncedAt
			}

			if err := b.Storage.UpsertSymbol(sym); err != nil {
				slog.Error("Failed to upsert symbol", slog.String("symbol", sc.Symbol), slog.Any("error", err))
			}

			// 2. Download Icon (if missing)
			path, err := b.Downloader.DownloadIcon(sc.BaseAsset)
			if err != nil {
				slog.Warn("Failed to download icon", slog.String("asset", sc.BaseAsset), slog.Any("error", err))
			} else if path != "" {
				// Update path in DB
				sym.IconPath = path
				sym.LastSyncedAt = time.Now()
				b.Storage.UpsertSymbol(sym)
			}
		}(sc)
	}

	wg.Wait()
	slog.Info("✨ Asset synchronization completed")
}
