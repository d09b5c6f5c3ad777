package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradedesk/internal/api"
	"tradedesk/internal/app"
	"tradedesk/internal/engine"
	"tradedesk/internal/service"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background Asset Sync (backs the dashboard loading screen)
	go bootstrap.SyncAssets(ctx)

	// 5. Paper Engine: seed the simulated market and fund the account
	desk := engine.NewPaperEngine(bootstrap.EngineConfig())
	defer desk.Close()

	if cfg.Account.StartingBalance.IsPositive() {
		if err := desk.Deposit(cfg.Account.QuoteAsset, cfg.Account.StartingBalance); err != nil {
			slog.Error("❌ Initial deposit failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// 6. Alert Service wired to the tick stream
	alerts := service.NewAlertService()
	desk.Subscribe(alerts.OnTick)

	// 7. API Server with WebSocket tick stream
	server := api.NewServer(desk, alerts)
	desk.Subscribe(server.Hub().BroadcastTicks)
	go server.Hub().Run()

	// Start the simulation loop (single goroutine, owns all mutation)
	go desk.Run(ctx)
	slog.InfoContext(ctx, "✅ Paper engine started", slog.Int("symbols", len(cfg.Market.Symbols)))

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.Handler(cfg.Server.AllowedOrigins),
	}
	go func() {
		slog.Info("✅ API server listening", slog.String("addr", cfg.Server.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("API server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.InfoContext(ctx, "✨ Trade Desk fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", slog.Any("error", err))
	}
}
