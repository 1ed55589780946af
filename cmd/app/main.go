package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"otc_go/internal/app"
	"otc_go/internal/infra/api"
	"otc_go/internal/infra/ws"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	hub := ws.NewHub()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize("configs/config.yaml", hub.Publish); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// Pprof server (localhost only)
	if cfg.Server.PprofAddr != "" {
		go func() {
			slog.Info("🕵️ Pprof server started", slog.String("addr", cfg.Server.PprofAddr))
			if err := http.ListenAndServe(cfg.Server.PprofAddr, nil); err != nil {
				slog.Error("Pprof server failed", slog.Any("error", err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/", api.NewServer(bootstrap.Market))

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("✅ OTC market serving", slog.String("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.InfoContext(ctx, "✨ OTC market fully operational. Press Ctrl+C to exit.")
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", slog.Any("error", err))
	}
	hub.Close()
}
