package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"banner-earn-client/internal/banner"
	"banner-earn-client/internal/cache"
	cacheredis "banner-earn-client/internal/cache/redis"
	cachesqlite "banner-earn-client/internal/cache/sqlite"
	"banner-earn-client/internal/common/config"
	"banner-earn-client/internal/common/logger"
	gatewayhttp "banner-earn-client/internal/http"
	"banner-earn-client/internal/ledger"
	"banner-earn-client/internal/metrics"
	"banner-earn-client/internal/notify"
	"banner-earn-client/internal/service/wallet"
	"banner-earn-client/internal/tracker"
)

func main() {
	cfg := config.Load()
	logger.Init("banner-earn-client", cfg.Debug)

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("Failed to open session cache")
	}
	sessions := cache.NewSessionCache(store)
	defer sessions.Close()

	ledgerClient := ledger.NewClient(cfg.Ledger.BaseURL, cfg.LedgerTimeout())
	banners := tracker.New()
	catalog := banner.NewCatalog(cfg.Banners.Count)
	alerts := notify.NewCenter(cfg.AlertTTL())
	defer alerts.Close()

	walletSvc := wallet.New(ledgerClient, sessions, banners)
	walletSvc.Subscribe(metrics.ObserveSnapshot)

	logger.Info().
		Str("ledger_url", cfg.Ledger.BaseURL).
		Str("cache_backend", cfg.Cache.Backend).
		Int("banners", cfg.Banners.Count).
		Msg("Gateway initialized")

	// Revalidate any persisted session before serving, like the original
	// client does on page load
	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), cfg.LedgerTimeout())
	result, err := walletSvc.Restore(restoreCtx)
	cancelRestore()
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("Persisted session rejected")
	case result.Session == nil:
		logger.Info().Msg("No persisted session")
	case result.Stale:
		logger.Warn().Str("email", result.Session.Email).Msg("Restored session is stale")
	default:
		logger.Info().Str("email", result.Session.Email).Msg("Session restored")
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := gatewayhttp.NewHandler(walletSvc, catalog, alerts)
	router := gatewayhttp.NewRouter(handler, cfg.Server.Origin, logger.With("http"))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func openStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cacheredis.Connect(context.Background(),
			cfg.Cache.Redis.Host, cfg.Cache.Redis.Port,
			cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
	case "sqlite":
		return cachesqlite.Open(cfg.Cache.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
