package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RidhwanDev/uptime/pkg/adapters/handler"
	"github.com/RidhwanDev/uptime/pkg/adapters/repository/sqlite"
	"github.com/RidhwanDev/uptime/pkg/adapters/tiktok"
	"github.com/RidhwanDev/uptime/pkg/config"
	"github.com/RidhwanDev/uptime/pkg/core/services"
	"github.com/RidhwanDev/uptime/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogPretty)
	log := logging.WithComponent("server")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer repo.Close()

	// Initialize Services
	videos := tiktok.NewClient(cfg.TikTokAPIBaseURL, nil)
	settings := services.SettingsFromConfig(cfg)
	syncService := services.NewSyncService(repo, videos, settings)
	dashboardService := services.NewDashboardService(repo, videos, syncService, settings)

	// Initialize Router
	mux := handler.NewRouter(cfg, dashboardService, syncService, repo, tiktok.NewOAuth(cfg, nil))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	// Let in-flight background syncs finish writing before the database closes.
	dashboardService.Wait()
}
