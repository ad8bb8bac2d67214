package handler

import (
	"net/http"

	"github.com/RidhwanDev/uptime/pkg/adapters/handler"
	"github.com/RidhwanDev/uptime/pkg/adapters/repository/sqlite"
	"github.com/RidhwanDev/uptime/pkg/adapters/tiktok"
	"github.com/RidhwanDev/uptime/pkg/config"
	"github.com/RidhwanDev/uptime/pkg/core/services"
	"github.com/RidhwanDev/uptime/pkg/logging"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, false)

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	videos := tiktok.NewClient(cfg.TikTokAPIBaseURL, nil)
	settings := services.SettingsFromConfig(cfg)
	syncService := services.NewSyncService(repo, videos, settings)
	dashboardService := services.NewDashboardService(repo, videos, syncService, settings)

	mux = handler.NewRouter(cfg, dashboardService, syncService, repo, tiktok.NewOAuth(cfg, nil))
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
