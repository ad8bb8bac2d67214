package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RidhwanDev/uptime/pkg/adapters/tiktok"
	"github.com/RidhwanDev/uptime/pkg/config"
	"github.com/RidhwanDev/uptime/pkg/ports"
)

const authRateLimit = 20 // per minute per IP

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, dashboard ports.DashboardService, sync ports.SyncService, repo ports.StatsRepository, oauth *tiktok.OAuth) http.Handler {
	h := NewHTTPHandler(dashboard, sync)
	mw := NewMiddleware(cfg)
	authHandler := NewAuthHandler(cfg, oauth, repo)

	r := chi.NewRouter()
	r.Use(RequestLogger)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	// Public Routes
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(authRateLimit, time.Minute))
		r.Get("/tiktok/login", authHandler.Login)
		r.Get("/tiktok/callback", authHandler.Callback)
		r.Get("/logout", authHandler.Logout)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.APIRateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.APIRateLimit, time.Minute))
		}
		r.Get("/leaderboard", h.Leaderboard)

		// Protected Routes
		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/insights", h.Insights)
			r.Get("/insights/videos/{id}", h.VideoInsight)
			r.Get("/me/stats", h.MyStats)
			r.Get("/me/rank", h.MyRank)
			r.Get("/me/calendar", h.Calendar)
			r.Get("/me/achievements", h.Achievements)
			r.Put("/me/timezone", h.SetTimezone)
			r.Post("/sync", h.Sync)
		})
	})

	return r
}
