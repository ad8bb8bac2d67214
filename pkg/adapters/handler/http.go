package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/RidhwanDev/uptime/pkg/core/domain"
	"github.com/RidhwanDev/uptime/pkg/logging"
	"github.com/RidhwanDev/uptime/pkg/ports"
)

const defaultCalendarDays = 30

type HTTPHandler struct {
	dashboard ports.DashboardService
	sync      ports.SyncService
	validate  *validator.Validate
}

func NewHTTPHandler(dashboard ports.DashboardService, sync ports.SyncService) *HTTPHandler {
	return &HTTPHandler{dashboard: dashboard, sync: sync, validate: validator.New()}
}

// SetTimezoneRequest payload
type SetTimezoneRequest struct {
	Timezone string `json:"timezone" validate:"required,timezone"`
}

type leaderboardQuery struct {
	Sort  string `validate:"omitempty,oneof=streak uptime"`
	Limit int    `validate:"min=0,max=100"`
}

type calendarQuery struct {
	Days int `validate:"min=1,max=365"`
}

// VideoInsightResponse pairs a video with its generated insight.
type VideoInsightResponse struct {
	Video   *domain.EnrichedPost `json:"video"`
	Insight *domain.PostInsight  `json:"insight"`
}

type CalendarResponse struct {
	Days  int                `json:"days"`
	Dates domain.PostDateSet `json:"dates"`
}

func (h *HTTPHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.dashboard.Dashboard(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (h *HTTPHandler) Insights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.dashboard.Insights(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (h *HTTPHandler) VideoInsight(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video id missing")
		return
	}
	video, insight, err := h.dashboard.PostInsight(r.Context(), UserIDFromContext(r.Context()), videoID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VideoInsightResponse{Video: video, Insight: insight})
}

func (h *HTTPHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sync.UserStats(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) MyRank(w http.ResponseWriter, r *http.Request) {
	rank, err := h.sync.UserRank(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rank)
}

func (h *HTTPHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	q := calendarQuery{Days: defaultCalendarDays}
	if v := r.URL.Query().Get("days"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days must be a number")
			return
		}
		q.Days = days
	}
	if err := h.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}

	dates, err := h.sync.DailyPosts(r.Context(), UserIDFromContext(r.Context()), q.Days)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CalendarResponse{Days: q.Days, Dates: dates})
}

func (h *HTTPHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.sync.Achievements(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, achievements)
}

func (h *HTTPHandler) SetTimezone(w http.ResponseWriter, r *http.Request) {
	var req SetTimezoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "timezone must be an IANA name like Europe/London")
		return
	}

	if err := h.dashboard.SetTimezone(r.Context(), UserIDFromContext(r.Context()), req.Timezone); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *HTTPHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboard.SyncNow(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Leaderboard is public.
func (h *HTTPHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	q := leaderboardQuery{Sort: r.URL.Query().Get("sort")}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		q.Limit = limit
	}
	if err := h.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "sort must be streak or uptime and limit at most 100")
		return
	}

	entries, err := h.sync.Leaderboard(r.Context(), domain.LeaderboardSort(q.Sort), q.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// fail maps service errors onto HTTP statuses.
func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrVideoNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoToken):
		writeError(w, http.StatusUnauthorized, "please log in with TikTok again")
	case errors.Is(err, domain.ErrInvalidTimezone):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSyncFailed):
		logging.Ctx(r.Context()).Error().Err(err).Msg("sync failed")
		writeError(w, http.StatusBadGateway, "sync failed")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
