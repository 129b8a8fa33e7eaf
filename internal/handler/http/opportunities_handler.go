package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
	"github.com/cypherlabdev/arb-scanner-service/internal/service"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

// OpportunityHandler handles HTTP requests for alerted opportunities
type OpportunityHandler struct {
	service service.OpportunityQuery
	now     func() time.Time
	logger  zerolog.Logger
}

// NewOpportunityHandler creates a new opportunity HTTP handler
func NewOpportunityHandler(service service.OpportunityQuery, logger zerolog.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		service: service,
		now:     time.Now,
		logger:  logger.With().Str("component", "opportunity_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *OpportunityHandler) RegisterRoutes(mux *http.ServeMux) {
	// GET /api/v1/opportunities?limit=N - Most recent alerts, newest first
	mux.HandleFunc("/api/v1/opportunities", h.handleListOpportunities)

	// GET /api/v1/events/:event_id/opportunities - Alerts for one event
	mux.HandleFunc("/api/v1/events/", h.handleEventOpportunities)

	// GET /api/v1/stats - Session counters
	mux.HandleFunc("/api/v1/stats", h.handleStats)
}

// handleListOpportunities handles GET /api/v1/opportunities
func (h *OpportunityHandler) handleListOpportunities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	opps, err := h.service.RecentOpportunities(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Int("limit", limit).Msg("failed to retrieve opportunities")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve opportunities")
		return
	}
	if opps == nil {
		opps = []*models.Opportunity{}
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"count":         len(opps),
		"opportunities": opps,
	})
}

// handleEventOpportunities handles GET /api/v1/events/:event_id/opportunities
func (h *OpportunityHandler) handleEventOpportunities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Parse path: /api/v1/events/:event_id/opportunities
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/events/")
	eventID, ok := strings.CutSuffix(path, "/opportunities")
	if !ok {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/events/:event_id/opportunities")
		return
	}

	if eventID == "" {
		h.errorResponse(w, http.StatusBadRequest, "event_id is required")
		return
	}

	opps, err := h.service.OpportunitiesByEvent(r.Context(), eventID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("event_id", eventID).
			Msg("failed to retrieve event opportunities")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve opportunities")
		return
	}
	if opps == nil {
		opps = []*models.Opportunity{}
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"event_id":      eventID,
		"count":         len(opps),
		"opportunities": opps,
	})
}

// handleStats handles GET /api/v1/stats
func (h *OpportunityHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.jsonResponse(w, http.StatusOK, ToStatsResponse(h.service.Stats(), h.now()))
}

// jsonResponse writes a JSON response
func (h *OpportunityHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *OpportunityHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}

// StatsResponse represents the API response for session stats
type StatsResponse struct {
	Status             string `json:"status"`
	Scans              int    `json:"scans"`
	FeedCalls          int    `json:"feed_calls"`
	OpportunitiesFound int    `json:"opportunities_found"`
	AlertsFailed       int    `json:"alerts_failed"`
	BestProfitPercent  string `json:"best_profit_percent"`
	StartedAt          string `json:"started_at"`
	UptimeSeconds      int64  `json:"uptime_seconds"`
}

// ToStatsResponse converts SessionStats to API response format
func ToStatsResponse(stats models.SessionStats, now time.Time) *StatsResponse {
	status := "active"
	if stats.Paused {
		status = "paused"
	}

	return &StatsResponse{
		Status:             status,
		Scans:              stats.Scans,
		FeedCalls:          stats.FeedCalls,
		OpportunitiesFound: stats.OpportunitiesFound,
		AlertsFailed:       stats.AlertsFailed,
		BestProfitPercent:  stats.BestProfitPercent.StringFixed(2),
		StartedAt:          stats.StartedAt.Format(time.RFC3339),
		UptimeSeconds:      int64(now.Sub(stats.StartedAt).Seconds()),
	}
}
