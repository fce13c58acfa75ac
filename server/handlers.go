package server

import (
	"net/http"
	"time"

	"github.com/teranos/mechrelay/ai/tracker"
	"github.com/teranos/mechrelay/logger"
	"github.com/teranos/mechrelay/version"
)

const (
	defaultInteractionLimit = 20
	maxInteractionLimit     = 200
	defaultStatsHours       = 24
	maxStatsHours           = 24 * 365
)

// HandleHealth serves health check endpoint with version info
func (s *RelayServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	info := version.Get()
	cfg := s.prompter.Config()
	state := s.State()

	health := healthResponse{
		Status:         "ok",
		State:          state.String(),
		Version:        info.Version,
		Commit:         info.Short(),
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
		HistoryEnabled: s.history != nil,
		AgentID:        cfg.AgentID,
		Tool:           cfg.Tool,
		Chain:          cfg.ChainConfig,
	}

	status := http.StatusOK
	if state != ServerStateRunning {
		health.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// HandleInteractions lists recent interactions, newest first
func (s *RelayServer) HandleInteractions(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultInteractionLimit, maxInteractionLimit)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	interactions := []tracker.Interaction{}
	if s.history != nil {
		interactions, err = s.history.Recent(r.Context(), limit)
		if err != nil {
			logger.FromContext(r.Context(), s.logger).Errorw("Failed to list interactions", logger.FieldError, err)
			writeError(w, http.StatusInternalServerError, "failed to list interactions")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"history_enabled": s.history != nil,
		"count":           len(interactions),
		"interactions":    interactions,
	})
}

// HandleInteractionStats aggregates interactions over the last N hours
func (s *RelayServer) HandleInteractionStats(w http.ResponseWriter, r *http.Request) {
	hours, err := intQuery(r, "hours", defaultStatsHours, maxStatsHours)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	stats := &tracker.Stats{}
	byTool := []tracker.ToolBreakdown{}
	if s.history != nil {
		since := time.Now().Add(-time.Duration(hours) * time.Hour)
		if stats, err = s.history.Stats(r.Context(), since); err == nil {
			var tools []tracker.ToolBreakdown
			if tools, err = s.history.ByTool(r.Context(), since); err == nil && tools != nil {
				byTool = tools
			}
		}
		if err != nil {
			logger.FromContext(r.Context(), s.logger).Errorw("Failed to compute interaction stats", logger.FieldError, err)
			writeError(w, http.StatusInternalServerError, "failed to compute interaction stats")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"history_enabled": s.history != nil,
		"hours":           hours,
		"stats":           stats,
		"by_tool":         byTool,
	})
}
