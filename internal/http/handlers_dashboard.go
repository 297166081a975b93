package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/records"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleDashboard composes the dashboard from all stored expenses.
// Composition never fails: malformed records are skipped and logged, and
// an empty store yields the canonical zero-filled dashboard.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if summary, ok := s.dashCache.Get(dashboardCacheKey); ok {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	expenses, err := s.svc.ListExpenses(r.Context(), 0)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list expenses for dashboard",
			log.FieldError, err.Error())
		writeJSON(w, http.StatusOK, core.EmptySummary(s.now().UTC()))
		return
	}

	summary, report := core.ComposeDetailed(expenses, s.now().UTC())
	for _, skip := range report.Skipped {
		s.logger.WarnContext(r.Context(), "Skipped malformed record in dashboard",
			log.FieldExpenseID, skip.ID,
			"reason", skip.Reason)
	}

	s.dashCache.Set(dashboardCacheKey, summary)
	writeJSON(w, http.StatusOK, summary)
}

type snapshotResponse struct {
	TakenAt   string          `json:"taken_at"`
	Dashboard json.RawMessage `json:"dashboard"`
}

// handleDashboardSnapshot serves the last dashboard the worker persisted.
func (s *Server) handleDashboardSnapshot(w http.ResponseWriter, r *http.Request) {
	takenAt, payload, err := s.snapshots.LatestSnapshot(r.Context())
	if errors.Is(err, records.ErrNoSnapshot) {
		writeError(w, http.StatusNotFound, "no dashboard snapshot available")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load dashboard snapshot",
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		TakenAt:   takenAt.UTC().Format(time.RFC3339),
		Dashboard: json.RawMessage(payload),
	})
}
