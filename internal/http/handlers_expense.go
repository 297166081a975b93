package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/records"
)

type analyzeRequest struct {
	Description string `json:"description"`
}

type analyzeResponse struct {
	Success  bool               `json:"success"`
	Analysis map[string]any     `json:"analysis"`
	Data     core.ExpenseRecord `json:"data"`
}

// handleAnalyzeExpense runs AI analysis on a description and stores the
// resulting expense.
func (s *Server) handleAnalyzeExpense(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "expense analysis is not configured")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	description := sanitizeInput(req.Description)
	if description == "" {
		writeError(w, http.StatusBadRequest, "description cannot be empty")
		return
	}

	analysis, err := s.analyzer.AnalyzeExpense(r.Context(), description)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Expense analysis failed",
			log.FieldError, err.Error())
		writeError(w, http.StatusBadGateway, "expense analysis failed")
		return
	}

	record := core.ExpenseRecord{
		Description: description,
		Name:        analysis.Name,
		Amount:      core.AmountFromFloat(analysis.Amount),
		Category:    analysis.Category,
	}

	stored, err := s.svc.CreateExpense(r.Context(), record)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to store analyzed expense",
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to store expense")
		return
	}
	s.dashCache.Delete(dashboardCacheKey)

	writeJSON(w, http.StatusOK, analyzeResponse{
		Success: true,
		Analysis: map[string]any{
			"name":     analysis.Name,
			"amount":   analysis.Amount,
			"category": analysis.Category,
		},
		Data: stored,
	})
}

// handleListExpenses returns stored expenses, newest first. An optional
// limit query parameter caps the result.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	expenses, err := s.svc.ListExpenses(r.Context(), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list expenses",
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []core.ExpenseRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": expenses})
}

type expenseRequest struct {
	Description string      `json:"description"`
	Name        string      `json:"name"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	CreatedAt   string      `json:"created_at"`
}

func (req expenseRequest) toRecord(id string) core.ExpenseRecord {
	return core.ExpenseRecord{
		ID:          id,
		Description: sanitizeInput(req.Description),
		Name:        sanitizeInput(req.Name),
		Amount:      core.Amount(req.Amount.String()),
		Category:    req.Category,
		CreatedAt:   req.CreatedAt,
	}
}

// handleUpdateExpense replaces a stored expense.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record := req.toRecord(id)
	if record.CreatedAt != "" {
		if _, err := core.ParseCreatedAt(record.CreatedAt); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid created_at timestamp")
			return
		}
	}

	err := s.svc.UpdateExpense(r.Context(), record)
	if errors.Is(err, records.ErrNotFound) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to update expense",
			log.FieldExpenseID, id,
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to update expense")
		return
	}
	s.dashCache.Delete(dashboardCacheKey)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": record})
}

// handleDeleteExpense removes a stored expense.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.svc.DeleteExpense(r.Context(), id)
	if errors.Is(err, records.ErrNotFound) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete expense",
			log.FieldExpenseID, id,
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	s.dashCache.Delete(dashboardCacheKey)

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// isValidationError reports whether err came from record validation
// rather than the store.
func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidTimestamp) ||
		errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrUnknownCategory)
}
