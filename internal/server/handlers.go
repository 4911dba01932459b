package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/finsight-app/backend/internal/ledger"
)

const dateLayout = "2006-01-02"

// defaultListMonths bounds an unqualified transaction listing.
const defaultListMonths = 12

func (s *Server) handleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	report, err := s.analytics.GetAnalytics(r.Context(), userID, r.URL.Query().Get("period"))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "analytics report failed", "user_id", userID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to generate analytics report")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

type createTransactionRequest struct {
	Amount   float64     `json:"amount"`
	Kind     ledger.Kind `json:"kind"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "date must be formatted YYYY-MM-DD")
		return
	}

	tx := &ledger.Transaction{
		UserID:   userID,
		Amount:   req.Amount,
		Kind:     req.Kind,
		Category: req.Category,
		Date:     date,
	}
	if err := tx.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.CreateTransaction(r.Context(), tx); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	end := time.Now()
	start := end.AddDate(0, -defaultListMonths, 0)
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "start must be formatted YYYY-MM-DD")
			return
		}
		start = t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "end must be formatted YYYY-MM-DD")
			return
		}
		end = t
	}

	txs, err := s.store.ListTransactions(r.Context(), userID, start, end)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	tx, err := s.store.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	// Never reveal another user's entries, even by ID.
	if tx.UserID != userID {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	tx, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if tx.UserID != userID {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setBudgetRequest struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req setBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Category == "" {
		s.writeError(w, http.StatusBadRequest, "budget category is required")
		return
	}
	if req.Amount <= 0 {
		s.writeError(w, http.StatusBadRequest, "budget amount must be positive")
		return
	}

	budget := &ledger.Budget{
		UserID:   userID,
		Category: req.Category,
		Amount:   req.Amount,
	}
	if err := s.store.SetBudget(r.Context(), budget); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	budgets, err := s.store.ListBudgets(r.Context(), userID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"budgets": budgets})
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	period := time.Now()
	if raw := r.URL.Query().Get("month"); raw != "" {
		t, err := time.Parse("2006-01", raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "month must be formatted YYYY-MM")
			return
		}
		period = t
	}

	statuses, err := s.store.BudgetStatus(r.Context(), userID, period)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"budgets": statuses})
}
