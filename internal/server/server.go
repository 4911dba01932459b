package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/ledger"
	"github.com/finsight-app/backend/internal/log"
)

// Server exposes the ledger and analytics operations over JSON HTTP.
type Server struct {
	store     ledger.Store
	analytics *analytics.Service
	logger    *log.Logger
}

// New creates a Server around a ledger store and analytics service.
func New(store ledger.Store, analyticsSvc *analytics.Service, logger *log.Logger) *Server {
	return &Server{
		store:     store,
		analytics: analyticsSvc,
		logger:    logger.WithComponent("http"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /v1/analytics", s.handleGetAnalytics)

	mux.HandleFunc("POST /v1/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /v1/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /v1/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /v1/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("PUT /v1/budgets", s.handleSetBudget)
	mux.HandleFunc("GET /v1/budgets", s.handleListBudgets)
	mux.HandleFunc("GET /v1/budgets/status", s.handleBudgetStatus)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userID resolves the authenticated caller; writes a 401 and returns false
// when the request carries no claims.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, "user not authenticated")
		return "", false
	}
	return claims.UID, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store errors onto HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ledger.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.ErrorContext(r.Context(), "store operation failed", "path", r.URL.Path, "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}
