package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finsight-app/backend/internal/analytics"
	"github.com/finsight-app/backend/internal/auth"
	"github.com/finsight-app/backend/internal/ledger"
	"github.com/finsight-app/backend/internal/log"
)

func newTestServer(store ledger.Store) *Server {
	logger := log.New(slog.LevelError, "test")
	return New(store, analytics.NewService(store, logger), logger)
}

func authedRequest(method, target string, body []byte, userID string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:      userID,
		Email:    userID + "@test.com",
		Verified: true,
	})
	return req.WithContext(ctx)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(ledger.NewMemoryStore())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	store := ledger.NewMemoryStore()
	srv := newTestServer(store)
	handler := srv.Handler()

	t.Run("create", func(t *testing.T) {
		body := []byte(`{"amount": 42.5, "kind": "expense", "category": "groceries", "date": "2026-07-10"}`)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/transactions", body, "user-1"))

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
		}

		var created ledger.Transaction
		if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if created.ID == "" {
			t.Error("expected an assigned transaction id")
		}
		if created.UserID != "user-1" {
			t.Errorf("user id = %q, want user-1", created.UserID)
		}
	})

	t.Run("create rejects invalid payload", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"negative amount", `{"amount": -5, "kind": "expense", "category": "x", "date": "2026-07-10"}`},
			{"bad kind", `{"amount": 5, "kind": "transfer", "category": "x", "date": "2026-07-10"}`},
			{"bad date", `{"amount": 5, "kind": "expense", "category": "x", "date": "July 10"}`},
			{"not json", `{{`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/transactions", []byte(tt.body), "user-1"))
				if rec.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", rec.Code)
				}
			})
		}
	})

	t.Run("get and delete are user scoped", func(t *testing.T) {
		tx := &ledger.Transaction{
			UserID:   "user-1",
			Amount:   10,
			Kind:     ledger.KindExpense,
			Category: "dining",
			Date:     time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		}
		if err := store.CreateTransaction(context.Background(), tx); err != nil {
			t.Fatalf("seed: %v", err)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/v1/transactions/"+tx.ID, nil, "user-1"))
		if rec.Code != http.StatusOK {
			t.Errorf("owner get status = %d, want 200", rec.Code)
		}

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/v1/transactions/"+tx.ID, nil, "user-2"))
		if rec.Code != http.StatusNotFound {
			t.Errorf("other user get status = %d, want 404", rec.Code)
		}

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodDelete, "/v1/transactions/"+tx.ID, nil, "user-2"))
		if rec.Code != http.StatusNotFound {
			t.Errorf("other user delete status = %d, want 404", rec.Code)
		}

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodDelete, "/v1/transactions/"+tx.ID, nil, "user-1"))
		if rec.Code != http.StatusNoContent {
			t.Errorf("owner delete status = %d, want 204", rec.Code)
		}
	})

	t.Run("list with window", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/v1/transactions?start=2026-07-01&end=2026-07-31", nil, "user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp struct {
			Transactions []ledger.Transaction `json:"transactions"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/transactions", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestBudgetEndpoints(t *testing.T) {
	store := ledger.NewMemoryStore()
	srv := newTestServer(store)
	handler := srv.Handler()

	t.Run("set and list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := []byte(`{"category": "dining", "amount": 200}`)
		handler.ServeHTTP(rec, authedRequest(http.MethodPut, "/v1/budgets", body, "user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("set status = %d, want 200, body %s", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/v1/budgets", nil, "user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("list status = %d, want 200", rec.Code)
		}

		var resp struct {
			Budgets []ledger.Budget `json:"budgets"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Budgets) != 1 || resp.Budgets[0].Category != "dining" {
			t.Errorf("budgets = %+v, want one dining budget", resp.Budgets)
		}
	})

	t.Run("set rejects bad payloads", func(t *testing.T) {
		for _, body := range []string{
			`{"category": "", "amount": 200}`,
			`{"category": "dining", "amount": 0}`,
			`not json`,
		} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, authedRequest(http.MethodPut, "/v1/budgets", []byte(body), "user-1"))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("body %q: status = %d, want 400", body, rec.Code)
			}
		}
	})

	t.Run("status for a month", func(t *testing.T) {
		now := time.Now()
		tx := &ledger.Transaction{
			UserID:   "user-1",
			Amount:   250,
			Kind:     ledger.KindExpense,
			Category: "dining",
			Date:     now,
		}
		if err := store.CreateTransaction(context.Background(), tx); err != nil {
			t.Fatalf("seed: %v", err)
		}

		target := fmt.Sprintf("/v1/budgets/status?month=%s", now.Format("2006-01"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodGet, target, nil, "user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var resp struct {
			Budgets []ledger.BudgetStatus `json:"budgets"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Budgets) != 1 || resp.Budgets[0].Status != ledger.BudgetOver {
			t.Errorf("budget status = %+v, want dining over budget", resp.Budgets)
		}
	})
}

func TestAnalyticsEndpoint(t *testing.T) {
	store := ledger.NewMemoryStore()
	srv := newTestServer(store)
	handler := srv.Handler()

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		tx := &ledger.Transaction{
			UserID:   "user-1",
			Amount:   100 + float64(i),
			Kind:     ledger.KindExpense,
			Category: "groceries",
			Date:     time.Now().AddDate(0, -i, 0),
		}
		if err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/v1/analytics?period=1year", nil, "user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var report analytics.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Period != "1year" {
		t.Errorf("period = %q, want 1year", report.Period)
	}
	if report.UserID != "user-1" {
		t.Errorf("user = %q, want user-1", report.UserID)
	}
	if report.SpendingPatterns == nil {
		t.Error("expected spending patterns section")
	}
}
