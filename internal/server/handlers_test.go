package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"banking-transfers/internal/account"
	"banking-transfers/internal/fraud"
	"banking-transfers/internal/models"
	"banking-transfers/internal/server"
	"banking-transfers/internal/storage/memory"
	"banking-transfers/internal/stream"
	"banking-transfers/internal/transfer"
)

type fixture struct {
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewMemoryLedgerStore()
	hub := stream.NewHub(stream.DefaultBuffer, nil, nil)

	// Hour rules are disabled so results do not depend on the wall clock.
	cfg := fraud.Config{
		HighAmountThreshold: decimal.NewFromInt(5000),
		MaxPerMinute:        1_000_000,
		SuspiciousHourStart: 24,
		SuspiciousHourEnd:   -1,
	}
	scorer := fraud.NewScorer(cfg, store, nil, nil)
	transfers := transfer.NewService(store, scorer, hub, nil, nil, nil)
	accounts := account.NewService(store, nil)

	srv := server.New(server.DefaultConfig(), transfers, accounts, scorer, hub, nil, nil)
	return &fixture{handler: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createAccount(t *testing.T, number string, balance int64) models.Account {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/accounts", map[string]any{
		"account_number": number,
		"owner_name":     "owner " + number,
		"balance":        balance,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to create account %s: %d %s", number, rec.Code, rec.Body)
	}
	var a models.Account
	decode(t, rec, &a)
	return a
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateAccount(t *testing.T) {
	f := newFixture(t)

	a := f.createAccount(t, "ACC-001", 500)
	if a.ID == "" {
		t.Error("expected a generated id")
	}
	if !a.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected balance 500, got %s", a.Balance)
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing fields", body: map[string]any{"balance": 10}},
		{name: "negative balance", body: map[string]any{
			"account_number": "ACC-001", "owner_name": "Alice", "balance": -1,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/accounts", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestCreateAccount_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "ACC-001", 0)

	rec := f.do(t, http.MethodPost, "/api/accounts", map[string]any{
		"account_number": "ACC-001",
		"owner_name":     "someone else",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/accounts/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetAccountByNumber(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ACC-001", 0)

	rec := f.do(t, http.MethodGet, "/api/accounts/number/ACC-001", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got models.Account
	decode(t, rec, &got)
	if got.ID != created.ID {
		t.Errorf("expected %s, got %s", created.ID, got.ID)
	}
}

func TestUpdateAccount(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ACC-001", 100)

	rec := f.do(t, http.MethodPut, "/api/accounts/"+created.ID, map[string]any{
		"account_number": "ACC-002",
		"owner_name":     "renamed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body)
	}
	var got models.Account
	decode(t, rec, &got)
	if got.AccountNumber != "ACC-002" || got.OwnerName != "renamed" {
		t.Errorf("update not applied: %+v", got)
	}
	if !got.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("update must not touch the balance, got %s", got.Balance)
	}
}

func TestBalanceEndpoint(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ACC-001", 750)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/api/accounts/%s/balance", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got struct {
		AccountID string          `json:"account_id"`
		Balance   decimal.Decimal `json:"balance"`
	}
	decode(t, rec, &got)
	if got.AccountID != created.ID || !got.Balance.Equal(decimal.NewFromInt(750)) {
		t.Errorf("unexpected response: %+v", got)
	}
}

func TestTransfer_Approved(t *testing.T) {
	f := newFixture(t)
	from := f.createAccount(t, "ACC-001", 500)
	to := f.createAccount(t, "ACC-002", 0)

	rec := f.do(t, http.MethodPost, "/api/transfers", map[string]any{
		"from_account_id": from.ID,
		"to_account_id":   to.ID,
		"amount":          200,
		"description":     "rent",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body)
	}
	var got models.Transfer
	decode(t, rec, &got)
	if got.Status != models.StatusApproved {
		t.Errorf("expected APPROVED, got %s", got.Status)
	}

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/accounts/%s/balance", from.ID), nil)
	var balance struct {
		Balance decimal.Decimal `json:"balance"`
	}
	decode(t, rec, &balance)
	if !balance.Balance.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected source balance 300, got %s", balance.Balance)
	}
}

func TestTransfer_Errors(t *testing.T) {
	f := newFixture(t)
	from := f.createAccount(t, "ACC-001", 100)
	to := f.createAccount(t, "ACC-002", 0)

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{
			name:     "same account",
			body:     map[string]any{"from_account_id": from.ID, "to_account_id": from.ID, "amount": 10},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "non-positive amount",
			body:     map[string]any{"from_account_id": from.ID, "to_account_id": to.ID, "amount": 0},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing account",
			body:     map[string]any{"from_account_id": "ghost", "to_account_id": to.ID, "amount": 10},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "insufficient funds",
			body:     map[string]any{"from_account_id": from.ID, "to_account_id": to.ID, "amount": 5000},
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/transfers", tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d %s", tt.wantCode, rec.Code, rec.Body)
			}
		})
	}
}

func TestTransfer_InvalidJSON(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transfers", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetTransfer(t *testing.T) {
	f := newFixture(t)
	from := f.createAccount(t, "ACC-001", 500)
	to := f.createAccount(t, "ACC-002", 0)

	rec := f.do(t, http.MethodPost, "/api/transfers", map[string]any{
		"from_account_id": from.ID, "to_account_id": to.ID, "amount": 50,
	})
	var created models.Transfer
	decode(t, rec, &created)

	rec = f.do(t, http.MethodGet, "/api/transfers/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got models.Transfer
	decode(t, rec, &got)
	if got.ID != created.ID {
		t.Errorf("expected %s, got %s", created.ID, got.ID)
	}

	rec = f.do(t, http.MethodGet, "/api/transfers/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown transfer, got %d", rec.Code)
	}
}

func TestAccountHistory(t *testing.T) {
	f := newFixture(t)
	from := f.createAccount(t, "ACC-001", 500)
	to := f.createAccount(t, "ACC-002", 0)

	for i := 0; i < 2; i++ {
		f.do(t, http.MethodPost, "/api/transfers", map[string]any{
			"from_account_id": from.ID, "to_account_id": to.ID, "amount": 10,
		})
	}

	rec := f.do(t, http.MethodGet, "/api/transfers/account/"+to.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []models.Transfer
	decode(t, rec, &got)
	if len(got) != 2 {
		t.Errorf("expected 2 transfers, got %d", len(got))
	}

	rec = f.do(t, http.MethodGet, "/api/transfers/account/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown account, got %d", rec.Code)
	}
}

func TestLatestTransfers(t *testing.T) {
	f := newFixture(t)
	from := f.createAccount(t, "ACC-001", 500)
	to := f.createAccount(t, "ACC-002", 0)

	for i := 0; i < 3; i++ {
		f.do(t, http.MethodPost, "/api/transfers", map[string]any{
			"from_account_id": from.ID, "to_account_id": to.ID, "amount": 10,
		})
	}

	rec := f.do(t, http.MethodGet, "/api/transfers/latest?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []models.Transfer
	decode(t, rec, &got)
	if len(got) != 2 {
		t.Errorf("expected 2 transfers, got %d", len(got))
	}

	rec = f.do(t, http.MethodGet, "/api/transfers/latest?limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad limit, got %d", rec.Code)
	}
}

func TestSuspiciousTransfers(t *testing.T) {
	f := newFixture(t)
	from := f.createAccount(t, "ACC-001", 100_000)
	to := f.createAccount(t, "ACC-002", 0)

	// Above the high-amount threshold: held for review, not settled.
	rec := f.do(t, http.MethodPost, "/api/transfers", map[string]any{
		"from_account_id": from.ID, "to_account_id": to.ID, "amount": 6000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body)
	}
	var held models.Transfer
	decode(t, rec, &held)
	if held.Status != models.StatusPending {
		t.Fatalf("expected PENDING, got %s", held.Status)
	}

	// A normal transfer does not show up as suspicious.
	f.do(t, http.MethodPost, "/api/transfers", map[string]any{
		"from_account_id": from.ID, "to_account_id": to.ID, "amount": 10,
	})

	rec = f.do(t, http.MethodGet, "/api/fraud/suspicious", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []models.Transfer
	decode(t, rec, &got)
	if len(got) != 1 || got[0].ID != held.ID {
		t.Errorf("expected only the held transfer, got %+v", got)
	}
}

func TestListAccounts(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "ACC-002", 0)
	f.createAccount(t, "ACC-001", 0)

	rec := f.do(t, http.MethodGet, "/api/accounts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []models.Account
	decode(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(got))
	}
	if got[0].AccountNumber != "ACC-001" {
		t.Errorf("expected accounts sorted by number, got %s first", got[0].AccountNumber)
	}
}
