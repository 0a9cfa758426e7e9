package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"banking-transfers/internal/account"
	"banking-transfers/internal/models"
)

type transferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
}

type accountRequest struct {
	AccountNumber string          `json:"account_number"`
	OwnerName     string          `json:"owner_name"`
	Balance       decimal.Decimal `json:"balance"`
}

type errorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request", "request body is not valid JSON")
		return
	}

	t, err := s.transfers.Transfer(r.Context(), req.FromAccountID, req.ToAccountID, req.Amount, req.Description)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTransfer(w http.ResponseWriter, r *http.Request) {
	t, err := s.transfers.GetTransferByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleAccountHistory(w http.ResponseWriter, r *http.Request) {
	transfers, err := s.transfers.GetAccountHistory(r.Context(), mux.Vars(r)["accountId"])
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transfers)
}

func (s *Server) handleLatestTransfers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request", "limit must be an integer")
			return
		}
		limit = n
	}

	transfers, err := s.transfers.GetLatest(r.Context(), limit)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transfers)
}

// handleStream serves the live transfer feed as server-sent events. The
// subscription is cancelled by the client closing the connection.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported", "response writer cannot flush")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, cancel := s.hub.Subscribe(r.Context())
	defer cancel()
	s.logger.Info("stream client connected")

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("stream client disconnected")
			return
		case t, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(t)
			if err != nil {
				s.logger.Error("failed to encode stream event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) handleSuspicious(w http.ResponseWriter, r *http.Request) {
	transfers, err := s.scorer.SuspiciousTransfers(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transfers)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request", "request body is not valid JSON")
		return
	}
	if req.AccountNumber == "" || req.OwnerName == "" {
		s.writeError(w, http.StatusBadRequest, "invalid request", "account_number and owner_name are required")
		return
	}
	if req.Balance.IsNegative() {
		s.writeError(w, http.StatusBadRequest, "invalid request", "balance must be zero or positive")
		return
	}

	a, err := s.accounts.Create(r.Context(), account.CreateInput{
		AccountNumber:  req.AccountNumber,
		OwnerName:      req.OwnerName,
		InitialBalance: req.Balance,
	})
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.accounts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleGetAccountByNumber(w http.ResponseWriter, r *http.Request) {
	a, err := s.accounts.GetByNumber(r.Context(), mux.Vars(r)["number"])
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request", "request body is not valid JSON")
		return
	}

	a, err := s.accounts.Update(r.Context(), mux.Vars(r)["id"], account.UpdateInput{
		AccountNumber: req.AccountNumber,
		OwnerName:     req.OwnerName,
	})
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["id"]
	balance, err := s.accounts.Balance(r.Context(), accountID)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": accountID,
		"balance":    balance,
	})
}

// mapError translates domain errors to HTTP statuses. Unexpected errors are
// logged with full detail and reported generically.
func (s *Server) mapError(w http.ResponseWriter, err error) {
	var notFoundAccount *models.AccountNotFoundError
	var notFoundTransfer *models.TransferNotFoundError
	var insufficient *models.InsufficientFundsError

	switch {
	case errors.Is(err, models.ErrSameAccount), errors.Is(err, models.ErrNonPositiveAmount):
		s.writeError(w, http.StatusBadRequest, "invalid request", err.Error())
	case errors.As(err, &insufficient):
		s.writeError(w, http.StatusBadRequest, "insufficient funds", err.Error())
	case errors.As(err, &notFoundAccount):
		s.writeError(w, http.StatusNotFound, "account not found", err.Error())
	case errors.As(err, &notFoundTransfer):
		s.writeError(w, http.StatusNotFound, "transfer not found", err.Error())
	case errors.Is(err, models.ErrDuplicateAccount):
		s.writeError(w, http.StatusConflict, "duplicate account", err.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error", "an unexpected error occurred")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     kind,
		Message:   message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
