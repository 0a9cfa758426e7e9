package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"banking-transfers/internal/fraud"
	"banking-transfers/internal/interfaces"
	"banking-transfers/internal/metrics"
	"banking-transfers/internal/models"
	"banking-transfers/internal/models/events"
	"banking-transfers/internal/stream"
)

// DefaultLatestLimit bounds GetLatest when the caller passes no limit.
const DefaultLatestLimit = 10

// Service orchestrates the transfer pipeline: validation, record creation,
// fraud scoring, settlement, persistence and broadcast, strictly in that
// order. Each call runs independently; there is no global transfer lock.
type Service struct {
	store     interfaces.LedgerStore
	scorer    *fraud.Scorer
	hub       *stream.Hub
	publisher interfaces.EventPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewService wires the orchestrator. publisher and m may be nil.
func NewService(store interfaces.LedgerStore, scorer *fraud.Scorer, hub *stream.Hub,
	publisher interfaces.EventPublisher, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		scorer:    scorer,
		hub:       hub,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Transfer moves amount from one account to another. Validation failures
// surface as errors before any record exists; once the pending record is
// created the call always ends in a persisted terminal transfer, with
// settlement failures absorbed into a Rejected disposition.
func (s *Service) Transfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal, description string) (models.Transfer, error) {
	start := time.Now()
	s.logger.Info("starting transfer",
		zap.String("from", fromAccountID),
		zap.String("to", toAccountID),
		zap.String("amount", amount.String()))

	if fromAccountID == toAccountID {
		return models.Transfer{}, models.ErrSameAccount
	}
	if amount.Cmp(decimal.Zero) <= 0 {
		return models.Transfer{}, models.ErrNonPositiveAmount
	}

	// Source is checked before destination so the error is deterministic
	// when both are missing.
	for _, accountID := range []string{fromAccountID, toAccountID} {
		exists, err := s.store.AccountExists(ctx, accountID)
		if err != nil {
			return models.Transfer{}, err
		}
		if !exists {
			return models.Transfer{}, &models.AccountNotFoundError{ID: accountID}
		}
	}

	// Optimistic funds check. A concurrent drain can still invalidate it;
	// settlement against the store is the authority.
	enough, err := s.store.HasAtLeast(ctx, fromAccountID, amount)
	if err != nil {
		return models.Transfer{}, err
	}
	if !enough {
		return models.Transfer{}, &models.InsufficientFundsError{AccountID: fromAccountID, Amount: amount}
	}

	t := models.Transfer{
		ID:            uuid.New().String(),
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        amount,
		Timestamp:     time.Now(),
		Status:        models.StatusPending,
		Description:   description,
	}
	if err := s.store.SaveTransfer(ctx, t); err != nil {
		return models.Transfer{}, err
	}

	// From here on the transfer runs to a terminal state even if the caller
	// goes away.
	ctx = context.WithoutCancel(ctx)

	s.scorer.Score(ctx, &t)

	switch t.Status {
	case models.StatusApproved:
		s.settle(ctx, &t)
	case models.StatusPending:
		s.logger.Warn("transfer held for manual review", zap.String("transfer_id", t.ID))
	case models.StatusRejected:
		s.logger.Warn("transfer rejected by fraud scoring", zap.String("transfer_id", t.ID))
	}

	if err := s.store.SaveTransfer(ctx, t); err != nil {
		s.logger.Error("failed to persist terminal transfer",
			zap.String("transfer_id", t.ID), zap.Error(err))
		return models.Transfer{}, err
	}

	s.broadcast(ctx, t)

	if s.metrics != nil {
		s.metrics.TransfersTotal.WithLabelValues(string(t.Status)).Inc()
		s.metrics.TransferDuration.Observe(time.Since(start).Seconds())
	}
	s.logger.Info("transfer completed",
		zap.String("transfer_id", t.ID),
		zap.String("status", string(t.Status)))
	return t, nil
}

// settle applies the two balance deltas. The debit goes first; a credit
// failure compensates the already-applied debit so no funds are lost. The
// outcome is recorded on the transfer, never returned as an error.
func (s *Service) settle(ctx context.Context, t *models.Transfer) {
	if err := s.store.ApplyDelta(ctx, t.FromAccountID, t.Amount.Neg()); err != nil {
		s.logger.Error("debit failed", zap.String("transfer_id", t.ID), zap.Error(err))
		t.Status = models.StatusRejected
		t.AppendRationale("balance update failed")
		return
	}

	if err := s.store.ApplyDelta(ctx, t.ToAccountID, t.Amount); err != nil {
		s.logger.Error("credit failed, compensating debit",
			zap.String("transfer_id", t.ID), zap.Error(err))
		if cerr := s.store.ApplyDelta(ctx, t.FromAccountID, t.Amount); cerr != nil {
			// Compensation restores a balance that this call just lowered,
			// so it cannot hit the non-negative guard; any failure here is
			// a store fault that needs operator attention.
			s.logger.Error("compensation failed, source balance inconsistent",
				zap.String("transfer_id", t.ID),
				zap.String("account_id", t.FromAccountID),
				zap.Error(cerr))
		}
		t.Status = models.StatusRejected
		t.AppendRationale("balance update failed")
		return
	}

	t.Status = models.StatusApproved
	s.logger.Info("transfer settled", zap.String("transfer_id", t.ID))
}

// broadcast hands the terminal transfer to the hub and the external
// publisher. Both are fire-and-forget.
func (s *Service) broadcast(ctx context.Context, t models.Transfer) {
	s.hub.Publish(t)

	if s.publisher == nil {
		return
	}
	go func() {
		if err := s.publisher.Publish(ctx, events.FromTransfer(t)); err != nil {
			s.logger.Warn("event publish failed",
				zap.String("transfer_id", t.ID), zap.Error(err))
		}
	}()
}

// GetTransferByID returns a single transfer.
func (s *Service) GetTransferByID(ctx context.Context, transferID string) (models.Transfer, error) {
	return s.store.GetTransfer(ctx, transferID)
}

// GetAccountHistory returns all transfers touching the account, newest
// first. The account must exist.
func (s *Service) GetAccountHistory(ctx context.Context, accountID string) ([]models.Transfer, error) {
	exists, err := s.store.AccountExists(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &models.AccountNotFoundError{ID: accountID}
	}
	return s.store.FindTransfersByAccount(ctx, accountID)
}

// GetLatest returns the most recent transfers, newest first.
func (s *Service) GetLatest(ctx context.Context, limit int) ([]models.Transfer, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	return s.store.FindLatestTransfers(ctx, limit)
}
