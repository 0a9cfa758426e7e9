package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"banking-transfers/internal/interfaces"
	"banking-transfers/internal/models"
)

// Service exposes account CRUD on top of the ledger store. Balances are
// read-only here; only the transfer pipeline moves money.
type Service struct {
	store  interfaces.LedgerStore
	logger *zap.Logger
}

func NewService(store interfaces.LedgerStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// CreateInput carries the caller-supplied account fields.
type CreateInput struct {
	AccountNumber  string
	OwnerName      string
	InitialBalance decimal.Decimal
}

func (s *Service) Create(ctx context.Context, input CreateInput) (models.Account, error) {
	taken, err := s.store.AccountNumberExists(ctx, input.AccountNumber)
	if err != nil {
		return models.Account{}, err
	}
	if taken {
		return models.Account{}, models.ErrDuplicateAccount
	}

	now := time.Now()
	account := models.Account{
		ID:            uuid.New().String(),
		AccountNumber: input.AccountNumber,
		OwnerName:     input.OwnerName,
		Balance:       input.InitialBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return models.Account{}, err
	}

	s.logger.Info("account created",
		zap.String("account_id", account.ID),
		zap.String("account_number", account.AccountNumber))
	return account, nil
}

func (s *Service) Get(ctx context.Context, accountID string) (models.Account, error) {
	return s.store.GetAccount(ctx, accountID)
}

func (s *Service) GetByNumber(ctx context.Context, accountNumber string) (models.Account, error) {
	return s.store.GetAccountByNumber(ctx, accountNumber)
}

func (s *Service) List(ctx context.Context) ([]models.Account, error) {
	return s.store.ListAccounts(ctx)
}

// UpdateInput carries the mutable account fields. Balance is deliberately
// absent: it only moves through transfers.
type UpdateInput struct {
	AccountNumber string
	OwnerName     string
}

func (s *Service) Update(ctx context.Context, accountID string, input UpdateInput) (models.Account, error) {
	existing, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}

	if existing.AccountNumber != input.AccountNumber {
		taken, err := s.store.AccountNumberExists(ctx, input.AccountNumber)
		if err != nil {
			return models.Account{}, err
		}
		if taken {
			return models.Account{}, models.ErrDuplicateAccount
		}
	}

	existing.AccountNumber = input.AccountNumber
	existing.OwnerName = input.OwnerName
	existing.UpdatedAt = time.Now()
	if err := s.store.UpdateAccount(ctx, existing); err != nil {
		return models.Account{}, err
	}

	s.logger.Info("account updated", zap.String("account_id", accountID))
	return s.store.GetAccount(ctx, accountID)
}

func (s *Service) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return s.store.GetBalance(ctx, accountID)
}
