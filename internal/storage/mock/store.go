// Package mock provides a LedgerStore test double with injectable function
// fields. Unset fields fall through to an embedded in-memory store, so a
// test only overrides the calls it cares about.
package mock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"banking-transfers/internal/interfaces"
	"banking-transfers/internal/models"
	"banking-transfers/internal/storage/memory"
)

type MockLedgerStore struct {
	Fallback *memory.MemoryLedgerStore

	AccountExistsFunc        func(ctx context.Context, accountID string) (bool, error)
	HasAtLeastFunc           func(ctx context.Context, accountID string, amount decimal.Decimal) (bool, error)
	ApplyDeltaFunc           func(ctx context.Context, accountID string, delta decimal.Decimal) error
	SaveTransferFunc         func(ctx context.Context, transfer models.Transfer) error
	CountOriginatedSinceFunc func(ctx context.Context, accountID string, since time.Time) (int, error)
}

func NewMockLedgerStore() *MockLedgerStore {
	return &MockLedgerStore{Fallback: memory.NewMemoryLedgerStore()}
}

func (m *MockLedgerStore) CreateAccount(ctx context.Context, account models.Account) error {
	return m.Fallback.CreateAccount(ctx, account)
}

func (m *MockLedgerStore) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	return m.Fallback.GetAccount(ctx, accountID)
}

func (m *MockLedgerStore) GetAccountByNumber(ctx context.Context, accountNumber string) (models.Account, error) {
	return m.Fallback.GetAccountByNumber(ctx, accountNumber)
}

func (m *MockLedgerStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return m.Fallback.ListAccounts(ctx)
}

func (m *MockLedgerStore) UpdateAccount(ctx context.Context, account models.Account) error {
	return m.Fallback.UpdateAccount(ctx, account)
}

func (m *MockLedgerStore) AccountExists(ctx context.Context, accountID string) (bool, error) {
	if m.AccountExistsFunc != nil {
		return m.AccountExistsFunc(ctx, accountID)
	}
	return m.Fallback.AccountExists(ctx, accountID)
}

func (m *MockLedgerStore) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	return m.Fallback.AccountNumberExists(ctx, accountNumber)
}

func (m *MockLedgerStore) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return m.Fallback.GetBalance(ctx, accountID)
}

func (m *MockLedgerStore) HasAtLeast(ctx context.Context, accountID string, amount decimal.Decimal) (bool, error) {
	if m.HasAtLeastFunc != nil {
		return m.HasAtLeastFunc(ctx, accountID, amount)
	}
	return m.Fallback.HasAtLeast(ctx, accountID, amount)
}

func (m *MockLedgerStore) ApplyDelta(ctx context.Context, accountID string, delta decimal.Decimal) error {
	if m.ApplyDeltaFunc != nil {
		return m.ApplyDeltaFunc(ctx, accountID, delta)
	}
	return m.Fallback.ApplyDelta(ctx, accountID, delta)
}

func (m *MockLedgerStore) SaveTransfer(ctx context.Context, transfer models.Transfer) error {
	if m.SaveTransferFunc != nil {
		return m.SaveTransferFunc(ctx, transfer)
	}
	return m.Fallback.SaveTransfer(ctx, transfer)
}

func (m *MockLedgerStore) GetTransfer(ctx context.Context, transferID string) (models.Transfer, error) {
	return m.Fallback.GetTransfer(ctx, transferID)
}

func (m *MockLedgerStore) FindTransfersByAccount(ctx context.Context, accountID string) ([]models.Transfer, error) {
	return m.Fallback.FindTransfersByAccount(ctx, accountID)
}

func (m *MockLedgerStore) FindTransfersByStatus(ctx context.Context, statuses ...models.TransferStatus) ([]models.Transfer, error) {
	return m.Fallback.FindTransfersByStatus(ctx, statuses...)
}

func (m *MockLedgerStore) FindLatestTransfers(ctx context.Context, limit int) ([]models.Transfer, error) {
	return m.Fallback.FindLatestTransfers(ctx, limit)
}

func (m *MockLedgerStore) CountOriginatedSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	if m.CountOriginatedSinceFunc != nil {
		return m.CountOriginatedSinceFunc(ctx, accountID, since)
	}
	return m.Fallback.CountOriginatedSince(ctx, accountID, since)
}

var _ interfaces.LedgerStore = (*MockLedgerStore)(nil)
