package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"banking-transfers/internal/interfaces"
	"banking-transfers/internal/models"
)

// MemoryLedgerStore is an in-memory implementation of interfaces.LedgerStore.
// All operations run under one mutex, which makes ApplyDelta atomic per
// account and keeps reads consistent. Intended for tests and local runs.
type MemoryLedgerStore struct {
	mu        sync.Mutex
	accounts  map[string]models.Account
	numbers   map[string]string // account number -> account id
	transfers map[string]models.Transfer
}

// NewMemoryLedgerStore creates an empty store.
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		accounts:  make(map[string]models.Account),
		numbers:   make(map[string]string),
		transfers: make(map[string]models.Transfer),
	}
}

func (m *MemoryLedgerStore) CreateAccount(_ context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.numbers[account.AccountNumber]; exists {
		return models.ErrDuplicateAccount
	}
	m.accounts[account.ID] = account
	m.numbers[account.AccountNumber] = account.ID
	return nil
}

func (m *MemoryLedgerStore) GetAccount(_ context.Context, accountID string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, exists := m.accounts[accountID]
	if !exists {
		return models.Account{}, &models.AccountNotFoundError{ID: accountID}
	}
	return account, nil
}

func (m *MemoryLedgerStore) GetAccountByNumber(_ context.Context, accountNumber string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, exists := m.numbers[accountNumber]
	if !exists {
		return models.Account{}, &models.AccountNotFoundError{ID: accountNumber}
	}
	return m.accounts[id], nil
}

func (m *MemoryLedgerStore) ListAccounts(_ context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts := make([]models.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountNumber < accounts[j].AccountNumber
	})
	return accounts, nil
}

func (m *MemoryLedgerStore) UpdateAccount(_ context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.accounts[account.ID]
	if !exists {
		return &models.AccountNotFoundError{ID: account.ID}
	}
	if existing.AccountNumber != account.AccountNumber {
		if _, taken := m.numbers[account.AccountNumber]; taken {
			return models.ErrDuplicateAccount
		}
		delete(m.numbers, existing.AccountNumber)
		m.numbers[account.AccountNumber] = account.ID
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MemoryLedgerStore) AccountExists(_ context.Context, accountID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.accounts[accountID]
	return exists, nil
}

func (m *MemoryLedgerStore) AccountNumberExists(_ context.Context, accountNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.numbers[accountNumber]
	return exists, nil
}

func (m *MemoryLedgerStore) GetBalance(_ context.Context, accountID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, exists := m.accounts[accountID]
	if !exists {
		return decimal.Zero, &models.AccountNotFoundError{ID: accountID}
	}
	return account.Balance, nil
}

func (m *MemoryLedgerStore) HasAtLeast(_ context.Context, accountID string, amount decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, exists := m.accounts[accountID]
	if !exists {
		return false, &models.AccountNotFoundError{ID: accountID}
	}
	return account.Balance.Cmp(amount) >= 0, nil
}

// ApplyDelta adds delta to the account balance under the store lock, so
// concurrent deltas on the same account never lose updates. A delta that
// would drive the balance negative is refused.
func (m *MemoryLedgerStore) ApplyDelta(_ context.Context, accountID string, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, exists := m.accounts[accountID]
	if !exists {
		return &models.AccountNotFoundError{ID: accountID}
	}

	balance := account.Balance.Add(delta)
	if balance.Cmp(decimal.Zero) < 0 {
		return models.ErrNegativeBalance
	}

	account.Balance = balance
	account.UpdatedAt = time.Now()
	m.accounts[accountID] = account
	return nil
}

func (m *MemoryLedgerStore) SaveTransfer(_ context.Context, transfer models.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transfers[transfer.ID] = transfer
	return nil
}

func (m *MemoryLedgerStore) GetTransfer(_ context.Context, transferID string) (models.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	transfer, exists := m.transfers[transferID]
	if !exists {
		return models.Transfer{}, &models.TransferNotFoundError{ID: transferID}
	}
	return transfer, nil
}

func (m *MemoryLedgerStore) FindTransfersByAccount(_ context.Context, accountID string) ([]models.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.Transfer
	for _, t := range m.transfers {
		if t.FromAccountID == accountID || t.ToAccountID == accountID {
			result = append(result, t)
		}
	}
	sortByTimeDesc(result)
	return result, nil
}

func (m *MemoryLedgerStore) FindTransfersByStatus(_ context.Context, statuses ...models.TransferStatus) ([]models.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[models.TransferStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}

	var result []models.Transfer
	for _, t := range m.transfers {
		if wanted[t.Status] {
			result = append(result, t)
		}
	}
	sortByTimeDesc(result)
	return result, nil
}

func (m *MemoryLedgerStore) FindLatestTransfers(_ context.Context, limit int) ([]models.Transfer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.Transfer, 0, len(m.transfers))
	for _, t := range m.transfers {
		result = append(result, t)
	}
	sortByTimeDesc(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryLedgerStore) CountOriginatedSince(_ context.Context, accountID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, t := range m.transfers {
		if t.FromAccountID == accountID && t.Timestamp.After(since) {
			count++
		}
	}
	return count, nil
}

func sortByTimeDesc(transfers []models.Transfer) {
	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].Timestamp.After(transfers[j].Timestamp)
	})
}

// Compile-time check: ensure MemoryLedgerStore implements LedgerStore.
var _ interfaces.LedgerStore = (*MemoryLedgerStore)(nil)
