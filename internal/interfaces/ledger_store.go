package interfaces

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"banking-transfers/internal/models"
)

// LedgerStore is the durable store of accounts and transfer records. It can
// be any storage implementation; the core only relies on ApplyDelta being
// atomic per account and refusing to produce a negative balance.
type LedgerStore interface {
	// Accounts.
	CreateAccount(ctx context.Context, account models.Account) error
	GetAccount(ctx context.Context, accountID string) (models.Account, error)
	GetAccountByNumber(ctx context.Context, accountNumber string) (models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	UpdateAccount(ctx context.Context, account models.Account) error
	AccountExists(ctx context.Context, accountID string) (bool, error)
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	HasAtLeast(ctx context.Context, accountID string, amount decimal.Decimal) (bool, error)

	// ApplyDelta adds delta to the account's balance as one atomic operation.
	// Concurrent deltas on the same account never lose updates, and a delta
	// that would make the balance negative fails with models.ErrNegativeBalance.
	ApplyDelta(ctx context.Context, accountID string, delta decimal.Decimal) error

	// Transfers.
	SaveTransfer(ctx context.Context, transfer models.Transfer) error
	GetTransfer(ctx context.Context, transferID string) (models.Transfer, error)
	FindTransfersByAccount(ctx context.Context, accountID string) ([]models.Transfer, error)
	FindTransfersByStatus(ctx context.Context, statuses ...models.TransferStatus) ([]models.Transfer, error)
	FindLatestTransfers(ctx context.Context, limit int) ([]models.Transfer, error)

	// CountOriginatedSince counts transfers originated by the account with a
	// timestamp strictly after since. Only committed transfers are observed.
	CountOriginatedSince(ctx context.Context, accountID string, since time.Time) (int, error)
}
