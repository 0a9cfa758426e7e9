package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"banking-transfers/internal/interfaces"
	"banking-transfers/internal/models"
)

// PostgresLedgerStore implements interfaces.LedgerStore on top of postgres.
// Balance deltas are applied with a single conditional UPDATE, so atomicity
// and the non-negative guarantee both live in the database.
type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{db: db}
}

func (p *PostgresLedgerStore) CreateAccount(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (id, account_number, owner_name, balance, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := p.db.ExecContext(ctx, query,
		account.ID, account.AccountNumber, account.OwnerName,
		account.Balance, account.CreatedAt, account.UpdatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return models.ErrDuplicateAccount
	}
	return err
}

func (p *PostgresLedgerStore) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	const query = `SELECT id, account_number, owner_name, balance, created_at, updated_at
	FROM accounts WHERE id = $1`

	return p.scanAccount(p.db.QueryRowContext(ctx, query, accountID), accountID)
}

func (p *PostgresLedgerStore) GetAccountByNumber(ctx context.Context, accountNumber string) (models.Account, error) {
	const query = `SELECT id, account_number, owner_name, balance, created_at, updated_at
	FROM accounts WHERE account_number = $1`

	return p.scanAccount(p.db.QueryRowContext(ctx, query, accountNumber), accountNumber)
}

func (p *PostgresLedgerStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT id, account_number, owner_name, balance, created_at, updated_at
	FROM accounts ORDER BY account_number`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.AccountNumber, &a.OwnerName, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (p *PostgresLedgerStore) UpdateAccount(ctx context.Context, account models.Account) error {
	const query = `UPDATE accounts SET account_number = $2, owner_name = $3, updated_at = $4
	WHERE id = $1`

	res, err := p.db.ExecContext(ctx, query,
		account.ID, account.AccountNumber, account.OwnerName, account.UpdatedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
		return models.ErrDuplicateAccount
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &models.AccountNotFoundError{ID: account.ID}
	}
	return nil
}

func (p *PostgresLedgerStore) AccountExists(ctx context.Context, accountID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`

	var exists bool
	err := p.db.QueryRowContext(ctx, query, accountID).Scan(&exists)
	return exists, err
}

func (p *PostgresLedgerStore) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`

	var exists bool
	err := p.db.QueryRowContext(ctx, query, accountNumber).Scan(&exists)
	return exists, err
}

func (p *PostgresLedgerStore) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	const query = `SELECT balance FROM accounts WHERE id = $1`

	var balance decimal.Decimal
	err := p.db.QueryRowContext(ctx, query, accountID).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, &models.AccountNotFoundError{ID: accountID}
	}
	return balance, err
}

func (p *PostgresLedgerStore) HasAtLeast(ctx context.Context, accountID string, amount decimal.Decimal) (bool, error) {
	const query = `SELECT balance >= $2 FROM accounts WHERE id = $1`

	var enough bool
	err := p.db.QueryRowContext(ctx, query, accountID, amount).Scan(&enough)
	if err == sql.ErrNoRows {
		return false, &models.AccountNotFoundError{ID: accountID}
	}
	return enough, err
}

// ApplyDelta updates the balance in one statement guarded by the
// non-negative condition. Zero rows affected means either the account is
// missing or the delta would overdraw it.
func (p *PostgresLedgerStore) ApplyDelta(ctx context.Context, accountID string, delta decimal.Decimal) error {
	const query = `UPDATE accounts SET balance = balance + $2, updated_at = CURRENT_TIMESTAMP
	WHERE id = $1 AND balance + $2 >= 0`

	res, err := p.db.ExecContext(ctx, query, accountID, delta)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		exists, err := p.AccountExists(ctx, accountID)
		if err != nil {
			return err
		}
		if !exists {
			return &models.AccountNotFoundError{ID: accountID}
		}
		return models.ErrNegativeBalance
	}
	return nil
}

func (p *PostgresLedgerStore) SaveTransfer(ctx context.Context, transfer models.Transfer) error {
	const query = `INSERT INTO transfers (id, from_account_id, to_account_id, amount, ts, status, fraud_rationale, description)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, fraud_rationale = EXCLUDED.fraud_rationale`

	_, err := p.db.ExecContext(ctx, query,
		transfer.ID, transfer.FromAccountID, transfer.ToAccountID, transfer.Amount,
		transfer.Timestamp, transfer.Status, transfer.FraudRationale, transfer.Description)
	return err
}

func (p *PostgresLedgerStore) GetTransfer(ctx context.Context, transferID string) (models.Transfer, error) {
	const query = `SELECT id, from_account_id, to_account_id, amount, ts, status, fraud_rationale, description
	FROM transfers WHERE id = $1`

	var t models.Transfer
	err := p.db.QueryRowContext(ctx, query, transferID).Scan(
		&t.ID, &t.FromAccountID, &t.ToAccountID, &t.Amount,
		&t.Timestamp, &t.Status, &t.FraudRationale, &t.Description)
	if err == sql.ErrNoRows {
		return models.Transfer{}, &models.TransferNotFoundError{ID: transferID}
	}
	return t, err
}

func (p *PostgresLedgerStore) FindTransfersByAccount(ctx context.Context, accountID string) ([]models.Transfer, error) {
	const query = `SELECT id, from_account_id, to_account_id, amount, ts, status, fraud_rationale, description
	FROM transfers WHERE from_account_id = $1 OR to_account_id = $1 ORDER BY ts DESC`

	return p.queryTransfers(ctx, query, accountID)
}

func (p *PostgresLedgerStore) FindTransfersByStatus(ctx context.Context, statuses ...models.TransferStatus) ([]models.Transfer, error) {
	const query = `SELECT id, from_account_id, to_account_id, amount, ts, status, fraud_rationale, description
	FROM transfers WHERE status = ANY($1) ORDER BY ts DESC`

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	return p.queryTransfers(ctx, query, pq.Array(names))
}

func (p *PostgresLedgerStore) FindLatestTransfers(ctx context.Context, limit int) ([]models.Transfer, error) {
	const query = `SELECT id, from_account_id, to_account_id, amount, ts, status, fraud_rationale, description
	FROM transfers ORDER BY ts DESC LIMIT $1`

	return p.queryTransfers(ctx, query, limit)
}

func (p *PostgresLedgerStore) CountOriginatedSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM transfers WHERE from_account_id = $1 AND ts > $2`

	var count int
	err := p.db.QueryRowContext(ctx, query, accountID, since).Scan(&count)
	return count, err
}

func (p *PostgresLedgerStore) queryTransfers(ctx context.Context, query string, args ...any) ([]models.Transfer, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		var t models.Transfer
		if err := rows.Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &t.Amount,
			&t.Timestamp, &t.Status, &t.FraudRationale, &t.Description); err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func (p *PostgresLedgerStore) scanAccount(row *sql.Row, id string) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.AccountNumber, &a.OwnerName, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Account{}, &models.AccountNotFoundError{ID: id}
	}
	return a, err
}

var _ interfaces.LedgerStore = (*PostgresLedgerStore)(nil)
