package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrSameAccount is returned when a transfer names the same account on
	// both sides. Never retried; the caller must correct the request.
	ErrSameAccount = errors.New("source and destination accounts cannot be the same")

	// ErrNonPositiveAmount is returned for zero or negative transfer amounts.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrDuplicateAccount is returned when an account number is already taken.
	ErrDuplicateAccount = errors.New("account number already exists")

	// ErrNegativeBalance is returned by the store when applying a delta would
	// drive a balance below zero. It is the storage-level last line of
	// defense behind the orchestrator's optimistic funds check.
	ErrNegativeBalance = errors.New("balance would become negative")
)

// AccountNotFoundError identifies the missing account.
type AccountNotFoundError struct {
	ID string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.ID)
}

// TransferNotFoundError identifies the missing transfer.
type TransferNotFoundError struct {
	ID string
}

func (e *TransferNotFoundError) Error() string {
	return fmt.Sprintf("transfer %s not found", e.ID)
}

// InsufficientFundsError reports a failed funds pre-check. The same request
// may legitimately succeed later once the account holds more funds.
type InsufficientFundsError struct {
	AccountID string
	Amount    decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %s for amount %s", e.AccountID, e.Amount)
}
