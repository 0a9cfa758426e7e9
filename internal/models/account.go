package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a ledger account. The balance is never negative and is only
// ever changed through the store's atomic delta operation, never by writing
// back a previously read value.
type Account struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	OwnerName     string          `json:"owner_name"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
