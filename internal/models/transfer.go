package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the disposition of a transfer.
type TransferStatus string

const (
	// StatusPending means the transfer is awaiting settlement or has been
	// held for manual review by the fraud scorer.
	StatusPending TransferStatus = "PENDING"
	// StatusApproved means the transfer settled and both balances moved.
	StatusApproved TransferStatus = "APPROVED"
	// StatusRejected means the transfer will never settle.
	StatusRejected TransferStatus = "REJECTED"
)

// Transfer represents an intent to move money between two accounts.
// It is created PENDING, annotated by the fraud scorer, finalized by the
// settlement step and immutable once persisted in a terminal state.
type Transfer struct {
	ID             string          `json:"id"`
	FromAccountID  string          `json:"from_account_id"`
	ToAccountID    string          `json:"to_account_id"`
	Amount         decimal.Decimal `json:"amount"`
	Timestamp      time.Time       `json:"timestamp"`
	Status         TransferStatus  `json:"status"`
	FraudRationale string          `json:"fraud_rationale,omitempty"`
	Description    string          `json:"description,omitempty"`
}

// AppendRationale accumulates fraud analysis text. Existing rationale is
// never overwritten; entries are joined with "; ".
func (t *Transfer) AppendRationale(rationale string) {
	if t.FraudRationale == "" {
		t.FraudRationale = rationale
		return
	}
	t.FraudRationale += "; " + rationale
}
