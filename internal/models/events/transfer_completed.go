package events

import (
	"time"

	"github.com/shopspring/decimal"

	"banking-transfers/internal/models"
)

// TransferCompleted is published for every transfer that reaches a terminal
// state, regardless of disposition.
type TransferCompleted struct {
	TransferID    string                `json:"transfer_id"`
	FromAccountID string                `json:"from_account_id"`
	ToAccountID   string                `json:"to_account_id"`
	Amount        decimal.Decimal       `json:"amount"`
	Status        models.TransferStatus `json:"status"`
	OccurredAt    time.Time             `json:"occurred_at"`
}

// FromTransfer builds the event payload for a finalized transfer.
func FromTransfer(t models.Transfer) TransferCompleted {
	return TransferCompleted{
		TransferID:    t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Status:        t.Status,
		OccurredAt:    t.Timestamp,
	}
}
