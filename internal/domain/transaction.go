package domain

import "time"

type TransactionType string

const (
	TransactionTypePayment       TransactionType = "PAYMENT"
	TransactionTypeDeposit       TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal    TransactionType = "WITHDRAWAL"
	TransactionTypeEscrowHold    TransactionType = "ESCROW_HOLD"
	TransactionTypeEscrowRelease TransactionType = "ESCROW_RELEASE"
	TransactionTypeRefund        TransactionType = "REFUND"
	TransactionTypePlatformFee   TransactionType = "PLATFORM_FEE"
)

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "PENDING"
	TransactionStatusProcessing TransactionStatus = "PROCESSING"
	TransactionStatusCompleted  TransactionStatus = "COMPLETED"
	TransactionStatusFailed     TransactionStatus = "FAILED"
	TransactionStatusCancelled  TransactionStatus = "CANCELLED"
	TransactionStatusRefunded   TransactionStatus = "REFUNDED"
)

// Transaction is an immutable journal entry. Once completed, amount and
// parties never change; corrections are new compensating transactions.
// PayeeID is nil when the platform itself retains the amount (platform fee).
type Transaction struct {
	ID              int64             `json:"id"`
	ReferenceNumber string            `json:"reference_number"`
	Type            TransactionType   `json:"type"`
	Status          TransactionStatus `json:"status"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	PayerID         *int64            `json:"payer_id,omitempty"`
	PayeeID         *int64            `json:"payee_id,omitempty"`
	ProjectID       *int64            `json:"project_id,omitempty"`
	EscrowID        *int64            `json:"escrow_id,omitempty"`
	GatewayTxnID    string            `json:"gateway_transaction_id,omitempty"`
	Description     string            `json:"description"`
	CreatedAt       time.Time         `json:"created_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
}
