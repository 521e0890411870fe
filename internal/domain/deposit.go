package domain

import "time"

type DepositStatus string

const (
	DepositStatusPending    DepositStatus = "PENDING"
	DepositStatusProcessing DepositStatus = "PROCESSING"
	DepositStatusCompleted  DepositStatus = "COMPLETED"
	DepositStatusFailed     DepositStatus = "FAILED"
	DepositStatusCancelled  DepositStatus = "CANCELLED"
)

// Deposit is a client-initiated wallet top-up. It is completed exactly once,
// by webhook confirmation or by the status-poll fallback; completion credits
// the wallet. EscrowID, when set, means the deposit funds that escrow
// immediately after the wallet credit.
type Deposit struct {
	ID              int64         `json:"id"`
	ReferenceNumber string        `json:"reference_number"`
	UserID          int64         `json:"user_id"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
	Status          DepositStatus `json:"status"`
	PaymentMethod   string        `json:"payment_method"`
	GatewayChargeID string        `json:"gateway_charge_id,omitempty"`
	PaymentURL      string        `json:"payment_url,omitempty"`
	EscrowID        *int64        `json:"escrow_id,omitempty"`
	FailureReason   string        `json:"failure_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
}

// IsFinal reports whether the deposit reached a terminal status.
func (d *Deposit) IsFinal() bool {
	switch d.Status {
	case DepositStatusCompleted, DepositStatusFailed, DepositStatusCancelled:
		return true
	}
	return false
}
