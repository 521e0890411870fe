package domain

import "time"

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "PENDING"
	WithdrawalStatusApproved   WithdrawalStatus = "APPROVED"
	WithdrawalStatusProcessing WithdrawalStatus = "PROCESSING"
	WithdrawalStatusCompleted  WithdrawalStatus = "COMPLETED"
	WithdrawalStatusRejected   WithdrawalStatus = "REJECTED"
	WithdrawalStatusCancelled  WithdrawalStatus = "CANCELLED"
)

// Withdrawal is a consultant payout request. The requested amount is NOT
// reserved at request time; the wallet debit happens at approval, which must
// therefore re-validate the balance under the wallet row lock.
type Withdrawal struct {
	ID              int64            `json:"id"`
	ReferenceNumber string           `json:"reference_number"`
	UserID          int64            `json:"user_id"`
	WalletID        int64            `json:"wallet_id"`
	BankAccountID   int64            `json:"bank_account_id"`
	Amount          int64            `json:"amount"`
	Fee             int64            `json:"fee"`
	NetAmount       int64            `json:"net_amount"`
	Currency        string           `json:"currency"`
	Status          WithdrawalStatus `json:"status"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	BankReference   string           `json:"bank_reference,omitempty"`
	ApprovedBy      *int64           `json:"approved_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

// IsActive reports whether the withdrawal is still in flight. Active
// requests count against the per-user cap.
func (w *Withdrawal) IsActive() bool {
	switch w.Status {
	case WithdrawalStatusPending, WithdrawalStatusApproved, WithdrawalStatusProcessing:
		return true
	}
	return false
}

// CanCancel reports whether cancellation is allowed. A completed withdrawal
// cannot be cancelled: the money already left the platform.
func (w *Withdrawal) CanCancel() bool {
	switch w.Status {
	case WithdrawalStatusPending, WithdrawalStatusApproved, WithdrawalStatusProcessing:
		return true
	}
	return false
}

// RequiresCompensation reports whether cancelling must credit the wallet
// back. Nothing was debited while the request was still pending.
func (w *Withdrawal) RequiresCompensation() bool {
	return w.Status == WithdrawalStatusApproved || w.Status == WithdrawalStatusProcessing
}
