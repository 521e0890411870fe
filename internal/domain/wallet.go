package domain

import "time"

type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "ACTIVE"
	WalletStatusFrozen    WalletStatus = "FROZEN"
	WalletStatusSuspended WalletStatus = "SUSPENDED"
)

// Wallet is the per-user balance store. All amounts are int64 minor units
// (halalas). Balance never goes negative; every mutation goes through the
// repository credit/debit operations which lock the row and journal a
// Transaction in the same database transaction.
type Wallet struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	Balance        int64        `json:"balance"`
	PendingBalance int64        `json:"pending_balance"`
	Currency       string       `json:"currency"`
	Status         WalletStatus `json:"status"`

	// Lifetime totals, maintained alongside the balance in the same
	// atomic unit.
	TotalDeposited int64 `json:"total_deposited"`
	TotalWithdrawn int64 `json:"total_withdrawn"`
	TotalEarned    int64 `json:"total_earned"`
	TotalSpent     int64 `json:"total_spent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanTransact reports whether credit/debit operations are allowed.
func (w *Wallet) CanTransact() bool {
	return w.Status == WalletStatusActive
}

// WalletSummary is the wallet plus derived counters for the UI.
type WalletSummary struct {
	Wallet              Wallet `json:"wallet"`
	ActiveWithdrawals   int64  `json:"active_withdrawals"`
	ProcessingDeposits  int64  `json:"processing_deposits"`
	HeldInEscrowAsOwner int64  `json:"held_in_escrow_as_client"`
}
