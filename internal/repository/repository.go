package repository

import (
	"context"
	"time"

	"consulthub-ledger/internal/domain"
)

// Balance-affecting operations (Credit, Debit, Fund, Release, Refund,
// Approve, Cancel, Complete) are implemented as single database
// transactions that lock the involved wallet row FOR UPDATE, validate,
// mutate the balance and insert the journal Transaction before committing.
// A successful balance change without its journal entry is impossible by
// construction.

type WalletRepository interface {
	// GetOrCreate lazily creates the wallet on first financial interaction.
	GetOrCreate(ctx context.Context, userID int64, currency string) (*domain.Wallet, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetByID(ctx context.Context, id int64) (*domain.Wallet, error)

	// Credit atomically increases the balance and journals entry. Fails
	// with ErrWalletInactive or ErrInvalidAmount.
	Credit(ctx context.Context, walletID int64, amount int64, entry *domain.Transaction) error
	// Debit atomically decreases the balance and journals entry. Fails
	// with ErrInsufficientBalance, ErrWalletInactive or ErrInvalidAmount.
	Debit(ctx context.Context, walletID int64, amount int64, entry *domain.Transaction) error

	SetStatus(ctx context.Context, walletID int64, status domain.WalletStatus) error
	GetSummary(ctx context.Context, userID int64) (*domain.WalletSummary, error)
}

type TransactionRepository interface {
	GetByReference(ctx context.Context, referenceNumber string) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Transaction, int32, error)
	ListByEscrow(ctx context.Context, escrowID int64) ([]domain.Transaction, error)
}

type EscrowRepository interface {
	Create(ctx context.Context, escrow *domain.Escrow) error
	GetByID(ctx context.Context, id int64) (*domain.Escrow, error)
	GetByReference(ctx context.Context, referenceNumber string) (*domain.Escrow, error)

	// Fund debits the client wallet by the escrow amount and moves
	// PENDING -> FUNDED. entry is the escrow_hold journal row.
	Fund(ctx context.Context, escrowID int64, entry *domain.Transaction) error
	// Hold moves FUNDED -> HELD after verification.
	Hold(ctx context.Context, escrowID int64) error
	// Release credits the consultant wallet with the consultant amount and
	// journals both the release entry and the platform fee entry in the
	// same unit. Repeated release returns ErrAlreadyReleased; release
	// after refund returns ErrInvalidEscrowState.
	Release(ctx context.Context, escrowID int64, note string, releaseEntry, feeEntry *domain.Transaction) error
	// Refund credits the client wallet with the full escrow amount.
	Refund(ctx context.Context, escrowID int64, reason string, entry *domain.Transaction) error
	MarkDisputed(ctx context.Context, escrowID int64) error
	// Cancel is valid only while the escrow is still PENDING.
	Cancel(ctx context.Context, escrowID int64) error

	ListByClient(ctx context.Context, clientID int64, page, pageSize int32) ([]domain.Escrow, int32, error)
	ListByConsultant(ctx context.Context, consultantID int64, page, pageSize int32) ([]domain.Escrow, int32, error)
}

type DepositRepository interface {
	Create(ctx context.Context, deposit *domain.Deposit) error
	GetByID(ctx context.Context, id int64) (*domain.Deposit, error)
	GetByReference(ctx context.Context, referenceNumber string) (*domain.Deposit, error)
	GetByChargeID(ctx context.Context, gatewayChargeID string) (*domain.Deposit, error)

	// AttachCharge stores the gateway charge and moves PENDING -> PROCESSING.
	AttachCharge(ctx context.Context, depositID int64, chargeID, paymentURL string) error
	// Complete credits the user wallet and moves the deposit to COMPLETED
	// exactly once; completing an already-completed deposit returns
	// ErrAlreadyCompleted with no side effects.
	Complete(ctx context.Context, depositID int64, entry *domain.Transaction) error
	Fail(ctx context.Context, depositID int64, reason string) error
	Cancel(ctx context.Context, depositID int64) error

	ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Deposit, int32, error)
	// ListUnresolved returns processing deposits older than cutoff, for the
	// gateway status-poll fallback.
	ListUnresolved(ctx context.Context, cutoff time.Time, limit int32) ([]domain.Deposit, error)
	// ExpireOlderThan fails pending deposits that never reached the gateway.
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *domain.Withdrawal) error
	GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error)
	GetByReference(ctx context.Context, referenceNumber string) (*domain.Withdrawal, error)
	CountActiveByUser(ctx context.Context, userID int64) (int32, error)
	HasActiveByBankAccount(ctx context.Context, bankAccountID int64) (bool, error)

	// Approve re-validates the balance under the wallet lock, debits the
	// wallet, journals entry (left PROCESSING until completion) and moves
	// PENDING -> APPROVED.
	Approve(ctx context.Context, withdrawalID, adminID int64, entry *domain.Transaction) error
	Reject(ctx context.Context, withdrawalID, adminID int64, reason string) error
	MarkProcessing(ctx context.Context, withdrawalID int64) error
	// Complete stamps the bank reference and completes the journal entry
	// created at approval. The wallet was already debited.
	Complete(ctx context.Context, withdrawalID int64, bankReference string) error
	// Cancel credits the wallet back when the withdrawal was already
	// approved or processing; compensation is the refund journal row and
	// is ignored for a still-pending withdrawal.
	Cancel(ctx context.Context, withdrawalID int64, compensation *domain.Transaction) error

	ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Withdrawal, int32, error)
	ListByStatus(ctx context.Context, status domain.WithdrawalStatus, page, pageSize int32) ([]domain.Withdrawal, int32, error)
}

type BankAccountRepository interface {
	// Create rejects a duplicate IBAN per user with ErrDuplicateBankAccount.
	Create(ctx context.Context, account *domain.BankAccount) error
	GetByID(ctx context.Context, id int64) (*domain.BankAccount, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BankAccount, error)
	// SetPrimary demotes any previous primary for the user in the same unit.
	SetPrimary(ctx context.Context, userID, accountID int64) error
	Verify(ctx context.Context, accountID, adminID int64) error
	// Delete fails with ErrBankAccountInUse while a non-terminal withdrawal
	// references the account.
	Delete(ctx context.Context, userID, accountID int64) error
}

type WebhookRepository interface {
	// Record inserts the log row, relying on the (source, event_id) unique
	// constraint to detect concurrent redelivery. On conflict it bumps
	// attempt_count, marks the stored row as duplicate and returns it with
	// duplicate=true.
	Record(ctx context.Context, log *domain.WebhookLog) (duplicate bool, err error)
	MarkProcessed(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, note string) error
	MarkIgnored(ctx context.Context, id int64, note string) error
}
