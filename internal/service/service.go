package service

import (
	"context"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/gateway"
)

type LedgerService interface {
	GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetSummary(ctx context.Context, userID int64) (*domain.WalletSummary, error)
	GetTransactions(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Transaction, int32, error)
	GetTransaction(ctx context.Context, userID int64, reference string) (*domain.Transaction, error)
	FreezeWallet(ctx context.Context, adminID, userID int64) error
	UnfreezeWallet(ctx context.Context, adminID, userID int64) error
}

type EscrowService interface {
	Create(ctx context.Context, clientID, consultantID, projectID, amount int64) (*domain.Escrow, error)
	Fund(ctx context.Context, clientID, escrowID int64) (*domain.Escrow, error)
	Hold(ctx context.Context, escrowID int64) (*domain.Escrow, error)
	Release(ctx context.Context, escrowID int64, note string) (*domain.Escrow, error)
	Refund(ctx context.Context, escrowID int64, reason string) (*domain.Escrow, error)
	Cancel(ctx context.Context, clientID, escrowID int64) (*domain.Escrow, error)
	Dispute(ctx context.Context, userID, escrowID int64) (*domain.Escrow, error)
	Get(ctx context.Context, escrowID int64) (*domain.Escrow, []domain.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*domain.Escrow, []domain.Transaction, error)
	ListForClient(ctx context.Context, clientID int64, page, pageSize int32) ([]domain.Escrow, int32, error)
	ListForConsultant(ctx context.Context, consultantID int64, page, pageSize int32) ([]domain.Escrow, int32, error)
}

type DepositService interface {
	Initialize(ctx context.Context, userID, amount int64, paymentMethod, escrowReference string) (*domain.Deposit, error)
	GetStatus(ctx context.Context, userID int64, reference string) (*domain.Deposit, error)
	List(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Deposit, int32, error)
	ApplyChargeStatus(ctx context.Context, deposit *domain.Deposit, chargeStatus, failureReason string) error
	PollUnresolved(ctx context.Context, limit int32) (int, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type WithdrawalService interface {
	Request(ctx context.Context, userID, amount, bankAccountID int64) (*domain.Withdrawal, error)
	Get(ctx context.Context, userID int64, reference string) (*domain.Withdrawal, error)
	Cancel(ctx context.Context, userID int64, reference string) (*domain.Withdrawal, error)
	List(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Withdrawal, int32, error)
	Approve(ctx context.Context, adminID int64, reference string) (*domain.Withdrawal, error)
	Reject(ctx context.Context, adminID int64, reference, reason string) (*domain.Withdrawal, error)
	MarkProcessing(ctx context.Context, adminID int64, reference string) (*domain.Withdrawal, error)
	Complete(ctx context.Context, adminID int64, reference, bankReference string) (*domain.Withdrawal, error)
	ListByStatus(ctx context.Context, status domain.WithdrawalStatus, page, pageSize int32) ([]domain.Withdrawal, int32, error)
}

type BankAccountService interface {
	Register(ctx context.Context, userID int64, iban, accountHolder, bankName string) (*domain.BankAccount, error)
	List(ctx context.Context, userID int64) ([]domain.BankAccount, error)
	SetPrimary(ctx context.Context, userID, accountID int64) error
	Verify(ctx context.Context, adminID, accountID int64) error
	Delete(ctx context.Context, userID, accountID int64) error
}

// IngestResult reports the outcome of one webhook delivery.
type IngestResult struct {
	LogID     int64
	Duplicate bool
}

type WebhookService interface {
	Ingest(ctx context.Context, source string, body []byte, signature string) (*IngestResult, error)
}

// PaymentGateway is the outbound dependency on the card processor.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
	FetchCharge(ctx context.Context, chargeID string) (*gateway.Charge, error)
}
