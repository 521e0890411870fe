package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/gateway"
)

type MockWalletRepo struct {
	mock.Mock
}

func (m *MockWalletRepo) GetOrCreate(ctx context.Context, userID int64, currency string) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepo) GetByID(ctx context.Context, id int64) (*domain.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepo) Credit(ctx context.Context, walletID int64, amount int64, entry *domain.Transaction) error {
	args := m.Called(ctx, walletID, amount, entry)
	return args.Error(0)
}

func (m *MockWalletRepo) Debit(ctx context.Context, walletID int64, amount int64, entry *domain.Transaction) error {
	args := m.Called(ctx, walletID, amount, entry)
	return args.Error(0)
}

func (m *MockWalletRepo) SetStatus(ctx context.Context, walletID int64, status domain.WalletStatus) error {
	args := m.Called(ctx, walletID, status)
	return args.Error(0)
}

func (m *MockWalletRepo) GetSummary(ctx context.Context, userID int64) (*domain.WalletSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletSummary), args.Error(1)
}

type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) GetByReference(ctx context.Context, referenceNumber string) (*domain.Transaction, error) {
	args := m.Called(ctx, referenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Transaction, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Transaction), int32(args.Int(1)), args.Error(2)
}

func (m *MockTransactionRepo) ListByEscrow(ctx context.Context, escrowID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, escrowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

type MockEscrowRepo struct {
	mock.Mock
}

func (m *MockEscrowRepo) Create(ctx context.Context, escrow *domain.Escrow) error {
	args := m.Called(ctx, escrow)
	return args.Error(0)
}

func (m *MockEscrowRepo) GetByID(ctx context.Context, id int64) (*domain.Escrow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Escrow), args.Error(1)
}

func (m *MockEscrowRepo) GetByReference(ctx context.Context, referenceNumber string) (*domain.Escrow, error) {
	args := m.Called(ctx, referenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Escrow), args.Error(1)
}

func (m *MockEscrowRepo) Fund(ctx context.Context, escrowID int64, entry *domain.Transaction) error {
	args := m.Called(ctx, escrowID, entry)
	return args.Error(0)
}

func (m *MockEscrowRepo) Hold(ctx context.Context, escrowID int64) error {
	args := m.Called(ctx, escrowID)
	return args.Error(0)
}

func (m *MockEscrowRepo) Release(ctx context.Context, escrowID int64, note string, releaseEntry, feeEntry *domain.Transaction) error {
	args := m.Called(ctx, escrowID, note, releaseEntry, feeEntry)
	return args.Error(0)
}

func (m *MockEscrowRepo) Refund(ctx context.Context, escrowID int64, reason string, entry *domain.Transaction) error {
	args := m.Called(ctx, escrowID, reason, entry)
	return args.Error(0)
}

func (m *MockEscrowRepo) MarkDisputed(ctx context.Context, escrowID int64) error {
	args := m.Called(ctx, escrowID)
	return args.Error(0)
}

func (m *MockEscrowRepo) Cancel(ctx context.Context, escrowID int64) error {
	args := m.Called(ctx, escrowID)
	return args.Error(0)
}

func (m *MockEscrowRepo) ListByClient(ctx context.Context, clientID int64, page, pageSize int32) ([]domain.Escrow, int32, error) {
	args := m.Called(ctx, clientID, page, pageSize)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Escrow), int32(args.Int(1)), args.Error(2)
}

func (m *MockEscrowRepo) ListByConsultant(ctx context.Context, consultantID int64, page, pageSize int32) ([]domain.Escrow, int32, error) {
	args := m.Called(ctx, consultantID, page, pageSize)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Escrow), int32(args.Int(1)), args.Error(2)
}

type MockDepositRepo struct {
	mock.Mock
}

func (m *MockDepositRepo) Create(ctx context.Context, deposit *domain.Deposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}

func (m *MockDepositRepo) GetByID(ctx context.Context, id int64) (*domain.Deposit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}

func (m *MockDepositRepo) GetByReference(ctx context.Context, referenceNumber string) (*domain.Deposit, error) {
	args := m.Called(ctx, referenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}

func (m *MockDepositRepo) GetByChargeID(ctx context.Context, gatewayChargeID string) (*domain.Deposit, error) {
	args := m.Called(ctx, gatewayChargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}

func (m *MockDepositRepo) AttachCharge(ctx context.Context, depositID int64, chargeID, paymentURL string) error {
	args := m.Called(ctx, depositID, chargeID, paymentURL)
	return args.Error(0)
}

func (m *MockDepositRepo) Complete(ctx context.Context, depositID int64, entry *domain.Transaction) error {
	args := m.Called(ctx, depositID, entry)
	return args.Error(0)
}

func (m *MockDepositRepo) Fail(ctx context.Context, depositID int64, reason string) error {
	args := m.Called(ctx, depositID, reason)
	return args.Error(0)
}

func (m *MockDepositRepo) Cancel(ctx context.Context, depositID int64) error {
	args := m.Called(ctx, depositID)
	return args.Error(0)
}

func (m *MockDepositRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Deposit, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Deposit), int32(args.Int(1)), args.Error(2)
}

func (m *MockDepositRepo) ListUnresolved(ctx context.Context, cutoff time.Time, limit int32) ([]domain.Deposit, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deposit), args.Error(1)
}

func (m *MockDepositRepo) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockWithdrawalRepo struct {
	mock.Mock
}

func (m *MockWithdrawalRepo) Create(ctx context.Context, withdrawal *domain.Withdrawal) error {
	args := m.Called(ctx, withdrawal)
	return args.Error(0)
}

func (m *MockWithdrawalRepo) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepo) GetByReference(ctx context.Context, referenceNumber string) (*domain.Withdrawal, error) {
	args := m.Called(ctx, referenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepo) CountActiveByUser(ctx context.Context, userID int64) (int32, error) {
	args := m.Called(ctx, userID)
	return int32(args.Int(0)), args.Error(1)
}

func (m *MockWithdrawalRepo) HasActiveByBankAccount(ctx context.Context, bankAccountID int64) (bool, error) {
	args := m.Called(ctx, bankAccountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWithdrawalRepo) Approve(ctx context.Context, withdrawalID, adminID int64, entry *domain.Transaction) error {
	args := m.Called(ctx, withdrawalID, adminID, entry)
	return args.Error(0)
}

func (m *MockWithdrawalRepo) Reject(ctx context.Context, withdrawalID, adminID int64, reason string) error {
	args := m.Called(ctx, withdrawalID, adminID, reason)
	return args.Error(0)
}

func (m *MockWithdrawalRepo) MarkProcessing(ctx context.Context, withdrawalID int64) error {
	args := m.Called(ctx, withdrawalID)
	return args.Error(0)
}

func (m *MockWithdrawalRepo) Complete(ctx context.Context, withdrawalID int64, bankReference string) error {
	args := m.Called(ctx, withdrawalID, bankReference)
	return args.Error(0)
}

func (m *MockWithdrawalRepo) Cancel(ctx context.Context, withdrawalID int64, compensation *domain.Transaction) error {
	args := m.Called(ctx, withdrawalID, compensation)
	return args.Error(0)
}

func (m *MockWithdrawalRepo) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Withdrawal, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Withdrawal), int32(args.Int(1)), args.Error(2)
}

func (m *MockWithdrawalRepo) ListByStatus(ctx context.Context, status domain.WithdrawalStatus, page, pageSize int32) ([]domain.Withdrawal, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, int32(args.Int(1)), args.Error(2)
	}
	return args.Get(0).([]domain.Withdrawal), int32(args.Int(1)), args.Error(2)
}

type MockBankAccountRepo struct {
	mock.Mock
}

func (m *MockBankAccountRepo) Create(ctx context.Context, account *domain.BankAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockBankAccountRepo) GetByID(ctx context.Context, id int64) (*domain.BankAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepo) ListByUser(ctx context.Context, userID int64) ([]domain.BankAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepo) SetPrimary(ctx context.Context, userID, accountID int64) error {
	args := m.Called(ctx, userID, accountID)
	return args.Error(0)
}

func (m *MockBankAccountRepo) Verify(ctx context.Context, accountID, adminID int64) error {
	args := m.Called(ctx, accountID, adminID)
	return args.Error(0)
}

func (m *MockBankAccountRepo) Delete(ctx context.Context, userID, accountID int64) error {
	args := m.Called(ctx, userID, accountID)
	return args.Error(0)
}

type MockWebhookRepo struct {
	mock.Mock
}

func (m *MockWebhookRepo) Record(ctx context.Context, log *domain.WebhookLog) (bool, error) {
	args := m.Called(ctx, log)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookRepo) MarkProcessed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWebhookRepo) MarkFailed(ctx context.Context, id int64, note string) error {
	args := m.Called(ctx, id, note)
	return args.Error(0)
}

func (m *MockWebhookRepo) MarkIgnored(ctx context.Context, id int64, note string) error {
	args := m.Called(ctx, id, note)
	return args.Error(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Charge), args.Error(1)
}

func (m *MockPaymentGateway) FetchCharge(ctx context.Context, chargeID string) (*gateway.Charge, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Charge), args.Error(1)
}
