package service

import (
	"context"
	"fmt"

	"consulthub-ledger/internal/config"
	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/logger"
	"consulthub-ledger/internal/repository"
	"consulthub-ledger/internal/utils"
)

type withdrawalService struct {
	withdrawalRepo  repository.WithdrawalRepository
	walletRepo      repository.WalletRepository
	bankAccountRepo repository.BankAccountRepository
	cfg             config.LedgerConfig
}

func NewWithdrawalService(
	withdrawalRepo repository.WithdrawalRepository,
	walletRepo repository.WalletRepository,
	bankAccountRepo repository.BankAccountRepository,
	cfg config.LedgerConfig,
) WithdrawalService {
	return &withdrawalService{
		withdrawalRepo:  withdrawalRepo,
		walletRepo:      walletRepo,
		bankAccountRepo: bankAccountRepo,
		cfg:             cfg,
	}
}

func (s *withdrawalService) Request(ctx context.Context, userID, amount, bankAccountID int64) (*domain.Withdrawal, error) {
	logger.EnterMethod("WithdrawalService.Request", "userID", userID, "amount", amount, "bankAccountID", bankAccountID)

	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if amount < s.cfg.MinWithdrawalAmount {
		return nil, domain.ErrBelowMinimumWithdrawal
	}

	wallet, err := s.walletRepo.GetOrCreate(ctx, userID, s.cfg.Currency)
	if err != nil {
		return nil, err
	}
	if !wallet.CanTransact() {
		return nil, domain.ErrWalletInactive
	}
	// Advisory only. Funds are not reserved at request time; the approval
	// re-validates under the wallet row lock.
	if wallet.Balance < amount {
		return nil, domain.ErrInsufficientBalance
	}

	account, err := s.bankAccountRepo.GetByID(ctx, bankAccountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != userID {
		return nil, domain.ErrNotFound
	}
	if !account.IsVerified {
		return nil, domain.ErrBankAccountNotVerified
	}

	active, err := s.withdrawalRepo.CountActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active >= s.cfg.MaxActiveWithdrawals {
		return nil, domain.ErrTooManyActiveWithdrawals
	}

	fee := s.cfg.WithdrawalFeeFlat
	if fee > amount {
		fee = amount
	}

	withdrawal := &domain.Withdrawal{
		ReferenceNumber: utils.NewReferenceNumber("WDR"),
		UserID:          userID,
		WalletID:        wallet.ID,
		BankAccountID:   bankAccountID,
		Amount:          amount,
		Fee:             fee,
		NetAmount:       amount - fee,
		Currency:        s.cfg.Currency,
		Status:          domain.WithdrawalStatusPending,
	}

	if err := s.withdrawalRepo.Create(ctx, withdrawal); err != nil {
		logger.ExitMethodWithError("WithdrawalService.Request", err, "userID", userID)
		return nil, err
	}

	logger.ExitMethod("WithdrawalService.Request", "reference", withdrawal.ReferenceNumber)
	return withdrawal, nil
}

func (s *withdrawalService) Get(ctx context.Context, userID int64, reference string) (*domain.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if withdrawal.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return withdrawal, nil
}

func (s *withdrawalService) Cancel(ctx context.Context, userID int64, reference string) (*domain.Withdrawal, error) {
	logger.EnterMethod("WithdrawalService.Cancel", "userID", userID, "reference", reference)

	withdrawal, err := s.withdrawalRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if withdrawal.UserID != userID {
		return nil, domain.ErrNotFound
	}

	// Compensation credits the debited amount back when the withdrawal was
	// already approved. It is ignored for a still-pending request.
	compensation := &domain.Transaction{
		ReferenceNumber: utils.NewReferenceNumber("TXN"),
		Type:            domain.TransactionTypeRefund,
		Status:          domain.TransactionStatusCompleted,
		Amount:          withdrawal.Amount,
		Currency:        withdrawal.Currency,
		PayeeID:         &withdrawal.UserID,
		Description:     fmt.Sprintf("Withdrawal %s cancelled", withdrawal.ReferenceNumber),
	}

	if err := s.withdrawalRepo.Cancel(ctx, withdrawal.ID, compensation); err != nil {
		logger.ExitMethodWithError("WithdrawalService.Cancel", err, "reference", reference)
		return nil, err
	}

	logger.Info("Withdrawal cancelled", "reference", reference, "userID", userID)
	return s.withdrawalRepo.GetByID(ctx, withdrawal.ID)
}

func (s *withdrawalService) List(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Withdrawal, int32, error) {
	return s.withdrawalRepo.ListByUser(ctx, userID, page, pageSize)
}

func (s *withdrawalService) Approve(ctx context.Context, adminID int64, reference string) (*domain.Withdrawal, error) {
	logger.EnterMethod("WithdrawalService.Approve", "adminID", adminID, "reference", reference)

	withdrawal, err := s.withdrawalRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	// The journal entry stays PROCESSING until the bank transfer settles.
	entry := &domain.Transaction{
		ReferenceNumber: utils.NewReferenceNumber("TXN"),
		Type:            domain.TransactionTypeWithdrawal,
		Status:          domain.TransactionStatusProcessing,
		Amount:          withdrawal.Amount,
		Currency:        withdrawal.Currency,
		PayerID:         &withdrawal.UserID,
		Description:     fmt.Sprintf("Withdrawal %s", withdrawal.ReferenceNumber),
	}

	if err := s.withdrawalRepo.Approve(ctx, withdrawal.ID, adminID, entry); err != nil {
		logger.ExitMethodWithError("WithdrawalService.Approve", err, "reference", reference)
		return nil, err
	}

	logger.Info("Withdrawal approved", "reference", reference, "adminID", adminID, "amount", withdrawal.Amount)
	return s.withdrawalRepo.GetByID(ctx, withdrawal.ID)
}

func (s *withdrawalService) Reject(ctx context.Context, adminID int64, reference, reason string) (*domain.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if err := s.withdrawalRepo.Reject(ctx, withdrawal.ID, adminID, reason); err != nil {
		return nil, err
	}

	logger.Info("Withdrawal rejected", "reference", reference, "adminID", adminID, "reason", reason)
	return s.withdrawalRepo.GetByID(ctx, withdrawal.ID)
}

func (s *withdrawalService) MarkProcessing(ctx context.Context, adminID int64, reference string) (*domain.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if err := s.withdrawalRepo.MarkProcessing(ctx, withdrawal.ID); err != nil {
		return nil, err
	}

	logger.Info("Withdrawal processing", "reference", reference, "adminID", adminID)
	return s.withdrawalRepo.GetByID(ctx, withdrawal.ID)
}

func (s *withdrawalService) Complete(ctx context.Context, adminID int64, reference, bankReference string) (*domain.Withdrawal, error) {
	logger.EnterMethod("WithdrawalService.Complete", "adminID", adminID, "reference", reference)

	if bankReference == "" {
		return nil, fmt.Errorf("bank reference is required: %w", domain.ErrInvalidState)
	}

	withdrawal, err := s.withdrawalRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}

	if err := s.withdrawalRepo.Complete(ctx, withdrawal.ID, bankReference); err != nil {
		logger.ExitMethodWithError("WithdrawalService.Complete", err, "reference", reference)
		return nil, err
	}

	logger.Info("Withdrawal completed", "reference", reference, "bankReference", bankReference)
	return s.withdrawalRepo.GetByID(ctx, withdrawal.ID)
}

func (s *withdrawalService) ListByStatus(ctx context.Context, status domain.WithdrawalStatus, page, pageSize int32) ([]domain.Withdrawal, int32, error) {
	return s.withdrawalRepo.ListByStatus(ctx, status, page, pageSize)
}
