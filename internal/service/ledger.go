package service

import (
	"context"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/logger"
	"consulthub-ledger/internal/repository"
)

type ledgerService struct {
	walletRepo repository.WalletRepository
	txnRepo    repository.TransactionRepository
	currency   string
}

func NewLedgerService(walletRepo repository.WalletRepository, txnRepo repository.TransactionRepository, currency string) LedgerService {
	return &ledgerService{
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		currency:   currency,
	}
}

func (s *ledgerService) GetWallet(ctx context.Context, userID int64) (*domain.Wallet, error) {
	return s.walletRepo.GetOrCreate(ctx, userID, s.currency)
}

func (s *ledgerService) GetSummary(ctx context.Context, userID int64) (*domain.WalletSummary, error) {
	if _, err := s.walletRepo.GetOrCreate(ctx, userID, s.currency); err != nil {
		return nil, err
	}
	return s.walletRepo.GetSummary(ctx, userID)
}

func (s *ledgerService) GetTransactions(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Transaction, int32, error) {
	return s.txnRepo.ListByUser(ctx, userID, page, pageSize)
}

func (s *ledgerService) GetTransaction(ctx context.Context, userID int64, reference string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	// A transaction is visible only to its participants.
	if !participatesIn(txn, userID) {
		return nil, domain.ErrNotFound
	}
	return txn, nil
}

func (s *ledgerService) FreezeWallet(ctx context.Context, adminID, userID int64) error {
	logger.Info("Freezing wallet", "adminID", adminID, "userID", userID)

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.walletRepo.SetStatus(ctx, wallet.ID, domain.WalletStatusFrozen)
}

func (s *ledgerService) UnfreezeWallet(ctx context.Context, adminID, userID int64) error {
	logger.Info("Unfreezing wallet", "adminID", adminID, "userID", userID)

	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.walletRepo.SetStatus(ctx, wallet.ID, domain.WalletStatusActive)
}

func participatesIn(txn *domain.Transaction, userID int64) bool {
	if txn.PayerID != nil && *txn.PayerID == userID {
		return true
	}
	if txn.PayeeID != nil && *txn.PayeeID == userID {
		return true
	}
	return false
}
