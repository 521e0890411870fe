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

type escrowService struct {
	escrowRepo repository.EscrowRepository
	txnRepo    repository.TransactionRepository
	cfg        config.LedgerConfig
}

func NewEscrowService(
	escrowRepo repository.EscrowRepository,
	txnRepo repository.TransactionRepository,
	cfg config.LedgerConfig,
) EscrowService {
	return &escrowService{
		escrowRepo: escrowRepo,
		txnRepo:    txnRepo,
		cfg:        cfg,
	}
}

func (s *escrowService) Create(ctx context.Context, clientID, consultantID, projectID, amount int64) (*domain.Escrow, error) {
	logger.EnterMethod("EscrowService.Create", "clientID", clientID, "consultantID", consultantID, "projectID", projectID, "amount", amount)

	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if clientID == consultantID {
		return nil, fmt.Errorf("client and consultant must differ: %w", domain.ErrInvalidState)
	}

	// The fee split is fixed at creation; later fee configuration changes
	// never affect an existing engagement.
	fee, consultantAmount, err := utils.SplitEscrowAmount(amount, s.cfg.PlatformFeeBasisPoints)
	if err != nil {
		return nil, err
	}

	escrow := &domain.Escrow{
		ReferenceNumber:  utils.NewReferenceNumber("ESC"),
		ClientID:         clientID,
		ConsultantID:     consultantID,
		ProjectID:        projectID,
		Amount:           amount,
		PlatformFee:      fee,
		ConsultantAmount: consultantAmount,
		Currency:         s.cfg.Currency,
		Status:           domain.EscrowStatusPending,
	}

	if err := s.escrowRepo.Create(ctx, escrow); err != nil {
		logger.ExitMethodWithError("EscrowService.Create", err)
		return nil, err
	}

	logger.ExitMethod("EscrowService.Create", "escrowID", escrow.ID, "reference", escrow.ReferenceNumber)
	return escrow, nil
}

func (s *escrowService) Fund(ctx context.Context, clientID, escrowID int64) (*domain.Escrow, error) {
	logger.EnterMethod("EscrowService.Fund", "clientID", clientID, "escrowID", escrowID)

	escrow, err := s.escrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if escrow.ClientID != clientID {
		return nil, domain.ErrNotFound
	}

	entry := escrowHoldEntry(escrow)
	if err := s.escrowRepo.Fund(ctx, escrowID, entry); err != nil {
		logger.ExitMethodWithError("EscrowService.Fund", err, "escrowID", escrowID)
		return nil, err
	}

	logger.Info("Escrow funded", "escrowID", escrowID, "reference", escrow.ReferenceNumber, "amount", escrow.Amount)
	return s.escrowRepo.GetByID(ctx, escrowID)
}

func (s *escrowService) Hold(ctx context.Context, escrowID int64) (*domain.Escrow, error) {
	if err := s.escrowRepo.Hold(ctx, escrowID); err != nil {
		return nil, err
	}
	return s.escrowRepo.GetByID(ctx, escrowID)
}

func (s *escrowService) Release(ctx context.Context, escrowID int64, note string) (*domain.Escrow, error) {
	logger.EnterMethod("EscrowService.Release", "escrowID", escrowID)

	escrow, err := s.escrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	releaseEntry := &domain.Transaction{
		ReferenceNumber: utils.NewReferenceNumber("TXN"),
		Type:            domain.TransactionTypeEscrowRelease,
		Status:          domain.TransactionStatusCompleted,
		Amount:          escrow.ConsultantAmount,
		Currency:        escrow.Currency,
		PayerID:         &escrow.ClientID,
		PayeeID:         &escrow.ConsultantID,
		ProjectID:       &escrow.ProjectID,
		EscrowID:        &escrow.ID,
		Description:     fmt.Sprintf("Escrow release %s", escrow.ReferenceNumber),
	}

	// The fee entry has no payee wallet: the platform keeps its share
	// outside any user wallet, visible only in the journal.
	var feeEntry *domain.Transaction
	if escrow.PlatformFee > 0 {
		feeEntry = &domain.Transaction{
			ReferenceNumber: utils.NewReferenceNumber("TXN"),
			Type:            domain.TransactionTypePlatformFee,
			Status:          domain.TransactionStatusCompleted,
			Amount:          escrow.PlatformFee,
			Currency:        escrow.Currency,
			PayerID:         &escrow.ClientID,
			ProjectID:       &escrow.ProjectID,
			EscrowID:        &escrow.ID,
			Description:     fmt.Sprintf("Platform fee for escrow %s", escrow.ReferenceNumber),
		}
	}

	if err := s.escrowRepo.Release(ctx, escrowID, note, releaseEntry, feeEntry); err != nil {
		logger.ExitMethodWithError("EscrowService.Release", err, "escrowID", escrowID)
		return nil, err
	}

	logger.Info("Escrow released", "escrowID", escrowID, "reference", escrow.ReferenceNumber,
		"consultantAmount", escrow.ConsultantAmount, "platformFee", escrow.PlatformFee)
	return s.escrowRepo.GetByID(ctx, escrowID)
}

func (s *escrowService) Refund(ctx context.Context, escrowID int64, reason string) (*domain.Escrow, error) {
	logger.EnterMethod("EscrowService.Refund", "escrowID", escrowID)

	escrow, err := s.escrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}

	// A refund returns the full amount; the platform takes no fee on a
	// failed engagement.
	entry := &domain.Transaction{
		ReferenceNumber: utils.NewReferenceNumber("TXN"),
		Type:            domain.TransactionTypeRefund,
		Status:          domain.TransactionStatusCompleted,
		Amount:          escrow.Amount,
		Currency:        escrow.Currency,
		PayeeID:         &escrow.ClientID,
		ProjectID:       &escrow.ProjectID,
		EscrowID:        &escrow.ID,
		Description:     fmt.Sprintf("Escrow refund %s", escrow.ReferenceNumber),
	}

	if err := s.escrowRepo.Refund(ctx, escrowID, reason, entry); err != nil {
		logger.ExitMethodWithError("EscrowService.Refund", err, "escrowID", escrowID)
		return nil, err
	}

	logger.Info("Escrow refunded", "escrowID", escrowID, "reference", escrow.ReferenceNumber, "amount", escrow.Amount)
	return s.escrowRepo.GetByID(ctx, escrowID)
}

func (s *escrowService) Cancel(ctx context.Context, clientID, escrowID int64) (*domain.Escrow, error) {
	escrow, err := s.escrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if escrow.ClientID != clientID {
		return nil, domain.ErrNotFound
	}

	// Only a still-unfunded escrow can be cancelled; no money ever moved.
	if err := s.escrowRepo.Cancel(ctx, escrowID); err != nil {
		return nil, err
	}

	logger.Info("Escrow cancelled", "escrowID", escrowID, "reference", escrow.ReferenceNumber)
	return s.escrowRepo.GetByID(ctx, escrowID)
}

func (s *escrowService) Dispute(ctx context.Context, userID, escrowID int64) (*domain.Escrow, error) {
	escrow, err := s.escrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	// Only the two parties to the engagement may open a dispute.
	if escrow.ClientID != userID && escrow.ConsultantID != userID {
		return nil, domain.ErrNotFound
	}

	if err := s.escrowRepo.MarkDisputed(ctx, escrowID); err != nil {
		return nil, err
	}

	logger.Warn("Escrow disputed", "escrowID", escrowID, "reference", escrow.ReferenceNumber, "raisedBy", userID)
	return s.escrowRepo.GetByID(ctx, escrowID)
}

func (s *escrowService) Get(ctx context.Context, escrowID int64) (*domain.Escrow, []domain.Transaction, error) {
	escrow, err := s.escrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		return nil, nil, err
	}
	txns, err := s.txnRepo.ListByEscrow(ctx, escrowID)
	if err != nil {
		return nil, nil, err
	}
	return escrow, txns, nil
}

func (s *escrowService) GetByReference(ctx context.Context, reference string) (*domain.Escrow, []domain.Transaction, error) {
	escrow, err := s.escrowRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, nil, err
	}
	txns, err := s.txnRepo.ListByEscrow(ctx, escrow.ID)
	if err != nil {
		return nil, nil, err
	}
	return escrow, txns, nil
}

func (s *escrowService) ListForClient(ctx context.Context, clientID int64, page, pageSize int32) ([]domain.Escrow, int32, error) {
	return s.escrowRepo.ListByClient(ctx, clientID, page, pageSize)
}

func (s *escrowService) ListForConsultant(ctx context.Context, consultantID int64, page, pageSize int32) ([]domain.Escrow, int32, error) {
	return s.escrowRepo.ListByConsultant(ctx, consultantID, page, pageSize)
}

// escrowHoldEntry builds the journal row for moving client funds into escrow.
func escrowHoldEntry(escrow *domain.Escrow) *domain.Transaction {
	return &domain.Transaction{
		ReferenceNumber: utils.NewReferenceNumber("TXN"),
		Type:            domain.TransactionTypeEscrowHold,
		Status:          domain.TransactionStatusCompleted,
		Amount:          escrow.Amount,
		Currency:        escrow.Currency,
		PayerID:         &escrow.ClientID,
		ProjectID:       &escrow.ProjectID,
		EscrowID:        &escrow.ID,
		Description:     fmt.Sprintf("Escrow funding %s", escrow.ReferenceNumber),
	}
}
