package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consulthub-ledger/internal/config"
	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/gateway"
	"consulthub-ledger/internal/logger"
	"consulthub-ledger/internal/repository"
	"consulthub-ledger/internal/utils"
)

type depositService struct {
	depositRepo repository.DepositRepository
	walletRepo  repository.WalletRepository
	escrowRepo  repository.EscrowRepository
	gw          PaymentGateway
	cfg         config.LedgerConfig
	callbackURL string
}

func NewDepositService(
	depositRepo repository.DepositRepository,
	walletRepo repository.WalletRepository,
	escrowRepo repository.EscrowRepository,
	gw PaymentGateway,
	cfg config.LedgerConfig,
	callbackURL string,
) DepositService {
	return &depositService{
		depositRepo: depositRepo,
		walletRepo:  walletRepo,
		escrowRepo:  escrowRepo,
		gw:          gw,
		cfg:         cfg,
		callbackURL: callbackURL,
	}
}

func (s *depositService) Initialize(ctx context.Context, userID, amount int64, paymentMethod, escrowReference string) (*domain.Deposit, error) {
	logger.EnterMethod("DepositService.Initialize", "userID", userID, "amount", amount, "method", paymentMethod)

	if amount < s.cfg.MinDepositAmount {
		return nil, domain.ErrBelowMinimumDeposit
	}
	if amount > s.cfg.MaxDepositAmount {
		return nil, domain.ErrAboveMaximumDeposit
	}

	// The wallet is created lazily on the first financial interaction.
	wallet, err := s.walletRepo.GetOrCreate(ctx, userID, s.cfg.Currency)
	if err != nil {
		return nil, err
	}
	if !wallet.CanTransact() {
		return nil, domain.ErrWalletInactive
	}

	deposit := &domain.Deposit{
		ReferenceNumber: utils.NewReferenceNumber("DEP"),
		UserID:          userID,
		Amount:          amount,
		Currency:        s.cfg.Currency,
		Status:          domain.DepositStatusPending,
		PaymentMethod:   paymentMethod,
	}

	// A deposit may be earmarked to fund a pending escrow owned by the
	// same user as soon as the money arrives.
	if escrowReference != "" {
		escrow, err := s.escrowRepo.GetByReference(ctx, escrowReference)
		if err != nil {
			return nil, err
		}
		if escrow.ClientID != userID {
			return nil, domain.ErrNotFound
		}
		if !escrow.CanFund() {
			return nil, domain.ErrInvalidEscrowState
		}
		deposit.EscrowID = &escrow.ID
	}

	if err := s.depositRepo.Create(ctx, deposit); err != nil {
		return nil, err
	}

	charge, err := s.gw.CreateCharge(ctx, gateway.ChargeRequest{
		Amount:          deposit.Amount,
		Currency:        deposit.Currency,
		Description:     fmt.Sprintf("Wallet deposit %s", deposit.ReferenceNumber),
		PaymentMethod:   paymentMethod,
		ReferenceNumber: deposit.ReferenceNumber,
		CallbackURL:     s.callbackURL,
	})
	if err != nil {
		// The deposit record stays behind as an audit trail of the attempt.
		if failErr := s.depositRepo.Fail(ctx, deposit.ID, "gateway charge creation failed"); failErr != nil {
			logger.Error("Failed to mark deposit failed after gateway error", "depositID", deposit.ID, "error", failErr)
		}
		logger.ExitMethodWithError("DepositService.Initialize", err, "reference", deposit.ReferenceNumber)
		return nil, err
	}

	if err := s.depositRepo.AttachCharge(ctx, deposit.ID, charge.ID, charge.PaymentURL); err != nil {
		return nil, err
	}

	deposit.Status = domain.DepositStatusProcessing
	deposit.GatewayChargeID = charge.ID
	deposit.PaymentURL = charge.PaymentURL

	logger.ExitMethod("DepositService.Initialize", "reference", deposit.ReferenceNumber, "chargeID", charge.ID)
	return deposit, nil
}

// GetStatus returns the current deposit state. When the deposit is still
// processing it asks the gateway directly, so a user refreshing the status
// page is not blocked on webhook delivery.
func (s *depositService) GetStatus(ctx context.Context, userID int64, reference string) (*domain.Deposit, error) {
	deposit, err := s.depositRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if deposit.UserID != userID {
		return nil, domain.ErrNotFound
	}

	if deposit.Status == domain.DepositStatusProcessing && deposit.GatewayChargeID != "" {
		charge, err := s.gw.FetchCharge(ctx, deposit.GatewayChargeID)
		if err != nil {
			// Stale local state beats an error page here.
			logger.Warn("Gateway status fetch failed, returning stored state", "reference", reference, "error", err)
			return deposit, nil
		}
		if err := s.ApplyChargeStatus(ctx, deposit, charge.Status, charge.FailureReason); err != nil {
			return nil, err
		}
		return s.depositRepo.GetByReference(ctx, reference)
	}

	return deposit, nil
}

func (s *depositService) List(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Deposit, int32, error) {
	return s.depositRepo.ListByUser(ctx, userID, page, pageSize)
}

// ApplyChargeStatus transitions the deposit according to the gateway charge
// status. It is safe to call repeatedly with the same outcome: the repository
// completes a deposit exactly once and reports ErrAlreadyCompleted after that.
func (s *depositService) ApplyChargeStatus(ctx context.Context, deposit *domain.Deposit, chargeStatus, failureReason string) error {
	switch {
	case gateway.IsSuccess(chargeStatus):
		return s.complete(ctx, deposit)
	case gateway.IsFailure(chargeStatus):
		if failureReason == "" {
			failureReason = "charge failed at gateway"
		}
		err := s.depositRepo.Fail(ctx, deposit.ID, failureReason)
		if errors.Is(err, domain.ErrInvalidState) {
			return nil
		}
		return err
	case gateway.IsCancelled(chargeStatus):
		err := s.depositRepo.Cancel(ctx, deposit.ID)
		if errors.Is(err, domain.ErrInvalidState) {
			return nil
		}
		return err
	default:
		// Still in flight at the gateway; nothing to record.
		return nil
	}
}

func (s *depositService) complete(ctx context.Context, deposit *domain.Deposit) error {
	entry := &domain.Transaction{
		ReferenceNumber: utils.NewReferenceNumber("TXN"),
		Type:            domain.TransactionTypeDeposit,
		Status:          domain.TransactionStatusCompleted,
		Amount:          deposit.Amount,
		Currency:        deposit.Currency,
		PayeeID:         &deposit.UserID,
		GatewayTxnID:    deposit.GatewayChargeID,
		Description:     fmt.Sprintf("Wallet deposit %s", deposit.ReferenceNumber),
	}

	err := s.depositRepo.Complete(ctx, deposit.ID, entry)
	if errors.Is(err, domain.ErrAlreadyCompleted) {
		// Redelivered confirmation; the credit already happened and the
		// escrow funding, if any, ran with it.
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("Deposit completed", "reference", deposit.ReferenceNumber, "userID", deposit.UserID, "amount", deposit.Amount)

	if deposit.EscrowID != nil {
		escrow, err := s.escrowRepo.GetByID(ctx, *deposit.EscrowID)
		if err != nil {
			return fmt.Errorf("deposit %s completed but escrow lookup failed: %w", deposit.ReferenceNumber, err)
		}
		if err := s.escrowRepo.Fund(ctx, escrow.ID, escrowHoldEntry(escrow)); err != nil {
			// The money is safe in the wallet; funding can be retried by
			// the client. Surface the failure so the caller records it.
			return fmt.Errorf("deposit %s completed but escrow funding failed: %w", deposit.ReferenceNumber, err)
		}
		logger.Info("Escrow funded from deposit", "reference", deposit.ReferenceNumber, "escrowID", escrow.ID)
	}

	return nil
}

// PollUnresolved asks the gateway for the current status of deposits that
// have been processing for too long without a webhook, and applies whatever
// it learns. Returns the number of deposits that changed state.
func (s *depositService) PollUnresolved(ctx context.Context, limit int32) (int, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(s.cfg.DepositPollAfterMinutes) * time.Minute)
	deposits, err := s.depositRepo.ListUnresolved(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for i := range deposits {
		deposit := &deposits[i]
		if deposit.GatewayChargeID == "" {
			continue
		}

		charge, err := s.gw.FetchCharge(ctx, deposit.GatewayChargeID)
		if err != nil {
			logger.Warn("Poll could not fetch charge", "reference", deposit.ReferenceNumber, "error", err)
			continue
		}
		if !gateway.IsSuccess(charge.Status) && !gateway.IsFailure(charge.Status) && !gateway.IsCancelled(charge.Status) {
			continue
		}
		if err := s.ApplyChargeStatus(ctx, deposit, charge.Status, charge.FailureReason); err != nil {
			logger.Error("Poll could not apply charge status", "reference", deposit.ReferenceNumber, "error", err)
			continue
		}
		resolved++
	}
	return resolved, nil
}

// ExpireStale fails pending deposits that never produced a gateway charge.
func (s *depositService) ExpireStale(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(s.cfg.DepositExpiryHours) * time.Hour)
	return s.depositRepo.ExpireOlderThan(ctx, cutoff)
}
