package service

import (
	"context"
	"fmt"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/logger"
	"consulthub-ledger/internal/repository"
)

type bankAccountService struct {
	bankAccountRepo repository.BankAccountRepository
	withdrawalRepo  repository.WithdrawalRepository
}

func NewBankAccountService(
	bankAccountRepo repository.BankAccountRepository,
	withdrawalRepo repository.WithdrawalRepository,
) BankAccountService {
	return &bankAccountService{
		bankAccountRepo: bankAccountRepo,
		withdrawalRepo:  withdrawalRepo,
	}
}

func (s *bankAccountService) Register(ctx context.Context, userID int64, iban, accountHolder, bankName string) (*domain.BankAccount, error) {
	logger.EnterMethod("BankAccountService.Register", "userID", userID)

	iban = domain.NormalizeIBAN(iban)
	if err := validateIBAN(iban); err != nil {
		return nil, err
	}
	if accountHolder == "" {
		return nil, fmt.Errorf("account holder name is required: %w", domain.ErrInvalidState)
	}

	existing, err := s.bankAccountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	account := &domain.BankAccount{
		UserID:     userID,
		IBAN:       iban,
		HolderName: accountHolder,
		BankName:   bankName,
		// The first registered account becomes primary automatically.
		IsPrimary: len(existing) == 0,
	}

	if err := s.bankAccountRepo.Create(ctx, account); err != nil {
		logger.ExitMethodWithError("BankAccountService.Register", err, "userID", userID)
		return nil, err
	}

	logger.Info("Bank account registered", "userID", userID, "accountID", account.ID)
	return account, nil
}

func (s *bankAccountService) List(ctx context.Context, userID int64) ([]domain.BankAccount, error) {
	return s.bankAccountRepo.ListByUser(ctx, userID)
}

func (s *bankAccountService) SetPrimary(ctx context.Context, userID, accountID int64) error {
	return s.bankAccountRepo.SetPrimary(ctx, userID, accountID)
}

func (s *bankAccountService) Verify(ctx context.Context, adminID, accountID int64) error {
	logger.Info("Verifying bank account", "adminID", adminID, "accountID", accountID)
	return s.bankAccountRepo.Verify(ctx, accountID, adminID)
}

func (s *bankAccountService) Delete(ctx context.Context, userID, accountID int64) error {
	// Advisory pre-check; the delete re-checks inside its own transaction.
	inUse, err := s.withdrawalRepo.HasActiveByBankAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrBankAccountInUse
	}

	logger.Info("Deleting bank account", "userID", userID, "accountID", accountID)
	return s.bankAccountRepo.Delete(ctx, userID, accountID)
}

// validateIBAN checks the shape of a normalized IBAN. Saudi IBANs are 24
// characters starting with SA; other countries stay within the ISO length
// bounds.
func validateIBAN(iban string) error {
	if len(iban) < 15 || len(iban) > 34 {
		return fmt.Errorf("IBAN length out of range: %w", domain.ErrInvalidState)
	}
	if iban[0] < 'A' || iban[0] > 'Z' || iban[1] < 'A' || iban[1] > 'Z' {
		return fmt.Errorf("IBAN must start with a country code: %w", domain.ErrInvalidState)
	}
	for i := 0; i < len(iban); i++ {
		c := iban[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return fmt.Errorf("IBAN contains invalid character: %w", domain.ErrInvalidState)
		}
	}
	if len(iban) >= 2 && iban[:2] == "SA" && len(iban) != 24 {
		return fmt.Errorf("saudi IBAN must be 24 characters: %w", domain.ErrInvalidState)
	}
	return nil
}
