package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/logger"
	"consulthub-ledger/internal/repository"
)

type withdrawalRepository struct {
	db *sql.DB
}

func NewWithdrawalRepository(db *sql.DB) repository.WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

const withdrawalColumns = `id, reference_number, user_id, wallet_id, bank_account_id,
	amount, fee, net_amount, currency, status, COALESCE(rejection_reason, ''),
	COALESCE(bank_reference, ''), approved_by, created_at, approved_at, completed_at`

func scanWithdrawal(scanner interface {
	Scan(dest ...any) error
}) (*domain.Withdrawal, error) {
	w := &domain.Withdrawal{}
	err := scanner.Scan(
		&w.ID, &w.ReferenceNumber, &w.UserID, &w.WalletID, &w.BankAccountID,
		&w.Amount, &w.Fee, &w.NetAmount, &w.Currency, &w.Status, &w.RejectionReason,
		&w.BankReference, &w.ApprovedBy, &w.CreatedAt, &w.ApprovedAt, &w.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *withdrawalRepository) Create(ctx context.Context, withdrawal *domain.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (
			reference_number, user_id, wallet_id, bank_account_id,
			amount, fee, net_amount, currency, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		withdrawal.ReferenceNumber, withdrawal.UserID, withdrawal.WalletID, withdrawal.BankAccountID,
		withdrawal.Amount, withdrawal.Fee, withdrawal.NetAmount, withdrawal.Currency,
		withdrawal.Status, time.Now(),
	).Scan(&withdrawal.ID, &withdrawal.CreatedAt)
}

func (r *withdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`
	return scanWithdrawal(r.db.QueryRowContext(ctx, query, id))
}

func (r *withdrawalRepository) GetByReference(ctx context.Context, referenceNumber string) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE reference_number = $1`
	return scanWithdrawal(r.db.QueryRowContext(ctx, query, referenceNumber))
}

func (r *withdrawalRepository) CountActiveByUser(ctx context.Context, userID int64) (int32, error) {
	var count int32
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM withdrawals
		 WHERE user_id = $1 AND status IN ('PENDING', 'APPROVED', 'PROCESSING')`,
		userID,
	).Scan(&count)
	return count, err
}

func (r *withdrawalRepository) HasActiveByBankAccount(ctx context.Context, bankAccountID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM withdrawals
			WHERE bank_account_id = $1 AND status IN ('PENDING', 'APPROVED', 'PROCESSING')
		)`,
		bankAccountID,
	).Scan(&exists)
	return exists, err
}

// Approve debits the wallet under its row lock. The balance check happens
// here, not at request time: nothing was reserved and the balance may have
// dropped since the request was made.
func (r *withdrawalRepository) Approve(ctx context.Context, withdrawalID, adminID int64, entry *domain.Transaction) error {
	logger.EnterMethod("withdrawalRepository.Approve", "withdrawalID", withdrawalID, "adminID", adminID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	withdrawal, err := scanWithdrawal(tx.QueryRowContext(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, withdrawalID))
	if err != nil {
		logger.ExitMethodWithError("withdrawalRepository.Approve", err, "withdrawalID", withdrawalID)
		return err
	}
	if withdrawal.Status != domain.WithdrawalStatusPending {
		return fmt.Errorf("approve withdrawal %s from %s: %w", withdrawal.ReferenceNumber, withdrawal.Status, domain.ErrInvalidState)
	}

	wallet, err := lockWallet(ctx, tx, withdrawal.WalletID)
	if err != nil {
		return err
	}
	if err := applyDebit(ctx, tx, wallet, withdrawal.Amount, domain.TransactionTypeWithdrawal); err != nil {
		logger.ExitMethodWithError("withdrawalRepository.Approve", err, "withdrawalID", withdrawalID)
		return err
	}
	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE withdrawals SET status = $1, approved_by = $2, approved_at = $3, transaction_id = $4
		 WHERE id = $5`,
		domain.WithdrawalStatusApproved, adminID, now, entry.ID, withdrawalID,
	)
	if err != nil {
		return fmt.Errorf("mark withdrawal %d approved: %w", withdrawalID, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("withdrawalRepository.Approve", "withdrawalID", withdrawalID, "amount", withdrawal.Amount)
	return nil
}

func (r *withdrawalRepository) Reject(ctx context.Context, withdrawalID, adminID int64, reason string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE withdrawals SET status = $1, approved_by = $2, rejection_reason = $3
		 WHERE id = $4 AND status = $5`,
		domain.WithdrawalStatusRejected, adminID, reason, withdrawalID, domain.WithdrawalStatusPending,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

func (r *withdrawalRepository) MarkProcessing(ctx context.Context, withdrawalID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE withdrawals SET status = $1 WHERE id = $2 AND status = $3`,
		domain.WithdrawalStatusProcessing, withdrawalID, domain.WithdrawalStatusApproved,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// Complete finishes the journal entry opened at approval and stamps the
// bank transfer reference. The wallet was already debited.
func (r *withdrawalRepository) Complete(ctx context.Context, withdrawalID int64, bankReference string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	withdrawal, err := scanWithdrawal(tx.QueryRowContext(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, withdrawalID))
	if err != nil {
		return err
	}
	if withdrawal.Status != domain.WithdrawalStatusProcessing {
		return fmt.Errorf("complete withdrawal %s from %s: %w", withdrawal.ReferenceNumber, withdrawal.Status, domain.ErrInvalidState)
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE withdrawals SET status = $1, bank_reference = $2, completed_at = $3 WHERE id = $4`,
		domain.WithdrawalStatusCompleted, bankReference, now, withdrawalID,
	)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE transactions SET status = $1, gateway_transaction_id = $2, completed_at = $3
		 WHERE id = (SELECT transaction_id FROM withdrawals WHERE id = $4)`,
		domain.TransactionStatusCompleted, bankReference, now, withdrawalID,
	)
	if err != nil {
		return fmt.Errorf("complete withdrawal journal entry: %w", err)
	}
	return tx.Commit()
}

// Cancel reverses the approval debit with a compensating credit. A pending
// withdrawal never touched the wallet, so only the status changes.
func (r *withdrawalRepository) Cancel(ctx context.Context, withdrawalID int64, compensation *domain.Transaction) error {
	logger.EnterMethod("withdrawalRepository.Cancel", "withdrawalID", withdrawalID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	withdrawal, err := scanWithdrawal(tx.QueryRowContext(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, withdrawalID))
	if err != nil {
		logger.ExitMethodWithError("withdrawalRepository.Cancel", err, "withdrawalID", withdrawalID)
		return err
	}
	if !withdrawal.CanCancel() {
		return fmt.Errorf("cancel withdrawal %s from %s: %w", withdrawal.ReferenceNumber, withdrawal.Status, domain.ErrInvalidState)
	}

	if withdrawal.RequiresCompensation() {
		wallet, err := lockWallet(ctx, tx, withdrawal.WalletID)
		if err != nil {
			return err
		}
		if err := applyCredit(ctx, tx, wallet, withdrawal.Amount, domain.TransactionTypeRefund); err != nil {
			logger.ExitMethodWithError("withdrawalRepository.Cancel", err, "withdrawalID", withdrawalID)
			return err
		}
		if err := insertEntry(ctx, tx, compensation); err != nil {
			return err
		}
		// The withdrawn total was already bumped at approval; take it back.
		_, err = tx.ExecContext(ctx,
			`UPDATE wallets SET total_withdrawn = total_withdrawn - $1 WHERE id = $2`,
			withdrawal.Amount, withdrawal.WalletID,
		)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE transactions SET status = $1
			 WHERE id = (SELECT transaction_id FROM withdrawals WHERE id = $2)`,
			domain.TransactionStatusCancelled, withdrawalID,
		)
		if err != nil {
			return fmt.Errorf("cancel withdrawal journal entry: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE withdrawals SET status = $1 WHERE id = $2`,
		domain.WithdrawalStatusCancelled, withdrawalID,
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("withdrawalRepository.Cancel", "withdrawalID", withdrawalID)
	return nil
}

func (r *withdrawalRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Withdrawal, int32, error) {
	return r.list(ctx, `user_id = $1`, userID, page, pageSize)
}

func (r *withdrawalRepository) ListByStatus(ctx context.Context, status domain.WithdrawalStatus, page, pageSize int32) ([]domain.Withdrawal, int32, error) {
	return r.list(ctx, `status = $1`, status, page, pageSize)
}

func (r *withdrawalRepository) list(ctx context.Context, where string, arg any, page, pageSize int32) ([]domain.Withdrawal, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE ` + where + `
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, arg, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var withdrawals []domain.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, 0, err
		}
		withdrawals = append(withdrawals, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int32
	countQuery := `SELECT count(*) FROM withdrawals WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, arg).Scan(&count); err != nil {
		return nil, 0, err
	}
	return withdrawals, count, nil
}
