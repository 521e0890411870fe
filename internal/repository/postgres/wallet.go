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

type walletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) repository.WalletRepository {
	return &walletRepository{db: db}
}

const walletColumns = `id, user_id, balance, pending_balance, currency, status,
	total_deposited, total_withdrawn, total_earned, total_spent, created_at, updated_at`

func scanWallet(row *sql.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(
		&w.ID, &w.UserID, &w.Balance, &w.PendingBalance, &w.Currency, &w.Status,
		&w.TotalDeposited, &w.TotalWithdrawn, &w.TotalEarned, &w.TotalSpent,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *walletRepository) GetOrCreate(ctx context.Context, userID int64, currency string) (*domain.Wallet, error) {
	logger.EnterMethod("walletRepository.GetOrCreate", "userID", userID)

	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wallets (user_id, currency, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, currency, domain.WalletStatusActive, now,
	)
	if err != nil {
		logger.ExitMethodWithError("walletRepository.GetOrCreate", err, "userID", userID)
		return nil, fmt.Errorf("create wallet for user %d: %w", userID, err)
	}

	wallet, err := r.GetByUserID(ctx, userID)
	if err != nil {
		logger.ExitMethodWithError("walletRepository.GetOrCreate", err, "userID", userID)
		return nil, err
	}

	logger.ExitMethod("walletRepository.GetOrCreate", "walletID", wallet.ID)
	return wallet, nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	return scanWallet(r.db.QueryRowContext(ctx, query, userID))
}

func (r *walletRepository) GetByID(ctx context.Context, id int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return scanWallet(r.db.QueryRowContext(ctx, query, id))
}

// Credit increases the balance inside one database transaction that locks
// the wallet row and inserts the journal entry.
func (r *walletRepository) Credit(ctx context.Context, walletID int64, amount int64, entry *domain.Transaction) error {
	logger.EnterMethod("walletRepository.Credit", "walletID", walletID, "amount", amount)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, walletID)
	if err != nil {
		logger.ExitMethodWithError("walletRepository.Credit", err, "walletID", walletID)
		return err
	}
	if err := applyCredit(ctx, tx, w, amount, entry.Type); err != nil {
		logger.ExitMethodWithError("walletRepository.Credit", err, "walletID", walletID)
		return err
	}
	if err := insertEntry(ctx, tx, entry); err != nil {
		logger.ExitMethodWithError("walletRepository.Credit", err, "walletID", walletID)
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("walletRepository.Credit", "walletID", walletID, "balance", w.Balance)
	return nil
}

// Debit decreases the balance inside one database transaction that locks
// the wallet row, re-validates funds and inserts the journal entry.
func (r *walletRepository) Debit(ctx context.Context, walletID int64, amount int64, entry *domain.Transaction) error {
	logger.EnterMethod("walletRepository.Debit", "walletID", walletID, "amount", amount)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	w, err := lockWallet(ctx, tx, walletID)
	if err != nil {
		logger.ExitMethodWithError("walletRepository.Debit", err, "walletID", walletID)
		return err
	}
	if err := applyDebit(ctx, tx, w, amount, entry.Type); err != nil {
		logger.ExitMethodWithError("walletRepository.Debit", err, "walletID", walletID)
		return err
	}
	if err := insertEntry(ctx, tx, entry); err != nil {
		logger.ExitMethodWithError("walletRepository.Debit", err, "walletID", walletID)
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("walletRepository.Debit", "walletID", walletID, "balance", w.Balance)
	return nil
}

func (r *walletRepository) SetStatus(ctx context.Context, walletID int64, status domain.WalletStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE wallets SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), walletID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *walletRepository) GetSummary(ctx context.Context, userID int64) (*domain.WalletSummary, error) {
	wallet, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := &domain.WalletSummary{Wallet: *wallet}

	err = r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM withdrawals
		 WHERE user_id = $1 AND status IN ('PENDING', 'APPROVED', 'PROCESSING')`,
		userID,
	).Scan(&summary.ActiveWithdrawals)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM deposits
		 WHERE user_id = $1 AND status IN ('PENDING', 'PROCESSING')`,
		userID,
	).Scan(&summary.ProcessingDeposits)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM escrows
		 WHERE client_id = $1 AND status IN ('FUNDED', 'HELD', 'DISPUTED')`,
		userID,
	).Scan(&summary.HeldInEscrowAsOwner)
	if err != nil {
		return nil, err
	}

	return summary, nil
}
