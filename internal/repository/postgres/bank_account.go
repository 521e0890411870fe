package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/repository"

	"github.com/lib/pq"
)

type bankAccountRepository struct {
	db *sql.DB
}

func NewBankAccountRepository(db *sql.DB) repository.BankAccountRepository {
	return &bankAccountRepository{db: db}
}

const bankAccountColumns = `id, user_id, iban, holder_name, COALESCE(bank_name, ''),
	is_verified, is_primary, verified_by, created_at, verified_at`

func scanBankAccount(scanner interface {
	Scan(dest ...any) error
}) (*domain.BankAccount, error) {
	a := &domain.BankAccount{}
	err := scanner.Scan(
		&a.ID, &a.UserID, &a.IBAN, &a.HolderName, &a.BankName,
		&a.IsVerified, &a.IsPrimary, &a.VerifiedBy, &a.CreatedAt, &a.VerifiedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *bankAccountRepository) Create(ctx context.Context, account *domain.BankAccount) error {
	query := `
		INSERT INTO bank_accounts (user_id, iban, holder_name, bank_name, is_verified, is_primary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.UserID, account.IBAN, account.HolderName, account.BankName,
		account.IsVerified, account.IsPrimary, time.Now(),
	).Scan(&account.ID, &account.CreatedAt)

	// Unique index on (user_id, iban).
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrDuplicateBankAccount
	}
	return err
}

func (r *bankAccountRepository) GetByID(ctx context.Context, id int64) (*domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE id = $1`
	return scanBankAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *bankAccountRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts
	          WHERE user_id = $1 ORDER BY is_primary DESC, created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.BankAccount
	for rows.Next() {
		a, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// SetPrimary demotes the previous primary and promotes the given account
// in one database transaction.
func (r *bankAccountRepository) SetPrimary(ctx context.Context, userID, accountID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE bank_accounts SET is_primary = false WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE bank_accounts SET is_primary = true WHERE id = $1 AND user_id = $2`,
		accountID, userID,
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

	return tx.Commit()
}

func (r *bankAccountRepository) Verify(ctx context.Context, accountID, adminID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bank_accounts SET is_verified = true, verified_by = $1, verified_at = $2 WHERE id = $3`,
		adminID, time.Now(), accountID,
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

// Delete refuses while any non-terminal withdrawal still references the
// account; the existence check and the delete share one transaction.
func (r *bankAccountRepository) Delete(ctx context.Context, userID, accountID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var inUse bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM withdrawals
			WHERE bank_account_id = $1 AND status IN ('PENDING', 'APPROVED', 'PROCESSING')
		)`,
		accountID,
	).Scan(&inUse)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrBankAccountInUse
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM bank_accounts WHERE id = $1 AND user_id = $2`, accountID, userID)
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

	return tx.Commit()
}
