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

type depositRepository struct {
	db *sql.DB
}

func NewDepositRepository(db *sql.DB) repository.DepositRepository {
	return &depositRepository{db: db}
}

const depositColumns = `id, reference_number, user_id, amount, currency, status,
	COALESCE(payment_method, ''), COALESCE(gateway_charge_id, ''), COALESCE(payment_url, ''),
	escrow_id, COALESCE(failure_reason, ''), created_at, completed_at`

func scanDeposit(scanner interface {
	Scan(dest ...any) error
}) (*domain.Deposit, error) {
	d := &domain.Deposit{}
	err := scanner.Scan(
		&d.ID, &d.ReferenceNumber, &d.UserID, &d.Amount, &d.Currency, &d.Status,
		&d.PaymentMethod, &d.GatewayChargeID, &d.PaymentURL,
		&d.EscrowID, &d.FailureReason, &d.CreatedAt, &d.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *depositRepository) Create(ctx context.Context, deposit *domain.Deposit) error {
	query := `
		INSERT INTO deposits (
			reference_number, user_id, amount, currency, status, payment_method, escrow_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		deposit.ReferenceNumber, deposit.UserID, deposit.Amount, deposit.Currency,
		deposit.Status, deposit.PaymentMethod, deposit.EscrowID, time.Now(),
	).Scan(&deposit.ID, &deposit.CreatedAt)
}

func (r *depositRepository) GetByID(ctx context.Context, id int64) (*domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE id = $1`
	return scanDeposit(r.db.QueryRowContext(ctx, query, id))
}

func (r *depositRepository) GetByReference(ctx context.Context, referenceNumber string) (*domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE reference_number = $1`
	return scanDeposit(r.db.QueryRowContext(ctx, query, referenceNumber))
}

func (r *depositRepository) GetByChargeID(ctx context.Context, gatewayChargeID string) (*domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE gateway_charge_id = $1`
	return scanDeposit(r.db.QueryRowContext(ctx, query, gatewayChargeID))
}

func (r *depositRepository) AttachCharge(ctx context.Context, depositID int64, chargeID, paymentURL string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE deposits SET gateway_charge_id = $1, payment_url = $2, status = $3
		 WHERE id = $4 AND status = $5`,
		chargeID, paymentURL, domain.DepositStatusProcessing, depositID, domain.DepositStatusPending,
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

// Complete credits the user's wallet and completes the deposit exactly once.
// The deposit row is locked and its status re-checked inside the same
// database transaction: this is the second idempotency layer behind the
// webhook-log dedup, covering the poll fallback as well.
func (r *depositRepository) Complete(ctx context.Context, depositID int64, entry *domain.Transaction) error {
	logger.EnterMethod("depositRepository.Complete", "depositID", depositID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	deposit, err := scanDeposit(tx.QueryRowContext(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE id = $1 FOR UPDATE`, depositID))
	if err != nil {
		logger.ExitMethodWithError("depositRepository.Complete", err, "depositID", depositID)
		return err
	}
	if deposit.Status == domain.DepositStatusCompleted {
		return domain.ErrAlreadyCompleted
	}
	if deposit.IsFinal() {
		return fmt.Errorf("complete deposit %s from %s: %w", deposit.ReferenceNumber, deposit.Status, domain.ErrInvalidState)
	}

	wallet, err := lockWalletByUser(ctx, tx, deposit.UserID, deposit.Currency)
	if err != nil {
		return err
	}
	if err := applyCredit(ctx, tx, wallet, deposit.Amount, domain.TransactionTypeDeposit); err != nil {
		logger.ExitMethodWithError("depositRepository.Complete", err, "depositID", depositID)
		return err
	}
	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE deposits SET status = $1, completed_at = $2 WHERE id = $3`,
		domain.DepositStatusCompleted, now, depositID,
	)
	if err != nil {
		return fmt.Errorf("mark deposit %d completed: %w", depositID, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("depositRepository.Complete", "depositID", depositID, "amount", deposit.Amount)
	return nil
}

func (r *depositRepository) Fail(ctx context.Context, depositID int64, reason string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE deposits SET status = $1, failure_reason = $2
		 WHERE id = $3 AND status IN ($4, $5)`,
		domain.DepositStatusFailed, reason, depositID,
		domain.DepositStatusPending, domain.DepositStatusProcessing,
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

func (r *depositRepository) Cancel(ctx context.Context, depositID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE deposits SET status = $1 WHERE id = $2 AND status IN ($3, $4)`,
		domain.DepositStatusCancelled, depositID,
		domain.DepositStatusPending, domain.DepositStatusProcessing,
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

func (r *depositRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Deposit, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE user_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, 0, err
		}
		deposits = append(deposits, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM deposits WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}
	return deposits, count, nil
}

func (r *depositRepository) ListUnresolved(ctx context.Context, cutoff time.Time, limit int32) ([]domain.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits
	          WHERE status = $1 AND created_at < $2
	          ORDER BY created_at LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, domain.DepositStatusProcessing, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []domain.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, *d)
	}
	return deposits, rows.Err()
}

func (r *depositRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE deposits SET status = $1, failure_reason = 'expired before gateway confirmation'
		 WHERE status = $2 AND created_at < $3`,
		domain.DepositStatusFailed, domain.DepositStatusPending, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
