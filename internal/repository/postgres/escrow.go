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

type escrowRepository struct {
	db *sql.DB
}

func NewEscrowRepository(db *sql.DB) repository.EscrowRepository {
	return &escrowRepository{db: db}
}

const escrowColumns = `id, reference_number, client_id, consultant_id, project_id,
	amount, platform_fee, consultant_amount, currency, status, COALESCE(note, ''),
	created_at, funded_at, released_at, refunded_at`

func scanEscrow(scanner interface {
	Scan(dest ...any) error
}) (*domain.Escrow, error) {
	e := &domain.Escrow{}
	err := scanner.Scan(
		&e.ID, &e.ReferenceNumber, &e.ClientID, &e.ConsultantID, &e.ProjectID,
		&e.Amount, &e.PlatformFee, &e.ConsultantAmount, &e.Currency, &e.Status,
		&e.Note, &e.CreatedAt, &e.FundedAt, &e.ReleasedAt, &e.RefundedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *escrowRepository) Create(ctx context.Context, escrow *domain.Escrow) error {
	query := `
		INSERT INTO escrows (
			reference_number, client_id, consultant_id, project_id,
			amount, platform_fee, consultant_amount, currency, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		escrow.ReferenceNumber, escrow.ClientID, escrow.ConsultantID, escrow.ProjectID,
		escrow.Amount, escrow.PlatformFee, escrow.ConsultantAmount, escrow.Currency,
		escrow.Status, time.Now(),
	).Scan(&escrow.ID, &escrow.CreatedAt)
}

func (r *escrowRepository) GetByID(ctx context.Context, id int64) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE id = $1`
	return scanEscrow(r.db.QueryRowContext(ctx, query, id))
}

func (r *escrowRepository) GetByReference(ctx context.Context, referenceNumber string) (*domain.Escrow, error) {
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE reference_number = $1`
	return scanEscrow(r.db.QueryRowContext(ctx, query, referenceNumber))
}

// lockEscrow reads the escrow row under FOR UPDATE so that concurrent
// release/refund calls serialize and exactly one wins.
func lockEscrow(ctx context.Context, tx *sql.Tx, escrowID int64) (*domain.Escrow, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+escrowColumns+` FROM escrows WHERE id = $1 FOR UPDATE`, escrowID)
	return scanEscrow(row)
}

// Fund debits the client wallet by the full escrow amount and transitions
// PENDING -> FUNDED, all in one database transaction.
func (r *escrowRepository) Fund(ctx context.Context, escrowID int64, entry *domain.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	escrow, err := lockEscrow(ctx, tx, escrowID)
	if err != nil {
		return err
	}
	if !escrow.CanFund() {
		return fmt.Errorf("fund escrow %s from %s: %w", escrow.ReferenceNumber, escrow.Status, domain.ErrInvalidEscrowState)
	}

	wallet, err := lockWalletByUser(ctx, tx, escrow.ClientID, escrow.Currency)
	if err != nil {
		return err
	}
	if err := applyDebit(ctx, tx, wallet, escrow.Amount, domain.TransactionTypeEscrowHold); err != nil {
		return err
	}
	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE escrows SET status = $1, funded_at = $2 WHERE id = $3`,
		domain.EscrowStatusFunded, now, escrowID,
	)
	if err != nil {
		return fmt.Errorf("mark escrow %d funded: %w", escrowID, err)
	}
	return tx.Commit()
}

func (r *escrowRepository) Hold(ctx context.Context, escrowID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE escrows SET status = $1 WHERE id = $2 AND status IN ($3, $4)`,
		domain.EscrowStatusHeld, escrowID, domain.EscrowStatusFunded, domain.EscrowStatusDisputed,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInvalidEscrowState
	}
	return nil
}

// Release moves the consultant share into the consultant's wallet and
// journals the release and platform-fee entries atomically with the state
// transition. The fee entry has no payee: the platform retains it.
func (r *escrowRepository) Release(ctx context.Context, escrowID int64, note string, releaseEntry, feeEntry *domain.Transaction) error {
	logger.EnterMethod("escrowRepository.Release", "escrowID", escrowID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	escrow, err := lockEscrow(ctx, tx, escrowID)
	if err != nil {
		logger.ExitMethodWithError("escrowRepository.Release", err, "escrowID", escrowID)
		return err
	}
	if escrow.Status == domain.EscrowStatusReleased {
		return domain.ErrAlreadyReleased
	}
	if !escrow.CanRelease() {
		logger.Warn("Release rejected", "escrowID", escrowID, "status", escrow.Status)
		return fmt.Errorf("release escrow %s from %s: %w", escrow.ReferenceNumber, escrow.Status, domain.ErrInvalidEscrowState)
	}

	wallet, err := lockWalletByUser(ctx, tx, escrow.ConsultantID, escrow.Currency)
	if err != nil {
		return err
	}
	if err := applyCredit(ctx, tx, wallet, escrow.ConsultantAmount, domain.TransactionTypeEscrowRelease); err != nil {
		logger.ExitMethodWithError("escrowRepository.Release", err, "escrowID", escrowID)
		return err
	}
	if err := insertEntry(ctx, tx, releaseEntry); err != nil {
		return err
	}
	if escrow.PlatformFee > 0 {
		if err := insertEntry(ctx, tx, feeEntry); err != nil {
			return err
		}
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE escrows SET status = $1, note = $2, released_at = $3 WHERE id = $4`,
		domain.EscrowStatusReleased, note, now, escrowID,
	)
	if err != nil {
		return fmt.Errorf("mark escrow %d released: %w", escrowID, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("escrowRepository.Release", "escrowID", escrowID, "consultantAmount", escrow.ConsultantAmount)
	return nil
}

// Refund credits the client's wallet with the full escrow amount.
func (r *escrowRepository) Refund(ctx context.Context, escrowID int64, reason string, entry *domain.Transaction) error {
	logger.EnterMethod("escrowRepository.Refund", "escrowID", escrowID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	escrow, err := lockEscrow(ctx, tx, escrowID)
	if err != nil {
		logger.ExitMethodWithError("escrowRepository.Refund", err, "escrowID", escrowID)
		return err
	}
	if !escrow.CanRefund() {
		logger.Warn("Refund rejected", "escrowID", escrowID, "status", escrow.Status)
		return fmt.Errorf("refund escrow %s from %s: %w", escrow.ReferenceNumber, escrow.Status, domain.ErrInvalidEscrowState)
	}

	wallet, err := lockWalletByUser(ctx, tx, escrow.ClientID, escrow.Currency)
	if err != nil {
		return err
	}
	if err := applyCredit(ctx, tx, wallet, escrow.Amount, domain.TransactionTypeRefund); err != nil {
		logger.ExitMethodWithError("escrowRepository.Refund", err, "escrowID", escrowID)
		return err
	}
	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`UPDATE escrows SET status = $1, note = $2, refunded_at = $3 WHERE id = $4`,
		domain.EscrowStatusRefunded, reason, now, escrowID,
	)
	if err != nil {
		return fmt.Errorf("mark escrow %d refunded: %w", escrowID, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("escrowRepository.Refund", "escrowID", escrowID, "amount", escrow.Amount)
	return nil
}

func (r *escrowRepository) MarkDisputed(ctx context.Context, escrowID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE escrows SET status = $1 WHERE id = $2 AND status IN ($3, $4)`,
		domain.EscrowStatusDisputed, escrowID, domain.EscrowStatusFunded, domain.EscrowStatusHeld,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInvalidEscrowState
	}
	return nil
}

func (r *escrowRepository) Cancel(ctx context.Context, escrowID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE escrows SET status = $1 WHERE id = $2 AND status = $3`,
		domain.EscrowStatusCancelled, escrowID, domain.EscrowStatusPending,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInvalidEscrowState
	}
	return nil
}

func (r *escrowRepository) ListByClient(ctx context.Context, clientID int64, page, pageSize int32) ([]domain.Escrow, int32, error) {
	return r.list(ctx, `client_id`, clientID, page, pageSize)
}

func (r *escrowRepository) ListByConsultant(ctx context.Context, consultantID int64, page, pageSize int32) ([]domain.Escrow, int32, error) {
	return r.list(ctx, `consultant_id`, consultantID, page, pageSize)
}

func (r *escrowRepository) list(ctx context.Context, column string, userID int64, page, pageSize int32) ([]domain.Escrow, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + escrowColumns + ` FROM escrows WHERE ` + column + ` = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var escrows []domain.Escrow
	for rows.Next() {
		e, err := scanEscrow(rows)
		if err != nil {
			return nil, 0, err
		}
		escrows = append(escrows, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int32
	countQuery := `SELECT count(*) FROM escrows WHERE ` + column + ` = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}
	return escrows, count, nil
}
