package postgres

import (
	"context"
	"database/sql"
	"errors"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/repository"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, reference_number, type, status, amount, currency,
	payer_id, payee_id, project_id, escrow_id, COALESCE(gateway_transaction_id, ''),
	COALESCE(description, ''), created_at, completed_at`

func scanTransaction(scanner interface {
	Scan(dest ...any) error
}) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := scanner.Scan(
		&t.ID, &t.ReferenceNumber, &t.Type, &t.Status, &t.Amount, &t.Currency,
		&t.PayerID, &t.PayeeID, &t.ProjectID, &t.EscrowID, &t.GatewayTxnID,
		&t.Description, &t.CreatedAt, &t.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, referenceNumber string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference_number = $1`
	return scanTransaction(r.db.QueryRowContext(ctx, query, referenceNumber))
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Transaction, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + transactionColumns + `
	          FROM transactions
	          WHERE payer_id = $1 OR payee_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int32
	countQuery := `SELECT count(*) FROM transactions WHERE payer_id = $1 OR payee_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}
	return txs, count, nil
}

func (r *transactionRepository) ListByEscrow(ctx context.Context, escrowID int64) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE escrow_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, escrowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}
