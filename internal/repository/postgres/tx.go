package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"consulthub-ledger/internal/domain"
)

// Helpers shared by every repository that moves money. Each caller opens
// its own database transaction; these run inside it so the wallet lock,
// the balance mutation and the journal insert commit or roll back together.

// lockedWallet is the row state read under FOR UPDATE.
type lockedWallet struct {
	ID      int64
	UserID  int64
	Balance int64
	Status  domain.WalletStatus
}

// lockWallet acquires the row lock on a wallet by primary key.
func lockWallet(ctx context.Context, tx *sql.Tx, walletID int64) (*lockedWallet, error) {
	w := &lockedWallet{}
	err := tx.QueryRowContext(ctx,
		`SELECT id, user_id, balance, status FROM wallets WHERE id = $1 FOR UPDATE`,
		walletID,
	).Scan(&w.ID, &w.UserID, &w.Balance, &w.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock wallet %d: %w", walletID, err)
	}
	return w, nil
}

// lockWalletByUser creates the wallet if the user has none yet (wallets are
// created lazily on first financial interaction) and locks it.
func lockWalletByUser(ctx context.Context, tx *sql.Tx, userID int64, currency string) (*lockedWallet, error) {
	now := time.Now()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO wallets (user_id, currency, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, currency, domain.WalletStatusActive, now,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure wallet for user %d: %w", userID, err)
	}

	w := &lockedWallet{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, balance, status FROM wallets WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&w.ID, &w.UserID, &w.Balance, &w.Status)
	if err != nil {
		return nil, fmt.Errorf("lock wallet for user %d: %w", userID, err)
	}
	return w, nil
}

// applyCredit increases the locked wallet's balance and the lifetime total
// matching the journal entry type.
func applyCredit(ctx context.Context, tx *sql.Tx, w *lockedWallet, amount int64, entryType domain.TransactionType) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if w.Status != domain.WalletStatusActive {
		return domain.ErrWalletInactive
	}

	totalColumn := ""
	switch entryType {
	case domain.TransactionTypeDeposit:
		totalColumn = ", total_deposited = total_deposited + $1"
	case domain.TransactionTypeEscrowRelease:
		totalColumn = ", total_earned = total_earned + $1"
	}

	query := `UPDATE wallets SET balance = balance + $1` + totalColumn + `, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, amount, time.Now(), w.ID); err != nil {
		return fmt.Errorf("credit wallet %d: %w", w.ID, err)
	}
	w.Balance += amount
	return nil
}

// applyDebit decreases the locked wallet's balance after validating funds.
func applyDebit(ctx context.Context, tx *sql.Tx, w *lockedWallet, amount int64, entryType domain.TransactionType) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if w.Status != domain.WalletStatusActive {
		return domain.ErrWalletInactive
	}
	if w.Balance < amount {
		return domain.ErrInsufficientBalance
	}

	totalColumn := ""
	switch entryType {
	case domain.TransactionTypeWithdrawal:
		totalColumn = ", total_withdrawn = total_withdrawn + $1"
	case domain.TransactionTypeEscrowHold, domain.TransactionTypePayment:
		totalColumn = ", total_spent = total_spent + $1"
	}

	query := `UPDATE wallets SET balance = balance - $1` + totalColumn + `, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, amount, time.Now(), w.ID); err != nil {
		return fmt.Errorf("debit wallet %d: %w", w.ID, err)
	}
	w.Balance -= amount
	return nil
}

// insertEntry writes the journal row and fills the generated id.
func insertEntry(ctx context.Context, tx *sql.Tx, entry *domain.Transaction) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Status == domain.TransactionStatusCompleted && entry.CompletedAt == nil {
		now := time.Now()
		entry.CompletedAt = &now
	}

	err := tx.QueryRowContext(ctx,
		`INSERT INTO transactions (
			reference_number, type, status, amount, currency, payer_id, payee_id,
			project_id, escrow_id, gateway_transaction_id, description, created_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		entry.ReferenceNumber, entry.Type, entry.Status, entry.Amount, entry.Currency,
		entry.PayerID, entry.PayeeID, entry.ProjectID, entry.EscrowID,
		nullableString(entry.GatewayTxnID), entry.Description, entry.CreatedAt, entry.CompletedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("insert journal entry %s: %w", entry.ReferenceNumber, err)
	}
	return nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
