package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/repository/postgres"
)

var withdrawalTestColumns = []string{
	"id", "reference_number", "user_id", "wallet_id", "bank_account_id",
	"amount", "fee", "net_amount", "currency", "status", "rejection_reason",
	"bank_reference", "approved_by", "created_at", "approved_at", "completed_at",
}

func withdrawalRow(id int64, status domain.WithdrawalStatus, amount int64) *sqlmock.Rows {
	return sqlmock.NewRows(withdrawalTestColumns).
		AddRow(id, "WDR-TEST", 2, 1, 3, amount, 0, amount, "SAR", status, "", "", nil, time.Now(), nil, nil)
}

func TestWithdrawalRepository_Approve(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewWithdrawalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		payer := int64(2)
		entry := &domain.Transaction{
			ReferenceNumber: "TXN-WDR",
			Type:            domain.TransactionTypeWithdrawal,
			Status:          domain.TransactionStatusProcessing,
			Amount:          4000,
			Currency:        "SAR",
			PayerID:         &payer,
		}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM withdrawals WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(20)).
			WillReturnRows(withdrawalRow(20, domain.WithdrawalStatusPending, 4000))
		mock.ExpectQuery("SELECT id, user_id, balance, status FROM wallets WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(1)).
			WillReturnRows(lockedWalletRows(1, 2, 10000, domain.WalletStatusActive))
		mock.ExpectExec("UPDATE wallets SET balance = balance - (.+), total_withdrawn = total_withdrawn \\+").
			WithArgs(int64(4000), sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(91))
		mock.ExpectExec("UPDATE withdrawals SET status =").
			WithArgs(domain.WithdrawalStatusApproved, int64(9), sqlmock.AnyArg(), int64(91), int64(20)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Approve(ctx, 20, 9, entry)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BalanceDroppedSinceRequest", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM withdrawals WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(20)).
			WillReturnRows(withdrawalRow(20, domain.WithdrawalStatusPending, 4000))
		mock.ExpectQuery("SELECT id, user_id, balance, status FROM wallets WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(1)).
			WillReturnRows(lockedWalletRows(1, 2, 1000, domain.WalletStatusActive))
		mock.ExpectRollback()

		entry := &domain.Transaction{Type: domain.TransactionTypeWithdrawal, Amount: 4000}
		err := repo.Approve(ctx, 20, 9, entry)
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotPending", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM withdrawals WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(20)).
			WillReturnRows(withdrawalRow(20, domain.WithdrawalStatusApproved, 4000))
		mock.ExpectRollback()

		entry := &domain.Transaction{Type: domain.TransactionTypeWithdrawal, Amount: 4000}
		err := repo.Approve(ctx, 20, 9, entry)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestWithdrawalRepository_Cancel(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewWithdrawalRepository(db)
	ctx := context.Background()

	t.Run("PendingSkipsCompensation", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM withdrawals WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(20)).
			WillReturnRows(withdrawalRow(20, domain.WithdrawalStatusPending, 4000))
		mock.ExpectExec("UPDATE withdrawals SET status =").
			WithArgs(domain.WithdrawalStatusCancelled, int64(20)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Cancel(ctx, 20, nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ApprovedCreditsBack", func(t *testing.T) {
		payee := int64(2)
		compensation := &domain.Transaction{
			ReferenceNumber: "TXN-COMP",
			Type:            domain.TransactionTypeRefund,
			Status:          domain.TransactionStatusCompleted,
			Amount:          4000,
			Currency:        "SAR",
			PayeeID:         &payee,
		}

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM withdrawals WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(20)).
			WillReturnRows(withdrawalRow(20, domain.WithdrawalStatusApproved, 4000))
		mock.ExpectQuery("SELECT id, user_id, balance, status FROM wallets WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(1)).
			WillReturnRows(lockedWalletRows(1, 2, 6000, domain.WalletStatusActive))
		mock.ExpectExec("UPDATE wallets SET balance = balance \\+").
			WithArgs(int64(4000), sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(92))
		mock.ExpectExec("UPDATE wallets SET total_withdrawn = total_withdrawn -").
			WithArgs(int64(4000), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE transactions SET status =").
			WithArgs(domain.TransactionStatusCancelled, int64(20)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE withdrawals SET status =").
			WithArgs(domain.WithdrawalStatusCancelled, int64(20)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Cancel(ctx, 20, compensation)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CompletedCannotCancel", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM withdrawals WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(20)).
			WillReturnRows(withdrawalRow(20, domain.WithdrawalStatusCompleted, 4000))
		mock.ExpectRollback()

		err := repo.Cancel(ctx, 20, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}
