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

var depositTestColumns = []string{
	"id", "reference_number", "user_id", "amount", "currency", "status",
	"payment_method", "gateway_charge_id", "payment_url",
	"escrow_id", "failure_reason", "created_at", "completed_at",
}

func depositRow(id int64, status domain.DepositStatus, amount int64) *sqlmock.Rows {
	return sqlmock.NewRows(depositTestColumns).
		AddRow(id, "DEP-TEST", 2, amount, "SAR", status, "card", "ch_123", "", nil, "", time.Now(), nil)
}

func TestDepositRepository_Complete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewDepositRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		entry := depositEntry(2, 5000)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM deposits WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(10)).
			WillReturnRows(depositRow(10, domain.DepositStatusProcessing, 5000))
		mock.ExpectExec("INSERT INTO wallets").
			WithArgs(int64(2), "SAR", domain.WalletStatusActive, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT id, user_id, balance, status FROM wallets WHERE user_id = (.+) FOR UPDATE").
			WithArgs(int64(2)).
			WillReturnRows(lockedWalletRows(1, 2, 0, domain.WalletStatusActive))
		mock.ExpectExec("UPDATE wallets SET balance = balance \\+ (.+), total_deposited = total_deposited \\+").
			WithArgs(int64(5000), sqlmock.AnyArg(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(90))
		mock.ExpectExec("UPDATE deposits SET status =").
			WithArgs(domain.DepositStatusCompleted, sqlmock.AnyArg(), int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Complete(ctx, 10, entry)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyCompleted", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM deposits WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(10)).
			WillReturnRows(depositRow(10, domain.DepositStatusCompleted, 5000))
		mock.ExpectRollback()

		err := repo.Complete(ctx, 10, depositEntry(2, 5000))
		assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FailedDeposit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM deposits WHERE id = (.+) FOR UPDATE").
			WithArgs(int64(10)).
			WillReturnRows(depositRow(10, domain.DepositStatusFailed, 5000))
		mock.ExpectRollback()

		err := repo.Complete(ctx, 10, depositEntry(2, 5000))
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestDepositRepository_AttachCharge(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewDepositRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE deposits SET gateway_charge_id =").
			WithArgs("ch_123", "https://pay.example/ch_123", domain.DepositStatusProcessing,
				int64(10), domain.DepositStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AttachCharge(ctx, 10, "ch_123", "https://pay.example/ch_123")
		assert.NoError(t, err)
	})

	t.Run("NotPending", func(t *testing.T) {
		mock.ExpectExec("UPDATE deposits SET gateway_charge_id =").
			WithArgs("ch_123", "", domain.DepositStatusProcessing, int64(10), domain.DepositStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AttachCharge(ctx, 10, "ch_123", "")
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestDepositRepository_ExpireOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewDepositRepository(db)
	ctx := context.Background()

	cutoff := time.Now().Add(-48 * time.Hour)
	mock.ExpectExec("UPDATE deposits SET status =").
		WithArgs(domain.DepositStatusFailed, domain.DepositStatusPending, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	expired, err := repo.ExpireOlderThan(ctx, cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), expired)
}
