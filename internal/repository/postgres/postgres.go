package postgres

import (
	"database/sql"

	"consulthub-ledger/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.WalletRepository
	repository.TransactionRepository
	repository.EscrowRepository
	repository.DepositRepository
	repository.WithdrawalRepository
	repository.BankAccountRepository
	repository.WebhookRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		WalletRepository:      NewWalletRepository(db),
		TransactionRepository: NewTransactionRepository(db),
		EscrowRepository:      NewEscrowRepository(db),
		DepositRepository:     NewDepositRepository(db),
		WithdrawalRepository:  NewWithdrawalRepository(db),
		BankAccountRepository: NewBankAccountRepository(db),
		WebhookRepository:     NewWebhookRepository(db),
	}
}
