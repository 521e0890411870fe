package domain

import "errors"

// Sentinel errors for the ledger. Handlers branch on these with errors.Is
// to pick the HTTP status; services wrap them with context via fmt.Errorf.
var (
	ErrNotFound       = errors.New("record not found")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrWalletInactive = errors.New("wallet is not active")

	// ErrInsufficientBalance is distinct from generic validation so that
	// callers can prompt the user to deposit.
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrInvalidEscrowState = errors.New("escrow is not in a valid state for this operation")
	// ErrAlreadyReleased signals the idempotent no-op case of a repeated
	// release call. It is not a failure the caller must retry.
	ErrAlreadyReleased = errors.New("escrow already released")

	ErrInvalidState             = errors.New("invalid state for this operation")
	ErrAlreadyCompleted         = errors.New("already completed")
	ErrTooManyActiveWithdrawals = errors.New("too many active withdrawal requests")
	ErrBelowMinimumWithdrawal   = errors.New("amount below minimum withdrawal")
	ErrBelowMinimumDeposit      = errors.New("amount below minimum deposit")
	ErrAboveMaximumDeposit      = errors.New("amount above maximum deposit")

	ErrBankAccountNotVerified = errors.New("bank account is not verified")
	ErrBankAccountInUse       = errors.New("bank account is referenced by an active withdrawal")
	ErrDuplicateBankAccount   = errors.New("bank account already registered")

	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
)
