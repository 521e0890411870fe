package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"consulthub-ledger/internal/security"
	"consulthub-ledger/internal/service"
)

// NewRouter wires every endpoint. API routes require a bearer token; the
// /admin subtree additionally requires the admin role. Webhooks are
// signature-authenticated, not token-authenticated.
func NewRouter(
	tokenManager security.TokenManager,
	ledgerSvc service.LedgerService,
	escrowSvc service.EscrowService,
	depositSvc service.DepositService,
	withdrawalSvc service.WithdrawalService,
	bankAccountSvc service.BankAccountService,
	webhookSvc service.WebhookService,
) *mux.Router {
	router := mux.NewRouter()

	auth := NewAuthMiddleware(tokenManager)
	walletHandler := NewWalletHandler(ledgerSvc)
	escrowHandler := NewEscrowHandler(escrowSvc)
	depositHandler := NewDepositHandler(depositSvc)
	withdrawalHandler := NewWithdrawalHandler(withdrawalSvc)
	bankAccountHandler := NewBankAccountHandler(bankAccountSvc)
	webhookHandler := NewWebhookHandler(webhookSvc)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	router.HandleFunc("/webhooks/payment", webhookHandler.HandlePaymentWebhook).Methods("POST")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Handler)

	// Wallet and journal
	api.HandleFunc("/wallet", walletHandler.GetWallet).Methods("GET")
	api.HandleFunc("/wallet/summary", walletHandler.GetSummary).Methods("GET")
	api.HandleFunc("/wallet/transactions", walletHandler.ListTransactions).Methods("GET")
	api.HandleFunc("/transactions/{reference}", walletHandler.GetTransaction).Methods("GET")

	// Deposits
	api.HandleFunc("/deposits/initialize", depositHandler.Initialize).Methods("POST")
	api.HandleFunc("/deposits", depositHandler.List).Methods("GET")
	api.HandleFunc("/deposits/{reference}/status", depositHandler.GetStatus).Methods("GET")

	// Withdrawals
	api.HandleFunc("/withdrawals", withdrawalHandler.Request).Methods("POST")
	api.HandleFunc("/withdrawals", withdrawalHandler.List).Methods("GET")
	api.HandleFunc("/withdrawals/{reference}", withdrawalHandler.Get).Methods("GET")
	api.HandleFunc("/withdrawals/{reference}/cancel", withdrawalHandler.Cancel).Methods("POST")

	// Bank accounts
	api.HandleFunc("/bank-accounts", bankAccountHandler.Register).Methods("POST")
	api.HandleFunc("/bank-accounts", bankAccountHandler.List).Methods("GET")
	api.HandleFunc("/bank-accounts/{id}/primary", bankAccountHandler.SetPrimary).Methods("POST")
	api.HandleFunc("/bank-accounts/{id}", bankAccountHandler.Delete).Methods("DELETE")

	// Escrows
	api.HandleFunc("/escrows", escrowHandler.Create).Methods("POST")
	api.HandleFunc("/escrows/client", escrowHandler.ListAsClient).Methods("GET")
	api.HandleFunc("/escrows/consultant", escrowHandler.ListAsConsultant).Methods("GET")
	api.HandleFunc("/escrows/reference/{reference}", escrowHandler.GetByReference).Methods("GET")
	api.HandleFunc("/escrows/{id}", escrowHandler.Get).Methods("GET")
	api.HandleFunc("/escrows/{id}/fund", escrowHandler.Fund).Methods("POST")
	api.HandleFunc("/escrows/{id}/cancel", escrowHandler.Cancel).Methods("POST")
	api.HandleFunc("/escrows/{id}/dispute", escrowHandler.Dispute).Methods("POST")

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireAdmin)
	admin.HandleFunc("/withdrawals", withdrawalHandler.ListByStatus).Methods("GET")
	admin.HandleFunc("/withdrawals/{reference}/approve", withdrawalHandler.Approve).Methods("POST")
	admin.HandleFunc("/withdrawals/{reference}/reject", withdrawalHandler.Reject).Methods("POST")
	admin.HandleFunc("/withdrawals/{reference}/process", withdrawalHandler.MarkProcessing).Methods("POST")
	admin.HandleFunc("/withdrawals/{reference}/complete", withdrawalHandler.Complete).Methods("POST")
	admin.HandleFunc("/escrows/{id}/hold", escrowHandler.Hold).Methods("POST")
	admin.HandleFunc("/escrows/{id}/release", escrowHandler.Release).Methods("POST")
	admin.HandleFunc("/escrows/{id}/refund", escrowHandler.Refund).Methods("POST")
	admin.HandleFunc("/bank-accounts/{id}/verify", bankAccountHandler.Verify).Methods("POST")
	admin.HandleFunc("/users/{userID}/wallet/freeze", walletHandler.FreezeWallet).Methods("POST")
	admin.HandleFunc("/users/{userID}/wallet/unfreeze", walletHandler.UnfreezeWallet).Methods("POST")

	return router
}
