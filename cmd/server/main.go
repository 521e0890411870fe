package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "consulthub-ledger/internal/api/http"
	"consulthub-ledger/internal/config"
	"consulthub-ledger/internal/gateway"
	"consulthub-ledger/internal/logger"
	"consulthub-ledger/internal/repository/postgres"
	"consulthub-ledger/internal/security"
	"consulthub-ledger/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ConsultHub Ledger Service...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Gateway configuration", "base_url", cfg.Gateway.BaseURL)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Payment Gateway client
	gatewayClient := gateway.NewClient(
		cfg.Gateway.BaseURL,
		cfg.Gateway.SecretKey,
		time.Duration(cfg.Gateway.TimeoutSeconds)*time.Second,
	)

	// Initialize Services
	ledgerSvc := service.NewLedgerService(store.WalletRepository, store.TransactionRepository, cfg.Ledger.Currency)
	escrowSvc := service.NewEscrowService(store.EscrowRepository, store.TransactionRepository, cfg.Ledger)
	depositSvc := service.NewDepositService(
		store.DepositRepository,
		store.WalletRepository,
		store.EscrowRepository,
		gatewayClient,
		cfg.Ledger,
		cfg.Gateway.CallbackURL,
	)
	withdrawalSvc := service.NewWithdrawalService(
		store.WithdrawalRepository,
		store.WalletRepository,
		store.BankAccountRepository,
		cfg.Ledger,
	)
	bankAccountSvc := service.NewBankAccountService(store.BankAccountRepository, store.WithdrawalRepository)
	webhookSvc := service.NewWebhookService(
		store.WebhookRepository,
		store.DepositRepository,
		depositSvc,
		cfg.Gateway.WebhookSecret,
	)

	// Set up HTTP server
	router := httpapi.NewRouter(
		tokenManager,
		ledgerSvc,
		escrowSvc,
		depositSvc,
		withdrawalSvc,
		bankAccountSvc,
		webhookSvc,
	)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := server.ListenAndServe(); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
