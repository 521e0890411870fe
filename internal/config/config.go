package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// GatewayConfig contains payment gateway settings
type GatewayConfig struct {
	BaseURL        string `yaml:"base_url"`
	SecretKey      string `yaml:"secret_key"`
	PublishableKey string `yaml:"publishable_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	CallbackURL    string `yaml:"callback_url"`
}

// LedgerConfig contains money movement limits and fee settings.
// All amounts are in minor units (halalas).
type LedgerConfig struct {
	Currency                string `yaml:"currency"`
	MinDepositAmount        int64  `yaml:"min_deposit_amount"`
	MaxDepositAmount        int64  `yaml:"max_deposit_amount"`
	MinWithdrawalAmount     int64  `yaml:"min_withdrawal_amount"`
	MaxActiveWithdrawals    int32  `yaml:"max_active_withdrawals"`
	PlatformFeeBasisPoints  int64  `yaml:"platform_fee_basis_points"`
	WithdrawalFeeFlat       int64  `yaml:"withdrawal_fee_flat"`
	DepositPollAfterMinutes int    `yaml:"deposit_poll_after_minutes"`
	DepositExpiryHours      int    `yaml:"deposit_expiry_hours"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	PollPendingDeposits string `yaml:"poll_pending_deposits"`
	ExpireStaleDeposits string `yaml:"expire_stale_deposits"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Gateway
	if val := os.Getenv("GATEWAY_BASE_URL"); val != "" {
		c.Gateway.BaseURL = val
	}
	if val := os.Getenv("GATEWAY_SECRET_KEY"); val != "" {
		c.Gateway.SecretKey = val
	}
	if val := os.Getenv("GATEWAY_PUBLISHABLE_KEY"); val != "" {
		c.Gateway.PublishableKey = val
	}
	if val := os.Getenv("GATEWAY_WEBHOOK_SECRET"); val != "" {
		c.Gateway.WebhookSecret = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Gateway validation
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway base URL is required")
	}
	if c.Gateway.SecretKey == "" {
		return fmt.Errorf("gateway secret key is required")
	}
	if c.Gateway.WebhookSecret == "" {
		return fmt.Errorf("gateway webhook secret is required")
	}
	if c.Gateway.TimeoutSeconds == 0 {
		c.Gateway.TimeoutSeconds = 15
	}

	// Ledger defaults
	if c.Ledger.Currency == "" {
		c.Ledger.Currency = "SAR"
	}
	if c.Ledger.MinDepositAmount == 0 {
		c.Ledger.MinDepositAmount = 1000 // 10.00 SAR
	}
	if c.Ledger.MaxDepositAmount == 0 {
		c.Ledger.MaxDepositAmount = 100000000 // 1,000,000.00 SAR
	}
	if c.Ledger.MinWithdrawalAmount == 0 {
		c.Ledger.MinWithdrawalAmount = 10000 // 100.00 SAR
	}
	if c.Ledger.MaxActiveWithdrawals == 0 {
		c.Ledger.MaxActiveWithdrawals = 3
	}
	if c.Ledger.PlatformFeeBasisPoints == 0 {
		c.Ledger.PlatformFeeBasisPoints = 1000 // 10%
	}
	if c.Ledger.PlatformFeeBasisPoints < 0 || c.Ledger.PlatformFeeBasisPoints > 10000 {
		return fmt.Errorf("platform fee basis points out of range: %d", c.Ledger.PlatformFeeBasisPoints)
	}
	if c.Ledger.DepositPollAfterMinutes == 0 {
		c.Ledger.DepositPollAfterMinutes = 15
	}
	if c.Ledger.DepositExpiryHours == 0 {
		c.Ledger.DepositExpiryHours = 24
	}

	// Scheduler defaults
	if c.Scheduler.PollPendingDeposits == "" {
		c.Scheduler.PollPendingDeposits = "0 */10 * * * *" // every 10 minutes
	}
	if c.Scheduler.ExpireStaleDeposits == "" {
		c.Scheduler.ExpireStaleDeposits = "0 0 2 * * *" // 2 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
