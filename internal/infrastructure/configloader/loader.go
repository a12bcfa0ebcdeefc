package configloader

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the YAML file.
const (
	EnvConfigPath         = "ORBIX_CONFIG"
	EnvWalletEndpoint     = "ORBIX_WALLET_ENDPOINT"
	EnvReceiptAPIKey      = "ORBIX_RECEIPT_API_KEY"
	EnvPlatformFeeAddress = "ORBIX_PLATFORM_FEE_ADDRESS"
	EnvLogLevel           = "ORBIX_LOG_LEVEL"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// DefaultConfigPath is used when ORBIX_CONFIG is not set.
const DefaultConfigPath = "config/config.yml"

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string   `yaml:"port"`
	ReadTimeout  int      `yaml:"readTimeout"`
	WriteTimeout int      `yaml:"writeTimeout"`
	IdleTimeout  int      `yaml:"idleTimeout"`
	AllowOrigins []string `yaml:"allowOrigins"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level      string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

// NetworkConfig selects the chain the wallet is switched to.
type NetworkConfig struct {
	Identifier string `yaml:"identifier"`
	RPCURL     string `yaml:"rpcURL"` // overrides the definition's public RPC URL
}

// WalletConfig describes how the wallet provider is reached.
type WalletConfig struct {
	Endpoint         string  `yaml:"endpoint"` // JSON-RPC URL of the wallet bridge
	Simulate         bool    `yaml:"simulate"`
	SimulatedAccount string  `yaml:"simulatedAccount"` // random when empty
	SimulatedBalance float64 `yaml:"simulatedBalance"`
	DialTimeoutMs    int64   `yaml:"dialTimeoutMs"`
	RPCCallTimeoutMs int64   `yaml:"rpcCallTimeoutMs"` // per-call limit once connected
	RateLimit        int     `yaml:"rateLimit"`
	BurstLimit       int     `yaml:"burstLimit"`
}

// PlatformConfig holds the fee configuration. It is read once at startup.
// Its numeric fields are seeded before the file is parsed, so an explicit 0
// in YAML is kept.
type PlatformConfig struct {
	FeePercentage       float64 `yaml:"feePercentage"`
	FeeAddress          string  `yaml:"feeAddress"`
	VATRefundPercentage float64 `yaml:"vatRefundPercentage"`
	DustThreshold       float64 `yaml:"dustThreshold"`
	FeePolicy           string  `yaml:"feePolicy"` // best_effort or required
}

// BulkConfig holds the submission pacing.
type BulkConfig struct {
	InterSubmissionDelayMs int64 `yaml:"interSubmissionDelayMs"`
}

// StatusLookupConfig controls transaction status lookups.
type StatusLookupConfig struct {
	Optimistic      bool `yaml:"optimistic"`
	CacheTTLMinutes int  `yaml:"cacheTTLMinutes"`
}

// ReceiptServiceConfig holds AI extraction service specific configurations.
type ReceiptServiceConfig struct {
	BaseURL              string `yaml:"baseURL"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
	MaxFileSizeBytes     int64  `yaml:"maxFileSizeBytes"`
	CacheTTLMinutes      int    `yaml:"cacheTTLMinutes"`
	RateLimit            int    `yaml:"rateLimit"`
}

// RefundConfig holds the AI demo refund settings.
type RefundConfig struct {
	DemoAmount float64 `yaml:"demoAmount"`
}

// StorageConfig points at the local state database.
type StorageConfig struct {
	Path string `yaml:"path"` // empty keeps state in memory
}

// BalanceRefreshConfig schedules the periodic balance refresh.
type BalanceRefreshConfig struct {
	Schedule string `yaml:"schedule"`
}

// TokensConfig points at an optional token catalog file.
type TokensConfig struct {
	File string `yaml:"file"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Logging        LoggingConfig        `yaml:"logging"`
	Network        NetworkConfig        `yaml:"network"`
	Wallet         WalletConfig         `yaml:"wallet"`
	Platform       PlatformConfig       `yaml:"platform"`
	Bulk           BulkConfig           `yaml:"bulk"`
	StatusLookup   StatusLookupConfig   `yaml:"statusLookup"`
	ReceiptService ReceiptServiceConfig `yaml:"receiptService"`
	Refund         RefundConfig         `yaml:"refund"`
	Storage        StorageConfig        `yaml:"storage"`
	BalanceRefresh BalanceRefreshConfig `yaml:"balanceRefresh"`
	Tokens         TokensConfig         `yaml:"tokens"`
}

// Path returns the config path from ORBIX_CONFIG or the default.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load reads the YAML configuration file from the given path and unmarshals it.
// A missing file is not an error: defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	cfg := Config{Platform: defaultPlatform()}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
		logrus.Infof("Loaded configuration from %s", path)
	case os.IsNotExist(err):
		logrus.Warnf("Config file %s not found, using defaults", path)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultPlatform() PlatformConfig {
	return PlatformConfig{
		FeePercentage:       0.5,
		VATRefundPercentage: 85,
		DustThreshold:       1e-6,
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvWalletEndpoint); v != "" {
		cfg.Wallet.Endpoint = v
	}
	if v := os.Getenv(EnvReceiptAPIKey); v != "" {
		cfg.ReceiptService.APIKey = v
	}
	if v := os.Getenv(EnvPlatformFeeAddress); v != "" {
		cfg.Platform.FeeAddress = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		// Payments wait on the user to approve in the wallet.
		cfg.Server.WriteTimeout = 300
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB <= 0 {
		cfg.Logging.MaxSizeMB = 50
	}
	if cfg.Logging.MaxBackups <= 0 {
		cfg.Logging.MaxBackups = 3
	}
	if cfg.Network.Identifier == "" {
		cfg.Network.Identifier = "monad-testnet"
	}
	if cfg.Wallet.Simulate && cfg.Wallet.SimulatedBalance <= 0 {
		cfg.Wallet.SimulatedBalance = 10
	}
	if cfg.Wallet.DialTimeoutMs <= 0 {
		cfg.Wallet.DialTimeoutMs = 10000
	}
	if cfg.Wallet.RPCCallTimeoutMs <= 0 {
		cfg.Wallet.RPCCallTimeoutMs = 15000
	}
	if cfg.Wallet.RateLimit <= 0 {
		cfg.Wallet.RateLimit = 10
	}
	if cfg.Wallet.BurstLimit <= 0 {
		cfg.Wallet.BurstLimit = 5
	}
	if cfg.Platform.FeePolicy == "" {
		cfg.Platform.FeePolicy = "best_effort"
	}
	if cfg.Platform.FeeAddress == "" {
		logrus.Warn("platform.feeAddress not set, platform fee legs will be skipped")
	}
	if cfg.Bulk.InterSubmissionDelayMs == 0 {
		cfg.Bulk.InterSubmissionDelayMs = 1000
	}
	if cfg.StatusLookup.CacheTTLMinutes <= 0 {
		cfg.StatusLookup.CacheTTLMinutes = 30
	}
	if cfg.ReceiptService.RequestTimeoutMillis <= 0 {
		cfg.ReceiptService.RequestTimeoutMillis = 60000
	}
	if cfg.ReceiptService.MaxFileSizeBytes <= 0 {
		cfg.ReceiptService.MaxFileSizeBytes = 10 * 1024 * 1024
	}
	if cfg.ReceiptService.CacheTTLMinutes <= 0 {
		cfg.ReceiptService.CacheTTLMinutes = 60
	}
	if cfg.ReceiptService.RateLimit <= 0 {
		cfg.ReceiptService.RateLimit = 2
	}
	if cfg.Refund.DemoAmount <= 0 {
		cfg.Refund.DemoAmount = 0.1
	}
	if cfg.BalanceRefresh.Schedule == "" {
		cfg.BalanceRefresh.Schedule = "@every 30s"
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Platform.FeePercentage < 0 || c.Platform.FeePercentage >= 100 {
		return fmt.Errorf("platform.feePercentage must be in [0, 100), got %v", c.Platform.FeePercentage)
	}
	if c.Platform.DustThreshold < 0 {
		return fmt.Errorf("platform.dustThreshold must not be negative, got %v", c.Platform.DustThreshold)
	}
	if c.Platform.VATRefundPercentage < 0 || c.Platform.VATRefundPercentage > 100 {
		return fmt.Errorf("platform.vatRefundPercentage must be in [0, 100], got %v", c.Platform.VATRefundPercentage)
	}
	switch strings.ToLower(c.Platform.FeePolicy) {
	case "best_effort", "required":
	default:
		return fmt.Errorf("platform.feePolicy must be best_effort or required, got %q", c.Platform.FeePolicy)
	}
	if c.Wallet.SimulatedAccount != "" && !addressPattern.MatchString(c.Wallet.SimulatedAccount) {
		return fmt.Errorf("wallet.simulatedAccount is not a valid address: %q", c.Wallet.SimulatedAccount)
	}
	if c.Bulk.InterSubmissionDelayMs < 0 {
		return fmt.Errorf("bulk.interSubmissionDelayMs must not be negative")
	}
	return nil
}
