// Package bootstrap wires configuration into the services shared by the
// daemon and the command line tools.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/app/service"
	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/infrastructure/aiclient"
	"orbix_wallet/internal/infrastructure/configloader"
	"orbix_wallet/internal/infrastructure/memwallet"
	walletclient "orbix_wallet/internal/infrastructure/network/client"
	networkdefinition "orbix_wallet/internal/infrastructure/network/definition"
	"orbix_wallet/internal/infrastructure/storage"
	"orbix_wallet/internal/infrastructure/tokenloader"
	"orbix_wallet/internal/pkg/logger"
	"orbix_wallet/internal/pkg/utils"
)

// App holds the wired services. Close releases the store and the wallet connection.
type App struct {
	Config   *configloader.Config
	Network  entity.NetworkDefinition
	Tokens   []entity.TokenInfo
	Store    *storage.LevelDBStore
	Session  *service.Session
	Wallet   *service.WalletService
	Fees     *service.FeeCalculator
	Queue    *service.SubmissionQueue
	Payments *service.PaymentService
	Bulk     *service.BulkPaymentService
	Refunds  *service.RefundService
	Business *service.BusinessMetricsService

	clientProvider *walletclient.WalletClientProvider
}

// Build wires every service from cfg. The logger must already be initialised.
func Build(ctx context.Context, cfg *configloader.Config) (*App, error) {
	log := logger.Named("bootstrap")

	var networks port.NetworkDefinitionProvider = networkdefinition.NewNetworkDefinitionProvider(logger.Named("NetworkDefinitionProvider"),
		map[string]string{cfg.Network.Identifier: cfg.Network.RPCURL})
	network, ok := networks.GetNetworkDefinitionByName(cfg.Network.Identifier)
	if !ok {
		return nil, fmt.Errorf("unknown network %q", cfg.Network.Identifier)
	}

	var tokenProvider port.TokenProvider = tokenloader.NewTokenLoader(cfg.Tokens.File, logger.Named("TokenLoader"))
	tokens, err := tokenProvider.GetTokens(network)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Network: network,
		Tokens:  tokens,
		Store:   store,
		Session: service.NewSession(),
	}

	provider, err := app.walletProvider(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if provider == nil {
		log.Warn("No wallet provider available, wallet features are disabled")
	}

	app.Wallet = service.NewWalletService(provider, app.Session, network, store, logger.Named("WalletService"),
		service.WalletServiceOptions{
			OptimisticStatus: cfg.StatusLookup.Optimistic,
			StatusCacheTTL:   time.Duration(cfg.StatusLookup.CacheTTLMinutes) * time.Minute,
		})
	app.Fees = service.NewFeeCalculator(FeeConfig(cfg.Platform))
	app.Queue = service.NewSubmissionQueue(time.Duration(cfg.Bulk.InterSubmissionDelayMs) * time.Millisecond)
	app.Payments = service.NewPaymentService(app.Wallet, app.Fees, app.Queue, tokens, store, logger.Named("PaymentService"))
	app.Bulk = service.NewBulkPaymentService(app.Wallet, app.Fees, app.Queue, store, logger.Named("BulkPaymentService"))
	app.Refunds = service.NewRefundService(receiptExtractor(cfg.ReceiptService), app.Fees, app.Bulk, app.Session, store,
		logger.Named("RefundService"), service.RefundServiceOptions{
			MaxFileSize:     cfg.ReceiptService.MaxFileSizeBytes,
			DemoAmount:      cfg.Refund.DemoAmount,
			ExtractCacheTTL: time.Duration(cfg.ReceiptService.CacheTTLMinutes) * time.Minute,
		})
	app.Business = service.NewBusinessMetricsService(store)

	log.Info("Services initialised",
		"network", network.Name,
		"chain_id", network.ChainID,
		"tokens", tokenloader.Symbols(tokens),
		"fee_policy", cfg.Platform.FeePolicy,
		"submission_delay", app.Queue.Delay())
	return app, nil
}

// FeeConfig converts the platform section into the calculator's configuration.
func FeeConfig(p configloader.PlatformConfig) entity.PlatformFeeConfig {
	return entity.PlatformFeeConfig{
		FeePercentage:       p.FeePercentage,
		FeeAddress:          p.FeeAddress,
		VATRefundPercentage: p.VATRefundPercentage,
		DustThreshold:       p.DustThreshold,
		Policy:              entity.FeeCollectionPolicy(strings.ToLower(p.FeePolicy)),
	}
}

// Close releases the store and the wallet connection.
func (a *App) Close() error {
	if a.clientProvider != nil {
		a.clientProvider.Close()
	}
	return a.Store.Close()
}

func openStore(path string) (*storage.LevelDBStore, error) {
	if path == "" {
		return storage.NewMemoryStore()
	}
	return storage.NewLevelDBStore(path)
}

// walletProvider returns nil, nil when no wallet can be reached. The wallet
// service then reports itself unavailable instead of failing startup.
func (a *App) walletProvider(ctx context.Context) (port.WalletProvider, error) {
	cfg := a.Config.Wallet
	if cfg.Simulate {
		account := cfg.SimulatedAccount
		if account == "" {
			key, err := crypto.GenerateKey()
			if err != nil {
				return nil, fmt.Errorf("failed to generate simulated account: %w", err)
			}
			account = crypto.PubkeyToAddress(key.PublicKey).Hex()
		}
		balance, err := utils.ToBaseUnits(cfg.SimulatedBalance, a.Network.NativeCurrency.Decimals)
		if err != nil {
			return nil, fmt.Errorf("invalid simulated balance: %w", err)
		}
		logger.Named("bootstrap").Info("Using simulated wallet", "account", account, "balance", cfg.SimulatedBalance)
		return memwallet.New(memwallet.WithAccount(account, balance)), nil
	}

	if cfg.Endpoint == "" {
		return nil, nil
	}
	a.clientProvider = walletclient.NewWalletClientProvider(cfg, logger.Named("WalletClientProvider"))
	client, err := a.clientProvider.GetClient(ctx)
	if err != nil {
		logger.Named("bootstrap").Warn("Wallet endpoint unreachable", "endpoint", cfg.Endpoint, "error", err)
		return nil, nil
	}
	return client, nil
}

func receiptExtractor(cfg configloader.ReceiptServiceConfig) port.ReceiptExtractor {
	if cfg.BaseURL == "" {
		return nil
	}
	return aiclient.NewReceiptClient(
		cfg.BaseURL,
		cfg.APIKey,
		time.Duration(cfg.RequestTimeoutMillis)*time.Millisecond,
		cfg.RateLimit,
		logger.Zap(),
	)
}
