package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/pkg/metrics"
	"orbix_wallet/internal/pkg/utils"
)

// TransferGasLimit is the fixed gas limit of a plain value transfer (0x5208).
const TransferGasLimit uint64 = 21000

// WalletServiceOptions tunes the wallet service.
type WalletServiceOptions struct {
	// OptimisticStatus fills failed status lookups with an assumed success.
	OptimisticStatus bool
	// StatusCacheTTL is how long final transaction statuses are cached.
	StatusCacheTTL time.Duration
}

// WalletService adapts a WalletProvider to the session: connect, reconnect,
// network switching, balances, transfers and status lookups.
type WalletService struct {
	provider    port.WalletProvider
	session     *Session
	network     entity.NetworkDefinition
	store       port.StateStore
	logger      port.Logger
	opts        WalletServiceOptions
	statusCache *cache.Cache
}

// NewWalletService creates a WalletService. provider may be nil, in which case
// the service reports itself unavailable.
func NewWalletService(
	provider port.WalletProvider,
	session *Session,
	network entity.NetworkDefinition,
	store port.StateStore,
	logger port.Logger,
	opts WalletServiceOptions,
) *WalletService {
	if opts.StatusCacheTTL <= 0 {
		opts.StatusCacheTTL = 30 * time.Minute
	}
	return &WalletService{
		provider:    provider,
		session:     session,
		network:     network,
		store:       store,
		logger:      logger,
		opts:        opts,
		statusCache: cache.New(opts.StatusCacheTTL, 2*opts.StatusCacheTTL),
	}
}

// IsAvailable reports whether a wallet provider is present.
func (s *WalletService) IsAvailable() bool {
	return s.provider != nil
}

// Session returns the session this service mutates.
func (s *WalletService) Session() *Session {
	return s.session
}

// Network returns the chain the wallet is switched to on connect.
func (s *WalletService) Network() entity.NetworkDefinition {
	return s.network
}

// Connect asks the wallet for accounts, switches it to the configured chain
// (adding the chain when the wallet does not know it) and reads the balance.
func (s *WalletService) Connect(ctx context.Context) (*entity.WalletConnection, error) {
	if !s.IsAvailable() {
		return nil, entity.ErrProviderUnavailable
	}
	if !s.session.beginConnect() {
		return nil, entity.ErrConnectInProgress
	}
	defer s.session.endConnect()

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		s.logger.Error("Failed to request accounts", "error", err)
		return nil, fmt.Errorf("failed to connect wallet: %w", err)
	}
	if len(accounts) == 0 {
		return nil, entity.ErrNoAccounts
	}
	address := accounts[0]

	if err := s.ensureNetwork(ctx); err != nil {
		s.logger.Error("Failed to switch network", "chain_id", s.network.ChainIDHex(), "error", err)
		return nil, fmt.Errorf("failed to switch to %s: %w", s.network.Name, err)
	}

	balance, err := s.GetBalance(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	s.session.setAccount(address, balance)
	s.persistConnection(address)
	metrics.WalletConnected.Set(1)
	s.logger.Info("Wallet connected", "address", utils.FormatAddress(address), "balance", balance)

	return &entity.WalletConnection{Address: address, Balance: balance}, nil
}

func (s *WalletService) ensureNetwork(ctx context.Context) error {
	chainID := s.network.ChainIDHex()
	err := s.provider.SwitchEthereumChain(ctx, chainID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, entity.ErrUnrecognizedChain) {
		return err
	}

	s.logger.Info("Chain unknown to wallet, adding it", "chain_id", chainID, "name", s.network.Name)
	if err := s.provider.AddEthereumChain(ctx, s.network.AddChainParams()); err != nil {
		return err
	}
	return s.provider.SwitchEthereumChain(ctx, chainID)
}

// Reconnect restores the session from already authorized accounts without
// prompting. It returns nil, nil whenever there is nothing to restore.
func (s *WalletService) Reconnect(ctx context.Context) (*entity.WalletConnection, error) {
	if !s.IsAvailable() {
		return nil, nil
	}

	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		s.logger.Debug("Reconnect: accounts lookup failed", "error", err)
		return nil, nil
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	address := accounts[0]

	balance, err := s.GetBalance(ctx, address)
	if err != nil {
		s.logger.Debug("Reconnect: balance lookup failed", "error", err)
		return nil, nil
	}

	s.session.setAccount(address, balance)
	s.persistConnection(address)
	metrics.WalletConnected.Set(1)
	s.logger.Info("Wallet reconnected", "address", utils.FormatAddress(address))

	return &entity.WalletConnection{Address: address, Balance: balance}, nil
}

// RestoreSession reconnects if the store says a wallet was connected last time.
// Stale flags are cleared when nothing can be restored.
func (s *WalletService) RestoreSession(ctx context.Context) (*entity.WalletConnection, error) {
	flag, ok, err := s.store.Get(port.StateKeyWalletConnected)
	if err != nil {
		return nil, fmt.Errorf("failed to read connection flag: %w", err)
	}
	if !ok {
		return nil, nil
	}
	if connected, _ := strconv.ParseBool(flag); !connected {
		return nil, nil
	}

	conn, err := s.Reconnect(ctx)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		s.logger.Info("Stored wallet connection could not be restored, clearing flags")
		if err := s.store.Delete(port.StateKeyWalletConnected, port.StateKeyConnectedAccount); err != nil {
			s.logger.Warn("Failed to clear connection flags", "error", err)
		}
	}
	return conn, nil
}

// Disconnect clears the session and the persisted client state.
func (s *WalletService) Disconnect(ctx context.Context) error {
	s.session.Clear()
	metrics.WalletConnected.Set(0)
	if err := s.store.Delete(
		port.StateKeyWalletConnected,
		port.StateKeyConnectedAccount,
		port.StateKeyActiveTab,
	); err != nil {
		return fmt.Errorf("failed to clear client state: %w", err)
	}
	s.logger.Info("Wallet disconnected")
	return nil
}

// HandleAccountsChanged follows the wallet's accountsChanged event. An empty
// list means the user disconnected the site.
func (s *WalletService) HandleAccountsChanged(ctx context.Context, accounts []string) (*entity.WalletConnection, error) {
	if len(accounts) == 0 {
		return nil, s.Disconnect(ctx)
	}
	address := accounts[0]
	if !entity.IsValidAddress(address) {
		return nil, entity.NewValidationError("accounts", "Invalid account address: %s", address)
	}
	if !s.IsAvailable() {
		return nil, entity.ErrProviderUnavailable
	}

	balance, err := s.GetBalance(ctx, address)
	if err != nil {
		s.logger.Warn("Accounts changed: balance lookup failed", "address", address, "error", err)
		balance = 0
	}
	s.session.setAccount(address, balance)
	s.persistConnection(address)
	metrics.WalletConnected.Set(1)
	s.logger.Info("Wallet account changed", "address", utils.FormatAddress(address))

	return &entity.WalletConnection{Address: address, Balance: balance}, nil
}

// GetBalance returns the native balance of address in whole tokens.
func (s *WalletService) GetBalance(ctx context.Context, address string) (float64, error) {
	if !s.IsAvailable() {
		return 0, entity.ErrProviderUnavailable
	}
	wei, err := s.provider.GetBalance(ctx, address)
	if err != nil {
		return 0, err
	}
	return utils.FromBaseUnits(wei, s.network.NativeCurrency.Decimals), nil
}

// RefreshBalance re-reads the session account's native balance into the cache.
func (s *WalletService) RefreshBalance(ctx context.Context) (float64, error) {
	address := s.session.Address()
	if address == "" {
		return 0, entity.ErrWalletNotConnected
	}
	balance, err := s.GetBalance(ctx, address)
	if err != nil {
		return 0, err
	}
	if !s.session.setBalance(address, entity.SymbolMON, balance) {
		s.logger.Debug("Session account changed during balance refresh", "address", address)
	}
	return balance, nil
}

// Balances returns the cached balance sheet of the session account.
func (s *WalletService) Balances() []entity.AssetBalance {
	cached := s.session.Balances()
	return []entity.AssetBalance{
		{Symbol: entity.SymbolMON, Name: s.network.NativeCurrency.Name, Amount: cached[entity.SymbolMON]},
		{Symbol: entity.SymbolUSDC, Name: "USD Coin", Amount: cached[entity.SymbolUSDC]},
	}
}

// SubmitTransfer sends a plain value transfer through the wallet.
func (s *WalletService) SubmitTransfer(ctx context.Context, from, to string, value *big.Int) (string, error) {
	if !s.IsAvailable() {
		return "", entity.ErrProviderUnavailable
	}
	return s.provider.SendTransaction(ctx, entity.TransactionRequest{
		From:  from,
		To:    to,
		Value: value,
		Gas:   TransferGasLimit,
	})
}

// GetTransactionStatus looks a transaction up. A failed lookup yields
// State unknown unless optimistic status was configured.
func (s *WalletService) GetTransactionStatus(ctx context.Context, hash string) entity.TransactionStatus {
	if cached, ok := s.statusCache.Get(hash); ok {
		return cached.(entity.TransactionStatus)
	}

	status := entity.TransactionStatus{Hash: hash, State: entity.TxStateUnknown, CheckedAt: time.Now()}
	if !s.IsAvailable() {
		status.Error = entity.ErrProviderUnavailable.Error()
		return s.fallbackStatus(status)
	}

	details, receipt, err := s.lookupTransaction(ctx, hash)
	if err != nil {
		s.logger.Warn("Transaction status lookup failed", "hash", hash, "error", err)
		status.Error = err.Error()
		return s.fallbackStatus(status)
	}

	if details != nil {
		status.GasPrice = details.GasPrice
	}
	switch {
	case receipt != nil:
		status.GasUsed = receipt.GasUsed
		status.Success = receipt.Status == 1
		if status.Success {
			status.State = entity.TxStateSucceeded
		} else {
			status.State = entity.TxStateFailed
		}
	case details != nil:
		status.State = entity.TxStatePending
	}

	if status.Final() {
		s.statusCache.SetDefault(hash, status)
	}
	return status
}

func (s *WalletService) lookupTransaction(ctx context.Context, hash string) (*entity.TransactionDetails, *entity.TransactionReceipt, error) {
	if b, ok := s.provider.(port.TransactionLookupBatcher); ok {
		return b.LookupTransaction(ctx, hash)
	}

	var (
		details *entity.TransactionDetails
		receipt *entity.TransactionReceipt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = s.provider.GetTransactionByHash(gctx, hash)
		return err
	})
	g.Go(func() error {
		var err error
		receipt, err = s.provider.GetTransactionReceipt(gctx, hash)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return details, receipt, nil
}

func (s *WalletService) fallbackStatus(status entity.TransactionStatus) entity.TransactionStatus {
	if s.opts.OptimisticStatus {
		status.Success = true
		status.Assumed = true
	}
	return status
}

// ActiveTab returns the persisted UI tab, or def when none is stored.
func (s *WalletService) ActiveTab(def string) (string, error) {
	tab, ok, err := s.store.Get(port.StateKeyActiveTab)
	if err != nil {
		return "", err
	}
	if !ok || tab == "" {
		return def, nil
	}
	return tab, nil
}

// SetActiveTab persists the UI tab.
func (s *WalletService) SetActiveTab(tab string) error {
	return s.store.Set(port.StateKeyActiveTab, tab)
}

func (s *WalletService) persistConnection(address string) {
	if err := s.store.Set(port.StateKeyWalletConnected, "true"); err != nil {
		s.logger.Warn("Failed to persist connection flag", "error", err)
	}
	if err := s.store.Set(port.StateKeyConnectedAccount, address); err != nil {
		s.logger.Warn("Failed to persist connected account", "error", err)
	}
}
