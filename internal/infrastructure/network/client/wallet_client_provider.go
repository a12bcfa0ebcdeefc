package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/infrastructure/configloader"
)

// WalletClientProvider dials the configured wallet endpoint once and caches the client.
type WalletClientProvider struct {
	endpoint          string
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
	limiter           *rate.Limiter
	logger            port.Logger

	mu     sync.Mutex
	client *WalletClient
}

// NewWalletClientProvider creates a provider from the wallet configuration.
func NewWalletClientProvider(cfg configloader.WalletConfig, logger port.Logger) *WalletClientProvider {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.BurstLimit)
	}
	return &WalletClientProvider{
		endpoint:          cfg.Endpoint,
		connectionTimeout: time.Duration(cfg.DialTimeoutMs) * time.Millisecond,
		rpcCallTimeout:    time.Duration(cfg.RPCCallTimeoutMs) * time.Millisecond,
		limiter:           limiter,
		logger:            logger,
	}
}

// GetClient returns the cached client, dialing on first use.
func (p *WalletClientProvider) GetClient(ctx context.Context) (*WalletClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if p.endpoint == "" {
		return nil, fmt.Errorf("wallet endpoint is not configured")
	}

	p.logger.Info("Connecting to wallet endpoint", "endpoint", p.endpoint)
	dialCtx, cancel := context.WithTimeout(ctx, p.connectionTimeout)
	defer cancel()

	c, err := Dial(dialCtx, p.endpoint, p.limiter, p.rpcCallTimeout)
	if err != nil {
		p.logger.Error("Failed to connect to wallet endpoint", "endpoint", p.endpoint, "error", err)
		return nil, err
	}
	p.client = c
	return c, nil
}

// Close closes the cached client, if any.
func (p *WalletClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}
