package client_test

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbix_wallet/internal/infrastructure/configloader"
	"orbix_wallet/internal/infrastructure/network/client"
	"orbix_wallet/internal/pkg/logger"
)

type slowEthAPI struct {
	delay time.Duration
}

func (a *slowEthAPI) GetBalance(ctx context.Context, addr common.Address, block string) (*hexutil.Big, error) {
	select {
	case <-time.After(a.delay):
		return (*hexutil.Big)(big.NewInt(1)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newSlowEndpoint(t *testing.T, delay time.Duration) string {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", &slowEthAPI{delay: delay}))
	t.Cleanup(server.Stop)

	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestProviderUsesCallTimeoutForReads(t *testing.T) {
	p := client.NewWalletClientProvider(configloader.WalletConfig{
		Endpoint:         newSlowEndpoint(t, 2*time.Second),
		DialTimeoutMs:    5000,
		RPCCallTimeoutMs: 50,
	}, logger.NewNop())
	t.Cleanup(p.Close)

	c, err := p.GetClient(context.Background())
	require.NoError(t, err)

	start := time.Now()
	_, err = c.GetBalance(context.Background(), account)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProviderCachesClient(t *testing.T) {
	p := client.NewWalletClientProvider(configloader.WalletConfig{
		Endpoint:         newSlowEndpoint(t, 0),
		DialTimeoutMs:    1000,
		RPCCallTimeoutMs: 1000,
	}, logger.NewNop())
	t.Cleanup(p.Close)

	first, err := p.GetClient(context.Background())
	require.NoError(t, err)
	second, err := p.GetClient(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)

	bal, err := first.GetBalance(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bal.Int64())
}

func TestProviderWithoutEndpoint(t *testing.T) {
	p := client.NewWalletClientProvider(configloader.WalletConfig{}, logger.NewNop())
	_, err := p.GetClient(context.Background())
	require.Error(t, err)
}
