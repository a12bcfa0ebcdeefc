package configloader_test

import (
	"os"
	"path/filepath"
	"testing"

	"orbix_wallet/internal/infrastructure/configloader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := configloader.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "monad-testnet", cfg.Network.Identifier)
	assert.Equal(t, 0.5, cfg.Platform.FeePercentage)
	assert.Equal(t, 85.0, cfg.Platform.VATRefundPercentage)
	assert.Equal(t, 1e-6, cfg.Platform.DustThreshold)
	assert.Equal(t, "best_effort", cfg.Platform.FeePolicy)
	assert.Equal(t, int64(1000), cfg.Bulk.InterSubmissionDelayMs)
	assert.Equal(t, int64(10*1024*1024), cfg.ReceiptService.MaxFileSizeBytes)
	assert.Equal(t, 0.1, cfg.Refund.DemoAmount)
	assert.Equal(t, "@every 30s", cfg.BalanceRefresh.Schedule)
	assert.Equal(t, int64(10000), cfg.Wallet.DialTimeoutMs)
	assert.Equal(t, int64(15000), cfg.Wallet.RPCCallTimeoutMs)
	assert.False(t, cfg.StatusLookup.Optimistic)
}

func TestLoadReadsYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
wallet:
  simulate: true
  simulatedBalance: 3.5
platform:
  feeAddress: "0x00000000000000000000000000000000000000fe"
  feePolicy: required
bulk:
  interSubmissionDelayMs: 250
statusLookup:
  optimistic: true
`)
	cfg, err := configloader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Wallet.Simulate)
	assert.Equal(t, 3.5, cfg.Wallet.SimulatedBalance)
	assert.Equal(t, "required", cfg.Platform.FeePolicy)
	assert.Equal(t, int64(250), cfg.Bulk.InterSubmissionDelayMs)
	assert.True(t, cfg.StatusLookup.Optimistic)
}

func TestLoadKeepsExplicitZeroFees(t *testing.T) {
	cfg, err := configloader.Load(writeConfig(t, `
platform:
  feePercentage: 0
  dustThreshold: 0
wallet:
  rpcCallTimeoutMs: 2500
`))
	require.NoError(t, err)

	assert.Zero(t, cfg.Platform.FeePercentage)
	assert.Zero(t, cfg.Platform.DustThreshold)
	assert.Equal(t, 85.0, cfg.Platform.VATRefundPercentage)
	assert.Equal(t, int64(2500), cfg.Wallet.RPCCallTimeoutMs)
	assert.Equal(t, int64(10000), cfg.Wallet.DialTimeoutMs)

	// Keys left out of the platform block still get their defaults.
	cfg, err = configloader.Load(writeConfig(t, "platform:\n  feePolicy: required\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Platform.FeePercentage)
	assert.Equal(t, 1e-6, cfg.Platform.DustThreshold)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configloader.EnvWalletEndpoint, "http://127.0.0.1:8550")
	t.Setenv(configloader.EnvReceiptAPIKey, "secret")
	t.Setenv(configloader.EnvPlatformFeeAddress, "0x00000000000000000000000000000000000000aa")

	path := writeConfig(t, `
wallet:
  endpoint: "http://ignored"
`)
	cfg, err := configloader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8550", cfg.Wallet.Endpoint)
	assert.Equal(t, "secret", cfg.ReceiptService.APIKey)
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", cfg.Platform.FeeAddress)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := configloader.Load(writeConfig(t, "platform:\n  feePolicy: sometimes\n"))
	require.Error(t, err)

	_, err = configloader.Load(writeConfig(t, "platform:\n  feePercentage: 120\n"))
	require.Error(t, err)

	_, err = configloader.Load(writeConfig(t, "platform:\n  dustThreshold: -1\n"))
	require.Error(t, err)

	_, err = configloader.Load(writeConfig(t, "server: [unclosed\n"))
	require.Error(t, err)
}
