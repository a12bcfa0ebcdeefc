package networkdefinition_test

import (
	"testing"

	"orbix_wallet/internal/infrastructure/network/definition"
	"orbix_wallet/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonadTestnetDescriptor(t *testing.T) {
	def := networkdefinition.MonadTestnet
	assert.Equal(t, uint64(10143), def.ChainID)
	assert.Equal(t, "0x279F", def.ChainIDHex())

	params := def.AddChainParams()
	assert.Equal(t, "0x279F", params.ChainID)
	assert.Equal(t, "Monad Testnet", params.ChainName)
	assert.Equal(t, []string{"https://testnet-rpc.monad.xyz"}, params.RPCURLs)
	assert.Equal(t, "MON", params.NativeCurrency.Symbol)
	assert.Equal(t, int32(18), params.NativeCurrency.Decimals)
	assert.Equal(t, []string{"https://testnet.monadexplorer.com/"}, params.BlockExplorerURLs)
}

func TestProviderLookupsAndOverride(t *testing.T) {
	p := networkdefinition.NewNetworkDefinitionProvider(logger.NewNop(), map[string]string{
		"monad-testnet": "http://localhost:8545",
		"nope":          "http://ignored",
	})

	def, ok := p.GetNetworkDefinitionByName("Monad-Testnet")
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8545", def.PrimaryRPCURL)

	def, ok = p.GetNetworkDefinitionByChainID(10143)
	require.True(t, ok)
	assert.Equal(t, "monad-testnet", def.Identifier)

	_, ok = p.GetNetworkDefinitionByChainID(1)
	assert.False(t, ok)
	assert.Len(t, p.GetAllNetworkDefinitions(), 1)

	// Overrides never leak into the shared definition.
	assert.Equal(t, "https://testnet-rpc.monad.xyz", networkdefinition.MonadTestnet.PrimaryRPCURL)
}
