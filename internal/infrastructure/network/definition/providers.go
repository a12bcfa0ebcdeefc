package networkdefinition

import (
	"fmt"
	"sort"
	"strings"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
)

// NetworkDefinitionProvider provides network definitions.
type NetworkDefinitionProvider struct {
	logger         port.Logger
	allNetworkDefs map[string]entity.NetworkDefinition
}

var _ port.NetworkDefinitionProvider = (*NetworkDefinitionProvider)(nil)

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	MonadTestnet = entity.NetworkDefinition{
		ChainID:    10143,
		Name:       "Monad Testnet",
		Identifier: "monad-testnet",
		NativeCurrency: entity.NativeCurrency{
			Name:     "Monad",
			Symbol:   "MON",
			Decimals: 18,
		},
		PrimaryRPCURL:    "https://testnet-rpc.monad.xyz",
		BlockExplorerURL: "https://testnet.monadexplorer.com/",
		FaucetURL:        "https://testnet.monad.xyz",
	}
)

var allKnownDefinitions = map[string]entity.NetworkDefinition{ //nolint:gochecknoglobals // Global for definitions
	MonadTestnet.Identifier: MonadTestnet,
}

// NewNetworkDefinitionProvider creates a new NetworkDefinitionProvider.
// rpcOverrides replaces the public RPC URL of a network, keyed by identifier.
func NewNetworkDefinitionProvider(log port.Logger, rpcOverrides map[string]string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:         log,
		allNetworkDefs: make(map[string]entity.NetworkDefinition, len(allKnownDefinitions)),
	}
	for id, def := range allKnownDefinitions {
		if url := strings.TrimSpace(rpcOverrides[id]); url != "" {
			def.PrimaryRPCURL = url
			p.logger.Info(fmt.Sprintf("RPC URL for network '%s' overridden", def.Name), "rpc_url", url)
		}
		p.allNetworkDefs[id] = def
	}
	for id := range rpcOverrides {
		if _, ok := allKnownDefinitions[id]; !ok {
			p.logger.Warn(fmt.Sprintf("RPC override for unknown network '%s' ignored", id))
		}
	}
	return p
}

// GetAllNetworkDefinitions returns every known network, sorted by chain id.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	defs := make([]entity.NetworkDefinition, 0, len(p.allNetworkDefs))
	for _, def := range p.allNetworkDefs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ChainID < defs[j].ChainID })
	return defs
}

// GetNetworkDefinitionByName returns a specific network definition by its identifier.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.allNetworkDefs[strings.ToLower(identifier)]
	return def, ok
}

// GetNetworkDefinitionByChainID returns a specific network definition by its chain ID.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	for _, def := range p.allNetworkDefs {
		if def.ChainID == chainID {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}
