package entity

import "fmt"

// NetworkDefinition holds the configuration for a specific blockchain network.
// This structure is defined at the domain level to be used across application and infrastructure layers.
type NetworkDefinition struct {
	ChainID          uint64         `json:"chainId" yaml:"chainId"`
	Name             string         `json:"name" yaml:"name"`
	Identifier       string         `json:"identifier" yaml:"identifier"`
	NativeCurrency   NativeCurrency `json:"nativeCurrency" yaml:"nativeCurrency"`
	PrimaryRPCURL    string         `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	BlockExplorerURL string         `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	FaucetURL        string         `json:"faucetUrl,omitempty" yaml:"faucetUrl,omitempty"`
}

// NativeCurrency describes the chain's base currency as wallets expect it.
type NativeCurrency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals int32  `json:"decimals" yaml:"decimals"`
}

// ChainIDHex returns the chain id in the 0x-prefixed form wallet_* methods take.
func (n NetworkDefinition) ChainIDHex() string {
	return fmt.Sprintf("0x%X", n.ChainID)
}

// AddChainParams converts the definition into a wallet_addEthereumChain descriptor.
func (n NetworkDefinition) AddChainParams() AddChainParams {
	params := AddChainParams{
		ChainID:        n.ChainIDHex(),
		ChainName:      n.Name,
		NativeCurrency: n.NativeCurrency,
		RPCURLs:        []string{n.PrimaryRPCURL},
	}
	if n.BlockExplorerURL != "" {
		params.BlockExplorerURLs = []string{n.BlockExplorerURL}
	}
	return params
}

// AddChainParams is the EIP-3085 payload for wallet_addEthereumChain.
type AddChainParams struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls,omitempty"`
}
