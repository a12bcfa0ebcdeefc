package entity

import "strings"

const (
	// SymbolMON is the Monad testnet native token.
	SymbolMON = "MON"
	// SymbolUSDC is the stablecoin shown next to MON. It has no on-chain path here.
	SymbolUSDC = "USDC"
)

// TokenInfo holds the details of a token the wallet can display or send.
type TokenInfo struct {
	ChainID   uint64  `json:"chainId" yaml:"chainId"`
	Address   string  `json:"address,omitempty" yaml:"address,omitempty"`
	Name      string  `json:"name" yaml:"name"`
	Symbol    string  `json:"symbol" yaml:"symbol"`
	Decimals  uint8   `json:"decimals" yaml:"decimals"`
	IsNative  bool    `json:"isNative" yaml:"isNative"`
	MinAmount float64 `json:"minAmount" yaml:"minAmount"`
}

// NormalizeSymbol upper-cases a token symbol and defaults it to MON.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return SymbolMON
	}
	return s
}

// DefaultTokens is the catalog used when no token file is configured.
func DefaultTokens(chainID uint64) []TokenInfo {
	return []TokenInfo{
		{ChainID: chainID, Name: "Monad", Symbol: SymbolMON, Decimals: 18, IsNative: true, MinAmount: 0.001},
		{ChainID: chainID, Name: "USD Coin", Symbol: SymbolUSDC, Decimals: 6, IsNative: false, MinAmount: 0.01},
	}
}
