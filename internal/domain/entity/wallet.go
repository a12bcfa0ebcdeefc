package entity

import (
	"math/big"
	"regexp"
	"time"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsValidAddress reports whether s is 0x followed by exactly 40 hex digits.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// WalletConnection is what a successful connect or reconnect yields.
type WalletConnection struct {
	Address string  `json:"address"`
	Balance float64 `json:"balance"`
}

// AssetBalance is one line of the account's balance sheet.
type AssetBalance struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// TransactionRequest is the eth_sendTransaction payload for a plain value transfer.
type TransactionRequest struct {
	From  string
	To    string
	Value *big.Int
	Gas   uint64
}

// TransactionDetails is the subset of eth_getTransactionByHash the wallet needs.
type TransactionDetails struct {
	Hash     string
	GasPrice *big.Int
}

// TransactionReceipt is the subset of eth_getTransactionReceipt the wallet needs.
type TransactionReceipt struct {
	Hash    string
	Status  uint64
	GasUsed uint64
}

// TxState is the outcome of a status lookup.
type TxState string

const (
	TxStateSucceeded TxState = "succeeded"
	TxStateFailed    TxState = "failed"
	TxStatePending   TxState = "pending"
	TxStateUnknown   TxState = "unknown"
)

// TransactionStatus is the best-effort view of a submitted transaction.
// Assumed is set when the state was not observed but filled in by policy.
type TransactionStatus struct {
	Hash      string    `json:"hash"`
	State     TxState   `json:"state"`
	Success   bool      `json:"success"`
	GasUsed   uint64    `json:"gasUsed"`
	GasPrice  *big.Int  `json:"gasPrice,omitempty"`
	Assumed   bool      `json:"assumed"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Final reports whether the status can no longer change.
func (s TransactionStatus) Final() bool {
	return s.State == TxStateSucceeded || s.State == TxStateFailed
}
