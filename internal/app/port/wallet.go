package port

import (
	"context"
	"math/big"

	"orbix_wallet/internal/domain/entity"
)

// WalletProvider is the narrow capability surface of an injected wallet.
// Each method maps to exactly one JSON-RPC method of the provider.
type WalletProvider interface {
	// RequestAccounts asks the user to authorize accounts (eth_requestAccounts).
	RequestAccounts(ctx context.Context) ([]string, error)
	// Accounts lists already authorized accounts without prompting (eth_accounts).
	Accounts(ctx context.Context) ([]string, error)
	// GetBalance returns the latest balance in base units (eth_getBalance).
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	// SendTransaction hands a transfer to the wallet for signing and relay (eth_sendTransaction).
	SendTransaction(ctx context.Context, tx entity.TransactionRequest) (string, error)
	// GetTransactionByHash returns nil details when the node does not know the hash.
	GetTransactionByHash(ctx context.Context, hash string) (*entity.TransactionDetails, error)
	// GetTransactionReceipt returns nil while the transaction is pending.
	GetTransactionReceipt(ctx context.Context, hash string) (*entity.TransactionReceipt, error)
	// SwitchEthereumChain selects the active chain (wallet_switchEthereumChain).
	SwitchEthereumChain(ctx context.Context, chainIDHex string) error
	// AddEthereumChain registers a chain the wallet does not know (wallet_addEthereumChain).
	AddEthereumChain(ctx context.Context, params entity.AddChainParams) error
}

// TransactionLookupBatcher is implemented by providers that can fetch a
// transaction and its receipt in one round trip.
type TransactionLookupBatcher interface {
	LookupTransaction(ctx context.Context, hash string) (*entity.TransactionDetails, *entity.TransactionReceipt, error)
}
