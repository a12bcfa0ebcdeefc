package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
)

// WalletClient implements port.WalletProvider against a wallet bridge that
// speaks the injected-provider JSON-RPC surface.
type WalletClient struct {
	rpcClient      *rpc.Client
	limiter        *rate.Limiter
	rpcCallTimeout time.Duration // read calls only; prompting calls wait on the user
}

var (
	_ port.WalletProvider           = (*WalletClient)(nil)
	_ port.TransactionLookupBatcher = (*WalletClient)(nil)
)

type sendTxArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *hexutil.Big   `json:"value"`
	Gas   hexutil.Uint64 `json:"gas"`
}

type switchChainArgs struct {
	ChainID string `json:"chainId"`
}

type rpcTransaction struct {
	Hash     common.Hash  `json:"hash"`
	GasPrice *hexutil.Big `json:"gasPrice"`
}

type rpcReceipt struct {
	TransactionHash common.Hash    `json:"transactionHash"`
	Status          hexutil.Uint64 `json:"status"`
	GasUsed         hexutil.Uint64 `json:"gasUsed"`
}

// NewWalletClient wraps an existing RPC client. A nil limiter disables rate limiting.
func NewWalletClient(rpcClient *rpc.Client, limiter *rate.Limiter, rpcCallTimeout time.Duration) *WalletClient {
	if rpcCallTimeout <= 0 {
		rpcCallTimeout = 15 * time.Second
	}
	return &WalletClient{rpcClient: rpcClient, limiter: limiter, rpcCallTimeout: rpcCallTimeout}
}

// Dial connects to the wallet bridge at endpoint.
func Dial(ctx context.Context, endpoint string, limiter *rate.Limiter, rpcCallTimeout time.Duration) (*WalletClient, error) {
	c, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to wallet endpoint %s: %w", endpoint, err)
	}
	return NewWalletClient(c, limiter, rpcCallTimeout), nil
}

// Close closes the underlying connection.
func (c *WalletClient) Close() {
	c.rpcClient.Close()
}

func (c *WalletClient) call(ctx context.Context, timeout bool, result any, method string, args ...any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &entity.RPCError{Method: method, Message: err.Error(), Err: err}
		}
	}
	if timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.rpcCallTimeout)
		defer cancel()
	}
	if err := c.rpcClient.CallContext(ctx, result, method, args...); err != nil {
		return wrapRPCError(method, err)
	}
	return nil
}

func wrapRPCError(method string, err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return entity.NewRPCError(method, rpcErr.ErrorCode(), rpcErr.Error())
	}
	return &entity.RPCError{Method: method, Message: err.Error(), Err: err}
}

// RequestAccounts implements port.WalletProvider.
func (c *WalletClient) RequestAccounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.call(ctx, false, &accounts, "eth_requestAccounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Accounts implements port.WalletProvider.
func (c *WalletClient) Accounts(ctx context.Context) ([]string, error) {
	var accounts []string
	if err := c.call(ctx, true, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetBalance implements port.WalletProvider.
func (c *WalletClient) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	var balance *hexutil.Big
	if err := c.call(ctx, true, &balance, "eth_getBalance", common.HexToAddress(address), "latest"); err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, &entity.RPCError{Method: "eth_getBalance", Message: "empty balance result"}
	}
	return (*big.Int)(balance), nil
}

// SendTransaction implements port.WalletProvider.
func (c *WalletClient) SendTransaction(ctx context.Context, tx entity.TransactionRequest) (string, error) {
	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}
	args := sendTxArgs{
		From:  common.HexToAddress(tx.From),
		To:    common.HexToAddress(tx.To),
		Value: (*hexutil.Big)(value),
		Gas:   hexutil.Uint64(tx.Gas),
	}
	var hash common.Hash
	if err := c.call(ctx, false, &hash, "eth_sendTransaction", args); err != nil {
		return "", err
	}
	return hash.Hex(), nil
}

// GetTransactionByHash implements port.WalletProvider.
func (c *WalletClient) GetTransactionByHash(ctx context.Context, hash string) (*entity.TransactionDetails, error) {
	var tx *rpcTransaction
	if err := c.call(ctx, true, &tx, "eth_getTransactionByHash", common.HexToHash(hash)); err != nil {
		return nil, err
	}
	return tx.toEntity(), nil
}

// GetTransactionReceipt implements port.WalletProvider.
func (c *WalletClient) GetTransactionReceipt(ctx context.Context, hash string) (*entity.TransactionReceipt, error) {
	var receipt *rpcReceipt
	if err := c.call(ctx, true, &receipt, "eth_getTransactionReceipt", common.HexToHash(hash)); err != nil {
		return nil, err
	}
	return receipt.toEntity(), nil
}

// LookupTransaction fetches the transaction and its receipt in one batch request.
func (c *WalletClient) LookupTransaction(ctx context.Context, hash string) (*entity.TransactionDetails, *entity.TransactionReceipt, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}
	var (
		tx      *rpcTransaction
		receipt *rpcReceipt
	)
	h := common.HexToHash(hash)
	batch := []rpc.BatchElem{
		{Method: "eth_getTransactionByHash", Args: []interface{}{h}, Result: &tx},
		{Method: "eth_getTransactionReceipt", Args: []interface{}{h}, Result: &receipt},
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()
	if err := c.rpcClient.BatchCallContext(callCtx, batch); err != nil {
		return nil, nil, wrapRPCError("batch", err)
	}
	for _, elem := range batch {
		if elem.Error != nil {
			return nil, nil, wrapRPCError(elem.Method, elem.Error)
		}
	}
	return tx.toEntity(), receipt.toEntity(), nil
}

// SwitchEthereumChain implements port.WalletProvider.
func (c *WalletClient) SwitchEthereumChain(ctx context.Context, chainIDHex string) error {
	return c.call(ctx, false, nil, "wallet_switchEthereumChain", switchChainArgs{ChainID: chainIDHex})
}

// AddEthereumChain implements port.WalletProvider.
func (c *WalletClient) AddEthereumChain(ctx context.Context, params entity.AddChainParams) error {
	return c.call(ctx, false, nil, "wallet_addEthereumChain", params)
}

func (t *rpcTransaction) toEntity() *entity.TransactionDetails {
	if t == nil {
		return nil
	}
	d := &entity.TransactionDetails{Hash: t.Hash.Hex()}
	if t.GasPrice != nil {
		d.GasPrice = (*big.Int)(t.GasPrice)
	}
	return d
}

func (r *rpcReceipt) toEntity() *entity.TransactionReceipt {
	if r == nil {
		return nil
	}
	return &entity.TransactionReceipt{
		Hash:    r.TransactionHash.Hex(),
		Status:  uint64(r.Status),
		GasUsed: uint64(r.GasUsed),
	}
}
