// Package memwallet is an in-memory wallet provider. The daemon uses it in
// simulate mode and the service tests use it as a test double.
package memwallet

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"orbix_wallet/internal/domain/entity"
)

const (
	codeUnauthorized     = 4100
	codeInsufficientFund = -32000
)

// DefaultGasPrice is reported for every simulated transaction (50 gwei).
var DefaultGasPrice = big.NewInt(50_000_000_000)

// SentTx is a transaction the wallet accepted.
type SentTx struct {
	Hash  string
	From  string
	To    string
	Value *big.Int
	Nonce uint64
	At    time.Time
}

// Call is one provider method invocation.
type Call struct {
	Method string
	At     time.Time
}

// Wallet simulates an injected wallet: an account the user can authorize,
// balances, a set of known chains and instantly mined transfers.
type Wallet struct {
	mu sync.Mutex

	account    string
	authorized bool
	rejectAll  bool

	balances map[string]*big.Int
	nonces   map[string]uint64
	txs      map[string]SentTx

	knownChains map[string]bool
	chainID     string

	sendHook   func(tx entity.TransactionRequest) error
	lookupErr  error
	pendingTxs map[string]bool

	sent  []SentTx
	calls []Call
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithAccount sets the account the user approves, funded with balance base units.
func WithAccount(address string, balance *big.Int) Option {
	return func(w *Wallet) {
		w.account = address
		w.balances[key(address)] = new(big.Int).Set(balance)
	}
}

// WithAuthorized marks the account as already authorized, as after an earlier visit.
func WithAuthorized() Option {
	return func(w *Wallet) { w.authorized = true }
}

// WithKnownChain makes the wallet recognise chainIDHex without an add request.
func WithKnownChain(chainIDHex string) Option {
	return func(w *Wallet) { w.knownChains[strings.ToLower(chainIDHex)] = true }
}

// WithRejection makes every prompting request fail with the user-rejected code.
func WithRejection() Option {
	return func(w *Wallet) { w.rejectAll = true }
}

// New creates a Wallet on mainnet (0x1) with no account.
func New(opts ...Option) *Wallet {
	w := &Wallet{
		balances:    make(map[string]*big.Int),
		nonces:      make(map[string]uint64),
		txs:         make(map[string]SentTx),
		knownChains: map[string]bool{"0x1": true},
		chainID:     "0x1",
		pendingTxs:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func key(address string) string {
	return strings.ToLower(address)
}

func (w *Wallet) record(method string) {
	w.calls = append(w.calls, Call{Method: method, At: time.Now()})
}

// RequestAccounts authorizes and returns the configured account.
func (w *Wallet) RequestAccounts(ctx context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("eth_requestAccounts")
	if w.rejectAll {
		return nil, entity.NewRPCError("eth_requestAccounts", entity.CodeUserRejected, "User rejected the request.")
	}
	if w.account == "" {
		return []string{}, nil
	}
	w.authorized = true
	return []string{w.account}, nil
}

// Accounts returns the account only once it has been authorized.
func (w *Wallet) Accounts(ctx context.Context) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("eth_accounts")
	if !w.authorized || w.account == "" {
		return []string{}, nil
	}
	return []string{w.account}, nil
}

// GetBalance returns the balance of address, zero when unknown.
func (w *Wallet) GetBalance(ctx context.Context, address string) (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("eth_getBalance")
	if b, ok := w.balances[key(address)]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

// SendTransaction moves value from tx.From to tx.To and mines it immediately.
func (w *Wallet) SendTransaction(ctx context.Context, tx entity.TransactionRequest) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("eth_sendTransaction")

	if w.rejectAll {
		return "", entity.NewRPCError("eth_sendTransaction", entity.CodeUserRejected, "User denied transaction signature.")
	}
	if !w.authorized || !strings.EqualFold(tx.From, w.account) {
		return "", entity.NewRPCError("eth_sendTransaction", codeUnauthorized, "The requested account has not been authorized by the user.")
	}
	if w.sendHook != nil {
		if err := w.sendHook(tx); err != nil {
			return "", err
		}
	}

	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}
	from := w.balances[key(tx.From)]
	if from == nil || from.Cmp(value) < 0 {
		return "", entity.NewRPCError("eth_sendTransaction", codeInsufficientFund, "insufficient funds for transfer")
	}

	nonce := w.nonces[key(tx.From)]
	w.nonces[key(tx.From)] = nonce + 1

	hash := crypto.Keccak256Hash(
		common.HexToAddress(tx.From).Bytes(),
		common.HexToAddress(tx.To).Bytes(),
		value.Bytes(),
		new(big.Int).SetUint64(nonce).Bytes(),
	).Hex()

	from.Sub(from, value)
	to := w.balances[key(tx.To)]
	if to == nil {
		to = new(big.Int)
		w.balances[key(tx.To)] = to
	}
	to.Add(to, value)

	sent := SentTx{Hash: hash, From: tx.From, To: tx.To, Value: new(big.Int).Set(value), Nonce: nonce, At: time.Now()}
	w.txs[hash] = sent
	w.sent = append(w.sent, sent)
	return hash, nil
}

// GetTransactionByHash returns nil for unknown hashes.
func (w *Wallet) GetTransactionByHash(ctx context.Context, hash string) (*entity.TransactionDetails, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("eth_getTransactionByHash")
	if w.lookupErr != nil {
		return nil, w.lookupErr
	}
	if _, ok := w.txs[hash]; !ok {
		return nil, nil
	}
	return &entity.TransactionDetails{Hash: hash, GasPrice: new(big.Int).Set(DefaultGasPrice)}, nil
}

// GetTransactionReceipt returns a successful receipt for mined transactions.
func (w *Wallet) GetTransactionReceipt(ctx context.Context, hash string) (*entity.TransactionReceipt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("eth_getTransactionReceipt")
	if w.lookupErr != nil {
		return nil, w.lookupErr
	}
	if _, ok := w.txs[hash]; !ok || w.pendingTxs[hash] {
		return nil, nil
	}
	return &entity.TransactionReceipt{Hash: hash, Status: 1, GasUsed: 21000}, nil
}

// SwitchEthereumChain fails with code 4902 for chains the wallet does not know.
func (w *Wallet) SwitchEthereumChain(ctx context.Context, chainIDHex string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("wallet_switchEthereumChain")
	if w.rejectAll {
		return entity.NewRPCError("wallet_switchEthereumChain", entity.CodeUserRejected, "User rejected the request.")
	}
	id := strings.ToLower(chainIDHex)
	if !w.knownChains[id] {
		return entity.NewRPCError("wallet_switchEthereumChain", entity.CodeUnrecognizedChain,
			"Unrecognized chain ID \""+chainIDHex+"\". Try adding the chain using wallet_addEthereumChain first.")
	}
	w.chainID = id
	return nil
}

// AddEthereumChain registers the chain. It does not switch to it.
func (w *Wallet) AddEthereumChain(ctx context.Context, params entity.AddChainParams) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.record("wallet_addEthereumChain")
	if w.rejectAll {
		return entity.NewRPCError("wallet_addEthereumChain", entity.CodeUserRejected, "User rejected the request.")
	}
	w.knownChains[strings.ToLower(params.ChainID)] = true
	return nil
}

// SetSendHook installs a function consulted before every transfer; a non-nil
// error fails that transfer.
func (w *Wallet) SetSendHook(hook func(tx entity.TransactionRequest) error) {
	w.mu.Lock()
	w.sendHook = hook
	w.mu.Unlock()
}

// SetLookupError makes transaction lookups fail with err. Pass nil to clear.
func (w *Wallet) SetLookupError(err error) {
	w.mu.Lock()
	w.lookupErr = err
	w.mu.Unlock()
}

// MarkPending hides the receipt of hash until cleared.
func (w *Wallet) MarkPending(hash string, pending bool) {
	w.mu.Lock()
	w.pendingTxs[hash] = pending
	w.mu.Unlock()
}

// SetBalance overwrites the balance of address.
func (w *Wallet) SetBalance(address string, balance *big.Int) {
	w.mu.Lock()
	w.balances[key(address)] = new(big.Int).Set(balance)
	w.mu.Unlock()
}

// Balance returns the current balance of address.
func (w *Wallet) Balance(address string) *big.Int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if b, ok := w.balances[key(address)]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Revoke drops the site authorization, as when the user disconnects in the extension.
func (w *Wallet) Revoke() {
	w.mu.Lock()
	w.authorized = false
	w.mu.Unlock()
}

// ChainID returns the currently selected chain.
func (w *Wallet) ChainID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.chainID
}

// Sent returns accepted transactions in submission order.
func (w *Wallet) Sent() []SentTx {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]SentTx(nil), w.sent...)
}

// Calls returns every method invocation in order.
func (w *Wallet) Calls() []Call {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Call(nil), w.calls...)
}

// CallCount counts invocations of method.
func (w *Wallet) CallCount(method string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, c := range w.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
