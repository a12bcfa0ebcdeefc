package memwallet_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/infrastructure/memwallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice = "0x1111111111111111111111111111111111111111"
	bob   = "0x2222222222222222222222222222222222222222"
)

func TestAccountsRequireAuthorization(t *testing.T) {
	ctx := context.Background()
	w := memwallet.New(memwallet.WithAccount(alice, big.NewInt(100)))

	accounts, err := w.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	accounts, err = w.RequestAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{alice}, accounts)

	accounts, err = w.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{alice}, accounts)
}

func TestSendTransactionMovesBalance(t *testing.T) {
	ctx := context.Background()
	w := memwallet.New(memwallet.WithAccount(alice, big.NewInt(100)), memwallet.WithAuthorized())

	h1, err := w.SendTransaction(ctx, entity.TransactionRequest{From: alice, To: bob, Value: big.NewInt(40), Gas: 21000})
	require.NoError(t, err)
	h2, err := w.SendTransaction(ctx, entity.TransactionRequest{From: alice, To: bob, Value: big.NewInt(40), Gas: 21000})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2, "nonce must make hashes unique")

	assert.Equal(t, int64(20), w.Balance(alice).Int64())
	assert.Equal(t, int64(80), w.Balance(bob).Int64())

	_, err = w.SendTransaction(ctx, entity.TransactionRequest{From: alice, To: bob, Value: big.NewInt(40)})
	var rpcErr *entity.RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Contains(t, rpcErr.Message, "insufficient funds")

	sent := w.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, uint64(0), sent[0].Nonce)
	assert.Equal(t, uint64(1), sent[1].Nonce)

	receipt, err := w.GetTransactionReceipt(ctx, h1)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(1), receipt.Status)
}

func TestSwitchUnknownChain(t *testing.T) {
	ctx := context.Background()
	w := memwallet.New()

	err := w.SwitchEthereumChain(ctx, "0x279F")
	require.ErrorIs(t, err, entity.ErrUnrecognizedChain)

	require.NoError(t, w.AddEthereumChain(ctx, entity.AddChainParams{ChainID: "0x279F"}))
	require.NoError(t, w.SwitchEthereumChain(ctx, "0x279F"))
	assert.Equal(t, "0x279f", w.ChainID())
}

func TestRejectionAndHooks(t *testing.T) {
	ctx := context.Background()
	w := memwallet.New(memwallet.WithAccount(alice, big.NewInt(100)), memwallet.WithRejection())
	_, err := w.RequestAccounts(ctx)
	require.ErrorIs(t, err, entity.ErrUserRejected)

	w = memwallet.New(memwallet.WithAccount(alice, big.NewInt(100)), memwallet.WithAuthorized())
	boom := errors.New("boom")
	w.SetSendHook(func(tx entity.TransactionRequest) error {
		if tx.To == bob {
			return boom
		}
		return nil
	})
	_, err = w.SendTransaction(ctx, entity.TransactionRequest{From: alice, To: bob, Value: big.NewInt(1)})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, w.CallCount("eth_sendTransaction"))
	assert.Empty(t, w.Sent())
}
