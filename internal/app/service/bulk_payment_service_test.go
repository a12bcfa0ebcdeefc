package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"orbix_wallet/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bulkReq(recipients ...entity.TransferRequest) entity.BulkPaymentRequest {
	return entity.BulkPaymentRequest{Recipients: recipients, Token: "MON"}
}

func TestBulkRejectsBatchUpFront(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 10})
	h.connect(t)

	_, err := h.bulk.SendBulkPayment(context.Background(), bulkReq(
		entity.TransferRequest{Address: recipA, Amount: 1},
		entity.TransferRequest{Address: recipB, Amount: -1},
	))
	var ve *entity.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "recipients[1].amount", ve.Field)
	assert.Equal(t, 0, h.wallet.CallCount("eth_sendTransaction"))

	_, err = h.bulk.SendBulkPayment(context.Background(), bulkReq(
		entity.TransferRequest{Address: recipA, Amount: 1},
		entity.TransferRequest{Address: "0xZZ", Amount: 1},
	))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "recipients[1].address", ve.Field)

	_, err = h.bulk.SendBulkPayment(context.Background(), bulkReq())
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "No recipients provided", ve.Message)

	_, err = h.bulk.SendBulkPayment(context.Background(), entity.BulkPaymentRequest{
		Recipients: []entity.TransferRequest{{Address: recipA, Amount: 1}},
		Token:      "USDC",
	})
	require.ErrorIs(t, err, entity.ErrTokenNotTransferable)
	assert.Equal(t, 0, h.wallet.CallCount("eth_sendTransaction"))
}

func TestBulkPartialFailureAndDelay(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 10, delay: time.Second})
	h.connect(t)
	h.wallet.SetSendHook(func(tx entity.TransactionRequest) error {
		if strings.EqualFold(tx.To, recipB) {
			return errors.New("execution reverted")
		}
		return nil
	})

	res, err := h.bulk.SendBulkPayment(context.Background(), bulkReq(
		entity.TransferRequest{Address: recipA, Amount: 1},
		entity.TransferRequest{Address: recipB, Amount: 2},
		entity.TransferRequest{Address: recipC, Amount: 3},
	))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.FailedTransactions)
	assert.Equal(t, 4.0, res.TotalNet)
	assert.Zero(t, res.TotalFee)

	require.Len(t, res.Legs, 3)
	assert.True(t, res.Legs[0].Success)
	assert.False(t, res.Legs[1].Success)
	assert.Equal(t, "execution reverted", res.Legs[1].Error)
	assert.True(t, res.Legs[2].Success)
	assert.Equal(t, res.Legs[2].TxHash, res.LastTxHash)

	times := h.sendTimes()
	require.Len(t, times, 3)
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), time.Second)
	}
}

func TestBulkConsolidatedFee(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 10})
	h.connect(t)

	res, err := h.bulk.SendBulkPayment(context.Background(), entity.BulkPaymentRequest{
		Recipients: []entity.TransferRequest{{Address: recipA, Amount: 1}, {Address: recipB, Amount: 2}, {Address: recipC, Amount: 3}},
		Token:      "MON",
		IncludeFee: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Zero(t, res.FailedTransactions)
	assert.InDelta(t, 0.03, res.TotalFee, 1e-12)
	assert.InDelta(t, 5.97, res.TotalNet, 1e-12)
	assert.NotEmpty(t, res.FeeTxHash)

	sent := h.wallet.Sent()
	require.Len(t, sent, 4)
	assert.Equal(t, feeWallet, sent[0].To, "one consolidated fee leg first")
	assert.Equal(t, recipA, sent[1].To)
	assert.Equal(t, mon(t, 0.995), sent[1].Value)
	assert.Equal(t, recipC, sent[3].To)
}

func TestBulkRequiredFeeAbortsBatch(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 10, policy: entity.FeePolicyRequired})
	h.connect(t)
	h.wallet.SetSendHook(func(tx entity.TransactionRequest) error {
		if tx.To == feeWallet {
			return errors.New("rejected")
		}
		return nil
	})

	res, err := h.bulk.SendBulkPayment(context.Background(), entity.BulkPaymentRequest{
		Recipients: []entity.TransferRequest{{Address: recipA, Amount: 1}, {Address: recipB, Amount: 1}},
		Token:      "MON",
		IncludeFee: true,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.FailedTransactions)
	assert.Len(t, res.Legs, 2)
	assert.Empty(t, h.wallet.Sent())
}

func TestBulkAllFail(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 10})
	h.connect(t)
	h.wallet.SetSendHook(func(entity.TransactionRequest) error { return errors.New("down") })

	res, err := h.bulk.SendBulkPayment(context.Background(), bulkReq(
		entity.TransferRequest{Address: recipA, Amount: 1},
		entity.TransferRequest{Address: recipB, Amount: 1},
	))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.FailedTransactions)
	assert.Empty(t, res.LastTxHash)
	assert.Equal(t, "all 2 transfers failed", res.Error)
}

func TestBulkStopsOnCancel(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 10, delay: 50 * time.Millisecond})
	h.connect(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.wallet.SetSendHook(func(entity.TransactionRequest) error {
		cancel()
		return nil
	})

	res, err := h.bulk.SendBulkPayment(ctx, bulkReq(
		entity.TransferRequest{Address: recipA, Amount: 1},
		entity.TransferRequest{Address: recipB, Amount: 1},
		entity.TransferRequest{Address: recipC, Amount: 1},
	))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.FailedTransactions)
	assert.Len(t, h.wallet.Sent(), 1)
	assert.Equal(t, context.Canceled.Error(), res.Legs[2].Error)
}

func TestBulkRequiresConnection(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 10})
	res, err := h.bulk.SendBulkPayment(context.Background(), bulkReq(entity.TransferRequest{Address: recipA, Amount: 1}))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Wallet is not connected")
}
