package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/app/service"
	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type fakeExtractor struct {
	receipt entity.VATReceipt
	err     error
	calls   int
	lastCT  string
}

func (f *fakeExtractor) ExtractReceipt(ctx context.Context, file entity.ReceiptFile) (entity.VATReceipt, error) {
	f.calls++
	f.lastCT = file.ContentType
	return f.receipt, f.err
}

func newRefundService(h *harness, ex *fakeExtractor, opts service.RefundServiceOptions) *service.RefundService {
	if ex == nil {
		return service.NewRefundService(nil, h.fees, h.bulk, h.session, h.store, logger.NewNop(), opts)
	}
	return service.NewRefundService(ex, h.fees, h.bulk, h.session, h.store, logger.NewNop(), opts)
}

func TestValidateReceiptFile(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 1})
	svc := newRefundService(h, &fakeExtractor{}, service.RefundServiceOptions{MaxFileSize: 1024})

	ct, err := svc.ValidateReceiptFile(entity.ReceiptFile{Name: "r.png", Data: pngHeader})
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	ct, err = svc.ValidateReceiptFile(entity.ReceiptFile{Name: "r.pdf", Data: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)

	_, err = svc.ValidateReceiptFile(entity.ReceiptFile{Name: "r.txt", Data: []byte("just some text")})
	assert.True(t, entity.IsValidationError(err))

	_, err = svc.ValidateReceiptFile(entity.ReceiptFile{Name: "big.png", Data: append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2048)...)})
	assert.True(t, entity.IsValidationError(err))

	_, err = svc.ValidateReceiptFile(entity.ReceiptFile{Name: "empty.png"})
	assert.True(t, entity.IsValidationError(err))
}

func TestExtractReceiptBandsAndCache(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 1})
	ex := &fakeExtractor{receipt: entity.VATReceipt{MerchantName: "Cafe", VATAmount: 20, TotalAmount: 120, Confidence: 0.92}}
	svc := newRefundService(h, ex, service.RefundServiceOptions{})
	file := entity.ReceiptFile{Name: "r.png", Data: pngHeader}

	out, err := svc.ExtractReceipt(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, entity.ConfidenceHigh, out.Band)
	assert.Empty(t, out.Warning)
	assert.False(t, out.Cached)
	assert.Equal(t, "image/png", ex.lastCT)

	out, err = svc.ExtractReceipt(context.Background(), file)
	require.NoError(t, err)
	assert.True(t, out.Cached)
	assert.Equal(t, 1, ex.calls)

	ex.receipt.Confidence = 0.55
	out, err = svc.ExtractReceipt(context.Background(), entity.ReceiptFile{Name: "r2.png", Data: append(append([]byte{}, pngHeader...), 1)})
	require.NoError(t, err)
	assert.Equal(t, entity.ConfidenceMedium, out.Band)
	assert.Contains(t, out.Warning, "verify")

	ex.receipt.Confidence = 0.2
	_, err = svc.ExtractReceipt(context.Background(), entity.ReceiptFile{Name: "r3.png", Data: append(append([]byte{}, pngHeader...), 2)})
	require.ErrorIs(t, err, entity.ErrLowConfidence)
	assert.True(t, entity.IsValidationError(err))
	assert.Contains(t, err.Error(), "Low confidence (20%)")
}

func TestExtractReceiptErrors(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 1})
	svc := newRefundService(h, nil, service.RefundServiceOptions{})
	_, err := svc.ExtractReceipt(context.Background(), entity.ReceiptFile{Data: pngHeader})
	require.ErrorIs(t, err, service.ErrExtractorUnavailable)

	boom := errors.New("upstream 500")
	svc = newRefundService(h, &fakeExtractor{err: boom}, service.RefundServiceOptions{})
	_, err = svc.ExtractReceipt(context.Background(), entity.ReceiptFile{Data: pngHeader})
	require.ErrorIs(t, err, boom)
}

func TestQuoteRefund(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 1})
	svc := newRefundService(h, nil, service.RefundServiceOptions{})

	q, err := svc.QuoteRefund(100)
	require.NoError(t, err)
	assert.Equal(t, 85.0, q.GrossRefund)
	assert.InDelta(t, 84.575, q.NetRefund, 1e-12)

	_, err = svc.QuoteRefund(0)
	assert.True(t, entity.IsValidationError(err))
}

func TestQuoteRefundFromBill(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 1})
	svc := newRefundService(h, nil, service.RefundServiceOptions{})

	q, err := svc.QuoteRefundFromBill(120, 20)
	require.NoError(t, err)
	assert.InDelta(t, 20, q.VATAmount, 1e-12)
	assert.InDelta(t, 17, q.GrossRefund, 1e-12)

	_, err = svc.QuoteRefundFromBill(0, 20)
	assert.True(t, entity.IsValidationError(err))
	_, err = svc.QuoteRefundFromBill(120, 0)
	assert.True(t, entity.IsValidationError(err))
}

func TestSendDemoRefund(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, harnessConfig{balanceMON: 1})
	svc := newRefundService(h, nil, service.RefundServiceOptions{})

	_, err := svc.SendDemoRefund(ctx, "0x12")
	assert.True(t, entity.IsValidationError(err))

	_, err = svc.SendDemoRefund(ctx, recipA)
	require.ErrorIs(t, err, entity.ErrWalletNotConnected)

	h.connect(t)
	res, err := svc.SendDemoRefund(ctx, recipA)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.NotEmpty(t, res.LastTxHash)
	assert.Equal(t, mon(t, 0.1), h.wallet.Balance(recipA))

	history, err := svc.RefundHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.PaymentKindRefund, history[0].Kind)
	assert.Equal(t, res.LastTxHash, history[0].TxHash)
	assert.Equal(t, 0.1, history[0].Amount)

	require.NoError(t, h.walletSv.Disconnect(ctx))
	history, err = svc.RefundHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDemoRefundRecordedOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, harnessConfig{balanceMON: 1})
	svc := newRefundService(h, nil, service.RefundServiceOptions{})
	h.connect(t)

	_, err := svc.SendDemoRefund(ctx, recipA)
	require.NoError(t, err)

	records, err := h.store.List(ctx, port.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entity.PaymentKindRefund, records[0].Kind)
	assert.Equal(t, entity.PaymentStatusCompleted, records[0].Status)

	summary, err := service.NewBusinessMetricsService(h.store).Summarize(ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalTransactions)
	assert.Zero(t, summary.TotalVolume)
	assert.Zero(t, summary.FailedTransactions)
}

func TestSubmitVATRefund(t *testing.T) {
	h := newHarness(t, harnessConfig{balanceMON: 1})
	svc := newRefundService(h, nil, service.RefundServiceOptions{})
	ctx := context.Background()

	err := svc.SubmitVATRefund(ctx, entity.VATRefundClaim{BillAmount: 0, VATAmount: 1})
	assert.True(t, entity.IsValidationError(err))
	err = svc.SubmitVATRefund(ctx, entity.VATRefundClaim{BillAmount: 10, VATAmount: 11})
	assert.True(t, entity.IsValidationError(err))
	assert.Contains(t, err.Error(), "cannot be greater")

	err = svc.SubmitVATRefund(ctx, entity.VATRefundClaim{VATRegNo: "VAT123", ReceiptNo: "INV001", BillAmount: 120, VATAmount: 20})
	require.ErrorIs(t, err, entity.ErrVATContractNotDeployed)
}
