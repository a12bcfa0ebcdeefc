package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/patrickmn/go-cache"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/pkg/metrics"
)

// DefaultMaxReceiptSize is the largest receipt upload accepted.
const DefaultMaxReceiptSize int64 = 10 * 1024 * 1024

var allowedReceiptTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}

// ErrExtractorUnavailable is returned when no receipt extraction service is configured.
var ErrExtractorUnavailable = errors.New("receipt extraction service is not configured")

// RefundServiceOptions tunes the refund flow.
type RefundServiceOptions struct {
	MaxFileSize     int64
	DemoAmount      float64
	ExtractCacheTTL time.Duration
}

// RefundService runs the receipt-to-refund demo: file checks, AI extraction,
// refund quotes, the fixed demo payout and refund history.
type RefundService struct {
	extractor port.ReceiptExtractor
	fees      *FeeCalculator
	bulk      *BulkPaymentService
	session   *Session
	ledger    port.PaymentLedger
	logger    port.Logger
	opts      RefundServiceOptions
	extracted *cache.Cache
}

// NewRefundService creates a RefundService. extractor may be nil.
func NewRefundService(
	extractor port.ReceiptExtractor,
	fees *FeeCalculator,
	bulk *BulkPaymentService,
	session *Session,
	ledger port.PaymentLedger,
	logger port.Logger,
	opts RefundServiceOptions,
) *RefundService {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxReceiptSize
	}
	if opts.DemoAmount <= 0 {
		opts.DemoAmount = 0.1
	}
	if opts.ExtractCacheTTL <= 0 {
		opts.ExtractCacheTTL = time.Hour
	}
	return &RefundService{
		extractor: extractor,
		fees:      fees,
		bulk:      bulk,
		session:   session,
		ledger:    ledger,
		logger:    logger,
		opts:      opts,
		extracted: cache.New(opts.ExtractCacheTTL, 10*time.Minute),
	}
}

// ValidateReceiptFile checks size and sniffed content type. It returns the detected MIME type.
func (s *RefundService) ValidateReceiptFile(file entity.ReceiptFile) (string, error) {
	if len(file.Data) == 0 {
		return "", entity.NewValidationError("file", "Please select a receipt file")
	}
	if int64(len(file.Data)) > s.opts.MaxFileSize {
		return "", entity.NewValidationError("file", "File size must be less than %d MB", s.opts.MaxFileSize/(1024*1024))
	}
	mt := mimetype.Detect(file.Data)
	if !mimetype.EqualsAny(mt.String(), allowedReceiptTypes...) {
		return "", entity.NewValidationError("file", "Please upload a valid image (JPEG, PNG, WEBP) or PDF file, got %s", mt.String())
	}
	return mt.String(), nil
}

// ExtractReceipt validates the upload and runs it through the extraction service.
// Identical uploads are served from cache. A very low confidence score is a
// validation error asking for a clearer image.
func (s *RefundService) ExtractReceipt(ctx context.Context, file entity.ReceiptFile) (entity.ReceiptExtraction, error) {
	contentType, err := s.ValidateReceiptFile(file)
	if err != nil {
		return entity.ReceiptExtraction{}, err
	}
	if s.extractor == nil {
		return entity.ReceiptExtraction{}, ErrExtractorUnavailable
	}

	sum := sha256.Sum256(file.Data)
	key := hex.EncodeToString(sum[:])

	var (
		receipt entity.VATReceipt
		cached  bool
	)
	if v, ok := s.extracted.Get(key); ok {
		receipt = v.(entity.VATReceipt)
		cached = true
	} else {
		file.ContentType = contentType
		receipt, err = s.extractor.ExtractReceipt(ctx, file)
		if err != nil {
			s.logger.Error("Receipt extraction failed", "file", file.Name, "error", err)
			return entity.ReceiptExtraction{}, fmt.Errorf("failed to extract receipt: %w", err)
		}
		s.extracted.SetDefault(key, receipt)
	}

	band := entity.ClassifyConfidence(receipt.Confidence)
	metrics.ReceiptExtractions.WithLabelValues(string(band)).Inc()
	pct := receipt.Confidence * 100

	out := entity.ReceiptExtraction{Receipt: receipt, Band: band, Cached: cached}
	switch band {
	case entity.ConfidenceVeryLow:
		s.logger.Warn("Receipt extraction confidence too low", "confidence", receipt.Confidence)
		return out, &entity.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("Low confidence (%.0f%%). Please upload a clearer image.", pct),
			Err:     entity.ErrLowConfidence,
		}
	case entity.ConfidenceLow:
		out.Warning = fmt.Sprintf("Low confidence (%.0f%%). Results may be unreliable.", pct)
	case entity.ConfidenceMedium:
		out.Warning = fmt.Sprintf("Medium confidence (%.0f%%). Please verify the extracted data.", pct)
	}
	s.logger.Info("Receipt extracted", "merchant", receipt.MerchantName, "band", band, "cached", cached)
	return out, nil
}

// QuoteRefund returns the refund breakdown for a VAT amount.
func (s *RefundService) QuoteRefund(vatAmount float64) (entity.RefundQuote, error) {
	if vatAmount <= 0 {
		return entity.RefundQuote{}, entity.NewValidationError("vatAmount", "VAT amount must be greater than 0")
	}
	return s.fees.RefundQuote(vatAmount), nil
}

// QuoteRefundFromBill quotes the refund for a VAT-inclusive bill charged at vatRate percent.
func (s *RefundService) QuoteRefundFromBill(billAmount, vatRate float64) (entity.RefundQuote, error) {
	if billAmount <= 0 {
		return entity.RefundQuote{}, entity.NewValidationError("billAmount", "Bill amount must be greater than 0")
	}
	if vatRate <= 0 || vatRate > 100 {
		return entity.RefundQuote{}, entity.NewValidationError("vatRate", "VAT rate must be between 0 and 100")
	}
	return s.QuoteRefund(s.fees.VATFromGross(billAmount, vatRate))
}

// SendDemoRefund pays the fixed demo amount to walletAddress through the bulk path.
// The transfer is recorded once, as a vat_refund ledger entry.
func (s *RefundService) SendDemoRefund(ctx context.Context, walletAddress string) (entity.BatchResult, error) {
	if !entity.IsValidAddress(walletAddress) {
		return entity.BatchResult{}, entity.NewValidationError("walletAddress",
			"Please enter a valid Monad wallet address (42 characters starting with 0x)")
	}
	if !s.session.Connected() {
		return entity.BatchResult{}, entity.ErrWalletNotConnected
	}

	s.logger.Info("Sending demo VAT refund", "to", walletAddress, "amount", s.opts.DemoAmount)
	return s.bulk.sendBatch(ctx, entity.BulkPaymentRequest{
		Recipients: []entity.TransferRequest{{Address: walletAddress, Amount: s.opts.DemoAmount}},
		Token:      entity.SymbolMON,
	}, entity.PaymentKindRefund)
}

// SubmitVATRefund validates an on-chain refund claim. The refund contract does
// not exist yet, so a valid claim always ends in ErrVATContractNotDeployed.
func (s *RefundService) SubmitVATRefund(ctx context.Context, claim entity.VATRefundClaim) error {
	if claim.BillAmount <= 0 || claim.VATAmount <= 0 {
		return entity.NewValidationError("amount", "Bill amount and VAT amount must be greater than 0")
	}
	if claim.VATAmount > claim.BillAmount {
		return entity.NewValidationError("vatAmount", "VAT amount cannot be greater than bill amount")
	}
	if claim.Currency == "" {
		claim.Currency = entity.SymbolMON
	}
	if claim.DocumentHash == "" {
		claim.DocumentHash = fmt.Sprintf("hash_%d", time.Now().UnixMilli())
	}
	s.logger.Info("Submitting VAT refund",
		"vat_reg_no", claim.VATRegNo,
		"receipt_no", claim.ReceiptNo,
		"bill_amount", claim.BillAmount,
		"vat_amount", claim.VATAmount,
		"currency", claim.Currency,
		"document_hash", claim.DocumentHash,
	)
	return entity.ErrVATContractNotDeployed
}

// RefundHistory lists refunds paid to or from the connected account, newest first.
// It is empty while no wallet is connected.
func (s *RefundService) RefundHistory(ctx context.Context, limit int) ([]entity.PaymentRecord, error) {
	address := s.session.Address()
	if address == "" {
		return []entity.PaymentRecord{}, nil
	}
	return s.ledger.List(ctx, port.LedgerFilter{Kind: entity.PaymentKindRefund, Address: address, Limit: limit})
}
