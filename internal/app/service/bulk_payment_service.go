package service

import (
	"context"
	"fmt"
	"math"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/pkg/metrics"
)

// BulkPaymentService pays a batch of recipients one after another. The batch is
// validated as a whole up front, but a failing leg does not stop the others.
type BulkPaymentService struct {
	wallet    *WalletService
	fees      *FeeCalculator
	submitter *transferSubmitter
	logger    port.Logger
}

// NewBulkPaymentService creates a BulkPaymentService on the shared submission queue.
func NewBulkPaymentService(
	wallet *WalletService,
	fees *FeeCalculator,
	queue *SubmissionQueue,
	ledger port.PaymentLedger,
	logger port.Logger,
) *BulkPaymentService {
	return &BulkPaymentService{
		wallet:    wallet,
		fees:      fees,
		submitter: newTransferSubmitter(wallet, queue, ledger, logger),
		logger:    logger,
	}
}

// ValidateBatch checks every recipient before anything is submitted.
func (s *BulkPaymentService) ValidateBatch(req entity.BulkPaymentRequest) error {
	if len(req.Recipients) == 0 {
		return entity.NewValidationError("recipients", "No recipients provided")
	}
	if symbol := entity.NormalizeSymbol(req.Token); symbol != entity.SymbolMON {
		return &entity.ValidationError{
			Field:   "token",
			Message: fmt.Sprintf("Bulk transfers support %s only, got %s", entity.SymbolMON, symbol),
			Err:     entity.ErrTokenNotTransferable,
		}
	}
	for i, r := range req.Recipients {
		if !entity.IsValidAddress(r.Address) {
			return entity.NewValidationError(fmt.Sprintf("recipients[%d].address", i), "Invalid address: %s", r.Address)
		}
		if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) || r.Amount <= 0 {
			return entity.NewValidationError(fmt.Sprintf("recipients[%d].amount", i), "Amount must be greater than 0")
		}
	}
	return nil
}

// SendBulkPayment validates the batch, collects one consolidated platform fee if
// requested, then submits every recipient leg in order through the queue.
// If ctx ends mid-batch the unsent legs are reported as failed.
func (s *BulkPaymentService) SendBulkPayment(ctx context.Context, req entity.BulkPaymentRequest) (entity.BatchResult, error) {
	return s.sendBatch(ctx, req, entity.PaymentKindBulkLeg)
}

// sendBatch records every recipient leg in the ledger as legKind.
func (s *BulkPaymentService) sendBatch(ctx context.Context, req entity.BulkPaymentRequest, legKind entity.PaymentKind) (entity.BatchResult, error) {
	from := s.wallet.Session().Address()
	if from == "" {
		return entity.BatchResult{Error: UserMessage(entity.ErrWalletNotConnected)}, nil
	}
	if err := s.ValidateBatch(req); err != nil {
		return entity.BatchResult{}, err
	}

	n := len(req.Recipients)
	result := entity.BatchResult{Legs: make([]entity.TransferResult, 0, n)}
	cfg := s.fees.Config()

	applyFee := false
	if req.IncludeFee {
		var totalFee float64
		for _, r := range req.Recipients {
			totalFee += s.fees.PlatformFee(r.Amount)
		}
		if s.fees.ExceedsDust(totalFee) && entity.IsValidAddress(cfg.FeeAddress) {
			applyFee = true
			feeHash, err := s.submitter.send(ctx, transferLeg{
				kind:   entity.PaymentKindFee,
				from:   from,
				to:     cfg.FeeAddress,
				amount: totalFee,
			})
			if err != nil {
				metrics.FeeLegFailures.WithLabelValues(string(cfg.Policy)).Inc()
				if cfg.Policy == entity.FeePolicyRequired {
					s.logger.Error("Consolidated platform fee failed, aborting batch", "fee", totalFee, "error", err)
					msg := "platform fee collection failed: " + UserMessage(err)
					for _, r := range req.Recipients {
						result.Legs = append(result.Legs, entity.TransferResult{Recipient: r.Address, Amount: r.Amount, Error: msg})
					}
					result.FailedTransactions = n
					result.Error = msg
					return result, nil
				}
				s.logger.Warn("Consolidated platform fee failed, continuing with batch", "fee", totalFee, "error", err)
			} else {
				result.TotalFee = totalFee
				result.FeeTxHash = feeHash
				metrics.FeesCollected.Add(totalFee)
			}
		} else {
			s.logger.Debug("Skipping consolidated fee leg", "fee", totalFee)
		}
	}

	for i, r := range req.Recipients {
		leg := entity.TransferResult{Recipient: r.Address, Amount: r.Amount, NetAmount: r.Amount}
		if applyFee {
			leg.Fee = s.fees.PlatformFee(r.Amount)
			leg.NetAmount = s.fees.NetAmount(r.Amount)
		}

		if err := ctx.Err(); err != nil {
			leg.Error = err.Error()
			result.Legs = append(result.Legs, leg)
			result.FailedTransactions++
			continue
		}

		hash, err := s.submitter.send(ctx, transferLeg{
			kind:   legKind,
			from:   from,
			to:     r.Address,
			amount: leg.NetAmount,
			fee:    leg.Fee,
		})
		if err != nil {
			s.logger.Warn("Bulk leg failed", "index", i, "error", err)
			leg.Error = UserMessage(err)
			result.FailedTransactions++
		} else {
			leg.Success = true
			leg.TxHash = hash
			result.LastTxHash = hash
			result.TotalNet += leg.NetAmount
		}
		result.Legs = append(result.Legs, leg)
	}

	result.Success = result.FailedTransactions < n
	switch {
	case result.FailedTransactions == n:
		result.Error = fmt.Sprintf("all %d transfers failed", n)
	case result.FailedTransactions > 0:
		result.Error = fmt.Sprintf("%d of %d transfers failed", result.FailedTransactions, n)
	}
	s.logger.Info("Bulk payment finished", "recipients", n, "failed", result.FailedTransactions, "total_net", result.TotalNet)
	return result, nil
}
