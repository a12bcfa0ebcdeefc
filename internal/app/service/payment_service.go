package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/pkg/metrics"
)

const (
	msgWalletNotConnected = "Wallet is not connected. Please connect your wallet and try again."
	msgConnectionLost     = "Wallet connection lost. Please reconnect your wallet and try again."
)

// UserMessage turns a payment failure into the text shown to the user. Known
// provider messages get guidance; everything else passes through verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case errors.Is(err, entity.ErrWalletNotConnected), strings.Contains(lower, "wallet not connected"):
		return msgWalletNotConnected
	case strings.Contains(lower, "address must not be null"):
		return msgConnectionLost
	default:
		return msg
	}
}

// PaymentService sends single payments, optionally split into a platform fee
// leg and a net leg.
type PaymentService struct {
	wallet    *WalletService
	fees      *FeeCalculator
	tokens    map[string]entity.TokenInfo
	submitter *transferSubmitter
	logger    port.Logger
}

// NewPaymentService creates a PaymentService. tokens is the catalog used for
// per-token minimums; the queue must be the process-wide one.
func NewPaymentService(
	wallet *WalletService,
	fees *FeeCalculator,
	queue *SubmissionQueue,
	tokens []entity.TokenInfo,
	ledger port.PaymentLedger,
	logger port.Logger,
) *PaymentService {
	return &PaymentService{
		wallet:    wallet,
		fees:      fees,
		tokens:    indexTokens(tokens),
		submitter: newTransferSubmitter(wallet, queue, ledger, logger),
		logger:    logger,
	}
}

func newTransferSubmitter(wallet *WalletService, queue *SubmissionQueue, ledger port.PaymentLedger, logger port.Logger) *transferSubmitter {
	return &transferSubmitter{
		wallet:   wallet,
		queue:    queue,
		ledger:   ledger,
		logger:   logger,
		decimals: wallet.Network().NativeCurrency.Decimals,
	}
}

func indexTokens(tokens []entity.TokenInfo) map[string]entity.TokenInfo {
	out := make(map[string]entity.TokenInfo, len(tokens))
	for _, t := range tokens {
		out[entity.NormalizeSymbol(t.Symbol)] = t
	}
	return out
}

// Validate checks a payment without submitting anything. The first failing rule wins.
func (s *PaymentService) Validate(req entity.PaymentRequest) error {
	if strings.TrimSpace(req.Recipient) == "" {
		return entity.NewValidationError("recipient", "Address is required")
	}
	if !entity.IsValidAddress(req.Recipient) {
		return entity.NewValidationError("recipient", "Invalid Monad address format (must start with 0x)")
	}

	symbol := entity.NormalizeSymbol(req.Token)
	token, ok := s.tokens[symbol]
	if !ok {
		return entity.NewValidationError("token", "Unsupported token: %s", symbol)
	}

	if math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return entity.NewValidationError("amount", "Amount is required")
	}
	if req.Amount <= 0 {
		return entity.NewValidationError("amount", "Amount must be greater than 0")
	}
	if req.Amount < token.MinAmount {
		return entity.NewValidationError("amount", "Minimum amount is %s %s",
			strconv.FormatFloat(token.MinAmount, 'f', -1, 64), symbol)
	}
	if available := s.wallet.Session().Balance(symbol); req.Amount > available {
		return entity.NewValidationError("amount", "Insufficient %s balance. Available: %.6f", symbol, available)
	}
	return nil
}

// SendPayment validates and submits one payment. Validation failures come back
// as a *entity.ValidationError; submission failures are reported in the result.
func (s *PaymentService) SendPayment(ctx context.Context, req entity.PaymentRequest) (entity.TransferResult, error) {
	from := s.wallet.Session().Address()
	if from == "" {
		return entity.TransferResult{Error: UserMessage(entity.ErrWalletNotConnected)}, nil
	}
	if err := s.Validate(req); err != nil {
		return entity.TransferResult{}, err
	}

	result := entity.TransferResult{Recipient: req.Recipient, Amount: req.Amount}
	if entity.NormalizeSymbol(req.Token) != entity.SymbolMON {
		result.Error = entity.ErrTokenNotTransferable.Error()
		return result, nil
	}

	cfg := s.fees.Config()
	sendAmount := req.Amount
	if req.IncludeFee {
		fee := s.fees.PlatformFee(req.Amount)
		if s.fees.ExceedsDust(fee) && entity.IsValidAddress(cfg.FeeAddress) {
			result.Fee = fee
			sendAmount = s.fees.NetAmount(req.Amount)

			feeHash, err := s.submitter.send(ctx, transferLeg{
				kind:   entity.PaymentKindFee,
				from:   from,
				to:     cfg.FeeAddress,
				amount: fee,
			})
			if err != nil {
				metrics.FeeLegFailures.WithLabelValues(string(cfg.Policy)).Inc()
				if cfg.Policy == entity.FeePolicyRequired {
					s.logger.Error("Platform fee transfer failed, aborting payment", "error", err)
					result.Error = UserMessage(err)
					return result, nil
				}
				s.logger.Warn("Platform fee transfer failed, continuing with payment", "fee", fee, "error", err)
			} else {
				result.FeeTxHash = feeHash
				metrics.FeesCollected.Add(fee)
			}
		} else {
			s.logger.Debug("Skipping platform fee leg", "fee", fee, "fee_address_valid", entity.IsValidAddress(cfg.FeeAddress))
		}
	}
	result.NetAmount = sendAmount

	hash, err := s.submitter.send(ctx, transferLeg{
		kind:   entity.PaymentKindTransfer,
		from:   from,
		to:     req.Recipient,
		amount: sendAmount,
		fee:    result.Fee,
	})
	if err != nil {
		result.Error = UserMessage(err)
		return result, nil
	}
	result.Success = true
	result.TxHash = hash
	return result, nil
}
