package entity

// TransferRequest is one recipient/amount pair, the unit of work for single and bulk flows.
type TransferRequest struct {
	Address string  `json:"address"`
	Amount  float64 `json:"amount"`
}

// TransferResult is produced once per submitted transfer and never mutated afterwards.
type TransferResult struct {
	Success   bool    `json:"success"`
	TxHash    string  `json:"txHash,omitempty"`
	Error     string  `json:"error,omitempty"`
	Recipient string  `json:"recipient,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Fee       float64 `json:"fee,omitempty"`
	NetAmount float64 `json:"netAmount,omitempty"`
	FeeTxHash string  `json:"feeTxHash,omitempty"`
}

// BatchResult aggregates the legs of a bulk payment.
// Success is true unless every recipient leg failed.
type BatchResult struct {
	Success            bool             `json:"success"`
	LastTxHash         string           `json:"txHash,omitempty"`
	Error              string           `json:"error,omitempty"`
	TotalFee           float64          `json:"totalFee"`
	TotalNet           float64          `json:"totalNet"`
	FailedTransactions int              `json:"failedTransactions"`
	FeeTxHash          string           `json:"feeTxHash,omitempty"`
	Legs               []TransferResult `json:"legs,omitempty"`
}

// FeeCollectionPolicy decides what a failed fee leg does to the enclosing payment.
type FeeCollectionPolicy string

const (
	// FeePolicyBestEffort logs a failed fee leg and delivers the payment anyway.
	FeePolicyBestEffort FeeCollectionPolicy = "best_effort"
	// FeePolicyRequired aborts the payment when the fee leg fails.
	FeePolicyRequired FeeCollectionPolicy = "required"
)

// PlatformFeeConfig is fixed at startup and read-only afterwards.
type PlatformFeeConfig struct {
	FeePercentage       float64
	FeeAddress          string
	VATRefundPercentage float64
	DustThreshold       float64
	Policy              FeeCollectionPolicy
}

// DefaultPlatformFeeConfig returns 0.5% fee, 85% VAT refund, 1e-6 dust, best effort.
func DefaultPlatformFeeConfig() PlatformFeeConfig {
	return PlatformFeeConfig{
		FeePercentage:       0.5,
		VATRefundPercentage: 85,
		DustThreshold:       1e-6,
		Policy:              FeePolicyBestEffort,
	}
}

// PaymentRequest is the input of a single payment.
type PaymentRequest struct {
	Recipient  string  `json:"recipient"`
	Amount     float64 `json:"amount"`
	Token      string  `json:"token"`
	IncludeFee bool    `json:"includeFee"`
}

// BulkPaymentRequest is an ordered batch of transfers paid in one token.
type BulkPaymentRequest struct {
	Recipients []TransferRequest `json:"recipients"`
	Token      string            `json:"token"`
	IncludeFee bool              `json:"includeFee"`
}
