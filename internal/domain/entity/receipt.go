package entity

// VATReceipt is the structured output of the receipt extraction service.
type VATReceipt struct {
	MerchantName          string  `json:"merchantName"`
	MerchantAddress       string  `json:"merchantAddress"`
	ReceiptNumber         string  `json:"receiptNumber"`
	PurchaseDate          string  `json:"date"`
	VATRegistrationNumber string  `json:"vatRegistrationNumber"`
	TotalAmount           float64 `json:"totalAmount"`
	VATAmount             float64 `json:"vatAmount"`
	Confidence            float64 `json:"confidence"`
	RawText               string  `json:"rawText"`
}

// ConfidenceBand buckets an extraction's confidence score.
type ConfidenceBand string

const (
	ConfidenceHigh    ConfidenceBand = "high"
	ConfidenceMedium  ConfidenceBand = "medium"
	ConfidenceLow     ConfidenceBand = "low"
	ConfidenceVeryLow ConfidenceBand = "very_low"
)

// ClassifyConfidence maps a 0..1 score to its band.
func ClassifyConfidence(score float64) ConfidenceBand {
	switch {
	case score >= 0.7:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	case score >= 0.3:
		return ConfidenceLow
	default:
		return ConfidenceVeryLow
	}
}

// ReceiptFile is an uploaded receipt image or PDF.
type ReceiptFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReceiptExtraction pairs extracted data with its band and any warning for the user.
type ReceiptExtraction struct {
	Receipt VATReceipt     `json:"receipt"`
	Band    ConfidenceBand `json:"band"`
	Warning string         `json:"warning,omitempty"`
	Cached  bool           `json:"cached"`
}

// RefundQuote breaks a VAT refund down the way the refund screen shows it.
type RefundQuote struct {
	VATAmount        float64 `json:"vatAmount"`
	RefundPercentage float64 `json:"refundPercentage"`
	GrossRefund      float64 `json:"grossRefund"`
	PlatformFee      float64 `json:"platformFee"`
	NetRefund        float64 `json:"netRefund"`
}

// FeeQuote breaks a payment down into fee and net.
type FeeQuote struct {
	Amount        float64 `json:"amount"`
	FeePercentage float64 `json:"feePercentage"`
	PlatformFee   float64 `json:"platformFee"`
	NetAmount     float64 `json:"netAmount"`
}

// VATRefundClaim is the input for an on-chain refund claim.
type VATRefundClaim struct {
	VATRegNo     string  `json:"vatRegNo"`
	ReceiptNo    string  `json:"receiptNo"`
	BillAmount   float64 `json:"billAmount"`
	VATAmount    float64 `json:"vatAmount"`
	Currency     string  `json:"currency"`
	DocumentHash string  `json:"documentHash"`
}
