package entity

import "time"

// PaymentKind tells ledger entries apart.
type PaymentKind string

const (
	PaymentKindTransfer PaymentKind = "transfer"
	PaymentKindBulkLeg  PaymentKind = "bulk_leg"
	PaymentKindFee      PaymentKind = "platform_fee"
	PaymentKindRefund   PaymentKind = "vat_refund"
)

// PaymentStatus is the outcome recorded for a ledger entry.
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentRecord is one submitted (or attempted) transfer kept in the local ledger.
type PaymentRecord struct {
	ID        string        `json:"id"`
	Kind      PaymentKind   `json:"kind"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Token     string        `json:"token"`
	Amount    float64       `json:"amount"`
	Fee       float64       `json:"fee"`
	TxHash    string        `json:"txHash,omitempty"`
	Status    PaymentStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// BusinessMetrics summarises completed ledger entries.
type BusinessMetrics struct {
	TotalRevenue           float64 `json:"totalRevenue"`
	TotalPlatformFees      float64 `json:"totalPlatformFees"`
	TotalTransactions      int     `json:"totalTransactions"`
	AverageTransactionSize float64 `json:"averageTransactionSize"`
	TotalVolume            float64 `json:"totalVolume"`
	FailedTransactions     int     `json:"failedTransactions"`
}
