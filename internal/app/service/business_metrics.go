package service

import (
	"context"
	"fmt"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
)

// BusinessMetricsService summarises the payment ledger for the dashboard.
type BusinessMetricsService struct {
	ledger port.PaymentLedger
}

// NewBusinessMetricsService creates a BusinessMetricsService.
func NewBusinessMetricsService(ledger port.PaymentLedger) *BusinessMetricsService {
	return &BusinessMetricsService{ledger: ledger}
}

// Summarize computes volume, fees, counts and average size. Platform revenue is
// the fees actually collected.
func (s *BusinessMetricsService) Summarize(ctx context.Context) (entity.BusinessMetrics, error) {
	records, err := s.ledger.List(ctx, port.LedgerFilter{})
	if err != nil {
		return entity.BusinessMetrics{}, fmt.Errorf("failed to read payment ledger: %w", err)
	}

	var m entity.BusinessMetrics
	for _, r := range records {
		switch r.Kind {
		case entity.PaymentKindFee:
			if r.Status == entity.PaymentStatusCompleted {
				m.TotalPlatformFees += r.Amount
			}
		case entity.PaymentKindTransfer, entity.PaymentKindBulkLeg:
			if r.Status != entity.PaymentStatusCompleted {
				m.FailedTransactions++
				continue
			}
			m.TotalTransactions++
			m.TotalVolume += r.Amount
		}
	}
	m.TotalRevenue = m.TotalPlatformFees
	if m.TotalTransactions > 0 {
		m.AverageTransactionSize = m.TotalVolume / float64(m.TotalTransactions)
	}
	return m, nil
}
