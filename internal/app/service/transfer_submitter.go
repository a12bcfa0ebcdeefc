package service

import (
	"context"
	"fmt"
	"time"

	"orbix_wallet/internal/app/port"
	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/pkg/metrics"
	"orbix_wallet/internal/pkg/utils"
)

// transferSubmitter moves native tokens through the shared queue and records
// every attempt in the ledger.
type transferSubmitter struct {
	wallet   *WalletService
	queue    *SubmissionQueue
	ledger   port.PaymentLedger
	logger   port.Logger
	decimals int32
}

type transferLeg struct {
	kind   entity.PaymentKind
	from   string
	to     string
	amount float64
	fee    float64
}

func (t *transferSubmitter) send(ctx context.Context, leg transferLeg) (string, error) {
	value, err := utils.ToBaseUnits(leg.amount, t.decimals)
	if err != nil {
		return "", fmt.Errorf("failed to convert amount %v: %w", leg.amount, err)
	}

	hash, err := t.queue.Submit(ctx, func(ctx context.Context) (string, error) {
		return t.wallet.SubmitTransfer(ctx, leg.from, leg.to, value)
	})

	outcome := "success"
	rec := entity.PaymentRecord{
		Kind:      leg.kind,
		From:      leg.from,
		To:        leg.to,
		Token:     entity.SymbolMON,
		Amount:    leg.amount,
		Fee:       leg.fee,
		TxHash:    hash,
		Status:    entity.PaymentStatusCompleted,
		CreatedAt: time.Now().UTC(),
	}
	if err != nil {
		outcome = "failure"
		rec.Status = entity.PaymentStatusFailed
		rec.Error = err.Error()
		t.logger.Warn("Transfer failed", "kind", leg.kind, "to", utils.FormatAddress(leg.to), "amount", leg.amount, "error", err)
	} else {
		t.logger.Info("Transfer submitted", "kind", leg.kind, "to", utils.FormatAddress(leg.to), "amount", leg.amount, "tx_hash", hash)
	}
	metrics.TransfersSubmitted.WithLabelValues(string(leg.kind), outcome).Inc()

	if t.ledger != nil {
		if _, lerr := t.ledger.Record(ctx, rec); lerr != nil {
			t.logger.Error("Failed to record payment", "tx_hash", hash, "error", lerr)
		}
	}
	return hash, err
}
