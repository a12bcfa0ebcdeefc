package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"orbix_wallet/internal/app/port"
)

// DefaultRefreshSchedule re-reads the balance every 30 seconds.
const DefaultRefreshSchedule = "@every 30s"

// BalanceRefresher periodically refreshes the cached session balance while a
// wallet is connected.
type BalanceRefresher struct {
	wallet   *WalletService
	logger   port.Logger
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

// NewBalanceRefresher creates a refresher. An empty schedule uses DefaultRefreshSchedule.
func NewBalanceRefresher(wallet *WalletService, logger port.Logger, schedule string) *BalanceRefresher {
	if schedule == "" {
		schedule = DefaultRefreshSchedule
	}
	return &BalanceRefresher{
		wallet:   wallet,
		logger:   logger,
		schedule: schedule,
		timeout:  10 * time.Second,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start schedules the refresh job and starts the cron runner.
func (r *BalanceRefresher) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.RefreshOnce); err != nil {
		return fmt.Errorf("invalid balance refresh schedule %q: %w", r.schedule, err)
	}
	r.cron.Start()
	r.logger.Info("Balance refresher started", "schedule", r.schedule)
	return nil
}

// Stop stops scheduling and waits for a running refresh to finish or ctx to end.
func (r *BalanceRefresher) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RefreshOnce refreshes the balance if a wallet is connected.
func (r *BalanceRefresher) RefreshOnce() {
	if !r.wallet.Session().Connected() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	balance, err := r.wallet.RefreshBalance(ctx)
	if err != nil {
		r.logger.Warn("Periodic balance refresh failed", "error", err)
		return
	}
	r.logger.Debug("Balance refreshed", "balance", balance)
}
