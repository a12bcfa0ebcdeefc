package service_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"orbix_wallet/internal/app/service"
	"orbix_wallet/internal/domain/entity"
	"orbix_wallet/internal/infrastructure/memwallet"
	"orbix_wallet/internal/infrastructure/network/definition"
	"orbix_wallet/internal/infrastructure/storage"
	"orbix_wallet/internal/pkg/logger"
	"orbix_wallet/internal/pkg/utils"

	"github.com/stretchr/testify/require"
)

const (
	sender    = "0x1111111111111111111111111111111111111111"
	recipA    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	recipB    = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	recipC    = "0xcccccccccccccccccccccccccccccccccccccccc"
	feeWallet = "0xfeefeefeefeefeefeefeefeefeefeefeefeefee0"
)

type harness struct {
	wallet   *memwallet.Wallet
	store    *storage.LevelDBStore
	session  *service.Session
	walletSv *service.WalletService
	fees     *service.FeeCalculator
	queue    *service.SubmissionQueue
	payments *service.PaymentService
	bulk     *service.BulkPaymentService
}

type harnessConfig struct {
	balanceMON float64
	delay      time.Duration
	policy     entity.FeeCollectionPolicy
	feeAddress string
	optimistic bool
	walletOpts []memwallet.Option
	noProvider bool
}

func mon(t *testing.T, amount float64) *big.Int {
	t.Helper()
	v, err := utils.ToBaseUnits(amount, 18)
	require.NoError(t, err)
	return v
}

func newHarness(t *testing.T, cfg harnessConfig) *harness {
	t.Helper()
	if cfg.policy == "" {
		cfg.policy = entity.FeePolicyBestEffort
	}
	if cfg.feeAddress == "" {
		cfg.feeAddress = feeWallet
	}

	opts := append([]memwallet.Option{memwallet.WithAccount(sender, mon(t, cfg.balanceMON))}, cfg.walletOpts...)
	w := memwallet.New(opts...)

	store, err := storage.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	feeCfg := entity.DefaultPlatformFeeConfig()
	feeCfg.FeeAddress = cfg.feeAddress
	feeCfg.Policy = cfg.policy

	h := &harness{wallet: w, store: store, session: service.NewSession()}
	var provider *memwallet.Wallet
	if !cfg.noProvider {
		provider = w
	}
	h.walletSv = newWalletService(provider, h.session, store, cfg.optimistic)
	h.fees = service.NewFeeCalculator(feeCfg)
	h.queue = service.NewSubmissionQueue(cfg.delay)
	h.payments = service.NewPaymentService(h.walletSv, h.fees, h.queue, entity.DefaultTokens(10143), store, logger.NewNop())
	h.bulk = service.NewBulkPaymentService(h.walletSv, h.fees, h.queue, store, logger.NewNop())
	return h
}

func newWalletService(w *memwallet.Wallet, session *service.Session, store *storage.LevelDBStore, optimistic bool) *service.WalletService {
	opts := service.WalletServiceOptions{OptimisticStatus: optimistic}
	if w == nil {
		return service.NewWalletService(nil, session, networkdefinition.MonadTestnet, store, logger.NewNop(), opts)
	}
	return service.NewWalletService(w, session, networkdefinition.MonadTestnet, store, logger.NewNop(), opts)
}

func (h *harness) connect(t *testing.T) {
	t.Helper()
	_, err := h.walletSv.Connect(context.Background())
	require.NoError(t, err)
}

func (h *harness) sendTimes() []time.Time {
	var out []time.Time
	for _, c := range h.wallet.Calls() {
		if c.Method == "eth_sendTransaction" {
			out = append(out, c.At)
		}
	}
	return out
}
