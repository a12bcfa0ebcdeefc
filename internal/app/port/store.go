package port

import (
	"context"

	"orbix_wallet/internal/domain/entity"
)

// Keys persisted in the StateStore. They drive optimistic reconnect only and are never authoritative.
const (
	StateKeyWalletConnected  = "wallet_connected"
	StateKeyConnectedAccount = "monad_connected_account"
	StateKeyActiveTab        = "monad_pay_active_tab"
)

// StateStore is a small string key/value store for client state flags.
type StateStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// LedgerFilter narrows PaymentLedger.List. Zero values match everything.
type LedgerFilter struct {
	Kind    entity.PaymentKind
	Address string
	Limit   int
}

// PaymentLedger keeps a local record of every submitted transfer.
type PaymentLedger interface {
	Record(ctx context.Context, rec entity.PaymentRecord) (entity.PaymentRecord, error)
	List(ctx context.Context, filter LedgerFilter) ([]entity.PaymentRecord, error)
}
