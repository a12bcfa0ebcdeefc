package port

import (
	"context"

	"orbix_wallet/internal/domain/entity"
)

// ReceiptExtractor is the external AI service that reads a receipt image.
type ReceiptExtractor interface {
	ExtractReceipt(ctx context.Context, file entity.ReceiptFile) (entity.VATReceipt, error)
}
