package service

import "orbix_wallet/internal/domain/entity"

// FeeCalculator derives platform fees and net amounts. It never rounds; display
// rounding is the caller's job.
type FeeCalculator struct {
	cfg entity.PlatformFeeConfig
}

// NewFeeCalculator creates a calculator for the given fee configuration.
func NewFeeCalculator(cfg entity.PlatformFeeConfig) *FeeCalculator {
	return &FeeCalculator{cfg: cfg}
}

// Config returns the fee configuration the calculator was built with.
func (c *FeeCalculator) Config() entity.PlatformFeeConfig {
	return c.cfg
}

// PlatformFee is amount * feePercentage / 100.
func (c *FeeCalculator) PlatformFee(amount float64) float64 {
	// Dividing the percentage first keeps 0.5% exactly equal to amount*0.005.
	return amount * (c.cfg.FeePercentage / 100)
}

// NetAmount is what is left of amount after the platform fee.
func (c *FeeCalculator) NetAmount(amount float64) float64 {
	return amount - c.PlatformFee(amount)
}

// VATRefund applies the refund percentage to vatAmount, then deducts the platform
// fee from that gross refund.
func (c *FeeCalculator) VATRefund(vatAmount, refundPercentage float64) float64 {
	return c.NetAmount(vatAmount * refundPercentage / 100)
}

// VATFromGross extracts the VAT contained in a VAT-inclusive bill.
func (c *FeeCalculator) VATFromGross(billAmount, vatRate float64) float64 {
	if vatRate <= 0 {
		return 0
	}
	return billAmount * vatRate / (100 + vatRate)
}

// ExceedsDust reports whether a fee is large enough to be worth a transfer.
func (c *FeeCalculator) ExceedsDust(fee float64) bool {
	return fee > c.cfg.DustThreshold
}

// Quote breaks amount down into fee and net.
func (c *FeeCalculator) Quote(amount float64) entity.FeeQuote {
	return entity.FeeQuote{
		Amount:        amount,
		FeePercentage: c.cfg.FeePercentage,
		PlatformFee:   c.PlatformFee(amount),
		NetAmount:     c.NetAmount(amount),
	}
}

// RefundQuote breaks a VAT refund down using the configured refund percentage.
func (c *FeeCalculator) RefundQuote(vatAmount float64) entity.RefundQuote {
	gross := vatAmount * c.cfg.VATRefundPercentage / 100
	return entity.RefundQuote{
		VATAmount:        vatAmount,
		RefundPercentage: c.cfg.VATRefundPercentage,
		GrossRefund:      gross,
		PlatformFee:      c.PlatformFee(gross),
		NetRefund:        c.VATRefund(vatAmount, c.cfg.VATRefundPercentage),
	}
}
