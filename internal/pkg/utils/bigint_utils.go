package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a whole-token amount into its integer base-unit form.
// Example: amount=1.5, decimals=18 => 1500000000000000000
// Digits beyond the token's precision are truncated.
func ToBaseUnits(amount float64, decimals int32) (*big.Int, error) {
	if amount < 0 {
		return nil, fmt.Errorf("amount must not be negative: %v", amount)
	}
	return decimal.NewFromFloat(amount).Shift(decimals).Truncate(0).BigInt(), nil
}

// FromBaseUnits converts an integer base-unit amount into whole tokens.
func FromBaseUnits(amount *big.Int, decimals int32) float64 {
	if amount == nil {
		return 0
	}
	return decimal.NewFromBigInt(amount, -decimals).InexactFloat64()
}

// FormatBigInt converts a big.Int value to a human-readable string,
// considering the given number of decimals.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) (string, error) {
	if amount == nil {
		return "0", nil
	}
	if decimals == 0 {
		return amount.String(), nil
	}

	formattedStr := decimal.NewFromBigInt(amount, -int32(decimals)).StringFixed(int32(decimals))

	// Trim trailing zeros so "1.500000" reads "1.5" and "2.000" reads "2".
	if strings.Contains(formattedStr, ".") {
		formattedStr = strings.TrimRight(formattedStr, "0")
		formattedStr = strings.TrimRight(formattedStr, ".")
	}
	if formattedStr == "" || formattedStr == "-" {
		return "0", nil
	}
	return formattedStr, nil
}
