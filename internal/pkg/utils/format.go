package utils

import (
	"strconv"
	"strings"
)

// FormatAddress shortens an address to 0x1234...abcd for display.
func FormatAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// FormatAmount renders an amount with the number of places a symbol is shown with:
// six for MON, two for USDC and four for anything else.
func FormatAmount(amount float64, symbol string) string {
	places := 4
	switch strings.ToUpper(symbol) {
	case "MON":
		places = 6
	case "USDC":
		places = 2
	}
	return strconv.FormatFloat(amount, 'f', places, 64)
}
