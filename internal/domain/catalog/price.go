package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PriceValue extracts the numeric value of a currency-formatted price by
// keeping only ASCII digits: "₩129,000" is 129000. A price without any digit
// is zero.
func PriceValue(price string) decimal.Decimal {
	var b strings.Builder
	for _, r := range price {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}
