package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for monetary amounts.
const MoneyScale = 2

// RoundMoney rounds an amount to MoneyScale places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// MoneyPtr returns a pointer to a copy of d.
func MoneyPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// FormatMoney renders an amount with thousands separators, e.g. 2,000,000 or
// -1,250.50. Whole amounts are printed without a fractional part.
func FormatMoney(d decimal.Decimal) string {
	var str string
	if d.Equal(d.Truncate(0)) {
		str = d.StringFixed(0)
	} else {
		str = d.StringFixed(MoneyScale)
	}

	sign := ""
	if strings.HasPrefix(str, "-") {
		sign = "-"
		str = str[1:]
	}

	intPart, fracPart := str, ""
	if idx := strings.IndexByte(str, '.'); idx >= 0 {
		intPart, fracPart = str[:idx], str[idx:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + b.String() + fracPart
}
