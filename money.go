package moneybook

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// KnownCurrency reports whether code is in the ISO 4217 currency table.
func KnownCurrency(code string) bool {
	return money.GetCurrency(code) != nil
}

// currencyFraction returns the number of fractional digits of a currency,
// defaulting to 2 for codes missing from the table.
func currencyFraction(code string) int32 {
	cur := money.GetCurrency(code)
	if cur == nil {
		return 2
	}
	return int32(cur.Fraction)
}

// roundAmount rounds an amount to the fractional digits of its currency.
func roundAmount(v decimal.Decimal, code string) decimal.Decimal {
	return v.Round(currencyFraction(code))
}

// FormatAmount renders an amount with the currency's symbol and grouping,
// e.g. "€1,234.50". Amounts are rounded to the currency's fraction first.
func FormatAmount(v decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return v.StringFixed(2) + " " + code
	}
	shifted := v.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(shifted.IntPart())
}
