package common

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var moneyPrinter = message.NewPrinter(language.Thai)

// FormatMoney renders an amount for display: two decimal places with
// locale-aware thousands separators. Display-only; persisted totals keep
// full floating precision and this value never feeds back into them.
func FormatMoney(amount float64) string {
	return moneyPrinter.Sprint(number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
