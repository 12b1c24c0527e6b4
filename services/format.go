package services

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// RoundMoney rounds an amount to 2 decimal places. Calculations keep full
// precision; rounding happens for display only.
func RoundMoney(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// FormatMoney formats an amount with thousands separators and exactly 2
// decimal places (e.g. 1,234.50).
func FormatMoney(amount float64) string {
	return printer.Sprintf("%.2f", RoundMoney(amount))
}

// FormatCurrency appends the currency label: "1,234.50 EGP".
func FormatCurrency(amount float64, currency string) string {
	if currency == "" {
		return FormatMoney(amount)
	}
	return FormatMoney(amount) + " " + currency
}

// FormatNumber renders a measurement with at most 3 decimals and no trailing
// zeros (110, 2.5, 101.6).
func FormatNumber(v float64) string {
	return decimal.NewFromFloat(v).Round(3).String()
}
