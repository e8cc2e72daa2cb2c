// Package currency maps USD-denominated valuations into per-country display
// figures. Two distinct paths exist and must stay distinct: Convert rescales
// an already-displayed amount when the user switches country (so the headline
// numbers don't visibly jump), while ConvertFromUSD recomputes from the
// authoritative USD figure and is used for chart series and fresh views.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/estateluxe/estateluxe/internal/models"
)

type Info struct {
	Code   string
	Symbol string
	// Rate is units of this currency per USD.
	Rate decimal.Decimal
	// DisplayMultiplier is a purely cosmetic scale applied to charted and
	// headline figures so displayed numbers feel locale-appropriate. It is
	// not an exchange rate.
	DisplayMultiplier float64
}

var countries = map[models.CountryCode]Info{
	models.CountryIN: {Code: "INR", Symbol: "₹", Rate: decimal.NewFromInt(83), DisplayMultiplier: 75},
	models.CountryUS: {Code: "USD", Symbol: "$", Rate: decimal.NewFromInt(1), DisplayMultiplier: 1},
	models.CountryEU: {Code: "EUR", Symbol: "€", Rate: decimal.NewFromFloat(0.92), DisplayMultiplier: 1},
	models.CountryUK: {Code: "GBP", Symbol: "£", Rate: decimal.NewFromFloat(0.79), DisplayMultiplier: 1},
	models.CountryAE: {Code: "AED", Symbol: "AED ", Rate: decimal.NewFromFloat(3.67), DisplayMultiplier: 3},
}

func info(c models.CountryCode) Info {
	if i, ok := countries[c]; ok {
		return i
	}
	return countries[models.CountryUS]
}

func DisplayMultiplier(c models.CountryCode) float64 {
	return info(c).DisplayMultiplier
}

// Convert rescales an amount shown in `from` units into `to` units. The
// result is unrounded; callers round at display time, which bounds drift to
// about one unit per conversion.
func Convert(amount float64, from, to models.CountryCode) float64 {
	if from == to {
		return amount
	}
	d := decimal.NewFromFloat(amount).
		Div(info(from).Rate).
		Mul(info(to).Rate)
	f, _ := d.Float64()
	return f
}

// ConvertFromUSD converts an authoritative USD amount into the country's
// native currency units.
func ConvertFromUSD(usd float64, c models.CountryCode) float64 {
	f, _ := decimal.NewFromFloat(usd).Mul(info(c).Rate).Float64()
	return f
}

// Format renders an amount already in the country's native units, with the
// currency symbol and digit grouping. Fractions are rounded away; valuations
// are whole-unit figures.
func Format(amount float64, c models.CountryCode) string {
	i := info(c)
	d := decimal.NewFromFloat(amount).Round(0)
	neg := d.IsNegative()
	s := groupDigits(d.Abs().String())
	if neg {
		return i.Symbol + "-" + s
	}
	return i.Symbol + s
}

// FormatUSD converts a USD amount to the country's currency and formats it.
func FormatUSD(usd float64, c models.CountryCode) string {
	return Format(ConvertFromUSD(usd, c), c)
}

func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
