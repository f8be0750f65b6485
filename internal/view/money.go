package view

import (
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultCurrencySymbol = "৳"
	DefaultCurrencyLocale = "en-IN"
)

// Money formats prices as a currency symbol followed by a whole, digit-grouped
// amount, e.g. ৳1,000.
type Money struct {
	symbol  string
	printer *message.Printer
}

// NewMoney builds a formatter. An unparsable locale falls back to English
// grouping.
func NewMoney(symbol, locale string) Money {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return Money{
		symbol:  symbol,
		printer: message.NewPrinter(tag),
	}
}

func DefaultMoney() Money {
	return NewMoney(DefaultCurrencySymbol, DefaultCurrencyLocale)
}

func (m Money) Format(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		amount = 0
	}
	whole := decimal.NewFromFloat(amount).Round(0).IntPart()
	if m.printer == nil {
		return m.symbol + decimal.NewFromInt(whole).String()
	}
	return m.symbol + m.printer.Sprintf("%d", whole)
}
