// Package money formats store amounts and derives margin figures. Amounts are
// whole units of the store currency.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultSymbol is the Naira sign used when no symbol is configured.
const DefaultSymbol = "₦"

// Formatter renders amounts with a currency symbol and thousands separators.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

func NewFormatter(symbol string) Formatter {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return Formatter{symbol: symbol, printer: message.NewPrinter(language.English)}
}

// Format renders 1000 as "₦1,000" and -50 as "-₦50".
func (f Formatter) Format(amount int64) string {
	if f.printer == nil {
		f = NewFormatter(f.symbol)
	}
	if amount < 0 {
		return "-" + f.symbol + f.printer.Sprintf("%d", -amount)
	}
	return f.symbol + f.printer.Sprintf("%d", amount)
}

// MarginPercent is gain as a percentage of sales, rounded to two places.
// Zero sales yields zero.
func MarginPercent(gain, sales int64) decimal.Decimal {
	if sales == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(gain).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(sales), 2)
}
