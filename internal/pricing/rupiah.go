package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount as whole rupiah with Indonesian digit grouping,
// e.g. "Rp 1.234.567".
func Rupiah(amount decimal.Decimal) string {
	return "Rp " + idPrinter.Sprintf("%d", amount.Round(0).IntPart())
}
