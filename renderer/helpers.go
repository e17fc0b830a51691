package renderer

import (
	"bytes"
	"io"

	"github.com/etnz/holdings"
	"github.com/shopspring/decimal"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// Money formats an amount in reals.
func Money(d decimal.Decimal) string { return holdings.FormatMoney(d) }

// SignedMoney formats an amount in reals, positive ones with a leading '+'.
func SignedMoney(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + holdings.FormatMoney(d)
	}
	return holdings.FormatMoney(d)
}

// Percent formats a percentage with two decimals and its sign.
func Percent(d decimal.Decimal) string {
	s := d.StringFixed(2) + "%"
	if d.Round(2).IsPositive() {
		return "+" + s
	}
	return s
}
