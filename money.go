package holdings

import (
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CurrencySymbol is the prefix providers put in front of amounts.
const CurrencySymbol = "R$"

// ParseMoney parses a localized amount such as "R$ 1.234,56".
//
// The currency symbol and every whitespace (including non-breaking spaces) are
// stripped, the '.' grouping separator removed and the decimal comma turned into a
// point. Empty, placeholder ("-") or unparsable inputs yield zero.
//
// Spreadsheet cells stored as numbers reach here in plain notation ("1234.56"):
// without currency symbol nor comma, s is parsed as a plain decimal first.
func ParseMoney(s string) decimal.Decimal {
	localized := strings.Contains(s, CurrencySymbol) || strings.Contains(s, ",")
	s = strings.ReplaceAll(s, CurrencySymbol, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" || s == "-" {
		return decimal.Zero
	}
	if !localized {
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// LooksLikeMoney reports whether s reads as an amount: it starts with the currency
// symbol or carries grouping or decimal punctuation.
func LooksLikeMoney(s string) bool {
	return strings.HasPrefix(s, CurrencySymbol) || strings.ContainsAny(s, ".,")
}

// FormatMoney formats d in Brazilian reals, e.g. "R$1.234,56".
func FormatMoney(d decimal.Decimal) string {
	// to get a never nil currency I need to call the Money constructor
	cur := money.New(0, money.BRL).Currency()
	return cur.Formatter().Format(d.Shift(int32(cur.Fraction)).Round(0).IntPart())
}
