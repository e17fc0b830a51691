package dedup

import (
	"regexp"
	"strings"
)

// Government bonds are named very differently across providers ("Tesouro IPCA+ 2029",
// "TESOURO IPCA+ COM JUROS SEMESTRAIS 2029"...). They are collapsed by sub-type and
// maturity year.
const bondMarker = "TESOURO"

var bondTypes = []string{"SELIC", "IPCA"}

var bondYear = regexp.MustCompile(`20\d{2}`)

// NormalizeTicker returns the key used to match the same asset across providers.
//
// Tickers are upper-cased and trimmed. Government bonds of a known sub-type are
// reduced to "TESOURO <TYPE>", followed by the maturity year when the name has one.
func NormalizeTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if !strings.Contains(t, bondMarker) {
		return t
	}
	for _, typ := range bondTypes {
		if !strings.Contains(t, typ) {
			continue
		}
		label := bondMarker + " " + typ
		if year := bondYear.FindString(t); year != "" {
			return label + " " + year
		}
		return label
	}
	return t
}
