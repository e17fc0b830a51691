package source

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/holdings"
)

// MissingColumnsError is returned when a file lacks the columns needed to fill
// some of the core canonical fields.
type MissingColumnsError struct {
	Fields []string // missing canonical fields, in canonical order
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: {%s}", strings.Join(e.Fields, ", "))
}

// Unwrap makes a MissingColumnsError an ErrParse.
func (e *MissingColumnsError) Unwrap() error { return ErrParse }

// validate checks that every core field is provided.
func validate(provided []string) error {
	var missing []string
	for _, f := range holdings.RequiredFields {
		if !slices.Contains(provided, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Fields: missing}
	}
	return nil
}

// finalize enforces the canonical table invariants: tickers are trimmed and non
// empty, total values are not negative.
func (b base) finalize(rows []holdings.Holding) []holdings.Holding {
	valid := make([]holdings.Holding, 0, len(rows))
	for _, r := range rows {
		r.Ticker = strings.TrimSpace(r.Ticker)
		if r.Ticker == "" {
			b.skip("empty ticker")
			continue
		}
		if r.TotalValue.IsNegative() {
			b.skip("negative total value", "ticker", r.Ticker, "total_value", r.TotalValue.String())
			continue
		}
		valid = append(valid, r)
	}
	return valid
}
