package dedup

import (
	"slices"

	"github.com/etnz/holdings"
	"github.com/shopspring/decimal"
)

// Duplicate reports an asset observed in more than one row of a combined table.
type Duplicate struct {
	Ticker     string          // raw ticker of the first row
	Normalized string          // normalized ticker shared by the rows
	Sources    []string        // sorted distinct sources
	Count      int             // number of rows
	TotalValue decimal.Decimal // sum of the rows value
	BySource   []SourceValue   // value per source, in order of first appearance
}

// SourceValue is the value a source reports for a duplicate.
type SourceValue struct {
	Source     string
	TotalValue decimal.Decimal
}

// FindDuplicates lists the normalized tickers shared by more than one row, in
// ascending normalized ticker order. It does not merge anything.
func FindDuplicates(rows []holdings.Holding) []Duplicate {
	var dups []Duplicate
	for _, g := range partition(rows) {
		if len(g.rows) < 2 {
			continue
		}
		dup := Duplicate{
			Ticker:     g.rows[0].Ticker,
			Normalized: g.key,
			Count:      len(g.rows),
		}
		for _, r := range g.rows {
			dup.TotalValue = dup.TotalValue.Add(r.TotalValue)
			i := slices.IndexFunc(dup.BySource, func(sv SourceValue) bool { return sv.Source == r.Source })
			if i < 0 {
				dup.BySource = append(dup.BySource, SourceValue{Source: r.Source})
				dup.Sources = append(dup.Sources, r.Source)
				i = len(dup.BySource) - 1
			}
			dup.BySource[i].TotalValue = dup.BySource[i].TotalValue.Add(r.TotalValue)
		}
		slices.Sort(dup.Sources)
		dups = append(dups, dup)
	}
	return dups
}
