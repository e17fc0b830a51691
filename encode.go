package holdings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// this file contains the delimited text format of canonical and consolidated tables.
// It is meant to be read by spreadsheets and downstream reporting tools: one header
// row, then one row per holding, decimals in plain notation.

// EncodeHoldings writes rows as CSV to w.
func EncodeHoldings(w io.Writer, rows []Holding) error {
	cols := Columns(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("cannot write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r, cols)); err != nil {
			return fmt.Errorf("cannot write %q: %w", r.Ticker, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodePositions writes the consolidated table as CSV to w, derived columns last.
func EncodePositions(w io.Writer, positions []Position) error {
	cols := Columns(HoldingsOf(positions))
	cw := csv.NewWriter(w)
	if err := cw.Write(append(slices.Clone(cols), FieldProfitLoss, FieldProfitLossPct)); err != nil {
		return fmt.Errorf("cannot write header: %w", err)
	}
	for _, p := range positions {
		rec := append(record(p.Holding, cols), p.ProfitLoss.String(), p.ProfitLossPct.String())
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("cannot write %q: %w", p.Ticker, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(h Holding, cols []string) []string {
	rec := make([]string, 0, len(cols))
	for _, c := range cols {
		switch c {
		case FieldTicker:
			rec = append(rec, h.Ticker)
		case FieldQuantity:
			rec = append(rec, h.Quantity.String())
		case FieldAvgPrice:
			rec = append(rec, h.AvgPrice.String())
		case FieldCurrentPrice:
			rec = append(rec, h.CurrentPrice.String())
		case FieldTotalValue:
			rec = append(rec, h.TotalValue.String())
		case FieldSource:
			rec = append(rec, h.Source)
		default:
			rec = append(rec, h.Get(c))
		}
	}
	return rec
}

// DecodePositions reads a consolidated table written by EncodePositions.
//
// Columns may come in any order and unknown columns are ignored. The six core
// columns are mandatory, derived columns default to zero when absent.
func DecodePositions(r io.Reader) ([]Position, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, f := range RequiredFields {
		if _, ok := index[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: {%s}", strings.Join(missing, ", "))
	}

	var positions []Position
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read line %d: %w", line, err)
		}
		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		num := func(name string) (decimal.Decimal, error) {
			s := cell(name)
			if s == "" {
				return decimal.Zero, nil
			}
			d, err := decimal.NewFromString(s)
			if err != nil {
				return decimal.Zero, fmt.Errorf("line %d: invalid %s %q: %w", line, name, s, err)
			}
			return d, nil
		}

		var p Position
		p.Ticker = cell(FieldTicker)
		p.Source = cell(FieldSource)
		for _, f := range []struct {
			name string
			dst  *decimal.Decimal
		}{
			{FieldQuantity, &p.Quantity},
			{FieldAvgPrice, &p.AvgPrice},
			{FieldCurrentPrice, &p.CurrentPrice},
			{FieldTotalValue, &p.TotalValue},
			{FieldProfitLoss, &p.ProfitLoss},
			{FieldProfitLossPct, &p.ProfitLossPct},
		} {
			if *f.dst, err = num(f.name); err != nil {
				return nil, err
			}
		}
		for _, f := range OptionalFields {
			// allow-listed, cannot fail
			_ = p.Set(f, cell(f))
		}
		positions = append(positions, p)
	}
	return positions, nil
}
