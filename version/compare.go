package version

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/holdings"
	"github.com/shopspring/decimal"
)

// MaxValueChanges is the number of value changes a Comparison keeps.
const MaxValueChanges = 20

// changeThreshold is the smallest value change reported, below it is noise.
var changeThreshold = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Comparison is the difference between two versions.
//
// Versions are matched on the raw ticker text, so the same asset saved under two
// spellings shows as a removed and a new asset.
type Comparison struct {
	From, To      string // version names, To may be "latest"
	TotalValueOld decimal.Decimal
	TotalValueNew decimal.Decimal
	TotalChange   decimal.Decimal
	NewAssets     []string // tickers only in To, sorted
	RemovedAssets []string // tickers only in From, sorted
	ValueChanges  []ValueChange
}

// ValueChange is the value change of a ticker present in both versions.
type ValueChange struct {
	Ticker    string
	OldValue  decimal.Decimal
	NewValue  decimal.Decimal
	Change    decimal.Decimal
	ChangePct decimal.Decimal // 0 when the old value is not positive
}

func (c ValueChange) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", c.Ticker)
	w.Decimal("old_value", c.OldValue)
	w.Decimal("new_value", c.NewValue)
	w.Decimal("change", c.Change)
	w.Decimal("change_pct", c.ChangePct)
	return w.MarshalJSON()
}

func (c Comparison) MarshalJSON() ([]byte, error) {
	changes := c.ValueChanges
	if changes == nil {
		changes = []ValueChange{}
	}
	var w jsonObjectWriter
	w.Append("date1", c.From)
	w.Append("date2", c.To)
	w.Decimal("total_value_old", c.TotalValueOld)
	w.Decimal("total_value_new", c.TotalValueNew)
	w.Decimal("total_change", c.TotalChange)
	w.Append("new_assets", nonNil(c.NewAssets))
	w.Append("removed_assets", nonNil(c.RemovedAssets))
	w.Append("value_changes", changes)
	return w.MarshalJSON()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Compare computes the changes from the version from (a date) to the version to
// (a date, or "" and "latest" for the alias).
//
// It fails with ErrVersionNotFound if either version is missing.
func (s *Store) Compare(from, to string) (*Comparison, error) {
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("invalid version %q: a date is required", from)
	}
	fromName, fromFile, err := s.resolve(from)
	if err != nil {
		return nil, err
	}
	toName, toFile, err := s.resolve(to)
	if err != nil {
		return nil, err
	}
	old, err := read(fromName, fromFile)
	if err != nil {
		return nil, err
	}
	cur, err := read(toName, toFile)
	if err != nil {
		return nil, err
	}
	c := compare(old, cur)
	c.From, c.To = fromName, toName
	return c, nil
}

// valuesByTicker maps each ticker to the value of its first row.
func valuesByTicker(positions []holdings.Position) map[string]decimal.Decimal {
	values := make(map[string]decimal.Decimal, len(positions))
	for _, p := range positions {
		if _, ok := values[p.Ticker]; !ok {
			values[p.Ticker] = p.TotalValue
		}
	}
	return values
}

func compare(old, cur []holdings.Position) *Comparison {
	c := &Comparison{
		TotalValueOld: holdings.TotalValue(holdings.HoldingsOf(old)),
		TotalValueNew: holdings.TotalValue(holdings.HoldingsOf(cur)),
	}
	c.TotalChange = c.TotalValueNew.Sub(c.TotalValueOld)

	oldValues, curValues := valuesByTicker(old), valuesByTicker(cur)
	var common []string
	for ticker := range curValues {
		if _, ok := oldValues[ticker]; ok {
			common = append(common, ticker)
		} else {
			c.NewAssets = append(c.NewAssets, ticker)
		}
	}
	for ticker := range oldValues {
		if _, ok := curValues[ticker]; !ok {
			c.RemovedAssets = append(c.RemovedAssets, ticker)
		}
	}
	slices.Sort(c.NewAssets)
	slices.Sort(c.RemovedAssets)
	slices.Sort(common)

	for _, ticker := range common {
		vc := ValueChange{Ticker: ticker, OldValue: oldValues[ticker], NewValue: curValues[ticker]}
		vc.Change = vc.NewValue.Sub(vc.OldValue)
		if vc.Change.Abs().LessThanOrEqual(changeThreshold) {
			continue
		}
		if vc.OldValue.IsPositive() {
			vc.ChangePct = vc.Change.Div(vc.OldValue).Mul(hundred)
		}
		c.ValueChanges = append(c.ValueChanges, vc)
	}
	slices.SortStableFunc(c.ValueChanges, func(a, b ValueChange) int {
		return b.Change.Abs().Cmp(a.Change.Abs())
	})
	if len(c.ValueChanges) > MaxValueChanges {
		c.ValueChanges = c.ValueChanges[:MaxValueChanges]
	}
	return c
}

// reportFile returns the change report file between two version names.
func (s *Store) reportFile(from, to string) string {
	return filepath.Join(s.ReportsDir(), fmt.Sprintf("changes_%s_to_%s.json", from, to))
}

// GenerateChangeReport compares two versions, like Compare, and saves the result
// in the reports directory. It returns the report file.
func (s *Store) GenerateChangeReport(from, to string) (string, error) {
	c, err := s.Compare(from, to)
	if err != nil {
		return "", err
	}
	data, err := indent(c)
	if err != nil {
		return "", fmt.Errorf("cannot encode change report: %w", err)
	}
	file := s.reportFile(c.From, c.To)
	if err := os.WriteFile(file, data, 0644); err != nil {
		return "", fmt.Errorf("cannot write change report: %w", err)
	}
	s.log.Info("change report saved", "from", c.From, "to", c.To, "file", file)
	return file, nil
}

// Query evaluates a JSONPath expression (e.g. "$.value_changes[0].ticker") against
// the saved change report file.
func Query(file, expr string) (any, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read report: %w", err)
	}
	var report any
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("invalid report %q: %w", file, err)
	}
	v, err := jsonpath.Get(expr, report)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate %q: %w", expr, err)
	}
	return v, nil
}

// Query evaluates a JSONPath expression against the saved change report between
// two versions. It fails with ErrVersionNotFound if the report was not generated.
func (s *Store) Query(from, to, expr string) (any, error) {
	fromName, _, err := s.resolve(from)
	if err != nil {
		return nil, err
	}
	toName, _, err := s.resolve(to)
	if err != nil {
		return nil, err
	}
	file := s.reportFile(fromName, toName)
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("change report %s to %s: %w", fromName, toName, ErrVersionNotFound)
	}
	return Query(file, expr)
}
