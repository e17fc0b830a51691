package holdings

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultTopHoldings is the number of holdings listed in a summary.
const DefaultTopHoldings = 5

// Summary provides an at-a-glance overview of a consolidated table.
type Summary struct {
	TotalPositions     int
	TotalInvested      decimal.Decimal
	TotalValue         decimal.Decimal
	TotalProfitLoss    decimal.Decimal
	TotalProfitLossPct decimal.Decimal
	Sources            []string
	TopHoldings        []TopHolding
}

// TopHolding is one of the largest positions of a summary.
type TopHolding struct {
	Ticker        string
	TotalValue    decimal.Decimal
	ProfitLossPct decimal.Decimal
	Source        string
}

// NewSummary computes the summary of a consolidated table, listing its top largest
// positions (none when top is not positive). An empty table gives a zero Summary.
func NewSummary(positions []Position, top int) Summary {
	var s Summary
	if len(positions) == 0 {
		return s
	}
	s.TotalPositions = len(positions)
	sources := make(map[string]struct{})
	for _, p := range positions {
		s.TotalValue = s.TotalValue.Add(p.TotalValue)
		s.TotalInvested = s.TotalInvested.Add(p.Invested())
		s.TotalProfitLoss = s.TotalProfitLoss.Add(p.ProfitLoss)
		for _, src := range SplitSources(p.Source) {
			sources[src] = struct{}{}
		}
	}
	if s.TotalInvested.IsPositive() {
		s.TotalProfitLossPct = s.TotalProfitLoss.Div(s.TotalInvested).Mul(hundred)
	}
	for src := range sources {
		s.Sources = append(s.Sources, src)
	}
	slices.Sort(s.Sources)

	sorted := slices.Clone(positions)
	slices.SortStableFunc(sorted, func(a, b Position) int { return b.TotalValue.Cmp(a.TotalValue) })
	for _, p := range sorted[:min(max(top, 0), len(sorted))] {
		s.TopHoldings = append(s.TopHoldings, TopHolding{
			Ticker:        p.Ticker,
			TotalValue:    p.TotalValue,
			ProfitLossPct: p.ProfitLossPct,
			Source:        p.Source,
		})
	}
	return s
}

// SplitSources splits an aggregated source list ("B3, XP") into its names.
func SplitSources(source string) []string {
	var names []string
	for _, s := range strings.Split(source, ",") {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	return names
}

// JoinSources joins sorted, de-duplicated source names into an aggregated source list.
func JoinSources(names []string) string {
	names = slices.Clone(names)
	slices.Sort(names)
	return strings.Join(slices.Compact(names), ", ")
}

// number renders d as a JSON number, keeping every digit.
func number(d decimal.Decimal) json.Number { return json.Number(d.String()) }

func (t TopHolding) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Ticker        string      `json:"ticker"`
		TotalValue    json.Number `json:"total_value"`
		ProfitLossPct json.Number `json:"profit_loss_pct"`
		Source        string      `json:"source"`
	}{t.Ticker, number(t.TotalValue), number(t.ProfitLossPct), t.Source})
}

func (s Summary) MarshalJSON() ([]byte, error) {
	top := s.TopHoldings
	if top == nil {
		top = []TopHolding{}
	}
	sources := s.Sources
	if sources == nil {
		sources = []string{}
	}
	return json.Marshal(struct {
		TotalPositions     int          `json:"total_positions"`
		TotalValue         json.Number  `json:"total_value"`
		TotalInvested      json.Number  `json:"total_invested"`
		TotalProfitLoss    json.Number  `json:"total_profit_loss"`
		TotalProfitLossPct json.Number  `json:"total_profit_loss_pct"`
		Sources            []string     `json:"sources"`
		TopHoldings        []TopHolding `json:"top_holdings"`
	}{
		s.TotalPositions,
		number(s.TotalValue),
		number(s.TotalInvested),
		number(s.TotalProfitLoss),
		number(s.TotalProfitLossPct),
		sources,
		top,
	})
}
