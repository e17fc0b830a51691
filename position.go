package holdings

import (
	"slices"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Position is a row of the consolidated table: a deduplicated holding with its
// profit and loss.
type Position struct {
	Holding
	ProfitLoss    decimal.Decimal
	ProfitLossPct decimal.Decimal
}

// NewPosition computes the profit and loss of h.
//
// The percentage is relative to the average price, and is zero when the average
// price is zero.
func NewPosition(h Holding) Position {
	p := Position{Holding: h}
	diff := h.CurrentPrice.Sub(h.AvgPrice)
	p.ProfitLoss = diff.Mul(h.Quantity)
	if h.AvgPrice.IsPositive() {
		p.ProfitLossPct = diff.Div(h.AvgPrice).Mul(hundred)
	}
	return p
}

// Derive turns deduplicated holdings into the consolidated table, sorted by
// descending total value. Rows of equal value keep their relative order.
func Derive(rows []Holding) []Position {
	positions := make([]Position, 0, len(rows))
	for _, r := range rows {
		positions = append(positions, NewPosition(r))
	}
	slices.SortStableFunc(positions, func(a, b Position) int {
		return b.TotalValue.Cmp(a.TotalValue)
	})
	return positions
}

// HoldingsOf returns the holdings underlying positions.
func HoldingsOf(positions []Position) []Holding {
	rows := make([]Holding, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, p.Holding)
	}
	return rows
}

// Equal reports whether p and x hold the same values.
func (p Position) Equal(x Position) bool {
	return p.Holding.Equal(x.Holding) && p.ProfitLoss.Equal(x.ProfitLoss) && p.ProfitLossPct.Equal(x.ProfitLossPct)
}
