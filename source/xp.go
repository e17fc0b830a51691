package source

import (
	"errors"
	"strings"

	"github.com/etnz/holdings"
	"github.com/shopspring/decimal"
)

// xpReader reads the brokerage position report.
//
// The report is not a flat table: category titles are interleaved with asset
// rows, subtotal rows and repeated column headers. Rows are classified one by one:
//
//   - a title (second cell blank, first cell not a percentage) starts a category,
//   - a row mentioning a header keyword is a repeated header,
//   - a row whose second cell is an amount is an asset, unless its first cell is
//     an amount too (a subtotal).
//
// The report has no quantity, every asset counts as one unit.
type xpReader struct{ base }

// headerKeywords identify the repeated column header rows.
var headerKeywords = []string{"posição", "valor", "% alocação"}

// xpInvestedColumn is the column holding the invested value of an asset.
const xpInvestedColumn = 5

func (r *xpReader) Read() ([]holdings.Holding, error) {
	f, err := r.frame()
	if err != nil {
		return nil, err
	}

	var rows []holdings.Holding
	category := ""
	for _, line := range f.rows {
		first, second := line.cell(0), line.cell(1)
		if first == "" {
			continue
		}
		if second == "" {
			if !strings.Contains(first, "%") {
				category = first
			}
			continue
		}
		if isHeader(first, second) {
			continue
		}
		if !holdings.LooksLikeMoney(second) {
			continue
		}
		if strings.HasPrefix(first, holdings.CurrencySymbol) {
			// subtotal
			continue
		}
		h, err := parseXPAsset(line, category)
		if err != nil {
			r.skip(err.Error(), "ticker", first)
			continue
		}
		rows = append(rows, h)
	}
	return r.finalize(rows), nil
}

func isHeader(cells ...string) bool {
	for _, c := range cells {
		c = strings.ToLower(c)
		for _, k := range headerKeywords {
			if strings.Contains(c, k) {
				return true
			}
		}
	}
	return false
}

var errNoValue = errors.New("no positive position value")

// parseXPAsset maps an asset row of the report.
func parseXPAsset(line row, category string) (holdings.Holding, error) {
	total := holdings.ParseMoney(line.cell(1))
	if !total.IsPositive() {
		return holdings.Holding{}, errNoValue
	}
	h := holdings.Holding{
		Ticker:       line.cell(0),
		Quantity:     decimal.NewFromInt(1),
		AvgPrice:     holdings.ParseMoney(line.cell(xpInvestedColumn)),
		CurrentPrice: total,
		TotalValue:   total,
		Source:       string(XP),
	}
	if err := h.Set(holdings.Category, category); err != nil {
		return holdings.Holding{}, err
	}
	return h, nil
}
